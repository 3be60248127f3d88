package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	apperrors "finconnect/internal/errors"
	"finconnect/internal/model"
	"finconnect/internal/repository"
	"finconnect/internal/sim"
)

// fakePortfolioRepo is an in-memory PortfolioRepository for one user.
type fakePortfolioRepo struct {
	mu        sync.Mutex
	portfolio *model.Portfolio
	holdings  map[string]decimal.Decimal
}

func newFakePortfolioRepo() *fakePortfolioRepo {
	return &fakePortfolioRepo{holdings: map[string]decimal.Decimal{}}
}

func (f *fakePortfolioRepo) Create(ctx context.Context, portfolio *model.Portfolio) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	portfolio.ID = 1
	clone := *portfolio
	f.portfolio = &clone
	return nil
}

func (f *fakePortfolioRepo) FindByUserID(ctx context.Context, userID uint) (*model.Portfolio, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.portfolio == nil || f.portfolio.UserID != userID {
		return nil, gorm.ErrRecordNotFound
	}
	clone := *f.portfolio
	return &clone, nil
}

func (f *fakePortfolioRepo) FindByUserIDForUpdate(ctx context.Context, userID uint) (*model.Portfolio, error) {
	return f.FindByUserID(ctx, userID)
}

func (f *fakePortfolioRepo) FindHoldings(ctx context.Context, portfolioID uint) ([]model.Holding, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []model.Holding
	for symbol, qty := range f.holdings {
		out = append(out, model.Holding{PortfolioID: portfolioID, Symbol: symbol, Quantity: qty})
	}
	return out, nil
}

func (f *fakePortfolioRepo) SaveLedger(ctx context.Context, portfolio *model.Portfolio, holdings map[string]decimal.Decimal) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.portfolio.Cash = portfolio.Cash
	f.portfolio.RealizedPnL = portfolio.RealizedPnL
	f.holdings = map[string]decimal.Decimal{}
	for symbol, qty := range holdings {
		f.holdings[symbol] = qty
	}
	return nil
}

func (f *fakePortfolioRepo) Reset(ctx context.Context, portfolioID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.portfolio.Cash = model.StartingCash
	f.portfolio.RealizedPnL = decimal.Zero
	f.holdings = map[string]decimal.Decimal{}
	return nil
}

func (f *fakePortfolioRepo) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo repository.PortfolioRepository) error) error {
	return fn(ctx, f)
}

// fakeTradeRepo is an in-memory TradeRepository.
type fakeTradeRepo struct {
	mu     sync.Mutex
	trades []model.Trade
}

func (f *fakeTradeRepo) Create(ctx context.Context, trade *model.Trade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trades = append(f.trades, *trade)
	return nil
}

func (f *fakeTradeRepo) CreateBatch(ctx context.Context, trades []model.Trade) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.trades = append(f.trades, trades...)
	return nil
}

func (f *fakeTradeRepo) ListByPortfolio(ctx context.Context, portfolioID uint, limit int) ([]model.Trade, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]model.Trade, 0, len(f.trades))
	for i := len(f.trades) - 1; i >= 0; i-- {
		if f.trades[i].PortfolioID == portfolioID {
			out = append(out, f.trades[i])
			if limit > 0 && len(out) == limit {
				break
			}
		}
	}
	return out, nil
}

func (f *fakeTradeRepo) DeleteByPortfolio(ctx context.Context, portfolioID uint) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	kept := f.trades[:0]
	for _, trade := range f.trades {
		if trade.PortfolioID != portfolioID {
			kept = append(kept, trade)
		}
	}
	f.trades = kept
	return nil
}

func (f *fakeTradeRepo) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.trades)
}

// fakeStockRepo serves a fixed catalog.
type fakeStockRepo struct {
	stocks []model.Stock
}

func (f *fakeStockRepo) FindBySymbol(ctx context.Context, symbol string) (*model.Stock, error) {
	for i := range f.stocks {
		if f.stocks[i].Symbol == symbol {
			return &f.stocks[i], nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (f *fakeStockRepo) List(ctx context.Context) ([]model.Stock, error) {
	return f.stocks, nil
}

func (f *fakeStockRepo) Upsert(ctx context.Context, stock *model.Stock) error {
	f.stocks = append(f.stocks, *stock)
	return nil
}

func newTestSimulator(t *testing.T) (*SimulatorService, *fakePortfolioRepo, *fakeTradeRepo) {
	t.Helper()
	portfolios := newFakePortfolioRepo()
	trades := &fakeTradeRepo{}
	stocks := &fakeStockRepo{stocks: []model.Stock{
		{Symbol: "AAPL", Name: "Apple Inc.", BasePrice: decimal.NewFromInt(180), Volatility: decimal.NewFromFloat(0.01)},
		{Symbol: "TSLA", Name: "Tesla, Inc.", BasePrice: decimal.NewFromInt(250), Volatility: decimal.NewFromFloat(0.01)},
	}}

	svc := NewSimulatorService(portfolios, trades, stocks, zerolog.Nop())
	require.NoError(t, svc.Start(context.Background()))
	return svc, portfolios, trades
}

func TestSimulatorService_GetPortfolioCreatesStartingLedger(t *testing.T) {
	svc, _, _ := newTestSimulator(t)
	defer svc.Stop()

	view, err := svc.GetPortfolio(context.Background(), 1)

	require.NoError(t, err)
	assert.True(t, view.Cash.Equal(model.StartingCash), "cash = %s", view.Cash)
	assert.Empty(t, view.Holdings)
	assert.True(t, view.RealizedPnL.IsZero())
	assert.True(t, view.TotalEquity.Equal(model.StartingCash))
}

func TestSimulatorService_PlaceTradeRoundTrip(t *testing.T) {
	svc, _, _ := newTestSimulator(t)
	defer svc.Stop()
	ctx := context.Background()
	qty := decimal.NewFromInt(10)

	trade, view, err := svc.PlaceTrade(ctx, 1, "AAPL", model.TradeSideBuy, qty)
	require.NoError(t, err)

	cost := trade.Price.Mul(qty).Round(2)
	assert.True(t, view.Cash.Equal(model.StartingCash.Sub(cost)), "cash = %s", view.Cash)
	require.Len(t, view.Holdings, 1)
	assert.Equal(t, "AAPL", view.Holdings[0].Symbol)
	assert.True(t, view.Holdings[0].Quantity.Equal(qty))

	sellTrade, view, err := svc.PlaceTrade(ctx, 1, "AAPL", model.TradeSideSell, qty)
	require.NoError(t, err)

	expected := model.StartingCash.Sub(cost).Add(sellTrade.Price.Mul(qty).Round(2)).Round(2)
	assert.True(t, view.Cash.Equal(expected), "cash = %s want %s", view.Cash, expected)
	assert.Empty(t, view.Holdings)
}

func TestSimulatorService_PlaceTradeValidation(t *testing.T) {
	svc, portfolios, _ := newTestSimulator(t)
	defer svc.Stop()
	ctx := context.Background()

	tests := []struct {
		name          string
		symbol        string
		side          model.TradeSide
		qty           decimal.Decimal
		expectedError error
	}{
		{"unknown symbol", "ZZZZ", model.TradeSideBuy, decimal.NewFromInt(1), apperrors.ErrUnknownSymbol},
		{"zero quantity", "AAPL", model.TradeSideBuy, decimal.Zero, apperrors.ErrInvalidQuantity},
		{"over budget buy", "AAPL", model.TradeSideBuy, decimal.NewFromInt(100000), apperrors.ErrInsufficientCash},
		{"sell without shares", "AAPL", model.TradeSideSell, decimal.NewFromInt(1), apperrors.ErrInsufficientShares},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, _, err := svc.PlaceTrade(ctx, 1, tt.symbol, tt.side, tt.qty)
			assert.Equal(t, tt.expectedError, err)
		})
	}

	// rejected trades never touched the stored ledger
	view, err := svc.GetPortfolio(ctx, 1)
	require.NoError(t, err)
	assert.True(t, view.Cash.Equal(model.StartingCash))
	assert.Empty(t, view.Holdings)
	assert.NotNil(t, portfolios.portfolio)
}

func TestSimulatorService_SessionLifecycle(t *testing.T) {
	svc, _, _ := newTestSimulator(t)
	defer svc.Stop()
	ctx := context.Background()
	qty := decimal.NewFromInt(10)

	opened, err := svc.OpenSession(ctx, 1, "AAPL", sim.SideBuy, qty)
	require.NoError(t, err)
	assert.Equal(t, "AAPL", opened.Symbol)
	assert.NotEmpty(t, opened.History)

	_, err = svc.OpenSession(ctx, 1, "TSLA", sim.SideBuy, qty)
	assert.Equal(t, apperrors.ErrActiveSession, err)

	current, err := svc.GetSession(ctx, 1)
	require.NoError(t, err)
	assert.Equal(t, opened.EntryPrice, current.EntryPrice)

	closeTrade, view, err := svc.CloseSession(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, closeTrade.PnL)
	assert.Empty(t, view.Holdings, "closing returns the position to flat")
	assert.True(t, view.RealizedPnL.Equal(*closeTrade.PnL))

	entry := decimal.NewFromFloat(opened.EntryPrice)
	expectedCash := model.StartingCash.
		Sub(entry.Mul(qty).Round(2)).Round(2).
		Add(closeTrade.Price.Mul(qty).Round(2)).Round(2)
	assert.True(t, view.Cash.Equal(expectedCash), "cash = %s want %s", view.Cash, expectedCash)

	_, err = svc.GetSession(ctx, 1)
	assert.Equal(t, apperrors.ErrNoActiveSession, err)
	_, _, err = svc.CloseSession(ctx, 1)
	assert.Equal(t, apperrors.ErrNoActiveSession, err)
}

func TestSimulatorService_ShortSessionBooksInvertedPnL(t *testing.T) {
	svc, _, _ := newTestSimulator(t)
	defer svc.Stop()
	ctx := context.Background()
	qty := decimal.NewFromInt(5)

	opened, err := svc.OpenSession(ctx, 1, "TSLA", sim.SideSell, qty)
	require.NoError(t, err)

	closeTrade, view, err := svc.CloseSession(ctx, 1)
	require.NoError(t, err)
	require.NotNil(t, closeTrade.PnL)

	entry := decimal.NewFromFloat(opened.EntryPrice)
	want := entry.Sub(closeTrade.Price).Mul(qty).Round(2)
	assert.True(t, closeTrade.PnL.Equal(want), "pnl = %s want %s", closeTrade.PnL, want)
	assert.Empty(t, view.Holdings)
}

func TestSimulatorService_Reset(t *testing.T) {
	svc, _, trades := newTestSimulator(t)
	defer svc.Stop()
	ctx := context.Background()

	_, _, err := svc.PlaceTrade(ctx, 1, "AAPL", model.TradeSideBuy, decimal.NewFromInt(3))
	require.NoError(t, err)
	_, err = svc.OpenSession(ctx, 1, "TSLA", sim.SideBuy, decimal.NewFromInt(1))
	require.NoError(t, err)

	// let the async writer flush before wiping
	require.Eventually(t, func() bool { return trades.count() == 2 },
		3*time.Second, 50*time.Millisecond)

	view, err := svc.Reset(ctx, 1)
	require.NoError(t, err)

	assert.True(t, view.Cash.Equal(model.StartingCash))
	assert.Empty(t, view.Holdings)
	assert.True(t, view.RealizedPnL.IsZero())

	_, err = svc.GetSession(ctx, 1)
	assert.Equal(t, apperrors.ErrNoActiveSession, err, "reset aborts the open session")

	listed, err := svc.ListTrades(ctx, 1, 0)
	require.NoError(t, err)
	assert.Empty(t, listed, "reset wipes the trade log")
}

func TestSimulatorService_StopFlushesTradeLog(t *testing.T) {
	svc, _, trades := newTestSimulator(t)
	ctx := context.Background()

	_, _, err := svc.PlaceTrade(ctx, 1, "AAPL", model.TradeSideBuy, decimal.NewFromInt(2))
	require.NoError(t, err)
	_, _, err = svc.PlaceTrade(ctx, 1, "AAPL", model.TradeSideSell, decimal.NewFromInt(2))
	require.NoError(t, err)

	svc.Stop()
	assert.Equal(t, 2, trades.count())
}
