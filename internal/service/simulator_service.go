package service

import (
	"context"
	"errors"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	apperrors "finconnect/internal/errors"
	"finconnect/internal/model"
	"finconnect/internal/repository"
	"finconnect/internal/sim"
)

const (
	// boardTickInterval is how often the shared price board walks every
	// catalog symbol.
	boardTickInterval = 2 * time.Second
	// sessionTickInterval is how often an open session's walk advances.
	sessionTickInterval = 300 * time.Millisecond

	// tradeLogBuffer and tradeLogFlushInterval shape the async trade writer:
	// trades are enqueued on the hot path and batch-inserted off it.
	tradeLogBuffer        = 256
	tradeLogFlushInterval = 500 * time.Millisecond
	tradeLogBatchSize     = 32
)

// defaultCatalog backs the price board when the stocks table is empty.
var defaultCatalog = []model.Stock{
	{Symbol: "AAPL", Name: "Apple Inc.", BasePrice: decimal.NewFromInt(180), Volatility: decimal.NewFromFloat(0.01)},
	{Symbol: "TSLA", Name: "Tesla, Inc.", BasePrice: decimal.NewFromInt(250), Volatility: decimal.NewFromFloat(0.01)},
	{Symbol: "MSFT", Name: "Microsoft Corp.", BasePrice: decimal.NewFromInt(310), Volatility: decimal.NewFromFloat(0.01)},
	{Symbol: "GOOG", Name: "Alphabet Inc.", BasePrice: decimal.NewFromInt(140), Volatility: decimal.NewFromFloat(0.01)},
	{Symbol: "AMZN", Name: "Amazon.com, Inc.", BasePrice: decimal.NewFromInt(130), Volatility: decimal.NewFromFloat(0.01)},
}

// HoldingView is one portfolio row marked to the current synthetic price.
type HoldingView struct {
	Symbol   string          `json:"symbol"`
	Name     string          `json:"name"`
	Quantity decimal.Decimal `json:"quantity"`
	Price    decimal.Decimal `json:"price"`
	Value    decimal.Decimal `json:"value"`
}

// PortfolioView is the full dashboard snapshot of one user's ledger.
type PortfolioView struct {
	Cash        decimal.Decimal `json:"cash"`
	Holdings    []HoldingView   `json:"holdings"`
	EquityValue decimal.Decimal `json:"equity_value"`
	TotalEquity decimal.Decimal `json:"total_equity"`
	RealizedPnL decimal.Decimal `json:"realized_pnl"`
}

// SessionView is the state of one open simulated position.
type SessionView struct {
	Symbol        string          `json:"symbol"`
	Side          sim.Side        `json:"side"`
	Quantity      decimal.Decimal `json:"quantity"`
	EntryPrice    float64         `json:"entry_price"`
	CurrentPrice  float64         `json:"current_price"`
	StartedAt     time.Time       `json:"started_at"`
	History       []sim.Sample    `json:"history"`
	UnrealizedPnL decimal.Decimal `json:"unrealized_pnl"`
}

// openSession pairs a session with the goroutine ticking it.
type openSession struct {
	session *sim.Session
	stop    chan struct{}
}

// SimulatorService runs the paper-trading engine: a shared synthetic price
// board, per-user DB-backed ledgers, and at most one live session per user.
type SimulatorService struct {
	portfolios repository.PortfolioRepository
	trades     repository.TradeRepository
	stocks     repository.StockRepository
	logger     zerolog.Logger

	boardMu sync.RWMutex
	walks   map[string]*sim.Walk
	catalog map[string]model.Stock

	// userLocks serializes ledger mutations per user on top of the row lock.
	userLocks sync.Map // uint -> *sync.Mutex
	sessions  sync.Map // uint -> *openSession

	tradeLog  chan model.Trade
	boardStop chan struct{}
	wg        sync.WaitGroup
}

// NewSimulatorService creates the simulator engine. Call Start before serving.
func NewSimulatorService(
	portfolios repository.PortfolioRepository,
	trades repository.TradeRepository,
	stocks repository.StockRepository,
	logger zerolog.Logger,
) *SimulatorService {
	return &SimulatorService{
		portfolios: portfolios,
		trades:     trades,
		stocks:     stocks,
		logger:     logger,
		walks:      map[string]*sim.Walk{},
		catalog:    map[string]model.Stock{},
		tradeLog:   make(chan model.Trade, tradeLogBuffer),
		boardStop:  make(chan struct{}),
	}
}

// Start seeds the price board from the stock catalog and launches the board
// ticker and the trade-log writer.
func (s *SimulatorService) Start(ctx context.Context) error {
	stocks, err := s.stocks.List(ctx)
	if err != nil {
		return err
	}
	if len(stocks) == 0 {
		stocks = defaultCatalog
	}

	s.boardMu.Lock()
	for _, stock := range stocks {
		base, _ := stock.BasePrice.Float64()
		vol, _ := stock.Volatility.Float64()
		s.walks[stock.Symbol] = sim.NewWalk(base, base, vol)
		s.catalog[stock.Symbol] = stock
	}
	s.boardMu.Unlock()

	s.wg.Add(2)
	go s.boardLoop()
	go s.tradeLogWorker()
	return nil
}

// Stop halts the board ticker, every open session ticker and the trade-log
// writer, flushing queued trades.
func (s *SimulatorService) Stop() {
	s.sessions.Range(func(key, value interface{}) bool {
		close(value.(*openSession).stop)
		s.sessions.Delete(key)
		return true
	})
	close(s.boardStop)
	close(s.tradeLog)
	s.wg.Wait()
}

// boardLoop advances every catalog walk on a fixed cadence.
func (s *SimulatorService) boardLoop() {
	defer s.wg.Done()
	ticker := time.NewTicker(boardTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-s.boardStop:
			return
		case <-ticker.C:
			s.boardMu.Lock()
			for _, walk := range s.walks {
				walk.Next()
			}
			s.boardMu.Unlock()
		}
	}
}

// tradeLogWorker batch-inserts queued trades, flushing on size or interval.
func (s *SimulatorService) tradeLogWorker() {
	defer s.wg.Done()
	ticker := time.NewTicker(tradeLogFlushInterval)
	defer ticker.Stop()

	batch := make([]model.Trade, 0, tradeLogBatchSize)
	flush := func() {
		if len(batch) == 0 {
			return
		}
		if err := s.trades.CreateBatch(context.Background(), batch); err != nil {
			s.logger.Error().Err(err).Int("count", len(batch)).Msg("failed to persist trade batch")
		}
		batch = batch[:0]
	}

	for {
		select {
		case trade, ok := <-s.tradeLog:
			if !ok {
				flush()
				return
			}
			batch = append(batch, trade)
			if len(batch) >= tradeLogBatchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		}
	}
}

// Prices returns the current synthetic price for every catalog symbol.
func (s *SimulatorService) Prices() map[string]decimal.Decimal {
	s.boardMu.RLock()
	defer s.boardMu.RUnlock()
	prices := make(map[string]decimal.Decimal, len(s.walks))
	for symbol, walk := range s.walks {
		prices[symbol] = decimal.NewFromFloat(walk.Last())
	}
	return prices
}

// price returns the board price for one symbol.
func (s *SimulatorService) price(symbol string) (decimal.Decimal, bool) {
	s.boardMu.RLock()
	defer s.boardMu.RUnlock()
	walk, ok := s.walks[symbol]
	if !ok {
		return decimal.Zero, false
	}
	return decimal.NewFromFloat(walk.Last()), true
}

func (s *SimulatorService) stockName(symbol string) string {
	s.boardMu.RLock()
	defer s.boardMu.RUnlock()
	if stock, ok := s.catalog[symbol]; ok {
		return stock.Name
	}
	return symbol
}

func (s *SimulatorService) userLock(userID uint) *sync.Mutex {
	lock, _ := s.userLocks.LoadOrStore(userID, &sync.Mutex{})
	return lock.(*sync.Mutex)
}

// ensurePortfolio returns the user's portfolio, creating it with the starting
// balance on first touch.
func (s *SimulatorService) ensurePortfolio(ctx context.Context, userID uint) (*model.Portfolio, error) {
	portfolio, err := s.portfolios.FindByUserID(ctx, userID)
	if err == nil {
		return portfolio, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}
	portfolio = &model.Portfolio{
		UserID:      userID,
		Cash:        model.StartingCash,
		RealizedPnL: decimal.Zero,
	}
	if err := s.portfolios.Create(ctx, portfolio); err != nil {
		return nil, err
	}
	return portfolio, nil
}

// loadLedger materializes the stored holdings into an in-memory ledger.
func (s *SimulatorService) loadLedger(ctx context.Context, repo repository.PortfolioRepository, portfolio *model.Portfolio) (sim.Ledger, error) {
	holdings, err := repo.FindHoldings(ctx, portfolio.ID)
	if err != nil {
		return sim.Ledger{}, err
	}
	ledger := sim.NewLedger(portfolio.Cash)
	for _, h := range holdings {
		ledger.Holdings[h.Symbol] = h.Quantity
	}
	return ledger, nil
}

// GetPortfolio returns the dashboard snapshot for one user, creating the
// portfolio on first access.
func (s *SimulatorService) GetPortfolio(ctx context.Context, userID uint) (*PortfolioView, error) {
	portfolio, err := s.ensurePortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}
	ledger, err := s.loadLedger(ctx, s.portfolios, portfolio)
	if err != nil {
		return nil, err
	}
	return s.buildView(ledger, portfolio.RealizedPnL), nil
}

func (s *SimulatorService) buildView(ledger sim.Ledger, realized decimal.Decimal) *PortfolioView {
	prices := s.Prices()
	view := &PortfolioView{
		Cash:        ledger.Cash,
		Holdings:    make([]HoldingView, 0, len(ledger.Holdings)),
		EquityValue: ledger.EquityValue(prices),
		TotalEquity: ledger.TotalEquity(prices),
		RealizedPnL: realized,
	}
	for symbol, qty := range ledger.Holdings {
		price := prices[symbol]
		view.Holdings = append(view.Holdings, HoldingView{
			Symbol:   symbol,
			Name:     s.stockName(symbol),
			Quantity: qty,
			Price:    price,
			Value:    price.Mul(qty).Round(2),
		})
	}
	return view
}

// PlaceTrade executes a simple buy or sell at the current board price.
func (s *SimulatorService) PlaceTrade(ctx context.Context, userID uint, symbol string, side model.TradeSide, qty decimal.Decimal) (*model.Trade, *PortfolioView, error) {
	if qty.LessThan(decimal.NewFromInt(1)) {
		return nil, nil, apperrors.ErrInvalidQuantity
	}
	price, ok := s.price(symbol)
	if !ok {
		return nil, nil, apperrors.ErrUnknownSymbol
	}

	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	portfolio, err := s.ensurePortfolio(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	var view *PortfolioView
	err = s.portfolios.WithTransaction(ctx, func(ctx context.Context, repo repository.PortfolioRepository) error {
		locked, err := repo.FindByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		ledger, err := s.loadLedger(ctx, repo, locked)
		if err != nil {
			return err
		}

		switch side {
		case model.TradeSideBuy:
			if !ledger.CanBuy(price, qty) {
				return apperrors.ErrInsufficientCash
			}
			ledger = ledger.Buy(symbol, price, qty)
		case model.TradeSideSell:
			if !ledger.CanSell(symbol, qty) {
				return apperrors.ErrInsufficientShares
			}
			ledger = ledger.Sell(symbol, price, qty)
		default:
			return apperrors.ErrInvalidQuantity
		}

		locked.Cash = ledger.Cash
		if err := repo.SaveLedger(ctx, locked, ledger.Holdings); err != nil {
			return err
		}
		portfolio = locked
		view = s.buildView(ledger, locked.RealizedPnL)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	trade := model.Trade{
		ID:          uuid.New(),
		PortfolioID: portfolio.ID,
		Time:        time.Now(),
		Side:        side,
		Symbol:      symbol,
		Quantity:    qty,
		Price:       price,
	}
	s.enqueueTrade(trade)
	return &trade, view, nil
}

// ListTrades returns the user's trade log, newest first.
func (s *SimulatorService) ListTrades(ctx context.Context, userID uint, limit int) ([]model.Trade, error) {
	portfolio, err := s.ensurePortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}
	return s.trades.ListByPortfolio(ctx, portfolio.ID, limit)
}

// OpenSession opens a simulated position. One session per user; SELL opens a
// short by driving the holding negative.
func (s *SimulatorService) OpenSession(ctx context.Context, userID uint, symbol string, side sim.Side, qty decimal.Decimal) (*SessionView, error) {
	if qty.LessThan(decimal.NewFromInt(1)) {
		return nil, apperrors.ErrInvalidQuantity
	}
	price, ok := s.price(symbol)
	if !ok {
		return nil, apperrors.ErrUnknownSymbol
	}
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if _, exists := s.sessions.Load(userID); exists {
		return nil, apperrors.ErrActiveSession
	}

	portfolio, err := s.ensurePortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}

	err = s.portfolios.WithTransaction(ctx, func(ctx context.Context, repo repository.PortfolioRepository) error {
		locked, err := repo.FindByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		ledger, err := s.loadLedger(ctx, repo, locked)
		if err != nil {
			return err
		}

		if side == sim.SideBuy {
			if !ledger.CanBuy(price, qty) {
				return apperrors.ErrInsufficientCash
			}
			ledger = ledger.Buy(symbol, price, qty)
		} else {
			ledger = ledger.Sell(symbol, price, qty)
		}

		locked.Cash = ledger.Cash
		if err := repo.SaveLedger(ctx, locked, ledger.Holdings); err != nil {
			return err
		}
		portfolio = locked
		return nil
	})
	if err != nil {
		return nil, err
	}

	stock := s.catalogEntry(symbol)
	base, _ := stock.BasePrice.Float64()
	vol, _ := stock.Volatility.Float64()
	entry, _ := price.Float64()

	walk := sim.NewWalk(entry, base, vol,
		sim.WithPrediction(sim.RandomPrediction(newSessionRand())))
	session := sim.NewSession(symbol, qty, side, walk)

	open := &openSession{session: session, stop: make(chan struct{})}
	s.sessions.Store(userID, open)

	s.wg.Add(1)
	go s.sessionLoop(open)

	tradeSide := model.TradeSideBuy
	if side == sim.SideSell {
		tradeSide = model.TradeSideSell
	}
	s.enqueueTrade(model.Trade{
		ID:          uuid.New(),
		PortfolioID: portfolio.ID,
		Time:        session.StartedAt,
		Side:        tradeSide,
		Symbol:      symbol,
		Quantity:    qty,
		Price:       price,
	})

	return sessionView(session), nil
}

// sessionLoop advances one session until its stop channel closes.
func (s *SimulatorService) sessionLoop(open *openSession) {
	defer s.wg.Done()
	ticker := time.NewTicker(sessionTickInterval)
	defer ticker.Stop()
	for {
		select {
		case <-open.stop:
			return
		case <-ticker.C:
			open.session.Advance()
		}
	}
}

// GetSession returns the state of the user's open session.
func (s *SimulatorService) GetSession(ctx context.Context, userID uint) (*SessionView, error) {
	value, ok := s.sessions.Load(userID)
	if !ok {
		return nil, apperrors.ErrNoActiveSession
	}
	return sessionView(value.(*openSession).session), nil
}

// CloseSession unwinds the open position at the current synthetic price and
// books realized P&L.
func (s *SimulatorService) CloseSession(ctx context.Context, userID uint) (*model.Trade, *PortfolioView, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	value, ok := s.sessions.LoadAndDelete(userID)
	if !ok {
		return nil, nil, apperrors.ErrNoActiveSession
	}
	open := value.(*openSession)
	close(open.stop)
	session := open.session

	exitPrice := decimal.NewFromFloat(session.CurrentPrice())
	pnl := sim.PnL(session.Side, session.EntryPrice, session.CurrentPrice(), session.Qty)

	var (
		portfolio *model.Portfolio
		view      *PortfolioView
	)
	err := s.portfolios.WithTransaction(ctx, func(ctx context.Context, repo repository.PortfolioRepository) error {
		locked, err := repo.FindByUserIDForUpdate(ctx, userID)
		if err != nil {
			return err
		}
		ledger, err := s.loadLedger(ctx, repo, locked)
		if err != nil {
			return err
		}

		// Reverse the entry: longs sell to flat, shorts buy to cover.
		if session.Side == sim.SideBuy {
			ledger = ledger.Sell(session.Symbol, exitPrice, session.Qty)
		} else {
			ledger = ledger.Buy(session.Symbol, exitPrice, session.Qty)
		}

		locked.Cash = ledger.Cash
		locked.RealizedPnL = locked.RealizedPnL.Add(pnl).Round(2)
		if err := repo.SaveLedger(ctx, locked, ledger.Holdings); err != nil {
			return err
		}
		portfolio = locked
		view = s.buildView(ledger, locked.RealizedPnL)
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	// The closing leg is the opposite side of the entry.
	closeSide := model.TradeSideSell
	if session.Side == sim.SideSell {
		closeSide = model.TradeSideBuy
	}
	trade := model.Trade{
		ID:          uuid.New(),
		PortfolioID: portfolio.ID,
		Time:        time.Now(),
		Side:        closeSide,
		Symbol:      session.Symbol,
		Quantity:    session.Qty,
		Price:       exitPrice,
		PnL:         &pnl,
	}
	s.enqueueTrade(trade)
	return &trade, view, nil
}

// Reset restores the starting balance, clears holdings, wipes the trade log
// and aborts any open session without booking it.
func (s *SimulatorService) Reset(ctx context.Context, userID uint) (*PortfolioView, error) {
	lock := s.userLock(userID)
	lock.Lock()
	defer lock.Unlock()

	if value, ok := s.sessions.LoadAndDelete(userID); ok {
		close(value.(*openSession).stop)
	}

	portfolio, err := s.ensurePortfolio(ctx, userID)
	if err != nil {
		return nil, err
	}
	if err := s.portfolios.Reset(ctx, portfolio.ID); err != nil {
		return nil, err
	}
	if err := s.trades.DeleteByPortfolio(ctx, portfolio.ID); err != nil {
		return nil, err
	}
	return s.buildView(sim.NewLedger(model.StartingCash), decimal.Zero), nil
}

func (s *SimulatorService) catalogEntry(symbol string) model.Stock {
	s.boardMu.RLock()
	defer s.boardMu.RUnlock()
	if stock, ok := s.catalog[symbol]; ok {
		return stock
	}
	return model.Stock{Symbol: symbol, Name: symbol, BasePrice: decimal.NewFromInt(100), Volatility: decimal.NewFromFloat(sim.DefaultVolatility)}
}

// enqueueTrade hands a trade to the async writer, falling back to a
// synchronous insert when the buffer is full.
func (s *SimulatorService) enqueueTrade(trade model.Trade) {
	select {
	case s.tradeLog <- trade:
	default:
		if err := s.trades.Create(context.Background(), &trade); err != nil {
			s.logger.Error().Err(err).Str("trade_id", trade.ID.String()).Msg("failed to persist trade")
		}
	}
}

func newSessionRand() *rand.Rand {
	return rand.New(rand.NewSource(time.Now().UnixNano()))
}

func sessionView(session *sim.Session) *SessionView {
	return &SessionView{
		Symbol:        session.Symbol,
		Side:          session.Side,
		Quantity:      session.Qty,
		EntryPrice:    session.EntryPrice,
		CurrentPrice:  session.CurrentPrice(),
		StartedAt:     session.StartedAt,
		History:       session.History(),
		UnrealizedPnL: session.UnrealizedPnL(),
	}
}
