package repository

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"finconnect/internal/model"
)

// PortfolioRepository defines paper-trading ledger persistence operations.
type PortfolioRepository interface {
	Create(ctx context.Context, portfolio *model.Portfolio) error
	FindByUserID(ctx context.Context, userID uint) (*model.Portfolio, error)
	// FindByUserIDForUpdate locks the portfolio row for the duration of the
	// surrounding transaction.
	FindByUserIDForUpdate(ctx context.Context, userID uint) (*model.Portfolio, error)
	FindHoldings(ctx context.Context, portfolioID uint) ([]model.Holding, error)
	// SaveLedger writes cash, realized P&L and the full holdings set in one
	// shot, deleting rows absent from holdings.
	SaveLedger(ctx context.Context, portfolio *model.Portfolio, holdings map[string]decimal.Decimal) error
	// Reset restores starting cash, clears holdings and zeroes realized P&L.
	Reset(ctx context.Context, portfolioID uint) error
	// WithTransaction executes fn inside a database transaction.
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo PortfolioRepository) error) error
}

type portfolioRepository struct {
	db *gorm.DB
}

// NewPortfolioRepository creates a new portfolio repository.
func NewPortfolioRepository(db *gorm.DB) PortfolioRepository {
	return &portfolioRepository{db: db}
}

// Create creates a new portfolio.
func (r *portfolioRepository) Create(ctx context.Context, portfolio *model.Portfolio) error {
	return r.db.WithContext(ctx).Create(portfolio).Error
}

// FindByUserID finds a portfolio by owner.
func (r *portfolioRepository) FindByUserID(ctx context.Context, userID uint) (*model.Portfolio, error) {
	var portfolio model.Portfolio
	if err := r.db.WithContext(ctx).Where("user_id = ?", userID).First(&portfolio).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// FindByUserIDForUpdate finds a portfolio by owner with a row-level lock.
func (r *portfolioRepository) FindByUserIDForUpdate(ctx context.Context, userID uint) (*model.Portfolio, error) {
	var portfolio model.Portfolio
	if err := r.db.WithContext(ctx).Set("gorm:query_option", "FOR UPDATE").
		Where("user_id = ?", userID).First(&portfolio).Error; err != nil {
		return nil, err
	}
	return &portfolio, nil
}

// FindHoldings returns all holdings for a portfolio.
func (r *portfolioRepository) FindHoldings(ctx context.Context, portfolioID uint) ([]model.Holding, error) {
	var holdings []model.Holding
	if err := r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Find(&holdings).Error; err != nil {
		return nil, err
	}
	return holdings, nil
}

// SaveLedger persists cash, realized P&L and the holdings map atomically with
// respect to the surrounding transaction.
func (r *portfolioRepository) SaveLedger(ctx context.Context, portfolio *model.Portfolio, holdings map[string]decimal.Decimal) error {
	if err := r.db.WithContext(ctx).Model(&model.Portfolio{}).
		Where("id = ?", portfolio.ID).
		Updates(map[string]interface{}{
			"cash":         portfolio.Cash,
			"realized_pnl": portfolio.RealizedPnL,
		}).Error; err != nil {
		return err
	}

	if err := r.db.WithContext(ctx).
		Where("portfolio_id = ?", portfolio.ID).
		Delete(&model.Holding{}).Error; err != nil {
		return err
	}

	for symbol, qty := range holdings {
		holding := model.Holding{PortfolioID: portfolio.ID, Symbol: symbol, Quantity: qty}
		if err := r.db.WithContext(ctx).Create(&holding).Error; err != nil {
			return err
		}
	}
	return nil
}

// Reset restores the starting ledger.
func (r *portfolioRepository) Reset(ctx context.Context, portfolioID uint) error {
	if err := r.db.WithContext(ctx).Model(&model.Portfolio{}).
		Where("id = ?", portfolioID).
		Updates(map[string]interface{}{
			"cash":         model.StartingCash,
			"realized_pnl": decimal.Zero,
		}).Error; err != nil {
		return err
	}
	return r.db.WithContext(ctx).
		Where("portfolio_id = ?", portfolioID).
		Delete(&model.Holding{}).Error
}

// WithTransaction executes a function within a database transaction.
func (r *portfolioRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo PortfolioRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &portfolioRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
