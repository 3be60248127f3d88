package repository

import (
	"context"

	"gorm.io/gorm"

	"finconnect/internal/model"
)

// TradeRepository defines trade-log persistence operations.
type TradeRepository interface {
	Create(ctx context.Context, trade *model.Trade) error
	CreateBatch(ctx context.Context, trades []model.Trade) error
	// ListByPortfolio returns trades newest first, up to limit (0 = all).
	ListByPortfolio(ctx context.Context, portfolioID uint, limit int) ([]model.Trade, error)
	DeleteByPortfolio(ctx context.Context, portfolioID uint) error
}

type tradeRepository struct {
	db *gorm.DB
}

// NewTradeRepository creates a new trade repository.
func NewTradeRepository(db *gorm.DB) TradeRepository {
	return &tradeRepository{db: db}
}

// Create creates a single trade record.
func (r *tradeRepository) Create(ctx context.Context, trade *model.Trade) error {
	return r.db.WithContext(ctx).Create(trade).Error
}

// CreateBatch inserts multiple trade records at once.
func (r *tradeRepository) CreateBatch(ctx context.Context, trades []model.Trade) error {
	if len(trades) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Create(&trades).Error
}

// ListByPortfolio returns the trade log, newest first.
func (r *tradeRepository) ListByPortfolio(ctx context.Context, portfolioID uint, limit int) ([]model.Trade, error) {
	var trades []model.Trade
	q := r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Order("time DESC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	if err := q.Find(&trades).Error; err != nil {
		return nil, err
	}
	return trades, nil
}

// DeleteByPortfolio wipes the trade log, used when a portfolio is reset.
func (r *tradeRepository) DeleteByPortfolio(ctx context.Context, portfolioID uint) error {
	return r.db.WithContext(ctx).Where("portfolio_id = ?", portfolioID).Delete(&model.Trade{}).Error
}
