package repository

import (
	"context"

	"gorm.io/gorm"

	"finconnect/internal/model"
)

// StockRepository defines stock-catalog persistence operations.
type StockRepository interface {
	FindBySymbol(ctx context.Context, symbol string) (*model.Stock, error)
	List(ctx context.Context) ([]model.Stock, error)
	Upsert(ctx context.Context, stock *model.Stock) error
}

type stockRepository struct {
	db *gorm.DB
}

// NewStockRepository creates a new stock repository.
func NewStockRepository(db *gorm.DB) StockRepository {
	return &stockRepository{db: db}
}

// FindBySymbol finds a catalog entry by symbol.
func (r *stockRepository) FindBySymbol(ctx context.Context, symbol string) (*model.Stock, error) {
	var stock model.Stock
	if err := r.db.WithContext(ctx).Where("symbol = ?", symbol).First(&stock).Error; err != nil {
		return nil, err
	}
	return &stock, nil
}

// List returns the full catalog.
func (r *stockRepository) List(ctx context.Context) ([]model.Stock, error) {
	var stocks []model.Stock
	if err := r.db.WithContext(ctx).Order("symbol").Find(&stocks).Error; err != nil {
		return nil, err
	}
	return stocks, nil
}

// Upsert creates or updates a catalog entry.
func (r *stockRepository) Upsert(ctx context.Context, stock *model.Stock) error {
	var existing model.Stock
	err := r.db.WithContext(ctx).Where("symbol = ?", stock.Symbol).First(&existing).Error
	if err == nil {
		return r.db.WithContext(ctx).Save(stock).Error
	}
	if err != gorm.ErrRecordNotFound {
		return err
	}
	return r.db.WithContext(ctx).Create(stock).Error
}
