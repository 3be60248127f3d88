package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// TradeSide is the direction of a simulated order.
type TradeSide string

const (
	TradeSideBuy  TradeSide = "BUY"
	TradeSideSell TradeSide = "SELL"
)

// Trade is one entry in the paper-trading log. PnL is set only on trades that
// close a simulated position.
type Trade struct {
	ID          uuid.UUID        `json:"id" gorm:"type:char(36);primaryKey"`
	PortfolioID uint             `json:"-" gorm:"not null;index"`
	Time        time.Time        `json:"time" gorm:"not null"`
	Side        TradeSide        `json:"side" gorm:"type:varchar(4);not null"`
	Symbol      string           `json:"symbol" gorm:"size:12;not null"`
	Quantity    decimal.Decimal  `json:"qty" gorm:"type:decimal(20,4);not null"`
	Price       decimal.Decimal  `json:"price" gorm:"type:decimal(20,2);not null"`
	PnL         *decimal.Decimal `json:"pnl,omitempty" gorm:"type:decimal(20,2)"`
	CreatedAt   time.Time        `json:"-"`
}

// BeforeCreate sets UUID before creating the record.
func (t *Trade) BeforeCreate(tx *gorm.DB) error {
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	return nil
}
