package model

import (
	"time"

	"github.com/shopspring/decimal"
)

// StartingCash is the paper-trading balance every portfolio begins with.
var StartingCash = decimal.NewFromInt(10000)

// Portfolio is a user's paper-trading ledger: cash plus realized P&L to date.
// Per-symbol share counts live in Holding rows.
type Portfolio struct {
	ID          uint            `json:"-" gorm:"primaryKey"`
	UserID      uint            `json:"user_id" gorm:"uniqueIndex;not null"`
	Cash        decimal.Decimal `json:"cash" gorm:"type:decimal(20,2);not null"`
	RealizedPnL decimal.Decimal `json:"realized_pnl" gorm:"column:realized_pnl;type:decimal(20,2);not null;default:0"`
	UpdatedAt   time.Time       `json:"updated_at"`

	Holdings []Holding `json:"holdings,omitempty" gorm:"foreignKey:PortfolioID"`
}

// Holding is a signed per-symbol share count. Negative quantity is a short
// position.
type Holding struct {
	ID          uint            `json:"-" gorm:"primaryKey"`
	PortfolioID uint            `json:"-" gorm:"not null;uniqueIndex:idx_portfolio_symbol"`
	Symbol      string          `json:"symbol" gorm:"size:12;not null;uniqueIndex:idx_portfolio_symbol"`
	Quantity    decimal.Decimal `json:"quantity" gorm:"type:decimal(20,4);not null"`
}
