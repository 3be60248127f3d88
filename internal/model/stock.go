package model

import "github.com/shopspring/decimal"

// Stock is one entry of the simulator's tradable catalog. BasePrice anchors
// the synthetic walk's mean reversion; Volatility is the per-tick random band
// as a fraction of the last price.
type Stock struct {
	Symbol     string          `json:"symbol" gorm:"primaryKey;size:12"`
	Name       string          `json:"name" gorm:"size:255;not null"`
	BasePrice  decimal.Decimal `json:"base_price" gorm:"type:decimal(20,2);not null"`
	Volatility decimal.Decimal `json:"volatility" gorm:"type:decimal(6,4);not null;default:0.01"`
}
