// Package sim implements the paper-trading ledger and the synthetic price
// walk that drives it. All monetary amounts are rounded to two decimal places
// after every arithmetic step, matching the display currency exactly.
package sim

import "github.com/shopspring/decimal"

// epsilon below which a holding nets to zero and its entry is dropped.
var epsilon = decimal.NewFromFloat(0.001)

// Ledger is an immutable snapshot of cash plus signed per-symbol share
// counts. Negative quantity is a short position. Mutating operations return a
// new Ledger and never touch the receiver, so a rejected operation leaves the
// caller's state untouched by construction.
type Ledger struct {
	Cash     decimal.Decimal
	Holdings map[string]decimal.Decimal
}

// NewLedger creates a ledger with the given cash and no holdings.
func NewLedger(cash decimal.Decimal) Ledger {
	return Ledger{
		Cash:     cash.Round(2),
		Holdings: map[string]decimal.Decimal{},
	}
}

// Quantity returns the signed share count for symbol, zero when absent.
func (l Ledger) Quantity(symbol string) decimal.Decimal {
	if q, ok := l.Holdings[symbol]; ok {
		return q
	}
	return decimal.Zero
}

// CanBuy reports whether cash covers price multiplied by qty.
func (l Ledger) CanBuy(price, qty decimal.Decimal) bool {
	return l.Cash.GreaterThanOrEqual(price.Mul(qty).Round(2))
}

// CanSell reports whether the ledger owns at least qty shares of symbol.
// Short positions are opened through the session lifecycle, not here.
func (l Ledger) CanSell(symbol string, qty decimal.Decimal) bool {
	return l.Quantity(symbol).GreaterThanOrEqual(qty)
}

// Buy debits cost and credits shares. The caller is responsible for the
// solvency check; Buy itself never fails.
func (l Ledger) Buy(symbol string, price, qty decimal.Decimal) Ledger {
	cost := price.Mul(qty).Round(2)
	next := l.clone()
	next.Cash = l.Cash.Sub(cost).Round(2)
	next.setQuantity(symbol, l.Quantity(symbol).Add(qty))
	return next
}

// Sell credits proceeds and debits shares. Selling more than is held drives
// the holding negative, which is how the session lifecycle opens shorts.
func (l Ledger) Sell(symbol string, price, qty decimal.Decimal) Ledger {
	revenue := price.Mul(qty).Round(2)
	next := l.clone()
	next.Cash = l.Cash.Add(revenue).Round(2)
	next.setQuantity(symbol, l.Quantity(symbol).Sub(qty))
	return next
}

// EquityValue is the mark-to-market value of all holdings at the given
// prices. Symbols without a price contribute zero.
func (l Ledger) EquityValue(prices map[string]decimal.Decimal) decimal.Decimal {
	v := decimal.Zero
	for sym, qty := range l.Holdings {
		if price, ok := prices[sym]; ok {
			v = v.Add(price.Mul(qty))
		}
	}
	return v.Round(2)
}

// TotalEquity is cash plus equity value, rounded to cents.
func (l Ledger) TotalEquity(prices map[string]decimal.Decimal) decimal.Decimal {
	return l.Cash.Add(l.EquityValue(prices)).Round(2)
}

// setQuantity stores q under symbol, dropping the entry once it nets to
// within epsilon of zero.
func (l *Ledger) setQuantity(symbol string, q decimal.Decimal) {
	if q.Abs().LessThan(epsilon) {
		delete(l.Holdings, symbol)
		return
	}
	l.Holdings[symbol] = q
}

func (l Ledger) clone() Ledger {
	holdings := make(map[string]decimal.Decimal, len(l.Holdings))
	for k, v := range l.Holdings {
		holdings[k] = v
	}
	return Ledger{Cash: l.Cash, Holdings: holdings}
}
