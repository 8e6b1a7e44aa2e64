package model

import "github.com/shopspring/decimal"

// Tick is one trade print in the canonical shape every adapter produces.
// Adapters are responsible for converting provider timestamp units and
// price fields into this form and for sorting by TimestampNS ascending;
// the engine re-verifies the ordering rather than trusting it.
type Tick struct {
	TimestampNS int64
	Price       decimal.Decimal
}
