package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

// OrderLine is one priced entry of the cart.
type OrderLine struct {
	Category    string
	Name        string
	ServingSize string
	Quantity    int
	Price       decimal.Decimal
}

// OrderRecord is one confirmed line as written to the order log.
type OrderRecord struct {
	OrderID   string
	Item      string
	Quantity  int
	Price     decimal.Decimal
	Timestamp time.Time
}
