package domain

import "github.com/shopspring/decimal"

// Nutrient is a nutrition fact as printed on the source menu. Values are kept
// verbatim since they are only ever displayed.
type Nutrient struct {
	Amount     string
	DailyValue string
}

// MenuItem is one dish or drink of the catalog. Immutable after load.
type MenuItem struct {
	Category      string
	Name          string
	ServingSize   string
	Price         decimal.Decimal
	Calories      int
	TotalFat      Nutrient
	Sodium        Nutrient
	Carbohydrates Nutrient
	Protein       Nutrient
}

// DeliveryArea is a location label where orders are delivered.
type DeliveryArea string
