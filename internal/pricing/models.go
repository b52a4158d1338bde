package pricing

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// PriceObservation is one append-only spot price report from a supplier feed.
type PriceObservation struct {
	ID                uuid.UUID        `json:"id" db:"id"`
	MaterialID        uuid.UUID        `json:"material_id" db:"material_id"`
	SupplierID        uuid.UUID        `json:"supplier_id" db:"supplier_id"`
	SpotPrice         decimal.Decimal  `json:"spot_price" db:"spot_price"`
	QuantityAvailable *decimal.Decimal `json:"quantity_available,omitempty" db:"quantity_available"`
	Source            string           `json:"source" db:"source"`
	ObservedAt        time.Time        `json:"observed_at" db:"observed_at"`
}

// OptionQuote is the per-ton price of one option tier at a given spot.
type OptionQuote struct {
	DurationDays     int             `json:"duration_days"`
	PremiumRate      decimal.Decimal `json:"premium_rate"`
	PremiumPerTon    decimal.Decimal `json:"premium_per_ton"`
	TotalPricePerTon decimal.Decimal `json:"total_price_per_ton"`
}

// MaterialQuote bundles the latest spot with option prices for every tier.
type MaterialQuote struct {
	MaterialID   uuid.UUID       `json:"material_id"`
	MaterialCode string          `json:"material_code"`
	SupplierID   uuid.UUID       `json:"supplier_id"`
	SpotPrice    decimal.Decimal `json:"spot_price"`
	ObservedAt   time.Time       `json:"observed_at"`
	OptionPrices []OptionQuote   `json:"option_prices"`
}

// PriceHistory summarizes observations for a material over a window.
type PriceHistory struct {
	MaterialID   uuid.UUID          `json:"material_id"`
	MaterialCode string             `json:"material_code"`
	Days         int                `json:"days"`
	MinPrice     decimal.Decimal    `json:"min_price"`
	MaxPrice     decimal.Decimal    `json:"max_price"`
	AvgPrice     decimal.Decimal    `json:"avg_price"`
	Observations []PriceObservation `json:"observations"`
}
