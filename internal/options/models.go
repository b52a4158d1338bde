package options

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Status string

const (
	StatusActive    Status = "active"
	StatusExercised Status = "exercised"
	StatusExpired   Status = "expired"
	StatusCancelled Status = "cancelled"
)

// Terminal reports whether no further transitions are allowed from s.
func (s Status) Terminal() bool {
	return s == StatusExercised || s == StatusExpired || s == StatusCancelled
}

// Contract locks a strike price for a quantity of material until expiry.
// PremiumPaid is the total premium for the whole contract, not per ton.
type Contract struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	ContractNumber string          `json:"contract_number" db:"contract_number"`
	MaterialID     uuid.UUID       `json:"material_id" db:"material_id"`
	SupplierID     uuid.UUID       `json:"supplier_id" db:"supplier_id"`
	BuyerID        string          `json:"buyer_id" db:"buyer_id"`
	BuyerName      string          `json:"buyer_name" db:"buyer_name"`
	BuyerEmail     string          `json:"buyer_email" db:"buyer_email"`
	StrikePrice    decimal.Decimal `json:"strike_price" db:"strike_price"`
	QuantityTons   decimal.Decimal `json:"quantity_tons" db:"quantity_tons"`
	PremiumPaid    decimal.Decimal `json:"premium_paid" db:"premium_paid"`
	DurationDays   int             `json:"duration_days" db:"duration_days"`
	Status         Status          `json:"status" db:"status"`
	CreatedAt      time.Time       `json:"created_at" db:"created_at"`
	ExpiresAt      time.Time       `json:"expires_at" db:"expires_at"`
	ExercisedAt    *time.Time      `json:"exercised_at,omitempty" db:"exercised_at"`
}

// IsExpired reports whether the contract window has passed. Exercising
// exactly at expires_at is still valid.
func (c *Contract) IsExpired(now time.Time) bool {
	return now.After(c.ExpiresAt)
}

// CurrentValue is the mark-to-market value against the given spot:
// (spot - strike) * quantity. Negative when spot is below strike.
func (c *Contract) CurrentValue(spot decimal.Decimal) decimal.Decimal {
	return spot.Sub(c.StrikePrice).Mul(c.QuantityTons)
}

// DaysToExpiry is the number of whole days until expires_at, floored at 0.
func (c *Contract) DaysToExpiry(now time.Time) int {
	if now.After(c.ExpiresAt) {
		return 0
	}
	return int(c.ExpiresAt.Sub(now).Hours() / 24)
}

// Valuation is a contract marked against the latest spot price.
type Valuation struct {
	ContractID   uuid.UUID       `json:"contract_id"`
	StrikePrice  decimal.Decimal `json:"strike_price"`
	SpotPrice    decimal.Decimal `json:"spot_price"`
	QuantityTons decimal.Decimal `json:"quantity_tons"`
	CurrentValue decimal.Decimal `json:"current_value"`
}

// PortfolioStats summarizes a buyer's active holdings.
type PortfolioStats struct {
	ActiveContracts    int             `json:"active_contracts"`
	TotalLockedValue   decimal.Decimal `json:"total_locked_value"`
	TotalCapacityTons  decimal.Decimal `json:"total_capacity_tons"`
	TotalPremiumPaid   decimal.Decimal `json:"total_premium_paid"`
	ExpiringWithinWeek int             `json:"expiring_within_week"`
}

// DeliveryDetails accompany an exercise request. Fulfillment itself is
// coordinated outside the exchange.
type DeliveryDetails struct {
	Location    string     `json:"delivery_location"`
	RequestedBy *time.Time `json:"requested_by,omitempty"`
	Notes       string     `json:"notes,omitempty"`
}

// BidEvaluation prices a county bid backed by a held option.
type BidEvaluation struct {
	ContractID         uuid.UUID       `json:"contract_id"`
	CostBasisPerTon    decimal.Decimal `json:"cost_basis_per_ton"`
	MarginPerTon       decimal.Decimal `json:"margin_per_ton"`
	SuggestedBidPerTon decimal.Decimal `json:"suggested_bid_per_ton"`
	QuantityTons       decimal.Decimal `json:"quantity_tons"`
	TotalBid           decimal.Decimal `json:"total_bid"`
	PotentialProfit    decimal.Decimal `json:"potential_profit"`
	MarketDeltaPerTon  decimal.Decimal `json:"market_delta_per_ton"`
}
