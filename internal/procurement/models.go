package procurement

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type RequirementStatus string

const (
	RequirementOpen      RequirementStatus = "open"
	RequirementBidding   RequirementStatus = "bidding"
	RequirementAwarded   RequirementStatus = "awarded"
	RequirementClosed    RequirementStatus = "closed"
	RequirementCancelled RequirementStatus = "cancelled"
)

type BidStatus string

const (
	BidPending   BidStatus = "pending"
	BidAccepted  BidStatus = "accepted"
	BidRejected  BidStatus = "rejected"
	BidWithdrawn BidStatus = "withdrawn"
)

// Requirement is a county's posted demand for material.
type Requirement struct {
	ID                  uuid.UUID         `json:"id" db:"id"`
	RequirementNumber   string            `json:"requirement_number" db:"requirement_number"`
	CountyName          string            `json:"county_name" db:"county_name"`
	Precinct            *int              `json:"precinct,omitempty" db:"precinct"`
	MaterialID          uuid.UUID         `json:"material_id" db:"material_id"`
	QuantityTons        decimal.Decimal   `json:"quantity_tons" db:"quantity_tons"`
	DeliveryLocation    string            `json:"delivery_location" db:"delivery_location"`
	RequiredBy          time.Time         `json:"required_by" db:"required_by"`
	BudgetAllocated     *decimal.Decimal  `json:"budget_allocated,omitempty" db:"budget_allocated"`
	TxDOTSpecRequired   *string           `json:"txdot_spec_required,omitempty" db:"txdot_spec_required"`
	SpecialRequirements *string           `json:"special_requirements,omitempty" db:"special_requirements"`
	Status              RequirementStatus `json:"status" db:"status"`
	PostedAt            time.Time         `json:"posted_at" db:"posted_at"`
	BidDeadline         time.Time         `json:"bid_deadline" db:"bid_deadline"`
}

// Bid is a supplier's priced response to a requirement. TotalPrice is
// always derived as price_per_ton * quantity_tons, never taken from input.
type Bid struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	BidNumber      string          `json:"bid_number" db:"bid_number"`
	RequirementID  uuid.UUID       `json:"requirement_id" db:"requirement_id"`
	SupplierID     uuid.UUID       `json:"supplier_id" db:"supplier_id"`
	MaterialID     uuid.UUID       `json:"material_id" db:"material_id"`
	QuantityTons   decimal.Decimal `json:"quantity_tons" db:"quantity_tons"`
	PricePerTon    decimal.Decimal `json:"price_per_ton" db:"price_per_ton"`
	TotalPrice     decimal.Decimal `json:"total_price" db:"total_price"`
	DeliveryDate   time.Time       `json:"delivery_date" db:"delivery_date"`
	DeliveryMethod string          `json:"delivery_method" db:"delivery_method"`
	PaymentTerms   string          `json:"payment_terms" db:"payment_terms"`
	Notes          *string         `json:"notes,omitempty" db:"notes"`
	Status         BidStatus       `json:"status" db:"status"`
	SubmittedAt    time.Time       `json:"submitted_at" db:"submitted_at"`
}
