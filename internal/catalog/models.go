package catalog

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Material is a reference entry for a tradable county material
// (road base, caliche, limestone, hot mix, ...).
type Material struct {
	ID          uuid.UUID `json:"id" db:"id"`
	Code        string    `json:"code" db:"code"`
	Name        string    `json:"name" db:"name"`
	Unit        string    `json:"unit" db:"unit"`
	Category    *string   `json:"category,omitempty" db:"category"`
	TxDOTSpec   *string   `json:"txdot_spec,omitempty" db:"txdot_spec"`
	Description *string   `json:"description,omitempty" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
}

type Supplier struct {
	ID          uuid.UUID        `json:"id" db:"id"`
	Name        string           `json:"name" db:"name"`
	ContactName string           `json:"contact_name" db:"contact_name"`
	Email       string           `json:"email" db:"email"`
	Phone       *string          `json:"phone,omitempty" db:"phone"`
	Address     *string          `json:"address,omitempty" db:"address"`
	City        *string          `json:"city,omitempty" db:"city"`
	State       string           `json:"state" db:"state"`
	ZipCode     *string          `json:"zip_code,omitempty" db:"zip_code"`
	Rating      *decimal.Decimal `json:"rating,omitempty" db:"rating"`
	IsActive    bool             `json:"is_active" db:"is_active"`
	CreatedAt   time.Time        `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" db:"updated_at"`
}

// InventoryItem is one supplier's stock position in one material.
type InventoryItem struct {
	ID                  uuid.UUID       `json:"id" db:"id"`
	SupplierID          uuid.UUID       `json:"supplier_id" db:"supplier_id"`
	MaterialID          uuid.UUID       `json:"material_id" db:"material_id"`
	QuantityTons        decimal.Decimal `json:"quantity_tons" db:"quantity_tons"`
	MinimumOrderTons    decimal.Decimal `json:"minimum_order_tons" db:"minimum_order_tons"`
	DeliveryRadiusMiles int             `json:"delivery_radius_miles" db:"delivery_radius_miles"`
	UpdatedAt           time.Time       `json:"updated_at" db:"updated_at"`
}
