package alerts

import (
	"database/sql/driver"
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// JSONB is a custom type for PostgreSQL JSONB columns.
type JSONB map[string]interface{}

// Value implements the driver.Valuer interface
func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

// Scan implements the sql.Scanner interface
func (j *JSONB) Scan(value interface{}) error {
	if value == nil {
		*j = nil
		return nil
	}
	bytes, ok := value.([]byte)
	if !ok {
		return nil
	}
	return json.Unmarshal(bytes, j)
}

type Kind string

const (
	KindExpiryWarning Kind = "expiry_warning"
	KindPriceChange   Kind = "price_change"
)

type Severity string

const (
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
	SeverityCritical Severity = "critical"
)

// Alert is a triggered alert row. DedupeKey is unique so the same
// condition never fires twice.
type Alert struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Kind        Kind       `json:"kind" db:"kind"`
	Severity    Severity   `json:"severity" db:"severity"`
	ContractID  *uuid.UUID `json:"contract_id,omitempty" db:"contract_id"`
	MaterialID  *uuid.UUID `json:"material_id,omitempty" db:"material_id"`
	DedupeKey   string     `json:"dedupe_key" db:"dedupe_key"`
	Title       string     `json:"title" db:"title"`
	Message     string     `json:"message" db:"message"`
	Details     JSONB      `json:"details,omitempty" db:"details"`
	Sent        bool       `json:"sent" db:"sent"`
	TriggeredAt time.Time  `json:"triggered_at" db:"triggered_at"`
}
