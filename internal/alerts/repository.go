package alerts

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateAlert(ctx context.Context, alert *Alert) (bool, error)
	GetAlertByID(ctx context.Context, id uuid.UUID) (*Alert, error)
	ListAlerts(ctx context.Context, limit int) ([]Alert, error)
	ListUnsent(ctx context.Context) ([]Alert, error)
	MarkSent(ctx context.Context, id uuid.UUID) error
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// CreateAlert reports false when the dedupe key already exists.
func (r *postgresRepository) CreateAlert(ctx context.Context, alert *Alert) (bool, error) {
	query := `
		INSERT INTO alerts (
			id, kind, severity, contract_id, material_id, dedupe_key,
			title, message, details, sent, triggered_at
		) VALUES (
			:id, :kind, :severity, :contract_id, :material_id, :dedupe_key,
			:title, :message, :details, :sent, :triggered_at
		) ON CONFLICT (dedupe_key) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, alert)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *postgresRepository) GetAlertByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	var alert Alert
	err := r.db.GetContext(ctx, &alert, "SELECT * FROM alerts WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &alert, err
}

func (r *postgresRepository) ListAlerts(ctx context.Context, limit int) ([]Alert, error) {
	if limit <= 0 {
		limit = 100
	}
	var alerts []Alert
	err := r.db.SelectContext(ctx, &alerts,
		"SELECT * FROM alerts ORDER BY triggered_at DESC LIMIT $1", limit)
	return alerts, err
}

func (r *postgresRepository) ListUnsent(ctx context.Context) ([]Alert, error) {
	var alerts []Alert
	err := r.db.SelectContext(ctx, &alerts,
		"SELECT * FROM alerts WHERE sent = FALSE ORDER BY triggered_at")
	return alerts, err
}

func (r *postgresRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx, "UPDATE alerts SET sent = TRUE WHERE id = $1", id)
	return err
}
