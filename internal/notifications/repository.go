package notifications

import (
	"context"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	LogDelivery(ctx context.Context, d *Delivery) error
	ListDeliveriesByAlert(ctx context.Context, alertID uuid.UUID) ([]Delivery, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) LogDelivery(ctx context.Context, d *Delivery) error {
	query := `
		INSERT INTO notification_deliveries (
			id, alert_id, recipient, channel, status, provider_id, error, delivered_at
		) VALUES (
			:id, :alert_id, :recipient, :channel, :status, :provider_id, :error, :delivered_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, d)
	return err
}

func (r *postgresRepository) ListDeliveriesByAlert(ctx context.Context, alertID uuid.UUID) ([]Delivery, error) {
	var deliveries []Delivery
	err := r.db.SelectContext(ctx, &deliveries,
		"SELECT * FROM notification_deliveries WHERE alert_id = $1 ORDER BY delivered_at DESC", alertID)
	return deliveries, err
}
