package pricing

import (
	"context"
	"database/sql"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateObservation(ctx context.Context, obs *PriceObservation) error
	GetLatestObservation(ctx context.Context, materialID uuid.UUID) (*PriceObservation, error)
	GetLatestBySupplier(ctx context.Context, materialID, supplierID uuid.UUID) (*PriceObservation, error)
	GetPreviousBySupplier(ctx context.Context, materialID, supplierID uuid.UUID, before time.Time) (*PriceObservation, error)
	ListObservations(ctx context.Context, materialID uuid.UUID, since time.Time) ([]PriceObservation, error)
	ListLatestPerMaterial(ctx context.Context) ([]PriceObservation, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateObservation(ctx context.Context, obs *PriceObservation) error {
	query := `
		INSERT INTO price_observations (
			id, material_id, supplier_id, spot_price, quantity_available, source, observed_at
		) VALUES (
			:id, :material_id, :supplier_id, :spot_price, :quantity_available, :source, :observed_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, obs)
	return err
}

func (r *postgresRepository) GetLatestObservation(ctx context.Context, materialID uuid.UUID) (*PriceObservation, error) {
	var obs PriceObservation
	err := r.db.GetContext(ctx, &obs,
		"SELECT * FROM price_observations WHERE material_id = $1 ORDER BY observed_at DESC LIMIT 1",
		materialID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &obs, err
}

func (r *postgresRepository) GetLatestBySupplier(ctx context.Context, materialID, supplierID uuid.UUID) (*PriceObservation, error) {
	var obs PriceObservation
	err := r.db.GetContext(ctx, &obs,
		`SELECT * FROM price_observations
		 WHERE material_id = $1 AND supplier_id = $2
		 ORDER BY observed_at DESC LIMIT 1`,
		materialID, supplierID)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &obs, err
}

func (r *postgresRepository) GetPreviousBySupplier(ctx context.Context, materialID, supplierID uuid.UUID, before time.Time) (*PriceObservation, error) {
	var obs PriceObservation
	err := r.db.GetContext(ctx, &obs,
		`SELECT * FROM price_observations
		 WHERE material_id = $1 AND supplier_id = $2 AND observed_at < $3
		 ORDER BY observed_at DESC LIMIT 1`,
		materialID, supplierID, before)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &obs, err
}

func (r *postgresRepository) ListObservations(ctx context.Context, materialID uuid.UUID, since time.Time) ([]PriceObservation, error) {
	var observations []PriceObservation
	err := r.db.SelectContext(ctx, &observations,
		`SELECT * FROM price_observations
		 WHERE material_id = $1 AND observed_at >= $2
		 ORDER BY observed_at DESC`,
		materialID, since)
	return observations, err
}

func (r *postgresRepository) ListLatestPerMaterial(ctx context.Context) ([]PriceObservation, error) {
	var observations []PriceObservation
	err := r.db.SelectContext(ctx, &observations,
		`SELECT DISTINCT ON (material_id) *
		 FROM price_observations
		 ORDER BY material_id, observed_at DESC`)
	return observations, err
}
