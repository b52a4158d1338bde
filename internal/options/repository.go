package options

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateContract(ctx context.Context, c *Contract) error
	GetContractByID(ctx context.Context, id uuid.UUID) (*Contract, error)
	ListByBuyer(ctx context.Context, buyerID string, status *Status) ([]Contract, error)
	ListActive(ctx context.Context) ([]Contract, error)
	ListActiveExpiringBefore(ctx context.Context, cutoff time.Time) ([]Contract, error)

	// Status transitions are single conditional updates gated on the row
	// still being active. They return false when another writer won.
	MarkExercised(ctx context.Context, id uuid.UUID, at time.Time) (bool, error)
	MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error)
	MarkExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error)

	NextContractNumber(ctx context.Context) (string, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateContract(ctx context.Context, c *Contract) error {
	query := `
		INSERT INTO option_contracts (
			id, contract_number, material_id, supplier_id, buyer_id, buyer_name, buyer_email,
			strike_price, quantity_tons, premium_paid, duration_days, status, created_at, expires_at
		) VALUES (
			:id, :contract_number, :material_id, :supplier_id, :buyer_id, :buyer_name, :buyer_email,
			:strike_price, :quantity_tons, :premium_paid, :duration_days, :status, :created_at, :expires_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, c)
	return err
}

func (r *postgresRepository) GetContractByID(ctx context.Context, id uuid.UUID) (*Contract, error) {
	var c Contract
	err := r.db.GetContext(ctx, &c, "SELECT * FROM option_contracts WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &c, err
}

func (r *postgresRepository) ListByBuyer(ctx context.Context, buyerID string, status *Status) ([]Contract, error) {
	var contracts []Contract
	query := "SELECT * FROM option_contracts WHERE buyer_id = $1"
	args := []interface{}{buyerID}

	if status != nil {
		query += fmt.Sprintf(" AND status = $%d", len(args)+1)
		args = append(args, *status)
	}
	query += " ORDER BY created_at DESC"

	err := r.db.SelectContext(ctx, &contracts, query, args...)
	return contracts, err
}

func (r *postgresRepository) ListActive(ctx context.Context) ([]Contract, error) {
	var contracts []Contract
	err := r.db.SelectContext(ctx, &contracts,
		"SELECT * FROM option_contracts WHERE status = 'active' ORDER BY expires_at")
	return contracts, err
}

func (r *postgresRepository) ListActiveExpiringBefore(ctx context.Context, cutoff time.Time) ([]Contract, error) {
	var contracts []Contract
	err := r.db.SelectContext(ctx, &contracts,
		"SELECT * FROM option_contracts WHERE status = 'active' AND expires_at < $1 ORDER BY expires_at",
		cutoff)
	return contracts, err
}

func (r *postgresRepository) MarkExercised(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE option_contracts
		 SET status = 'exercised', exercised_at = $2
		 WHERE id = $1 AND status = 'active'`,
		id, at)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *postgresRepository) MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE option_contracts
		 SET status = 'cancelled'
		 WHERE id = $1 AND status = 'active'`,
		id)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *postgresRepository) MarkExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		`UPDATE option_contracts
		 SET status = 'expired'
		 WHERE id = $1 AND status = 'active' AND expires_at < $2`,
		id, now)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *postgresRepository) NextContractNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := r.db.GetContext(ctx, &seq, "SELECT nextval('contract_number_seq')"); err != nil {
		return "", err
	}
	return fmt.Sprintf("OPT-%d-%06d", time.Now().UTC().Year(), seq), nil
}
