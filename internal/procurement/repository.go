package procurement

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateRequirement(ctx context.Context, r *Requirement) error
	GetRequirementByID(ctx context.Context, id uuid.UUID) (*Requirement, error)
	ListRequirements(ctx context.Context, status *RequirementStatus) ([]Requirement, error)
	UpdateRequirementStatus(ctx context.Context, id uuid.UUID, from, to RequirementStatus) (bool, error)

	CreateBid(ctx context.Context, b *Bid) error
	GetBidByID(ctx context.Context, id uuid.UUID) (*Bid, error)
	ListBidsByRequirement(ctx context.Context, requirementID uuid.UUID) ([]Bid, error)
	ListBidsBySupplier(ctx context.Context, supplierID uuid.UUID) ([]Bid, error)
	UpdateBidStatus(ctx context.Context, id uuid.UUID, from, to BidStatus) (bool, error)

	NextRequirementNumber(ctx context.Context) (string, error)
	NextBidNumber(ctx context.Context) (string, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateRequirement(ctx context.Context, req *Requirement) error {
	query := `
		INSERT INTO requirements (
			id, requirement_number, county_name, precinct, material_id, quantity_tons,
			delivery_location, required_by, budget_allocated, txdot_spec_required,
			special_requirements, status, posted_at, bid_deadline
		) VALUES (
			:id, :requirement_number, :county_name, :precinct, :material_id, :quantity_tons,
			:delivery_location, :required_by, :budget_allocated, :txdot_spec_required,
			:special_requirements, :status, :posted_at, :bid_deadline
		)`
	_, err := r.db.NamedExecContext(ctx, query, req)
	return err
}

func (r *postgresRepository) GetRequirementByID(ctx context.Context, id uuid.UUID) (*Requirement, error) {
	var req Requirement
	err := r.db.GetContext(ctx, &req, "SELECT * FROM requirements WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &req, err
}

func (r *postgresRepository) ListRequirements(ctx context.Context, status *RequirementStatus) ([]Requirement, error) {
	var requirements []Requirement
	query := "SELECT * FROM requirements"
	var args []interface{}

	if status != nil {
		query += " WHERE status = $1"
		args = append(args, *status)
	}
	query += " ORDER BY posted_at DESC"

	err := r.db.SelectContext(ctx, &requirements, query, args...)
	return requirements, err
}

func (r *postgresRepository) UpdateRequirementStatus(ctx context.Context, id uuid.UUID, from, to RequirementStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE requirements SET status = $3 WHERE id = $1 AND status = $2",
		id, from, to)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *postgresRepository) CreateBid(ctx context.Context, b *Bid) error {
	query := `
		INSERT INTO bids (
			id, bid_number, requirement_id, supplier_id, material_id, quantity_tons,
			price_per_ton, total_price, delivery_date, delivery_method, payment_terms,
			notes, status, submitted_at
		) VALUES (
			:id, :bid_number, :requirement_id, :supplier_id, :material_id, :quantity_tons,
			:price_per_ton, :total_price, :delivery_date, :delivery_method, :payment_terms,
			:notes, :status, :submitted_at
		)`
	_, err := r.db.NamedExecContext(ctx, query, b)
	return err
}

func (r *postgresRepository) GetBidByID(ctx context.Context, id uuid.UUID) (*Bid, error) {
	var b Bid
	err := r.db.GetContext(ctx, &b, "SELECT * FROM bids WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &b, err
}

func (r *postgresRepository) ListBidsByRequirement(ctx context.Context, requirementID uuid.UUID) ([]Bid, error) {
	var bids []Bid
	err := r.db.SelectContext(ctx, &bids,
		"SELECT * FROM bids WHERE requirement_id = $1 ORDER BY price_per_ton", requirementID)
	return bids, err
}

func (r *postgresRepository) ListBidsBySupplier(ctx context.Context, supplierID uuid.UUID) ([]Bid, error) {
	var bids []Bid
	err := r.db.SelectContext(ctx, &bids,
		"SELECT * FROM bids WHERE supplier_id = $1 ORDER BY submitted_at DESC", supplierID)
	return bids, err
}

func (r *postgresRepository) UpdateBidStatus(ctx context.Context, id uuid.UUID, from, to BidStatus) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE bids SET status = $3 WHERE id = $1 AND status = $2",
		id, from, to)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *postgresRepository) NextRequirementNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := r.db.GetContext(ctx, &seq, "SELECT nextval('requirement_number_seq')"); err != nil {
		return "", err
	}
	return fmt.Sprintf("REQ-%d-%06d", time.Now().UTC().Year(), seq), nil
}

func (r *postgresRepository) NextBidNumber(ctx context.Context) (string, error) {
	var seq int64
	if err := r.db.GetContext(ctx, &seq, "SELECT nextval('bid_number_seq')"); err != nil {
		return "", err
	}
	return fmt.Sprintf("BID-%d-%06d", time.Now().UTC().Year(), seq), nil
}
