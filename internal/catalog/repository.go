package catalog

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	CreateMaterial(ctx context.Context, m *Material) error
	GetMaterialByID(ctx context.Context, id uuid.UUID) (*Material, error)
	GetMaterialByCode(ctx context.Context, code string) (*Material, error)
	ListMaterials(ctx context.Context) ([]Material, error)

	CreateSupplier(ctx context.Context, s *Supplier) error
	GetSupplierByID(ctx context.Context, id uuid.UUID) (*Supplier, error)
	ListSuppliers(ctx context.Context, activeOnly bool) ([]Supplier, error)
	UpdateSupplier(ctx context.Context, s *Supplier) error

	UpsertInventory(ctx context.Context, item *InventoryItem) error
	ListInventoryBySupplier(ctx context.Context, supplierID uuid.UUID) ([]InventoryItem, error)
	ListInventoryByMaterial(ctx context.Context, materialID uuid.UUID) ([]InventoryItem, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

func (r *postgresRepository) CreateMaterial(ctx context.Context, m *Material) error {
	query := `
		INSERT INTO materials (
			id, code, name, unit, category, txdot_spec, description
		) VALUES (
			:id, :code, :name, :unit, :category, :txdot_spec, :description
		)`
	_, err := r.db.NamedExecContext(ctx, query, m)
	return err
}

func (r *postgresRepository) GetMaterialByID(ctx context.Context, id uuid.UUID) (*Material, error) {
	var m Material
	err := r.db.GetContext(ctx, &m, "SELECT * FROM materials WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &m, err
}

func (r *postgresRepository) GetMaterialByCode(ctx context.Context, code string) (*Material, error) {
	var m Material
	err := r.db.GetContext(ctx, &m, "SELECT * FROM materials WHERE code = $1", code)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &m, err
}

func (r *postgresRepository) ListMaterials(ctx context.Context) ([]Material, error) {
	var materials []Material
	err := r.db.SelectContext(ctx, &materials, "SELECT * FROM materials ORDER BY code")
	return materials, err
}

func (r *postgresRepository) CreateSupplier(ctx context.Context, s *Supplier) error {
	query := `
		INSERT INTO suppliers (
			id, name, contact_name, email, phone, address, city, state, zip_code, rating, is_active
		) VALUES (
			:id, :name, :contact_name, :email, :phone, :address, :city, :state, :zip_code, :rating, :is_active
		)`
	_, err := r.db.NamedExecContext(ctx, query, s)
	return err
}

func (r *postgresRepository) GetSupplierByID(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	var s Supplier
	err := r.db.GetContext(ctx, &s, "SELECT * FROM suppliers WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &s, err
}

func (r *postgresRepository) ListSuppliers(ctx context.Context, activeOnly bool) ([]Supplier, error) {
	var suppliers []Supplier
	query := "SELECT * FROM suppliers"
	if activeOnly {
		query += " WHERE is_active = TRUE"
	}
	query += " ORDER BY name"
	err := r.db.SelectContext(ctx, &suppliers, query)
	return suppliers, err
}

func (r *postgresRepository) UpdateSupplier(ctx context.Context, s *Supplier) error {
	query := `
		UPDATE suppliers SET
			name = :name,
			contact_name = :contact_name,
			email = :email,
			phone = :phone,
			address = :address,
			city = :city,
			state = :state,
			zip_code = :zip_code,
			rating = :rating,
			is_active = :is_active,
			updated_at = now()
		WHERE id = :id`
	_, err := r.db.NamedExecContext(ctx, query, s)
	return err
}

func (r *postgresRepository) UpsertInventory(ctx context.Context, item *InventoryItem) error {
	query := `
		INSERT INTO material_inventory (
			id, supplier_id, material_id, quantity_tons, minimum_order_tons, delivery_radius_miles
		) VALUES (
			:id, :supplier_id, :material_id, :quantity_tons, :minimum_order_tons, :delivery_radius_miles
		)
		ON CONFLICT (supplier_id, material_id) DO UPDATE SET
			quantity_tons = EXCLUDED.quantity_tons,
			minimum_order_tons = EXCLUDED.minimum_order_tons,
			delivery_radius_miles = EXCLUDED.delivery_radius_miles,
			updated_at = now()`
	_, err := r.db.NamedExecContext(ctx, query, item)
	return err
}

func (r *postgresRepository) ListInventoryBySupplier(ctx context.Context, supplierID uuid.UUID) ([]InventoryItem, error) {
	var items []InventoryItem
	err := r.db.SelectContext(ctx, &items, "SELECT * FROM material_inventory WHERE supplier_id = $1", supplierID)
	return items, err
}

func (r *postgresRepository) ListInventoryByMaterial(ctx context.Context, materialID uuid.UUID) ([]InventoryItem, error) {
	var items []InventoryItem
	err := r.db.SelectContext(ctx, &items, "SELECT * FROM material_inventory WHERE material_id = $1", materialID)
	return items, err
}
