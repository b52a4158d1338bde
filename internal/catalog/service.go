package catalog

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

var (
	ErrUnknownMaterial = errors.New("unknown material")
	ErrUnknownSupplier = errors.New("unknown supplier")
)

type Service interface {
	CreateMaterial(ctx context.Context, req CreateMaterialRequest) (*Material, error)
	GetMaterial(ctx context.Context, id uuid.UUID) (*Material, error)
	GetMaterialByCode(ctx context.Context, code string) (*Material, error)
	ListMaterials(ctx context.Context) ([]Material, error)

	CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*Supplier, error)
	GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error)
	ListSuppliers(ctx context.Context, activeOnly bool) ([]Supplier, error)
	DeactivateSupplier(ctx context.Context, id uuid.UUID) error

	UpdateInventory(ctx context.Context, req UpdateInventoryRequest) (*InventoryItem, error)
	ListSupplierInventory(ctx context.Context, supplierID uuid.UUID) ([]InventoryItem, error)
	ListMaterialInventory(ctx context.Context, materialID uuid.UUID) ([]InventoryItem, error)
}

type CreateMaterialRequest struct {
	Code        string  `json:"code" binding:"required"`
	Name        string  `json:"name" binding:"required"`
	Unit        string  `json:"unit"`
	Category    *string `json:"category"`
	TxDOTSpec   *string `json:"txdot_spec"`
	Description *string `json:"description"`
}

type CreateSupplierRequest struct {
	Name        string  `json:"name" binding:"required"`
	ContactName string  `json:"contact_name" binding:"required"`
	Email       string  `json:"email" binding:"required,email"`
	Phone       *string `json:"phone"`
	Address     *string `json:"address"`
	City        *string `json:"city"`
	State       string  `json:"state"`
	ZipCode     *string `json:"zip_code"`
}

type UpdateInventoryRequest struct {
	SupplierID          uuid.UUID       `json:"supplier_id" binding:"required"`
	MaterialID          uuid.UUID       `json:"material_id" binding:"required"`
	QuantityTons        decimal.Decimal `json:"quantity_tons"`
	MinimumOrderTons    decimal.Decimal `json:"minimum_order_tons"`
	DeliveryRadiusMiles int             `json:"delivery_radius_miles"`
}

type catalogService struct {
	repo   Repository
	logger *zap.Logger
}

func NewService(repo Repository, logger *zap.Logger) Service {
	return &catalogService{repo: repo, logger: logger}
}

func (s *catalogService) CreateMaterial(ctx context.Context, req CreateMaterialRequest) (*Material, error) {
	unit := req.Unit
	if unit == "" {
		unit = "TON"
	}

	m := &Material{
		ID:          uuid.New(),
		Code:        req.Code,
		Name:        req.Name,
		Unit:        unit,
		Category:    req.Category,
		TxDOTSpec:   req.TxDOTSpec,
		Description: req.Description,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateMaterial(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create material: %w", err)
	}

	s.logger.Info("Material created", zap.String("code", m.Code), zap.String("id", m.ID.String()))
	return m, nil
}

func (s *catalogService) GetMaterial(ctx context.Context, id uuid.UUID) (*Material, error) {
	m, err := s.repo.GetMaterialByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMaterial, id)
	}
	return m, nil
}

func (s *catalogService) GetMaterialByCode(ctx context.Context, code string) (*Material, error) {
	m, err := s.repo.GetMaterialByCode(ctx, code)
	if err != nil {
		return nil, err
	}
	if m == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownMaterial, code)
	}
	return m, nil
}

func (s *catalogService) ListMaterials(ctx context.Context) ([]Material, error) {
	return s.repo.ListMaterials(ctx)
}

func (s *catalogService) CreateSupplier(ctx context.Context, req CreateSupplierRequest) (*Supplier, error) {
	state := req.State
	if state == "" {
		state = "TX"
	}

	sup := &Supplier{
		ID:          uuid.New(),
		Name:        req.Name,
		ContactName: req.ContactName,
		Email:       req.Email,
		Phone:       req.Phone,
		Address:     req.Address,
		City:        req.City,
		State:       state,
		ZipCode:     req.ZipCode,
		IsActive:    true,
		CreatedAt:   time.Now().UTC(),
		UpdatedAt:   time.Now().UTC(),
	}

	if err := s.repo.CreateSupplier(ctx, sup); err != nil {
		return nil, fmt.Errorf("failed to create supplier: %w", err)
	}

	s.logger.Info("Supplier created", zap.String("name", sup.Name), zap.String("id", sup.ID.String()))
	return sup, nil
}

func (s *catalogService) GetSupplier(ctx context.Context, id uuid.UUID) (*Supplier, error) {
	sup, err := s.repo.GetSupplierByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if sup == nil {
		return nil, fmt.Errorf("%w: %s", ErrUnknownSupplier, id)
	}
	return sup, nil
}

func (s *catalogService) ListSuppliers(ctx context.Context, activeOnly bool) ([]Supplier, error) {
	return s.repo.ListSuppliers(ctx, activeOnly)
}

func (s *catalogService) DeactivateSupplier(ctx context.Context, id uuid.UUID) error {
	sup, err := s.GetSupplier(ctx, id)
	if err != nil {
		return err
	}
	sup.IsActive = false
	return s.repo.UpdateSupplier(ctx, sup)
}

func (s *catalogService) UpdateInventory(ctx context.Context, req UpdateInventoryRequest) (*InventoryItem, error) {
	if _, err := s.GetSupplier(ctx, req.SupplierID); err != nil {
		return nil, err
	}
	if _, err := s.GetMaterial(ctx, req.MaterialID); err != nil {
		return nil, err
	}

	item := &InventoryItem{
		ID:                  uuid.New(),
		SupplierID:          req.SupplierID,
		MaterialID:          req.MaterialID,
		QuantityTons:        req.QuantityTons,
		MinimumOrderTons:    req.MinimumOrderTons,
		DeliveryRadiusMiles: req.DeliveryRadiusMiles,
		UpdatedAt:           time.Now().UTC(),
	}

	if err := s.repo.UpsertInventory(ctx, item); err != nil {
		return nil, fmt.Errorf("failed to update inventory: %w", err)
	}
	return item, nil
}

func (s *catalogService) ListSupplierInventory(ctx context.Context, supplierID uuid.UUID) ([]InventoryItem, error) {
	return s.repo.ListInventoryBySupplier(ctx, supplierID)
}

func (s *catalogService) ListMaterialInventory(ctx context.Context, materialID uuid.UUID) ([]InventoryItem, error) {
	return s.repo.ListInventoryByMaterial(ctx, materialID)
}
