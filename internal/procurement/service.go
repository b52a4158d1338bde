package procurement

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bcmce/exchange-backend/internal/catalog"
)

var (
	ErrRequirementNotFound = errors.New("requirement not found")
	ErrBidNotFound         = errors.New("bid not found")
	ErrInvalidQuantity     = errors.New("invalid quantity")
	ErrInvalidPrice        = errors.New("invalid price")
	ErrBiddingClosed       = errors.New("bidding closed for requirement")
	ErrInvalidTransition   = errors.New("invalid status transition")
)

type Service interface {
	PostRequirement(ctx context.Context, req PostRequirementRequest) (*Requirement, error)
	GetRequirement(ctx context.Context, id uuid.UUID) (*Requirement, error)
	ListRequirements(ctx context.Context, status *RequirementStatus) ([]Requirement, error)
	CloseRequirement(ctx context.Context, id uuid.UUID) error

	SubmitBid(ctx context.Context, req SubmitBidRequest) (*Bid, error)
	ListBids(ctx context.Context, requirementID uuid.UUID) ([]Bid, error)
	AcceptBid(ctx context.Context, id uuid.UUID) (*Bid, error)
	RejectBid(ctx context.Context, id uuid.UUID) (*Bid, error)
	WithdrawBid(ctx context.Context, id uuid.UUID) (*Bid, error)
}

type PostRequirementRequest struct {
	CountyName          string           `json:"county_name"`
	Precinct            *int             `json:"precinct"`
	MaterialID          uuid.UUID        `json:"material_id" binding:"required"`
	QuantityTons        decimal.Decimal  `json:"quantity_tons" binding:"required"`
	DeliveryLocation    string           `json:"delivery_location" binding:"required"`
	RequiredBy          time.Time        `json:"required_by" binding:"required"`
	BudgetAllocated     *decimal.Decimal `json:"budget_allocated"`
	TxDOTSpecRequired   *string          `json:"txdot_spec_required"`
	SpecialRequirements *string          `json:"special_requirements"`
	BidDeadline         time.Time        `json:"bid_deadline" binding:"required"`
}

type SubmitBidRequest struct {
	RequirementID  uuid.UUID       `json:"requirement_id" binding:"required"`
	SupplierID     uuid.UUID       `json:"supplier_id" binding:"required"`
	QuantityTons   decimal.Decimal `json:"quantity_tons" binding:"required"`
	PricePerTon    decimal.Decimal `json:"price_per_ton" binding:"required"`
	DeliveryDate   time.Time       `json:"delivery_date" binding:"required"`
	DeliveryMethod string          `json:"delivery_method"`
	PaymentTerms   string          `json:"payment_terms"`
	Notes          *string         `json:"notes"`
}

type procurementService struct {
	repo    Repository
	catalog catalog.Service
	logger  *zap.Logger
}

func NewService(repo Repository, catalogSvc catalog.Service, logger *zap.Logger) Service {
	return &procurementService{repo: repo, catalog: catalogSvc, logger: logger}
}

func (s *procurementService) PostRequirement(ctx context.Context, req PostRequirementRequest) (*Requirement, error) {
	if req.QuantityTons.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s tons", ErrInvalidQuantity, req.QuantityTons)
	}
	if _, err := s.catalog.GetMaterial(ctx, req.MaterialID); err != nil {
		return nil, err
	}

	number, err := s.repo.NextRequirementNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate requirement number: %w", err)
	}

	county := req.CountyName
	if county == "" {
		county = "Bosque County"
	}

	requirement := &Requirement{
		ID:                  uuid.New(),
		RequirementNumber:   number,
		CountyName:          county,
		Precinct:            req.Precinct,
		MaterialID:          req.MaterialID,
		QuantityTons:        req.QuantityTons,
		DeliveryLocation:    req.DeliveryLocation,
		RequiredBy:          req.RequiredBy,
		BudgetAllocated:     req.BudgetAllocated,
		TxDOTSpecRequired:   req.TxDOTSpecRequired,
		SpecialRequirements: req.SpecialRequirements,
		Status:              RequirementOpen,
		PostedAt:            time.Now().UTC(),
		BidDeadline:         req.BidDeadline,
	}

	if err := s.repo.CreateRequirement(ctx, requirement); err != nil {
		return nil, fmt.Errorf("failed to create requirement: %w", err)
	}

	s.logger.Info("Requirement posted",
		zap.String("requirement_number", requirement.RequirementNumber),
		zap.String("county", requirement.CountyName))
	return requirement, nil
}

func (s *procurementService) GetRequirement(ctx context.Context, id uuid.UUID) (*Requirement, error) {
	req, err := s.repo.GetRequirementByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if req == nil {
		return nil, fmt.Errorf("%w: %s", ErrRequirementNotFound, id)
	}
	return req, nil
}

func (s *procurementService) ListRequirements(ctx context.Context, status *RequirementStatus) ([]Requirement, error) {
	return s.repo.ListRequirements(ctx, status)
}

func (s *procurementService) CloseRequirement(ctx context.Context, id uuid.UUID) error {
	req, err := s.GetRequirement(ctx, id)
	if err != nil {
		return err
	}

	ok, err := s.repo.UpdateRequirementStatus(ctx, id, req.Status, RequirementClosed)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: requirement %s", ErrInvalidTransition, id)
	}
	return nil
}

func (s *procurementService) SubmitBid(ctx context.Context, req SubmitBidRequest) (*Bid, error) {
	if req.QuantityTons.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s tons", ErrInvalidQuantity, req.QuantityTons)
	}
	if req.PricePerTon.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s per ton", ErrInvalidPrice, req.PricePerTon)
	}

	requirement, err := s.GetRequirement(ctx, req.RequirementID)
	if err != nil {
		return nil, err
	}
	if requirement.Status != RequirementOpen && requirement.Status != RequirementBidding {
		return nil, fmt.Errorf("%w: status %s", ErrBiddingClosed, requirement.Status)
	}
	if time.Now().UTC().After(requirement.BidDeadline) {
		return nil, fmt.Errorf("%w: deadline was %s", ErrBiddingClosed, requirement.BidDeadline.Format(time.RFC3339))
	}
	if _, err := s.catalog.GetSupplier(ctx, req.SupplierID); err != nil {
		return nil, err
	}

	number, err := s.repo.NextBidNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate bid number: %w", err)
	}

	deliveryMethod := req.DeliveryMethod
	if deliveryMethod == "" {
		deliveryMethod = "Supplier Delivery"
	}
	paymentTerms := req.PaymentTerms
	if paymentTerms == "" {
		paymentTerms = "Net 30"
	}

	bid := &Bid{
		ID:             uuid.New(),
		BidNumber:      number,
		RequirementID:  requirement.ID,
		SupplierID:     req.SupplierID,
		MaterialID:     requirement.MaterialID,
		QuantityTons:   req.QuantityTons,
		PricePerTon:    req.PricePerTon,
		TotalPrice:     req.PricePerTon.Mul(req.QuantityTons),
		DeliveryDate:   req.DeliveryDate,
		DeliveryMethod: deliveryMethod,
		PaymentTerms:   paymentTerms,
		Notes:          req.Notes,
		Status:         BidPending,
		SubmittedAt:    time.Now().UTC(),
	}

	if err := s.repo.CreateBid(ctx, bid); err != nil {
		return nil, fmt.Errorf("failed to create bid: %w", err)
	}

	// First bid moves the requirement from open to bidding.
	if requirement.Status == RequirementOpen {
		if _, err := s.repo.UpdateRequirementStatus(ctx, requirement.ID, RequirementOpen, RequirementBidding); err != nil {
			s.logger.Warn("Failed to move requirement to bidding",
				zap.String("requirement_id", requirement.ID.String()), zap.Error(err))
		}
	}

	s.logger.Info("Bid submitted",
		zap.String("bid_number", bid.BidNumber),
		zap.String("requirement_number", requirement.RequirementNumber),
		zap.String("total_price", bid.TotalPrice.String()))
	return bid, nil
}

func (s *procurementService) ListBids(ctx context.Context, requirementID uuid.UUID) ([]Bid, error) {
	return s.repo.ListBidsByRequirement(ctx, requirementID)
}

func (s *procurementService) AcceptBid(ctx context.Context, id uuid.UUID) (*Bid, error) {
	bid, err := s.getBid(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.UpdateBidStatus(ctx, id, BidPending, BidAccepted)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: bid is %s", ErrInvalidTransition, bid.Status)
	}
	bid.Status = BidAccepted

	// Accepting a bid awards the requirement; losing bids stay pending
	// until explicitly rejected.
	if _, err := s.repo.UpdateRequirementStatus(ctx, bid.RequirementID, RequirementBidding, RequirementAwarded); err != nil {
		s.logger.Warn("Failed to award requirement",
			zap.String("requirement_id", bid.RequirementID.String()), zap.Error(err))
	}

	s.logger.Info("Bid accepted", zap.String("bid_number", bid.BidNumber))
	return bid, nil
}

func (s *procurementService) RejectBid(ctx context.Context, id uuid.UUID) (*Bid, error) {
	return s.transitionBid(ctx, id, BidRejected)
}

func (s *procurementService) WithdrawBid(ctx context.Context, id uuid.UUID) (*Bid, error) {
	return s.transitionBid(ctx, id, BidWithdrawn)
}

func (s *procurementService) transitionBid(ctx context.Context, id uuid.UUID, to BidStatus) (*Bid, error) {
	bid, err := s.getBid(ctx, id)
	if err != nil {
		return nil, err
	}

	ok, err := s.repo.UpdateBidStatus(ctx, id, BidPending, to)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: bid is %s", ErrInvalidTransition, bid.Status)
	}
	bid.Status = to
	return bid, nil
}

func (s *procurementService) getBid(ctx context.Context, id uuid.UUID) (*Bid, error) {
	bid, err := s.repo.GetBidByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bid == nil {
		return nil, fmt.Errorf("%w: %s", ErrBidNotFound, id)
	}
	return bid, nil
}
