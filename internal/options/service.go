package options

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bcmce/exchange-backend/internal/catalog"
	"bcmce/exchange-backend/internal/pricing"
)

// Notifier receives contract lifecycle events. The notification service
// fans these out to email and websocket subscribers.
type Notifier interface {
	ContractPurchased(ctx context.Context, c *Contract)
	ContractExercised(ctx context.Context, c *Contract, delivery DeliveryDetails)
	ContractCancelled(ctx context.Context, c *Contract)
}

// ConfirmationPublisher renders and stores the contract confirmation
// document. Failures here never fail the purchase.
type ConfirmationPublisher interface {
	PublishConfirmation(ctx context.Context, c *Contract, materialName, supplierName string) error
}

type Service interface {
	Purchase(ctx context.Context, req PurchaseRequest) (*Contract, error)
	Get(ctx context.Context, id uuid.UUID) (*Contract, error)
	ListHoldings(ctx context.Context, buyerID string, status *Status) ([]Contract, error)
	Exercise(ctx context.Context, id uuid.UUID, delivery DeliveryDetails) (*Contract, error)
	Cancel(ctx context.Context, id uuid.UUID) (*Contract, error)
	EvaluateExpiry(ctx context.Context, id uuid.UUID, now time.Time) (*Contract, error)
	ExpireOverdue(ctx context.Context, now time.Time) (int, error)
	Valuation(ctx context.Context, id uuid.UUID) (*Valuation, error)
	PortfolioStats(ctx context.Context, buyerID string) (*PortfolioStats, error)
	EvaluateBid(ctx context.Context, req EvaluateBidRequest) (*BidEvaluation, error)
}

type PurchaseRequest struct {
	MaterialID   uuid.UUID       `json:"material_id" binding:"required"`
	SupplierID   uuid.UUID       `json:"supplier_id" binding:"required"`
	BuyerID      string          `json:"buyer_id" binding:"required"`
	BuyerName    string          `json:"buyer_name" binding:"required"`
	BuyerEmail   string          `json:"buyer_email" binding:"required,email"`
	QuantityTons decimal.Decimal `json:"quantity_tons" binding:"required"`
	DurationDays int             `json:"duration_days" binding:"required"`
}

type EvaluateBidRequest struct {
	ContractID      uuid.UUID       `json:"contract_id" binding:"required"`
	MarginPerTon    decimal.Decimal `json:"margin_per_ton"`
	QuantityNeeded  decimal.Decimal `json:"quantity_needed" binding:"required"`
	MarketSpotPrice decimal.Decimal `json:"market_spot_price"`
}

type optionService struct {
	repo          Repository
	catalog       catalog.Service
	pricing       pricing.Service
	engine        *pricing.Engine
	notifier      Notifier
	confirmations ConfirmationPublisher
	logger        *zap.Logger
	now           func() time.Time
}

func NewService(
	repo Repository,
	catalogSvc catalog.Service,
	pricingSvc pricing.Service,
	engine *pricing.Engine,
	notifier Notifier,
	confirmations ConfirmationPublisher,
	logger *zap.Logger,
) Service {
	return &optionService{
		repo:          repo,
		catalog:       catalogSvc,
		pricing:       pricingSvc,
		engine:        engine,
		notifier:      notifier,
		confirmations: confirmations,
		logger:        logger,
		now:           func() time.Time { return time.Now().UTC() },
	}
}

func (s *optionService) Purchase(ctx context.Context, req PurchaseRequest) (*Contract, error) {
	if req.QuantityTons.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s tons", ErrInvalidQuantity, req.QuantityTons)
	}

	material, err := s.catalog.GetMaterial(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}
	supplier, err := s.catalog.GetSupplier(ctx, req.SupplierID)
	if err != nil {
		return nil, err
	}

	spot, err := s.pricing.LatestSpot(ctx, req.MaterialID)
	if err != nil {
		return nil, err
	}

	// Strike locks at the spot price in effect at purchase time.
	quote, err := s.engine.Quote(spot, req.DurationDays)
	if err != nil {
		return nil, err
	}
	premiumTotal := quote.PremiumPerTon.Mul(req.QuantityTons)

	number, err := s.repo.NextContractNumber(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to allocate contract number: %w", err)
	}

	now := s.now()
	contract := &Contract{
		ID:             uuid.New(),
		ContractNumber: number,
		MaterialID:     material.ID,
		SupplierID:     supplier.ID,
		BuyerID:        req.BuyerID,
		BuyerName:      req.BuyerName,
		BuyerEmail:     req.BuyerEmail,
		StrikePrice:    spot,
		QuantityTons:   req.QuantityTons,
		PremiumPaid:    premiumTotal,
		DurationDays:   req.DurationDays,
		Status:         StatusActive,
		CreatedAt:      now,
		ExpiresAt:      now.AddDate(0, 0, req.DurationDays),
	}

	if err := s.repo.CreateContract(ctx, contract); err != nil {
		return nil, fmt.Errorf("failed to create contract: %w", err)
	}

	s.logger.Info("Option contract purchased",
		zap.String("contract_number", contract.ContractNumber),
		zap.String("buyer_id", contract.BuyerID),
		zap.String("strike_price", contract.StrikePrice.String()),
		zap.String("premium_paid", contract.PremiumPaid.String()),
		zap.Int("duration_days", contract.DurationDays))

	if s.notifier != nil {
		s.notifier.ContractPurchased(ctx, contract)
	}

	if s.confirmations != nil {
		go func(c Contract, materialName, supplierName string) {
			if err := s.confirmations.PublishConfirmation(context.Background(), &c, materialName, supplierName); err != nil {
				s.logger.Warn("Failed to publish contract confirmation",
					zap.String("contract_number", c.ContractNumber), zap.Error(err))
			}
		}(*contract, material.Name, supplier.Name)
	}

	return contract, nil
}

func (s *optionService) Get(ctx context.Context, id uuid.UUID) (*Contract, error) {
	contract, err := s.repo.GetContractByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract == nil {
		return nil, fmt.Errorf("%w: %s", ErrContractNotFound, id)
	}
	return contract, nil
}

func (s *optionService) ListHoldings(ctx context.Context, buyerID string, status *Status) ([]Contract, error) {
	return s.repo.ListByBuyer(ctx, buyerID, status)
}

func (s *optionService) Exercise(ctx context.Context, id uuid.UUID, delivery DeliveryDetails) (*Contract, error) {
	contract, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	now := s.now()
	if contract.Status != StatusActive {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, contract.Status)
	}
	if contract.IsExpired(now) {
		// Settle the row before reporting; the sweep may not have run yet.
		if _, err := s.repo.MarkExpired(ctx, id, now); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("%w: expired at %s", ErrExpiredContract, contract.ExpiresAt.Format(time.RFC3339))
	}

	ok, err := s.repo.MarkExercised(ctx, id, now)
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another writer won the transition; report the state it left behind.
		return nil, s.concurrentTransitionError(ctx, id)
	}

	contract.Status = StatusExercised
	contract.ExercisedAt = &now

	s.logger.Info("Option contract exercised",
		zap.String("contract_number", contract.ContractNumber),
		zap.String("delivery_location", delivery.Location))

	if s.notifier != nil {
		s.notifier.ContractExercised(ctx, contract, delivery)
	}

	return contract, nil
}

func (s *optionService) Cancel(ctx context.Context, id uuid.UUID) (*Contract, error) {
	contract, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	if contract.Status != StatusActive {
		return nil, fmt.Errorf("%w: %s", ErrInvalidState, contract.Status)
	}

	ok, err := s.repo.MarkCancelled(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, s.concurrentTransitionError(ctx, id)
	}

	contract.Status = StatusCancelled

	s.logger.Info("Option contract cancelled",
		zap.String("contract_number", contract.ContractNumber))

	if s.notifier != nil {
		s.notifier.ContractCancelled(ctx, contract)
	}

	return contract, nil
}

// concurrentTransitionError re-reads a contract after a lost conditional
// update and maps the winning state to a domain error.
func (s *optionService) concurrentTransitionError(ctx context.Context, id uuid.UUID) error {
	contract, err := s.repo.GetContractByID(ctx, id)
	if err != nil {
		return err
	}
	if contract == nil {
		return fmt.Errorf("%w: %s", ErrContractNotFound, id)
	}
	if contract.Status == StatusExpired {
		return fmt.Errorf("%w: expired at %s", ErrExpiredContract, contract.ExpiresAt.Format(time.RFC3339))
	}
	return fmt.Errorf("%w: %s", ErrInvalidState, contract.Status)
}

func (s *optionService) EvaluateExpiry(ctx context.Context, id uuid.UUID, now time.Time) (*Contract, error) {
	contract, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	if contract.Status != StatusActive || !contract.IsExpired(now) {
		return contract, nil
	}

	ok, err := s.repo.MarkExpired(ctx, id, now)
	if err != nil {
		return nil, err
	}
	if ok {
		contract.Status = StatusExpired
		s.logger.Info("Option contract expired",
			zap.String("contract_number", contract.ContractNumber),
			zap.Time("expired_at", contract.ExpiresAt))
		return contract, nil
	}

	// Lost the race; whatever won is the truth now.
	return s.Get(ctx, id)
}

func (s *optionService) ExpireOverdue(ctx context.Context, now time.Time) (int, error) {
	overdue, err := s.repo.ListActiveExpiringBefore(ctx, now)
	if err != nil {
		return 0, err
	}

	expired := 0
	for _, contract := range overdue {
		ok, err := s.repo.MarkExpired(ctx, contract.ID, now)
		if err != nil {
			s.logger.Error("Failed to expire contract",
				zap.String("contract_number", contract.ContractNumber), zap.Error(err))
			continue
		}
		if ok {
			expired++
		}
	}

	if expired > 0 {
		s.logger.Info("Expiry sweep completed", zap.Int("expired", expired))
	}
	return expired, nil
}

func (s *optionService) Valuation(ctx context.Context, id uuid.UUID) (*Valuation, error) {
	contract, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}

	spot, err := s.pricing.LatestSpot(ctx, contract.MaterialID)
	if err != nil {
		return nil, err
	}

	return &Valuation{
		ContractID:   contract.ID,
		StrikePrice:  contract.StrikePrice,
		SpotPrice:    spot,
		QuantityTons: contract.QuantityTons,
		CurrentValue: contract.CurrentValue(spot),
	}, nil
}

func (s *optionService) PortfolioStats(ctx context.Context, buyerID string) (*PortfolioStats, error) {
	active := StatusActive
	contracts, err := s.repo.ListByBuyer(ctx, buyerID, &active)
	if err != nil {
		return nil, err
	}

	now := s.now()
	stats := &PortfolioStats{
		TotalLockedValue:  decimal.Zero,
		TotalCapacityTons: decimal.Zero,
		TotalPremiumPaid:  decimal.Zero,
	}

	for _, c := range contracts {
		if c.IsExpired(now) {
			continue
		}
		stats.ActiveContracts++
		stats.TotalLockedValue = stats.TotalLockedValue.Add(c.StrikePrice.Mul(c.QuantityTons))
		stats.TotalCapacityTons = stats.TotalCapacityTons.Add(c.QuantityTons)
		stats.TotalPremiumPaid = stats.TotalPremiumPaid.Add(c.PremiumPaid)
		if c.DaysToExpiry(now) <= 7 {
			stats.ExpiringWithinWeek++
		}
	}

	return stats, nil
}

func (s *optionService) EvaluateBid(ctx context.Context, req EvaluateBidRequest) (*BidEvaluation, error) {
	contract, err := s.Get(ctx, req.ContractID)
	if err != nil {
		return nil, err
	}

	spot := req.MarketSpotPrice
	if spot.IsZero() {
		if latest, err := s.pricing.LatestSpot(ctx, contract.MaterialID); err == nil {
			spot = latest
		}
	}

	return EvaluateContractBid(contract, req.MarginPerTon, req.QuantityNeeded, spot)
}

// EvaluateContractBid computes the suggested bid over a held contract.
// Cost basis per ton is strike plus the premium spread over the contract
// quantity; the suggested bid adds the requested margin.
func EvaluateContractBid(contract *Contract, marginPerTon, quantityNeeded, marketSpot decimal.Decimal) (*BidEvaluation, error) {
	if contract.QuantityTons.IsZero() {
		return nil, fmt.Errorf("%w: %s", ErrZeroQuantity, contract.ID)
	}
	if marginPerTon.IsNegative() {
		return nil, fmt.Errorf("%w: %s", ErrInvalidMargin, marginPerTon)
	}
	if quantityNeeded.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s tons", ErrInvalidQuantity, quantityNeeded)
	}
	if quantityNeeded.GreaterThan(contract.QuantityTons) {
		return nil, fmt.Errorf("%w: need %s, contract holds %s",
			ErrQuantityExceeded, quantityNeeded, contract.QuantityTons)
	}

	costBasis := contract.StrikePrice.Add(contract.PremiumPaid.Div(contract.QuantityTons))
	suggested := costBasis.Add(marginPerTon)

	return &BidEvaluation{
		ContractID:         contract.ID,
		CostBasisPerTon:    costBasis,
		MarginPerTon:       marginPerTon,
		SuggestedBidPerTon: suggested,
		QuantityTons:       quantityNeeded,
		TotalBid:           suggested.Mul(quantityNeeded),
		PotentialProfit:    marginPerTon.Mul(quantityNeeded),
		MarketDeltaPerTon:  marketSpot.Sub(suggested),
	}, nil
}
