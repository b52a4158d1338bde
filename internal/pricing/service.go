package pricing

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

var ErrNoPriceData = errors.New("no price data for material")

// ChangeListener is notified after each recorded observation that follows
// an earlier one for the same material and supplier. The alert engine
// implements this to watch for price swings.
type ChangeListener interface {
	ObservationRecorded(ctx context.Context, previous, current *PriceObservation)
}

type Service interface {
	RecordObservation(ctx context.Context, req RecordObservationRequest) (*PriceObservation, error)
	CurrentQuotes(ctx context.Context) ([]MaterialQuote, error)
	QuoteByCode(ctx context.Context, code string) (*MaterialQuote, error)
	History(ctx context.Context, code string, days int) (*PriceHistory, error)
	LatestSpot(ctx context.Context, materialID uuid.UUID) (decimal.Decimal, error)
}

type RecordObservationRequest struct {
	MaterialID        uuid.UUID        `json:"material_id" binding:"required"`
	SupplierID        uuid.UUID        `json:"supplier_id" binding:"required"`
	SpotPrice         decimal.Decimal  `json:"spot_price" binding:"required"`
	QuantityAvailable *decimal.Decimal `json:"quantity_available"`
	Source            string           `json:"source"`
}

type pricingService struct {
	repo     Repository
	catalog  catalog.Service
	engine   *Engine
	listener ChangeListener
	logger   *zap.Logger
}

func NewService(repo Repository, catalogSvc catalog.Service, engine *Engine, listener ChangeListener, logger *zap.Logger) Service {
	return &pricingService{
		repo:     repo,
		catalog:  catalogSvc,
		engine:   engine,
		listener: listener,
		logger:   logger,
	}
}

func (s *pricingService) RecordObservation(ctx context.Context, req RecordObservationRequest) (*PriceObservation, error) {
	if req.SpotPrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, req.SpotPrice)
	}

	if _, err := s.catalog.GetMaterial(ctx, req.MaterialID); err != nil {
		return nil, err
	}
	if _, err := s.catalog.GetSupplier(ctx, req.SupplierID); err != nil {
		return nil, err
	}

	previous, err := s.repo.GetLatestBySupplier(ctx, req.MaterialID, req.SupplierID)
	if err != nil {
		return nil, fmt.Errorf("failed to load previous observation: %w", err)
	}

	source := req.Source
	if source == "" {
		source = "supplier_feed"
	}

	obs := &PriceObservation{
		ID:                uuid.New(),
		MaterialID:        req.MaterialID,
		SupplierID:        req.SupplierID,
		SpotPrice:         req.SpotPrice,
		QuantityAvailable: req.QuantityAvailable,
		Source:            source,
		ObservedAt:        time.Now().UTC(),
	}

	if err := s.repo.CreateObservation(ctx, obs); err != nil {
		return nil, fmt.Errorf("failed to record observation: %w", err)
	}

	s.logger.Info("Price observation recorded",
		zap.String("material_id", obs.MaterialID.String()),
		zap.String("supplier_id", obs.SupplierID.String()),
		zap.String("spot_price", obs.SpotPrice.String()))

	if s.listener != nil && previous != nil {
		s.listener.ObservationRecorded(ctx, previous, obs)
	}

	return obs, nil
}

func (s *pricingService) CurrentQuotes(ctx context.Context) ([]MaterialQuote, error) {
	latest, err := s.repo.ListLatestPerMaterial(ctx)
	if err != nil {
		return nil, err
	}

	quotes := make([]MaterialQuote, 0, len(latest))
	for _, obs := range latest {
		q, err := s.buildQuote(ctx, &obs)
		if err != nil {
			s.logger.Warn("Skipping quote", zap.String("material_id", obs.MaterialID.String()), zap.Error(err))
			continue
		}
		quotes = append(quotes, *q)
	}
	return quotes, nil
}

func (s *pricingService) QuoteByCode(ctx context.Context, code string) (*MaterialQuote, error) {
	material, err := s.catalog.GetMaterialByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	obs, err := s.repo.GetLatestObservation(ctx, material.ID)
	if err != nil {
		return nil, err
	}
	if obs == nil {
		return nil, fmt.Errorf("%w: %s", ErrNoPriceData, code)
	}

	return s.buildQuote(ctx, obs)
}

func (s *pricingService) buildQuote(ctx context.Context, obs *PriceObservation) (*MaterialQuote, error) {
	material, err := s.catalog.GetMaterial(ctx, obs.MaterialID)
	if err != nil {
		return nil, err
	}

	optionPrices, err := s.engine.QuoteAll(obs.SpotPrice)
	if err != nil {
		return nil, err
	}

	return &MaterialQuote{
		MaterialID:   material.ID,
		MaterialCode: material.Code,
		SupplierID:   obs.SupplierID,
		SpotPrice:    obs.SpotPrice,
		ObservedAt:   obs.ObservedAt,
		OptionPrices: optionPrices,
	}, nil
}

func (s *pricingService) History(ctx context.Context, code string, days int) (*PriceHistory, error) {
	if days <= 0 {
		days = 30
	}

	material, err := s.catalog.GetMaterialByCode(ctx, code)
	if err != nil {
		return nil, err
	}

	since := time.Now().UTC().AddDate(0, 0, -days)
	observations, err := s.repo.ListObservations(ctx, material.ID, since)
	if err != nil {
		return nil, err
	}
	if len(observations) == 0 {
		return nil, fmt.Errorf("%w: %s", ErrNoPriceData, code)
	}

	min, max := observations[0].SpotPrice, observations[0].SpotPrice
	sum := decimal.Zero
	for _, obs := range observations {
		if obs.SpotPrice.LessThan(min) {
			min = obs.SpotPrice
		}
		if obs.SpotPrice.GreaterThan(max) {
			max = obs.SpotPrice
		}
		sum = sum.Add(obs.SpotPrice)
	}

	return &PriceHistory{
		MaterialID:   material.ID,
		MaterialCode: material.Code,
		Days:         days,
		MinPrice:     min,
		MaxPrice:     max,
		AvgPrice:     sum.Div(decimal.NewFromInt(int64(len(observations)))).Round(4),
		Observations: observations,
	}, nil
}

func (s *pricingService) LatestSpot(ctx context.Context, materialID uuid.UUID) (decimal.Decimal, error) {
	obs, err := s.repo.GetLatestObservation(ctx, materialID)
	if err != nil {
		return decimal.Zero, err
	}
	if obs == nil {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNoPriceData, materialID)
	}
	return obs.SpotPrice, nil
}
