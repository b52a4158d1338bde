package options

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"bcmce/exchange-backend/internal/catalog"
	"bcmce/exchange-backend/internal/pricing"
)

// MockRepository is a mock implementation of the Repository interface
type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateContract(ctx context.Context, c *Contract) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockRepository) GetContractByID(ctx context.Context, id uuid.UUID) (*Contract, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Contract), args.Error(1)
}

func (m *MockRepository) ListByBuyer(ctx context.Context, buyerID string, status *Status) ([]Contract, error) {
	args := m.Called(ctx, buyerID, status)
	return args.Get(0).([]Contract), args.Error(1)
}

func (m *MockRepository) ListActive(ctx context.Context) ([]Contract, error) {
	args := m.Called(ctx)
	return args.Get(0).([]Contract), args.Error(1)
}

func (m *MockRepository) ListActiveExpiringBefore(ctx context.Context, cutoff time.Time) ([]Contract, error) {
	args := m.Called(ctx, cutoff)
	return args.Get(0).([]Contract), args.Error(1)
}

func (m *MockRepository) MarkExercised(ctx context.Context, id uuid.UUID, at time.Time) (bool, error) {
	args := m.Called(ctx, id, at)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) MarkCancelled(ctx context.Context, id uuid.UUID) (bool, error) {
	args := m.Called(ctx, id)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) MarkExpired(ctx context.Context, id uuid.UUID, now time.Time) (bool, error) {
	args := m.Called(ctx, id, now)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) NextContractNumber(ctx context.Context) (string, error) {
	args := m.Called(ctx)
	return args.String(0), args.Error(1)
}

// MockCatalog is a mock implementation of catalog.Service
type MockCatalog struct {
	mock.Mock
}

func (m *MockCatalog) CreateMaterial(ctx context.Context, req catalog.CreateMaterialRequest) (*catalog.Material, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*catalog.Material), args.Error(1)
}

func (m *MockCatalog) GetMaterial(ctx context.Context, id uuid.UUID) (*catalog.Material, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Material), args.Error(1)
}

func (m *MockCatalog) GetMaterialByCode(ctx context.Context, code string) (*catalog.Material, error) {
	args := m.Called(ctx, code)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Material), args.Error(1)
}

func (m *MockCatalog) ListMaterials(ctx context.Context) ([]catalog.Material, error) {
	args := m.Called(ctx)
	return args.Get(0).([]catalog.Material), args.Error(1)
}

func (m *MockCatalog) CreateSupplier(ctx context.Context, req catalog.CreateSupplierRequest) (*catalog.Supplier, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*catalog.Supplier), args.Error(1)
}

func (m *MockCatalog) GetSupplier(ctx context.Context, id uuid.UUID) (*catalog.Supplier, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*catalog.Supplier), args.Error(1)
}

func (m *MockCatalog) ListSuppliers(ctx context.Context, activeOnly bool) ([]catalog.Supplier, error) {
	args := m.Called(ctx, activeOnly)
	return args.Get(0).([]catalog.Supplier), args.Error(1)
}

func (m *MockCatalog) DeactivateSupplier(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockCatalog) UpdateInventory(ctx context.Context, req catalog.UpdateInventoryRequest) (*catalog.InventoryItem, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*catalog.InventoryItem), args.Error(1)
}

func (m *MockCatalog) ListSupplierInventory(ctx context.Context, supplierID uuid.UUID) ([]catalog.InventoryItem, error) {
	args := m.Called(ctx, supplierID)
	return args.Get(0).([]catalog.InventoryItem), args.Error(1)
}

func (m *MockCatalog) ListMaterialInventory(ctx context.Context, materialID uuid.UUID) ([]catalog.InventoryItem, error) {
	args := m.Called(ctx, materialID)
	return args.Get(0).([]catalog.InventoryItem), args.Error(1)
}

// MockPricing is a mock implementation of pricing.Service
type MockPricing struct {
	mock.Mock
}

func (m *MockPricing) RecordObservation(ctx context.Context, req pricing.RecordObservationRequest) (*pricing.PriceObservation, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(*pricing.PriceObservation), args.Error(1)
}

func (m *MockPricing) CurrentQuotes(ctx context.Context) ([]pricing.MaterialQuote, error) {
	args := m.Called(ctx)
	return args.Get(0).([]pricing.MaterialQuote), args.Error(1)
}

func (m *MockPricing) QuoteByCode(ctx context.Context, code string) (*pricing.MaterialQuote, error) {
	args := m.Called(ctx, code)
	return args.Get(0).(*pricing.MaterialQuote), args.Error(1)
}

func (m *MockPricing) History(ctx context.Context, code string, days int) (*pricing.PriceHistory, error) {
	args := m.Called(ctx, code, days)
	return args.Get(0).(*pricing.PriceHistory), args.Error(1)
}

func (m *MockPricing) LatestSpot(ctx context.Context, materialID uuid.UUID) (decimal.Decimal, error) {
	args := m.Called(ctx, materialID)
	return args.Get(0).(decimal.Decimal), args.Error(1)
}

func newTestService(repo Repository, cat catalog.Service, pr pricing.Service, at time.Time) *optionService {
	svc := NewService(repo, cat, pr, pricing.NewEngine(), nil, nil, zap.NewNop()).(*optionService)
	svc.now = func() time.Time { return at }
	return svc
}

func activeContract(now time.Time) *Contract {
	return &Contract{
		ID:             uuid.New(),
		ContractNumber: "OPT-2026-000042",
		MaterialID:     uuid.New(),
		SupplierID:     uuid.New(),
		BuyerID:        "bosque-county",
		BuyerName:      "Bosque County",
		BuyerEmail:     "purchasing@bosquecounty.us",
		StrikePrice:    decimal.RequireFromString("28.50"),
		QuantityTons:   decimal.NewFromInt(500),
		PremiumPaid:    decimal.RequireFromString("1710"),
		DurationDays:   90,
		Status:         StatusActive,
		CreatedAt:      now.AddDate(0, 0, -10),
		ExpiresAt:      now.AddDate(0, 0, 80),
	}
}

func TestPurchase(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockRepository)
	mockCat := new(MockCatalog)
	mockPricing := new(MockPricing)

	materialID := uuid.New()
	supplierID := uuid.New()
	ctx := context.Background()

	mockCat.On("GetMaterial", ctx, materialID).Return(&catalog.Material{ID: materialID, Code: "ROAD_BASE", Name: "Road Base"}, nil)
	mockCat.On("GetSupplier", ctx, supplierID).Return(&catalog.Supplier{ID: supplierID, Name: "Central Texas Aggregates"}, nil)
	mockPricing.On("LatestSpot", ctx, materialID).Return(decimal.RequireFromString("28.50"), nil)
	mockRepo.On("NextContractNumber", ctx).Return("OPT-2026-000123", nil)
	mockRepo.On("CreateContract", ctx, mock.AnythingOfType("*options.Contract")).Return(nil)

	service := newTestService(mockRepo, mockCat, mockPricing, now)

	contract, err := service.Purchase(ctx, PurchaseRequest{
		MaterialID:   materialID,
		SupplierID:   supplierID,
		BuyerID:      "bosque-county",
		BuyerName:    "Bosque County",
		BuyerEmail:   "purchasing@bosquecounty.us",
		QuantityTons: decimal.NewFromInt(500),
		DurationDays: 90,
	})

	require.NoError(t, err)
	require.NotNil(t, contract)
	assert.Equal(t, "OPT-2026-000123", contract.ContractNumber)
	assert.Equal(t, StatusActive, contract.Status)
	assert.True(t, contract.StrikePrice.Equal(decimal.RequireFromString("28.50")))
	// 28.50 * 12% = 3.42 per ton, 500 tons = 1710.00 total premium
	assert.True(t, contract.PremiumPaid.Equal(decimal.RequireFromString("1710")), "got %s", contract.PremiumPaid)
	assert.Equal(t, now.AddDate(0, 0, 90), contract.ExpiresAt)

	mockRepo.AssertExpectations(t)
	mockCat.AssertExpectations(t)
	mockPricing.AssertExpectations(t)
}

func TestPurchaseInvalidQuantity(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	service := newTestService(new(MockRepository), new(MockCatalog), new(MockPricing), now)

	_, err := service.Purchase(context.Background(), PurchaseRequest{
		MaterialID:   uuid.New(),
		SupplierID:   uuid.New(),
		BuyerID:      "bosque-county",
		QuantityTons: decimal.Zero,
		DurationDays: 90,
	})
	assert.ErrorIs(t, err, ErrInvalidQuantity)
}

func TestPurchaseInvalidDuration(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockRepository)
	mockCat := new(MockCatalog)
	mockPricing := new(MockPricing)

	materialID := uuid.New()
	supplierID := uuid.New()
	ctx := context.Background()

	mockCat.On("GetMaterial", ctx, materialID).Return(&catalog.Material{ID: materialID}, nil)
	mockCat.On("GetSupplier", ctx, supplierID).Return(&catalog.Supplier{ID: supplierID}, nil)
	mockPricing.On("LatestSpot", ctx, materialID).Return(decimal.RequireFromString("28.50"), nil)

	service := newTestService(mockRepo, mockCat, mockPricing, now)

	_, err := service.Purchase(ctx, PurchaseRequest{
		MaterialID:   materialID,
		SupplierID:   supplierID,
		BuyerID:      "bosque-county",
		QuantityTons: decimal.NewFromInt(500),
		DurationDays: 60,
	})
	assert.ErrorIs(t, err, pricing.ErrInvalidDuration)
	mockRepo.AssertNotCalled(t, "CreateContract", mock.Anything, mock.Anything)
}

func TestExercise(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockRepository)
	ctx := context.Background()

	contract := activeContract(now)
	mockRepo.On("GetContractByID", ctx, contract.ID).Return(contract, nil)
	mockRepo.On("MarkExercised", ctx, contract.ID, now).Return(true, nil)

	service := newTestService(mockRepo, new(MockCatalog), new(MockPricing), now)

	got, err := service.Exercise(ctx, contract.ID, DeliveryDetails{Location: "Precinct 3 yard, Meridian TX"})
	require.NoError(t, err)
	assert.Equal(t, StatusExercised, got.Status)
	require.NotNil(t, got.ExercisedAt)
	assert.Equal(t, now, *got.ExercisedAt)

	mockRepo.AssertExpectations(t)
}

func TestExerciseAtExpiryBoundary(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockRepository)
	ctx := context.Background()

	// Exercising exactly at expires_at is still valid.
	contract := activeContract(now)
	contract.ExpiresAt = now
	mockRepo.On("GetContractByID", ctx, contract.ID).Return(contract, nil)
	mockRepo.On("MarkExercised", ctx, contract.ID, now).Return(true, nil)

	service := newTestService(mockRepo, new(MockCatalog), new(MockPricing), now)

	got, err := service.Exercise(ctx, contract.ID, DeliveryDetails{Location: "CR 1120"})
	require.NoError(t, err)
	assert.Equal(t, StatusExercised, got.Status)
}

func TestExerciseExpired(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockRepository)
	ctx := context.Background()

	contract := activeContract(now)
	contract.ExpiresAt = now.Add(-time.Second)
	mockRepo.On("GetContractByID", ctx, contract.ID).Return(contract, nil)
	mockRepo.On("MarkExpired", ctx, contract.ID, now).Return(true, nil)

	service := newTestService(mockRepo, new(MockCatalog), new(MockPricing), now)

	_, err := service.Exercise(ctx, contract.ID, DeliveryDetails{Location: "CR 1120"})
	assert.ErrorIs(t, err, ErrExpiredContract)
	mockRepo.AssertNotCalled(t, "MarkExercised", mock.Anything, mock.Anything, mock.Anything)
}

func TestExerciseWrongState(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockRepository)
	ctx := context.Background()

	contract := activeContract(now)
	contract.Status = StatusCancelled
	mockRepo.On("GetContractByID", ctx, contract.ID).Return(contract, nil)

	service := newTestService(mockRepo, new(MockCatalog), new(MockPricing), now)

	_, err := service.Exercise(ctx, contract.ID, DeliveryDetails{Location: "CR 1120"})
	assert.ErrorIs(t, err, ErrInvalidState)
}

func TestExerciseLostRace(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockRepository)
	ctx := context.Background()

	contract := activeContract(now)
	cancelled := *contract
	cancelled.Status = StatusCancelled

	// First read sees active; the conditional update loses to a concurrent
	// cancel, and the re-read maps the winner's state.
	mockRepo.On("GetContractByID", ctx, contract.ID).Return(contract, nil).Once()
	mockRepo.On("MarkExercised", ctx, contract.ID, now).Return(false, nil)
	mockRepo.On("GetContractByID", ctx, contract.ID).Return(&cancelled, nil).Once()

	service := newTestService(mockRepo, new(MockCatalog), new(MockPricing), now)

	_, err := service.Exercise(ctx, contract.ID, DeliveryDetails{Location: "CR 1120"})
	assert.ErrorIs(t, err, ErrInvalidState)
	mockRepo.AssertExpectations(t)
}

func TestCancel(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockRepository)
	ctx := context.Background()

	contract := activeContract(now)
	mockRepo.On("GetContractByID", ctx, contract.ID).Return(contract, nil)
	mockRepo.On("MarkCancelled", ctx, contract.ID).Return(true, nil)

	service := newTestService(mockRepo, new(MockCatalog), new(MockPricing), now)

	got, err := service.Cancel(ctx, contract.ID)
	require.NoError(t, err)
	assert.Equal(t, StatusCancelled, got.Status)
}

func TestCancelTerminalState(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockRepository)
	ctx := context.Background()

	contract := activeContract(now)
	contract.Status = StatusExercised
	mockRepo.On("GetContractByID", ctx, contract.ID).Return(contract, nil)

	service := newTestService(mockRepo, new(MockCatalog), new(MockPricing), now)

	_, err := service.Cancel(ctx, contract.ID)
	assert.ErrorIs(t, err, ErrInvalidState)
	mockRepo.AssertNotCalled(t, "MarkCancelled", mock.Anything, mock.Anything)
}

func TestEvaluateExpiryIdempotent(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockRepository)
	ctx := context.Background()

	contract := activeContract(now)
	contract.Status = StatusExpired
	mockRepo.On("GetContractByID", ctx, contract.ID).Return(contract, nil)

	service := newTestService(mockRepo, new(MockCatalog), new(MockPricing), now)

	got, err := service.EvaluateExpiry(ctx, contract.ID, now)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)
	mockRepo.AssertNotCalled(t, "MarkExpired", mock.Anything, mock.Anything, mock.Anything)
}

func TestEvaluateExpiryTransitions(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockRepository)
	ctx := context.Background()

	contract := activeContract(now)
	contract.ExpiresAt = now.Add(-time.Hour)
	mockRepo.On("GetContractByID", ctx, contract.ID).Return(contract, nil)
	mockRepo.On("MarkExpired", ctx, contract.ID, now).Return(true, nil)

	service := newTestService(mockRepo, new(MockCatalog), new(MockPricing), now)

	got, err := service.EvaluateExpiry(ctx, contract.ID, now)
	require.NoError(t, err)
	assert.Equal(t, StatusExpired, got.Status)
}

func TestValuation(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockRepository)
	mockPricing := new(MockPricing)
	ctx := context.Background()

	contract := activeContract(now)
	mockRepo.On("GetContractByID", ctx, contract.ID).Return(contract, nil)
	mockPricing.On("LatestSpot", ctx, contract.MaterialID).Return(decimal.RequireFromString("31.00"), nil)

	service := newTestService(mockRepo, new(MockCatalog), mockPricing, now)

	v, err := service.Valuation(ctx, contract.ID)
	require.NoError(t, err)
	// (31.00 - 28.50) * 500 = 1250.00
	assert.True(t, v.CurrentValue.Equal(decimal.RequireFromString("1250")), "got %s", v.CurrentValue)
}

func TestPortfolioStats(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	mockRepo := new(MockRepository)
	ctx := context.Background()

	near := *activeContract(now)
	near.ExpiresAt = now.AddDate(0, 0, 5)
	far := *activeContract(now)
	far.ExpiresAt = now.AddDate(0, 0, 60)

	active := StatusActive
	mockRepo.On("ListByBuyer", ctx, "bosque-county", &active).Return([]Contract{near, far}, nil)

	service := newTestService(mockRepo, new(MockCatalog), new(MockPricing), now)

	stats, err := service.PortfolioStats(ctx, "bosque-county")
	require.NoError(t, err)
	assert.Equal(t, 2, stats.ActiveContracts)
	assert.Equal(t, 1, stats.ExpiringWithinWeek)
	// 2 * (28.50 * 500) = 28500.00
	assert.True(t, stats.TotalLockedValue.Equal(decimal.RequireFromString("28500")), "got %s", stats.TotalLockedValue)
	assert.True(t, stats.TotalCapacityTons.Equal(decimal.NewFromInt(1000)))
	assert.True(t, stats.TotalPremiumPaid.Equal(decimal.RequireFromString("3420")))
}

func TestEvaluateContractBid(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	contract := activeContract(now)
	contract.PremiumPaid = decimal.RequireFromString("1000") // $2.00/ton over 500 tons

	eval, err := EvaluateContractBid(contract,
		decimal.RequireFromString("3.00"),
		decimal.NewFromInt(500),
		decimal.RequireFromString("34.00"))
	require.NoError(t, err)

	assert.True(t, eval.CostBasisPerTon.Equal(decimal.RequireFromString("30.50")), "cost basis: %s", eval.CostBasisPerTon)
	assert.True(t, eval.SuggestedBidPerTon.Equal(decimal.RequireFromString("33.50")), "suggested: %s", eval.SuggestedBidPerTon)
	assert.True(t, eval.TotalBid.Equal(decimal.RequireFromString("16750")), "total: %s", eval.TotalBid)
	assert.True(t, eval.PotentialProfit.Equal(decimal.RequireFromString("1500")), "profit: %s", eval.PotentialProfit)
	// 34.00 - 33.50 = 0.50 under market
	assert.True(t, eval.MarketDeltaPerTon.Equal(decimal.RequireFromString("0.50")), "delta: %s", eval.MarketDeltaPerTon)
}

func TestEvaluateContractBidErrors(t *testing.T) {
	now := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	contract := activeContract(now)

	_, err := EvaluateContractBid(contract, decimal.RequireFromString("-1"), decimal.NewFromInt(100), decimal.Zero)
	assert.ErrorIs(t, err, ErrInvalidMargin)

	_, err = EvaluateContractBid(contract, decimal.NewFromInt(3), decimal.NewFromInt(600), decimal.Zero)
	assert.ErrorIs(t, err, ErrQuantityExceeded)

	zeroQty := *contract
	zeroQty.QuantityTons = decimal.Zero
	_, err = EvaluateContractBid(&zeroQty, decimal.NewFromInt(3), decimal.NewFromInt(100), decimal.Zero)
	assert.ErrorIs(t, err, ErrZeroQuantity)
}
