package alerts

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

	"bcmce/exchange-backend/internal/options"
	"bcmce/exchange-backend/internal/pricing"
)

type MockRepository struct {
	mock.Mock
}

func (m *MockRepository) CreateAlert(ctx context.Context, alert *Alert) (bool, error) {
	args := m.Called(ctx, alert)
	return args.Bool(0), args.Error(1)
}

func (m *MockRepository) GetAlertByID(ctx context.Context, id uuid.UUID) (*Alert, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*Alert), args.Error(1)
}

func (m *MockRepository) ListAlerts(ctx context.Context, limit int) ([]Alert, error) {
	args := m.Called(ctx, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Alert), args.Error(1)
}

func (m *MockRepository) ListUnsent(ctx context.Context) ([]Alert, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]Alert), args.Error(1)
}

func (m *MockRepository) MarkSent(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func activeContract(expiresIn time.Duration, now time.Time) options.Contract {
	return options.Contract{
		ID:             uuid.New(),
		ContractNumber: "OPT-2026-000123",
		MaterialID:     uuid.New(),
		SupplierID:     uuid.New(),
		StrikePrice:    decimal.RequireFromString("28.50"),
		QuantityTons:   decimal.NewFromInt(500),
		Status:         options.StatusActive,
		CreatedAt:      now.Add(-24 * time.Hour),
		ExpiresAt:      now.Add(expiresIn),
	}
}

func TestExpiryLadderFiresHighestReachedRung(t *testing.T) {
	repo := new(MockRepository)
	engine := NewEngine(repo, zap.NewNop())
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	contract := activeContract(6*24*time.Hour, now)

	var captured *Alert
	repo.On("CreateAlert", mock.Anything, mock.AnythingOfType("*alerts.Alert")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*Alert) }).
		Return(true, nil).Once()

	err := engine.EvaluateExpiryLadder(context.Background(), []options.Contract{contract}, now)
	require.NoError(t, err)

	require.NotNil(t, captured)
	assert.Equal(t, KindExpiryWarning, captured.Kind)
	assert.Equal(t, SeverityWarning, captured.Severity)
	// 6 days out reaches the 30 and 14 rungs too, but only the 7-day
	// rung fires on this sweep.
	assert.Contains(t, captured.DedupeKey, ":7")
	repo.AssertNumberOfCalls(t, "CreateAlert", 1)

	select {
	case queued := <-engine.Queue():
		assert.Equal(t, captured.ID, queued.ID)
	default:
		t.Fatal("expected alert on queue")
	}
}

func TestExpiryLadderSkipsTerminalAndLapsed(t *testing.T) {
	repo := new(MockRepository)
	engine := NewEngine(repo, zap.NewNop())
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	exercised := activeContract(2*24*time.Hour, now)
	exercised.Status = options.StatusExercised
	lapsed := activeContract(-time.Hour, now)

	err := engine.EvaluateExpiryLadder(context.Background(), []options.Contract{exercised, lapsed}, now)
	require.NoError(t, err)
	repo.AssertNotCalled(t, "CreateAlert", mock.Anything, mock.Anything)
}

func TestExpiryLadderDedupe(t *testing.T) {
	repo := new(MockRepository)
	engine := NewEngine(repo, zap.NewNop())
	now := time.Date(2026, 8, 23, 12, 0, 0, 0, time.UTC)

	contract := activeContract(2*24*time.Hour, now)

	// Conflict on dedupe key: alert row already exists, nothing queued.
	repo.On("CreateAlert", mock.Anything, mock.AnythingOfType("*alerts.Alert")).Return(false, nil)

	err := engine.EvaluateExpiryLadder(context.Background(), []options.Contract{contract}, now)
	require.NoError(t, err)

	select {
	case <-engine.Queue():
		t.Fatal("deduplicated alert must not be queued")
	default:
	}
}

func observation(materialID, supplierID uuid.UUID, price string, at time.Time) *pricing.PriceObservation {
	return &pricing.PriceObservation{
		ID:         uuid.New(),
		MaterialID: materialID,
		SupplierID: supplierID,
		SpotPrice:  decimal.RequireFromString(price),
		ObservedAt: at,
	}
}

func TestObservationRecordedTriggersOnFivePercentMove(t *testing.T) {
	repo := new(MockRepository)
	engine := NewEngine(repo, zap.NewNop())
	materialID, supplierID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	var captured *Alert
	repo.On("CreateAlert", mock.Anything, mock.AnythingOfType("*alerts.Alert")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*Alert) }).
		Return(true, nil)

	prev := observation(materialID, supplierID, "20.00", now.Add(-time.Hour))
	curr := observation(materialID, supplierID, "21.00", now)
	engine.ObservationRecorded(context.Background(), prev, curr)

	require.NotNil(t, captured)
	assert.Equal(t, KindPriceChange, captured.Kind)
	assert.Equal(t, SeverityWarning, captured.Severity)
	assert.Equal(t, "5", captured.Details["change_percent"])
}

func TestObservationRecordedIgnoresSmallMoves(t *testing.T) {
	repo := new(MockRepository)
	engine := NewEngine(repo, zap.NewNop())
	materialID, supplierID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	prev := observation(materialID, supplierID, "20.00", now.Add(-time.Hour))
	curr := observation(materialID, supplierID, "20.80", now)
	engine.ObservationRecorded(context.Background(), prev, curr)

	repo.AssertNotCalled(t, "CreateAlert", mock.Anything, mock.Anything)
}

func TestObservationRecordedDownMoveIsInfo(t *testing.T) {
	repo := new(MockRepository)
	engine := NewEngine(repo, zap.NewNop())
	materialID, supplierID := uuid.New(), uuid.New()
	now := time.Now().UTC()

	var captured *Alert
	repo.On("CreateAlert", mock.Anything, mock.AnythingOfType("*alerts.Alert")).
		Run(func(args mock.Arguments) { captured = args.Get(1).(*Alert) }).
		Return(true, nil)

	prev := observation(materialID, supplierID, "20.00", now.Add(-time.Hour))
	curr := observation(materialID, supplierID, "18.00", now)
	engine.ObservationRecorded(context.Background(), prev, curr)

	require.NotNil(t, captured)
	assert.Equal(t, SeverityInfo, captured.Severity)
	assert.Equal(t, "-10", captured.Details["change_percent"])
}
