package alerts

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"bcmce/exchange-backend/internal/options"
	"bcmce/exchange-backend/internal/pricing"
)

// warningLadder is the set of days-to-expiry rungs, tightest first. Each
// rung fires one warning per contract.
var warningLadder = []int{1, 3, 7, 14, 30}

// priceChangeThreshold is the relative move that triggers a price alert.
var priceChangeThreshold = decimal.RequireFromString("0.05")

// Engine evaluates alert conditions and queues triggered alerts for
// notification delivery.
type Engine struct {
	repo   Repository
	queue  chan *Alert
	logger *zap.Logger
}

func NewEngine(repo Repository, logger *zap.Logger) *Engine {
	return &Engine{
		repo:   repo,
		queue:  make(chan *Alert, 1000),
		logger: logger,
	}
}

// Queue returns the channel of alerts awaiting notification.
func (e *Engine) Queue() <-chan *Alert {
	return e.queue
}

// EvaluateExpiryLadder fires a warning for each active contract at every
// ladder rung it has reached. The dedupe key keeps each contract+rung
// pair to a single alert across repeated sweeps.
func (e *Engine) EvaluateExpiryLadder(ctx context.Context, contracts []options.Contract, now time.Time) error {
	for i := range contracts {
		contract := &contracts[i]
		if contract.Status != options.StatusActive || contract.IsExpired(now) {
			continue
		}

		days := contract.DaysToExpiry(now)
		for _, rung := range warningLadder {
			if days > rung {
				// Wider rungs already fired on earlier sweeps.
				continue
			}

			alert := &Alert{
				ID:         uuid.New(),
				Kind:       KindExpiryWarning,
				Severity:   expirySeverity(rung),
				ContractID: &contract.ID,
				MaterialID: &contract.MaterialID,
				DedupeKey:  fmt.Sprintf("expiry:%s:%d", contract.ID, rung),
				Title:      fmt.Sprintf("Option %s expires in %d days", contract.ContractNumber, days),
				Message: fmt.Sprintf(
					"Option contract %s (strike $%s/ton, %s tons) expires on %s. Exercise or let lapse.",
					contract.ContractNumber, contract.StrikePrice, contract.QuantityTons,
					contract.ExpiresAt.Format("2006-01-02")),
				Details: JSONB{
					"contract_number": contract.ContractNumber,
					"days_remaining":  days,
					"ladder_rung":     rung,
					"expires_at":      contract.ExpiresAt.Format(time.RFC3339),
				},
				TriggeredAt: now,
			}

			if err := e.trigger(ctx, alert); err != nil {
				e.logger.Warn("Failed to record expiry alert",
					zap.String("contract_id", contract.ID.String()), zap.Error(err))
			}
			break
		}
	}
	return nil
}

// ObservationRecorded implements pricing.ChangeListener. A move of 5% or
// more against the previous observation for the same material and
// supplier raises a price alert.
func (e *Engine) ObservationRecorded(ctx context.Context, previous, current *pricing.PriceObservation) {
	if previous == nil || previous.SpotPrice.IsZero() {
		return
	}

	change := current.SpotPrice.Sub(previous.SpotPrice).Div(previous.SpotPrice)
	if change.Abs().LessThan(priceChangeThreshold) {
		return
	}

	direction := "up"
	severity := SeverityWarning
	if change.IsNegative() {
		direction = "down"
		severity = SeverityInfo
	}

	pct := change.Mul(decimal.NewFromInt(100)).Round(2)
	alert := &Alert{
		ID:         uuid.New(),
		Kind:       KindPriceChange,
		Severity:   severity,
		MaterialID: &current.MaterialID,
		DedupeKey:  fmt.Sprintf("price:%s:%s:%s", current.MaterialID, current.SupplierID, current.ObservedAt.Format(time.RFC3339)),
		Title:      fmt.Sprintf("Spot price moved %s %s%%", direction, pct.Abs()),
		Message: fmt.Sprintf("Spot price changed from $%s to $%s per ton (%s%%).",
			previous.SpotPrice, current.SpotPrice, pct),
		Details: JSONB{
			"previous_price": previous.SpotPrice.String(),
			"current_price":  current.SpotPrice.String(),
			"change_percent": pct.String(),
			"supplier_id":    current.SupplierID.String(),
		},
		TriggeredAt: current.ObservedAt,
	}

	if err := e.trigger(ctx, alert); err != nil {
		e.logger.Warn("Failed to record price alert",
			zap.String("material_id", current.MaterialID.String()), zap.Error(err))
	}
}

func (e *Engine) trigger(ctx context.Context, alert *Alert) error {
	created, err := e.repo.CreateAlert(ctx, alert)
	if err != nil {
		return err
	}
	if !created {
		return nil
	}

	e.logger.Info("Alert triggered",
		zap.String("kind", string(alert.Kind)),
		zap.String("dedupe_key", alert.DedupeKey))

	select {
	case e.queue <- alert:
	default:
		e.logger.Warn("Notification queue full, alert not queued",
			zap.String("alert_id", alert.ID.String()))
	}
	return nil
}

func expirySeverity(rung int) Severity {
	switch {
	case rung <= 3:
		return SeverityCritical
	case rung <= 14:
		return SeverityWarning
	default:
		return SeverityInfo
	}
}
