package notifications

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bcmce/exchange-backend/internal/alerts"
	"bcmce/exchange-backend/internal/config"
	"bcmce/exchange-backend/internal/notifications/websocket"
	"bcmce/exchange-backend/internal/options"
)

// Service fans contract lifecycle events and triggered alerts out to the
// email and websocket channels, logging every delivery attempt. It
// implements options.Notifier.
type Service struct {
	repo      Repository
	email     EmailSender
	ws        *websocket.Manager
	alertRepo alerts.Repository
	cfg       config.NotificationsConfig
	logger    *zap.Logger
}

func NewService(
	repo Repository,
	email EmailSender,
	ws *websocket.Manager,
	alertRepo alerts.Repository,
	cfg config.NotificationsConfig,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		email:     email,
		ws:        ws,
		alertRepo: alertRepo,
		cfg:       cfg,
		logger:    logger,
	}
}

func (s *Service) ContractPurchased(ctx context.Context, c *options.Contract) {
	subject := fmt.Sprintf("Option %s purchased", c.ContractNumber)
	body := fmt.Sprintf(
		"Your option contract %s is active.\n\nStrike price: $%s/ton\nQuantity: %s tons\nPremium paid: $%s\nExpires: %s\n",
		c.ContractNumber, c.StrikePrice, c.QuantityTons, c.PremiumPaid,
		c.ExpiresAt.Format("January 2, 2006"))

	s.dispatch(ctx, c.BuyerEmail, subject, body, websocket.Message{
		Type:  "contract.purchased",
		Title: subject,
		Data: map[string]interface{}{
			"contract_id":     c.ID.String(),
			"contract_number": c.ContractNumber,
			"buyer_id":        c.BuyerID,
			"expires_at":      c.ExpiresAt.Format(time.RFC3339),
		},
		Timestamp: time.Now().UTC(),
	}, nil)
}

func (s *Service) ContractExercised(ctx context.Context, c *options.Contract, delivery options.DeliveryDetails) {
	subject := fmt.Sprintf("Option %s exercised", c.ContractNumber)
	body := fmt.Sprintf(
		"Option contract %s was exercised at $%s/ton for %s tons.\nDelivery location: %s\n\nThe supplier has been sent a delivery request.\n",
		c.ContractNumber, c.StrikePrice, c.QuantityTons, delivery.Location)

	s.dispatch(ctx, c.BuyerEmail, subject, body, websocket.Message{
		Type:  "contract.exercised",
		Title: subject,
		Data: map[string]interface{}{
			"contract_id":       c.ID.String(),
			"contract_number":   c.ContractNumber,
			"buyer_id":          c.BuyerID,
			"delivery_location": delivery.Location,
		},
		Timestamp: time.Now().UTC(),
	}, nil)
}

func (s *Service) ContractCancelled(ctx context.Context, c *options.Contract) {
	subject := fmt.Sprintf("Option %s cancelled", c.ContractNumber)
	body := fmt.Sprintf(
		"Option contract %s was cancelled. The premium of $%s is non-refundable.\n",
		c.ContractNumber, c.PremiumPaid)

	s.dispatch(ctx, c.BuyerEmail, subject, body, websocket.Message{
		Type:  "contract.cancelled",
		Title: subject,
		Data: map[string]interface{}{
			"contract_id":     c.ID.String(),
			"contract_number": c.ContractNumber,
			"buyer_id":        c.BuyerID,
		},
		Timestamp: time.Now().UTC(),
	}, nil)
}

// DeliverAlert pushes a triggered alert to subscribers and marks it sent.
func (s *Service) DeliverAlert(ctx context.Context, alert *alerts.Alert) {
	msg := websocket.Message{
		Type:  "alert." + string(alert.Kind),
		Title: alert.Title,
		Data: map[string]interface{}{
			"alert_id": alert.ID.String(),
			"severity": string(alert.Severity),
			"message":  alert.Message,
			"details":  map[string]interface{}(alert.Details),
		},
		Timestamp: alert.TriggeredAt,
	}

	s.dispatch(ctx, s.cfg.SenderEmail, alert.Title, alert.Message, msg, &alert.ID)

	if err := s.alertRepo.MarkSent(ctx, alert.ID); err != nil {
		s.logger.Warn("Failed to mark alert sent",
			zap.String("alert_id", alert.ID.String()), zap.Error(err))
	}
}

// Run consumes the alert queue until the context is cancelled. The
// sweeper and the API server each run one of these.
func (s *Service) Run(ctx context.Context, queue <-chan *alerts.Alert) {
	for {
		select {
		case <-ctx.Done():
			return
		case alert, ok := <-queue:
			if !ok {
				return
			}
			s.DeliverAlert(ctx, alert)
		}
	}
}

func (s *Service) dispatch(ctx context.Context, recipient, subject, body string, msg websocket.Message, alertID *uuid.UUID) {
	if s.ws != nil {
		s.ws.Broadcast(msg)
		s.log(ctx, alertID, "broadcast", ChannelWebsocket, DeliverySent, nil, nil)
	}

	if !s.cfg.EmailEnabled || s.email == nil || recipient == "" {
		s.log(ctx, alertID, recipient, ChannelEmail, DeliverySkipped, nil, nil)
		return
	}

	providerID, err := s.email.Send(ctx, recipient, subject, body)
	if err != nil {
		s.logger.Warn("Email delivery failed",
			zap.String("recipient", recipient), zap.Error(err))
		errText := err.Error()
		s.log(ctx, alertID, recipient, ChannelEmail, DeliveryFailed, nil, &errText)
		return
	}

	var pid *string
	if providerID != "" {
		pid = &providerID
	}
	s.log(ctx, alertID, recipient, ChannelEmail, DeliverySent, pid, nil)
}

func (s *Service) log(ctx context.Context, alertID *uuid.UUID, recipient string, channel Channel, status DeliveryStatus, providerID, errText *string) {
	delivery := &Delivery{
		ID:          uuid.New(),
		AlertID:     alertID,
		Recipient:   recipient,
		Channel:     channel,
		Status:      status,
		ProviderID:  providerID,
		Error:       errText,
		DeliveredAt: time.Now().UTC(),
	}
	if err := s.repo.LogDelivery(ctx, delivery); err != nil {
		s.logger.Warn("Failed to log notification delivery", zap.Error(err))
	}
}
