package options

import (
	"bytes"
	"context"
	"fmt"

	"go.uber.org/zap"

	"bcmce/exchange-backend/pkg/pdf"
	"bcmce/exchange-backend/pkg/storage"
)

// confirmationPublisher renders contract confirmations with gofpdf and
// stores them in S3 under confirmations/<contract_number>.pdf.
type confirmationPublisher struct {
	generator *pdf.Generator
	store     storage.Client
	logger    *zap.Logger
}

func NewConfirmationPublisher(generator *pdf.Generator, store storage.Client, logger *zap.Logger) ConfirmationPublisher {
	return &confirmationPublisher{
		generator: generator,
		store:     store,
		logger:    logger,
	}
}

func (p *confirmationPublisher) PublishConfirmation(ctx context.Context, c *Contract, materialName, supplierName string) error {
	doc := pdf.ContractDocument{
		ContractNumber: c.ContractNumber,
		MaterialName:   materialName,
		SupplierName:   supplierName,
		BuyerName:      c.BuyerName,
		StrikePrice:    c.StrikePrice.StringFixed(2),
		QuantityTons:   c.QuantityTons.String(),
		PremiumPaid:    c.PremiumPaid.StringFixed(2),
		DurationDays:   c.DurationDays,
		CreatedAt:      c.CreatedAt,
		ExpiresAt:      c.ExpiresAt,
	}

	data, err := p.generator.GenerateConfirmation(doc)
	if err != nil {
		return err
	}

	key := fmt.Sprintf("confirmations/%s.pdf", c.ContractNumber)
	if err := p.store.Upload(ctx, key, bytes.NewReader(data), "application/pdf"); err != nil {
		return err
	}

	p.logger.Info("Contract confirmation stored",
		zap.String("contract_number", c.ContractNumber),
		zap.String("key", key))
	return nil
}
