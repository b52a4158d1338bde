package scraper

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"bcmce/exchange-backend/internal/config"
)

var (
	ErrBidNotFound      = errors.New("scraped bid not found")
	ErrAlreadyProcessed = errors.New("scraped bid already processed")
	ErrFetchFailed      = errors.New("failed to fetch county page")
)

type Service interface {
	Run(ctx context.Context) (*RunResult, error)
	ListBids(ctx context.Context, unprocessedOnly bool) ([]ScrapedBid, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) (*ScrapedBid, error)
	Stats(ctx context.Context) (*Stats, error)
}

type scraperService struct {
	repo   Repository
	client *http.Client
	cfg    config.ScraperConfig
	logger *zap.Logger
}

func NewService(repo Repository, cfg config.ScraperConfig, logger *zap.Logger) Service {
	return &scraperService{
		repo:   repo,
		client: &http.Client{Timeout: cfg.RequestTimeout},
		cfg:    cfg,
		logger: logger,
	}
}

func (s *scraperService) Run(ctx context.Context) (*RunResult, error) {
	s.logger.Info("Starting scrape", zap.String("url", s.cfg.CountyBidURL))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, s.cfg.CountyBidURL, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", s.cfg.UserAgent)
	req.Header.Set("Accept", "text/html,application/xhtml+xml,application/xml;q=0.9,*/*;q=0.8")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrFetchFailed, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrFetchFailed, resp.StatusCode)
	}

	candidates, err := extractBids(resp.Body, s.cfg.CountyBidURL)
	if err != nil {
		return nil, fmt.Errorf("failed to parse county page: %w", err)
	}

	result := &RunResult{
		CountyName: s.cfg.CountyName,
		Found:      len(candidates),
		RanAt:      time.Now().UTC(),
	}

	for _, c := range candidates {
		bid := &ScrapedBid{
			ID:         uuid.New(),
			CountyName: s.cfg.CountyName,
			Title:      c.Title,
			ScrapedAt:  result.RanAt,
		}
		if c.URL != "" {
			bid.URL = &c.URL
		}
		if c.Description != "" {
			bid.Description = &c.Description
		}
		if c.DatePosted != "" {
			bid.DatePosted = &c.DatePosted
		}
		if c.Section != "" {
			bid.Section = &c.Section
		}
		source := "link"
		bid.Source = &source

		inserted, err := s.repo.InsertBid(ctx, bid)
		if err != nil {
			s.logger.Warn("Failed to store scraped bid",
				zap.String("title", bid.Title), zap.Error(err))
			continue
		}
		if inserted {
			result.New++
		} else {
			result.Duplicates++
		}
	}

	s.logger.Info("Scrape complete",
		zap.Int("found", result.Found),
		zap.Int("new", result.New),
		zap.Int("duplicates", result.Duplicates))
	return result, nil
}

func (s *scraperService) ListBids(ctx context.Context, unprocessedOnly bool) ([]ScrapedBid, error) {
	return s.repo.ListBids(ctx, unprocessedOnly)
}

func (s *scraperService) MarkProcessed(ctx context.Context, id uuid.UUID) (*ScrapedBid, error) {
	bid, err := s.repo.GetBidByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if bid == nil {
		return nil, fmt.Errorf("%w: %s", ErrBidNotFound, id)
	}

	ok, err := s.repo.MarkProcessed(ctx, id)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrAlreadyProcessed, id)
	}
	bid.IsProcessed = true
	return bid, nil
}

func (s *scraperService) Stats(ctx context.Context) (*Stats, error) {
	return s.repo.Stats(ctx)
}
