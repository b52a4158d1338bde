package scraper

import (
	"context"
	"database/sql"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
)

type Repository interface {
	InsertBid(ctx context.Context, bid *ScrapedBid) (bool, error)
	GetBidByID(ctx context.Context, id uuid.UUID) (*ScrapedBid, error)
	ListBids(ctx context.Context, unprocessedOnly bool) ([]ScrapedBid, error)
	MarkProcessed(ctx context.Context, id uuid.UUID) (bool, error)
	Stats(ctx context.Context) (*Stats, error)
}

type postgresRepository struct {
	db *sqlx.DB
}

func NewRepository(db *sqlx.DB) Repository {
	return &postgresRepository{db: db}
}

// InsertBid reports false when the (title, url) pair was already seen.
func (r *postgresRepository) InsertBid(ctx context.Context, bid *ScrapedBid) (bool, error) {
	query := `
		INSERT INTO scraped_bids (
			id, county_name, title, url, description, date_posted, deadline,
			category, source, section, is_processed, scraped_at
		) VALUES (
			:id, :county_name, :title, :url, :description, :date_posted, :deadline,
			:category, :source, :section, :is_processed, :scraped_at
		) ON CONFLICT (title, url) DO NOTHING`
	res, err := r.db.NamedExecContext(ctx, query, bid)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *postgresRepository) GetBidByID(ctx context.Context, id uuid.UUID) (*ScrapedBid, error) {
	var bid ScrapedBid
	err := r.db.GetContext(ctx, &bid, "SELECT * FROM scraped_bids WHERE id = $1", id)
	if err == sql.ErrNoRows {
		return nil, nil
	}
	return &bid, err
}

func (r *postgresRepository) ListBids(ctx context.Context, unprocessedOnly bool) ([]ScrapedBid, error) {
	var bids []ScrapedBid
	query := "SELECT * FROM scraped_bids"
	if unprocessedOnly {
		query += " WHERE is_processed = FALSE"
	}
	query += " ORDER BY scraped_at DESC"
	err := r.db.SelectContext(ctx, &bids, query)
	return bids, err
}

func (r *postgresRepository) MarkProcessed(ctx context.Context, id uuid.UUID) (bool, error) {
	res, err := r.db.ExecContext(ctx,
		"UPDATE scraped_bids SET is_processed = TRUE WHERE id = $1 AND is_processed = FALSE", id)
	if err != nil {
		return false, err
	}
	rows, err := res.RowsAffected()
	return rows > 0, err
}

func (r *postgresRepository) Stats(ctx context.Context) (*Stats, error) {
	var stats Stats
	err := r.db.GetContext(ctx, &stats, `
		SELECT COUNT(*) AS total,
		       COUNT(*) FILTER (WHERE NOT is_processed) AS unprocessed,
		       MAX(scraped_at) AS last_scraped
		FROM scraped_bids`)
	return &stats, err
}
