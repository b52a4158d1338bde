package scraper

import (
	"time"

	"github.com/google/uuid"
)

// ScrapedBid is a bid or RFP notice lifted from a county website.
// DatePosted and Deadline keep the site's raw text since county pages
// use inconsistent date formats.
type ScrapedBid struct {
	ID          uuid.UUID `json:"id" db:"id"`
	CountyName  string    `json:"county_name" db:"county_name"`
	Title       string    `json:"title" db:"title"`
	URL         *string   `json:"url,omitempty" db:"url"`
	Description *string   `json:"description,omitempty" db:"description"`
	DatePosted  *string   `json:"date_posted,omitempty" db:"date_posted"`
	Deadline    *string   `json:"deadline,omitempty" db:"deadline"`
	Category    *string   `json:"category,omitempty" db:"category"`
	Source      *string   `json:"source,omitempty" db:"source"`
	Section     *string   `json:"section,omitempty" db:"section"`
	IsProcessed bool      `json:"is_processed" db:"is_processed"`
	ScrapedAt   time.Time `json:"scraped_at" db:"scraped_at"`
}

// RunResult summarizes a scrape pass.
type RunResult struct {
	CountyName string    `json:"county_name"`
	Found      int       `json:"found"`
	New        int       `json:"new"`
	Duplicates int       `json:"duplicates"`
	RanAt      time.Time `json:"ran_at"`
}

// Stats reports the state of the scraped-bid backlog.
type Stats struct {
	Total       int        `json:"total" db:"total"`
	Unprocessed int        `json:"unprocessed" db:"unprocessed"`
	LastScraped *time.Time `json:"last_scraped,omitempty" db:"last_scraped"`
}
