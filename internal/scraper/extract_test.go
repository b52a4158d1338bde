package scraper

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const samplePage = `
<html><body>
<h2>Current Bid Opportunities</h2>
<ul>
  <li><a href="/bids/2026/road-base-gravel-cr45.pdf">Road Base Gravel - County Road 45 Repairs (posted 01/15/2026)</a></li>
  <li><a href="/bids/2026/hma-annual.pdf">Hot Mix Asphalt - Annual Contract 2026</a></li>
  <li><a href="/bids/2026/road-base-gravel-cr45.pdf">Road Base Gravel - County Road 45 Repairs (posted 01/15/2026)</a></li>
</ul>
<h2>Commissioners Court</h2>
<a href="/minutes/jan.html">Meeting Minutes January</a>
<a href="/contact.html">Us</a>
</body></html>`

func TestExtractBidsFindsKeywordLinks(t *testing.T) {
	bids, err := extractBids(strings.NewReader(samplePage), "https://www.bosquecounty.us/bids")
	require.NoError(t, err)

	// The duplicate gravel entry collapses; the minutes link carries no
	// bid keyword and the short "Us" link is skipped.
	require.Len(t, bids, 2)

	assert.Equal(t, "Road Base Gravel - County Road 45 Repairs (posted 01/15/2026)", bids[0].Title)
	assert.Equal(t, "https://www.bosquecounty.us/bids/2026/road-base-gravel-cr45.pdf", bids[0].URL)
	assert.Equal(t, "01/15/2026", bids[0].DatePosted)
	assert.Equal(t, "Current Bid Opportunities", bids[0].Section)

	assert.Equal(t, "Hot Mix Asphalt - Annual Contract 2026", bids[1].Title)
	assert.Empty(t, bids[1].DatePosted)
}

func TestExtractBidsIgnoresUnrelatedLinks(t *testing.T) {
	page := `<html><body><a href="/about.html">About the County Office</a></body></html>`
	bids, err := extractBids(strings.NewReader(page), "https://www.bosquecounty.us")
	require.NoError(t, err)
	assert.Empty(t, bids)
}

func TestExtractDatePatterns(t *testing.T) {
	assert.Equal(t, "01/15/2026", extractDate("posted 01/15/2026 by clerk"))
	assert.Equal(t, "2026-01-15", extractDate("deadline 2026-01-15"))
	assert.Equal(t, "Jan 15, 2026", extractDate("due Jan 15, 2026"))
	assert.Empty(t, extractDate("no date here"))
}
