package pricing

import (
	"errors"
	"fmt"
	"sort"

	"github.com/shopspring/decimal"
)

var (
	ErrInvalidDuration = errors.New("invalid option duration")
	ErrInvalidPrice    = errors.New("invalid spot price")
)

// premiumRates maps an option duration in days to its fixed premium rate.
// Longer cover costs a larger fraction of spot.
var premiumRates = map[int]decimal.Decimal{
	30:  decimal.NewFromFloat(0.08),
	90:  decimal.NewFromFloat(0.12),
	180: decimal.NewFromFloat(0.15),
	365: decimal.NewFromFloat(0.20),
}

// Engine prices option contracts. It holds no state and is safe for
// concurrent use.
type Engine struct{}

func NewEngine() *Engine {
	return &Engine{}
}

// Durations returns the supported option tiers in ascending order.
func (e *Engine) Durations() []int {
	durations := make([]int, 0, len(premiumRates))
	for d := range premiumRates {
		durations = append(durations, d)
	}
	sort.Ints(durations)
	return durations
}

// Quote prices one option tier at the given spot price. The premium is
// spot times the tier rate; the total is spot plus premium.
func (e *Engine) Quote(spotPrice decimal.Decimal, durationDays int) (*OptionQuote, error) {
	if spotPrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, spotPrice)
	}

	rate, ok := premiumRates[durationDays]
	if !ok {
		return nil, fmt.Errorf("%w: %d days", ErrInvalidDuration, durationDays)
	}

	premium := spotPrice.Mul(rate)
	return &OptionQuote{
		DurationDays:     durationDays,
		PremiumRate:      rate,
		PremiumPerTon:    premium,
		TotalPricePerTon: spotPrice.Add(premium),
	}, nil
}

// QuoteAll prices every supported tier at the given spot price.
func (e *Engine) QuoteAll(spotPrice decimal.Decimal) ([]OptionQuote, error) {
	if spotPrice.LessThanOrEqual(decimal.Zero) {
		return nil, fmt.Errorf("%w: %s", ErrInvalidPrice, spotPrice)
	}

	durations := e.Durations()
	quotes := make([]OptionQuote, 0, len(durations))
	for _, d := range durations {
		q, err := e.Quote(spotPrice, d)
		if err != nil {
			return nil, err
		}
		quotes = append(quotes, *q)
	}
	return quotes, nil
}

// ContractPremium is the total premium for a contract of quantityTons:
// the per-ton premium scaled by quantity.
func (e *Engine) ContractPremium(spotPrice decimal.Decimal, durationDays int, quantityTons decimal.Decimal) (decimal.Decimal, error) {
	q, err := e.Quote(spotPrice, durationDays)
	if err != nil {
		return decimal.Zero, err
	}
	return q.PremiumPerTon.Mul(quantityTons), nil
}
