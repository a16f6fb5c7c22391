package currency

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/go-resty/resty/v2"
	"github.com/shopspring/decimal"
	"github.com/sony/gobreaker/v2"
)

const targetCurrency = "INR"

var errMissingRate = errors.New("rate missing from response")

type ratesResponse struct {
	Base  string             `json:"base"`
	Rates map[string]float64 `json:"rates"`
}

// Converter turns USD amounts into whole rupees using a live rate. The rate
// is fetched on every call and never cached.
type Converter struct {
	client   *resty.Client
	ratesURL string
	breaker  *gobreaker.CircuitBreaker[decimal.Decimal]
}

func NewConverter(client *resty.Client, ratesURL string) *Converter {
	return &Converter{
		client:   client,
		ratesURL: ratesURL,
		breaker: gobreaker.NewCircuitBreaker[decimal.Decimal](gobreaker.Settings{
			Name:        "rate-service",
			MaxRequests: 1,
			Timeout:     30 * time.Second,
			ReadyToTrip: func(counts gobreaker.Counts) bool {
				return counts.ConsecutiveFailures >= 5
			},
			OnStateChange: func(name string, from, to gobreaker.State) {
				log.Printf("circuit breaker %s: %s -> %s", name, from, to)
			},
		}),
	}
}

// Convert returns the amount in INR rounded to the nearest rupee, or nil when
// the rate could not be obtained. Nil means unpriced, never zero.
func (c *Converter) Convert(ctx context.Context, amountUSD float64) *int64 {
	rate, err := c.breaker.Execute(func() (decimal.Decimal, error) {
		return c.fetchRate(ctx)
	})
	if err != nil {
		log.Printf("currency convert error: %v", err)
		return nil
	}

	inr := decimal.NewFromFloat(amountUSD).Mul(rate).Round(0).IntPart()
	return &inr
}

func (c *Converter) fetchRate(ctx context.Context) (decimal.Decimal, error) {
	var body ratesResponse
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParam("base", "USD").
		SetResult(&body).
		Get(c.ratesURL)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rate request failed: %w", err)
	}
	if resp.IsError() {
		return decimal.Zero, fmt.Errorf("rate service returned status %d", resp.StatusCode())
	}

	rate, ok := body.Rates[targetCurrency]
	if !ok || rate <= 0 {
		return decimal.Zero, fmt.Errorf("%s: %w", targetCurrency, errMissingRate)
	}
	return decimal.NewFromFloat(rate), nil
}
