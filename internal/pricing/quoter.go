package pricing

import (
	"context"
	"fmt"
	"math"
	"math/big"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"
	"go.uber.org/zap"

	"github.com/nftpulse/notifier/internal/adapter"
	"github.com/nftpulse/notifier/internal/logger"
)

// Quoter converts a currency symbol into its current USD rate.
// Embedded USD figures in source payloads are never trusted; every USD
// amount shown to a recipient is recomputed through this interface.
//
//go:generate mockgen -source=quoter.go -destination=../mocks/quoter.go -package=mocks -mock_names=Quoter=MockQuoter
type Quoter interface {
	// QuoteUSD returns the USD value of one whole unit of currency
	QuoteUSD(ctx context.Context, currency string) (float64, error)
}

// Config holds configuration for the HTTP quoter
type Config struct {
	// QuoteURL is the quote endpoint; the currency symbol is passed as a query parameter
	QuoteURL string
	// APIKey is sent as a header when set
	APIKey string
}

type httpQuoter struct {
	config  Config
	client  adapter.HTTPClient
	breaker *gobreaker.CircuitBreaker[float64]
}

// QuoteResponse is the quote endpoint's response shape
type QuoteResponse struct {
	Symbol string  `json:"symbol"`
	USD    float64 `json:"usd"`
}

// NewHTTPQuoter creates a Quoter backed by an external quote endpoint.
// A circuit breaker sheds load from the endpoint when it degrades; an
// open breaker surfaces as a quote error and the caller renders the
// notification without a USD figure.
func NewHTTPQuoter(cfg Config, client adapter.HTTPClient) Quoter {
	breaker := gobreaker.NewCircuitBreaker[float64](gobreaker.Settings{
		Name:        "price-quoter",
		MaxRequests: 3,
		Interval:    time.Minute,
		Timeout:     30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 5
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Price quoter circuit breaker state changed",
				zap.String("breaker", name),
				zap.String("from", from.String()),
				zap.String("to", to.String()))
		},
	})

	return &httpQuoter{
		config:  cfg,
		client:  client,
		breaker: breaker,
	}
}

// QuoteUSD returns the USD value of one whole unit of currency
func (q *httpQuoter) QuoteUSD(ctx context.Context, currency string) (float64, error) {
	currency = strings.ToUpper(strings.TrimSpace(currency))
	if currency == "" {
		return 0, fmt.Errorf("currency is required")
	}

	quote, err := q.breaker.Execute(func() (float64, error) {
		endpoint := fmt.Sprintf("%s?symbol=%s", q.config.QuoteURL, url.QueryEscape(currency))

		var headers map[string]string
		if q.config.APIKey != "" {
			headers = map[string]string{"X-API-Key": q.config.APIKey}
		}

		var resp QuoteResponse
		if err := q.client.Get(ctx, endpoint, headers, &resp); err != nil {
			return 0, fmt.Errorf("failed to fetch quote: %w", err)
		}

		if resp.USD <= 0 {
			return 0, fmt.Errorf("quote endpoint returned non-positive rate %f for %s", resp.USD, currency)
		}

		return resp.USD, nil
	})
	if err != nil {
		return 0, fmt.Errorf("failed to quote %s: %w", currency, err)
	}

	return quote, nil
}

// ComputeUSD converts an integer minor-unit amount into USD using the
// token's decimals and an externally quoted rate. Returns an error when
// the amount does not parse as a base-10 integer.
func ComputeUSD(amountMinor string, decimals int, quote float64) (float64, error) {
	amount, ok := new(big.Float).SetString(amountMinor)
	if !ok {
		return 0, fmt.Errorf("invalid minor-unit amount %q", amountMinor)
	}

	scale := new(big.Float).SetFloat64(math.Pow10(decimals))
	whole := new(big.Float).Quo(amount, scale)

	usd, _ := new(big.Float).Mul(whole, big.NewFloat(quote)).Float64()
	return usd, nil
}
