package suggest

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/cenkalti/backoff/v4"
	"github.com/sony/gobreaker"
	"go.uber.org/zap"

	"github.com/mahamedadballa/circlechat-server/internal/apperr"
)

// FallbackSuggestions is returned whenever the suggestion service cannot be
// reached. The feature is cosmetic; its failures are never user-visible.
var FallbackSuggestions = []string{"Got it.", "Thanks!", "Can you explain more?"}

type request struct {
	ChatHistory string `json:"chat_history"`
	UserInput   string `json:"user_input"`
}

type response struct {
	Suggestions []string `json:"suggestions"`
}

// Client calls the generative suggestion endpoint with retries inside a
// circuit breaker so a flapping upstream does not hold every send hostage.
type Client struct {
	url     string
	http    *http.Client
	breaker *gobreaker.CircuitBreaker
	log     *zap.Logger
}

func NewClient(url string, log *zap.Logger) *Client {
	cb := gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:    "suggestions",
		Timeout: 30 * time.Second,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= 3
		},
	})
	return &Client{
		url:     url,
		http:    &http.Client{Timeout: 5 * time.Second},
		breaker: cb,
		log:     log,
	}
}

// Suggest returns reply suggestions for the given history and draft input.
// Any failure falls back to the static list; the error return is always nil
// so callers cannot mistake a cosmetic outage for a real one.
func (c *Client) Suggest(ctx context.Context, history, latestInput string) []string {
	if c.url == "" {
		return FallbackSuggestions
	}
	out, err := c.breaker.Execute(func() (any, error) {
		return c.fetch(ctx, history, latestInput)
	})
	if err != nil {
		c.log.Warn("suggestion service unavailable, using fallback", zap.Error(err))
		return FallbackSuggestions
	}
	suggestions := out.([]string)
	if len(suggestions) == 0 {
		return FallbackSuggestions
	}
	return suggestions
}

func (c *Client) fetch(ctx context.Context, history, latestInput string) ([]string, error) {
	body, err := json.Marshal(request{ChatHistory: history, UserInput: latestInput})
	if err != nil {
		return nil, err
	}

	var suggestions []string
	operation := func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url, bytes.NewReader(body))
		if err != nil {
			return backoff.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/json")

		resp, err := c.http.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode >= 500 {
			io.Copy(io.Discard, resp.Body)
			return fmt.Errorf("%w: status %d", apperr.ErrSuggestionService, resp.StatusCode)
		}
		if resp.StatusCode != http.StatusOK {
			io.Copy(io.Discard, resp.Body)
			return backoff.Permanent(fmt.Errorf("%w: status %d", apperr.ErrSuggestionService, resp.StatusCode))
		}

		var r response
		if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
			return backoff.Permanent(fmt.Errorf("%w: decode: %v", apperr.ErrSuggestionService, err))
		}
		suggestions = r.Suggestions
		return nil
	}

	b := backoff.NewExponentialBackOff()
	b.MaxElapsedTime = 4 * time.Second
	if err := backoff.Retry(operation, backoff.WithContext(b, ctx)); err != nil {
		return nil, err
	}
	return suggestions, nil
}
