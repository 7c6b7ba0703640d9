package registry

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

var (
	lookupDuration = promauto.NewHistogram(prometheus.HistogramOpts{
		Namespace: "checkin",
		Subsystem: "registry",
		Name:      "lookup_duration_seconds",
		Help:      "Duration of voter registry lookups",
	})

	lookupFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Namespace: "checkin",
		Subsystem: "registry",
		Name:      "lookup_failures_total",
		Help:      "Number of failed voter registry lookups",
	}, []string{"reason"})
)

// ErrVoterNotFound indicates the registry has no record for the id number.
var ErrVoterNotFound = errors.New("voter not found in registry")

// Voter is the demographic record the registry returns for an id number.
type Voter struct {
	IDNumber      string `json:"idNumber"`
	Name          string `json:"name"`
	DateOfBirth   string `json:"dateOfBirth"`
	Sex           string `json:"sex"`
	County        string `json:"county"`
	Constituency  string `json:"constituency"`
	Ward          string `json:"ward"`
	PollingCenter string `json:"pollingCenter"`
}

// Config defines the registry client options.
type Config struct {
	BaseURL string
	APIKey  string
	Timeout time.Duration
	Logger  zerolog.Logger
}

// Client queries the external voter registry. The registry is an opaque
// oracle: lookups carry no transactional relationship to the ledger.
type Client struct {
	baseURL    string
	apiKey     string
	httpClient *http.Client
	tracer     trace.Tracer
	logger     zerolog.Logger
}

// New builds a registry client from the provided configuration.
func New(cfg Config) (*Client, error) {
	if cfg.BaseURL == "" {
		return nil, fmt.Errorf("registry base url is required")
	}
	if _, err := url.Parse(cfg.BaseURL); err != nil {
		return nil, fmt.Errorf("invalid registry base url: %w", err)
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		baseURL:    cfg.BaseURL,
		apiKey:     cfg.APIKey,
		httpClient: &http.Client{Timeout: timeout},
		tracer:     otel.Tracer("github.com/noah-isme/checkin-go-api/pkg/registry"),
		logger:     cfg.Logger.With().Str("component", "registry_client").Logger(),
	}, nil
}

// Lookup fetches the voter record for an id number. A registry miss is
// reported as ErrVoterNotFound, any transport or decoding problem as an error.
func (c *Client) Lookup(parent context.Context, idNumber string) (Voter, error) {
	ctx, span := c.tracer.Start(parent, "registry.lookup", trace.WithAttributes(
		attribute.String("registry.base_url", c.baseURL),
	))
	defer span.End()

	endpoint := fmt.Sprintf("%s/voters/%s", c.baseURL, url.PathEscape(idNumber))
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint, nil)
	if err != nil {
		return Voter{}, fmt.Errorf("failed to build registry request: %w", err)
	}
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	lookupDuration.Observe(time.Since(start).Seconds())
	if err != nil {
		lookupFailures.WithLabelValues("transport").Inc()
		span.RecordError(err)
		span.SetStatus(codes.Error, "registry_request_failed")
		return Voter{}, fmt.Errorf("registry request failed: %w", err)
	}
	defer resp.Body.Close()

	switch {
	case resp.StatusCode == http.StatusNotFound:
		span.SetAttributes(attribute.Bool("registry.hit", false))
		return Voter{}, ErrVoterNotFound
	case resp.StatusCode != http.StatusOK:
		lookupFailures.WithLabelValues("status").Inc()
		span.SetStatus(codes.Error, "registry_unexpected_status")
		return Voter{}, fmt.Errorf("registry returned status %d", resp.StatusCode)
	}

	var voter Voter
	if err := json.NewDecoder(resp.Body).Decode(&voter); err != nil {
		lookupFailures.WithLabelValues("decode").Inc()
		span.RecordError(err)
		return Voter{}, fmt.Errorf("failed to decode registry response: %w", err)
	}

	span.SetAttributes(attribute.Bool("registry.hit", true))
	c.logger.Debug().Str("id_number", idNumber).Msg("registry lookup hit")

	return voter, nil
}
