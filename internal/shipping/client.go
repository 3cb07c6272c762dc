package shipping

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sync"
	"time"

	"github.com/Sebastian-GonzalezLegal/estilo-fachero/internal/domain"
)

// ErrNotConfigured means the carrier integration has no credentials; callers
// must degrade to "no shipping quote available" instead of failing hard.
var ErrNotConfigured = errors.New("carrier integration is not configured")

// AuthError is a failed credential exchange with the carrier. Not worth an
// immediate retry; the request that triggered it fails.
type AuthError struct {
	Status int
	Reason string
}

func (e *AuthError) Error() string {
	return fmt.Sprintf("carrier auth failed (status %d): %s", e.Status, e.Reason)
}

// UpstreamError carries the carrier's status and body for diagnostics.
type UpstreamError struct {
	Status int
	Body   string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("carrier rate quote failed (status %d): %s", e.Status, e.Body)
}

// Config is the operator-provided carrier integration. OriginPostalCode is
// fixed per deployment, never per request.
type Config struct {
	BaseURL          string
	Username         string
	Password         string
	CustomerID       string
	OriginPostalCode string
}

func (c Config) Complete() bool {
	return c.BaseURL != "" && c.Username != "" && c.Password != "" &&
		c.CustomerID != "" && c.OriginPostalCode != ""
}

// refresh the token when it is this close to expiring
const tokenExpirySlack = 60 * time.Second

// Client talks to the carrier rate API. The bearer token is shared by all
// concurrent quote requests; the mutex makes refresh single-flight.
type Client struct {
	cfg  Config
	http *http.Client
	now  func() time.Time

	mu          sync.Mutex
	token       string
	tokenExpiry time.Time
}

func NewClient(cfg Config) *Client {
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: 15 * time.Second},
		now:  time.Now,
	}
}

func (c *Client) Configured() bool {
	return c.cfg.Complete()
}

type tokenResponse struct {
	Token  string `json:"token"`
	Expire string `json:"expire"`
}

// getToken returns the cached bearer token, exchanging credentials with the
// carrier when the cache is empty or about to expire.
func (c *Client) getToken(ctx context.Context) (string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.token != "" && c.tokenExpiry.Sub(c.now()) > tokenExpirySlack {
		return c.token, nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/token", nil)
	if err != nil {
		return "", fmt.Errorf("build token request: %w", err)
	}
	req.SetBasicAuth(c.cfg.Username, c.cfg.Password)

	resp, err := c.http.Do(req)
	if err != nil {
		return "", fmt.Errorf("carrier token request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return "", &AuthError{Status: resp.StatusCode, Reason: readBody(resp.Body)}
	}

	var tr tokenResponse
	if err := json.NewDecoder(resp.Body).Decode(&tr); err != nil {
		return "", &AuthError{Status: resp.StatusCode, Reason: fmt.Sprintf("malformed token body: %v", err)}
	}
	if tr.Token == "" {
		return "", &AuthError{Status: resp.StatusCode, Reason: "token field missing in response"}
	}

	expiry, err := time.Parse(time.RFC3339, tr.Expire)
	if err != nil {
		return "", &AuthError{Status: resp.StatusCode, Reason: fmt.Sprintf("unparsable token expiry %q", tr.Expire)}
	}

	c.token = tr.Token
	c.tokenExpiry = expiry
	return c.token, nil
}

type ratesRequest struct {
	CustomerID            string                   `json:"customerId"`
	PostalCodeOrigin      string                   `json:"postalCodeOrigin"`
	PostalCodeDestination string                   `json:"postalCodeDestination"`
	Dimensions            domain.PackageDimensions `json:"dimensions"`
}

// Rates quotes shipping for a package to a destination postal code.
func (c *Client) Rates(ctx context.Context, destinationPostalCode string, dims domain.PackageDimensions) (*domain.RateQuote, error) {
	if !c.Configured() {
		return nil, ErrNotConfigured
	}

	token, err := c.getToken(ctx)
	if err != nil {
		return nil, err
	}

	body, err := json.Marshal(ratesRequest{
		CustomerID:            c.cfg.CustomerID,
		PostalCodeOrigin:      c.cfg.OriginPostalCode,
		PostalCodeDestination: destinationPostalCode,
		Dimensions:            dims,
	})
	if err != nil {
		return nil, fmt.Errorf("marshal rates request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.BaseURL+"/rates", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("build rates request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+token)
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("carrier rates request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &UpstreamError{Status: resp.StatusCode, Body: readBody(resp.Body)}
	}

	var quote domain.RateQuote
	if err := json.NewDecoder(resp.Body).Decode(&quote); err != nil {
		return nil, fmt.Errorf("decode rates response: %w", err)
	}
	return &quote, nil
}

func readBody(r io.Reader) string {
	b, _ := io.ReadAll(io.LimitReader(r, 512))
	return string(b)
}
