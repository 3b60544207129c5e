// Package credit validates store credit codes against the storefront
// payments API.
package credit

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	apperrors "github.com/laviddichterman/wario-ux-shared/internal/platform/errors"
	"github.com/laviddichterman/wario-ux-shared/internal/platform/timeouts"
	"github.com/laviddichterman/wario-ux-shared/internal/services/mirror/domain/catalog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	otelcodes "go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// ValidatePath is the storefront endpoint that validates and locks a code.
const ValidatePath = "/api/v1/payments/storecredit/validate"

// maxResponseBytes bounds the decoded response body.
const maxResponseBytes = 64 << 10

// Type is the kind of value a credit code carries.
type Type string

const (
	TypeMoney    Type = "MONEY"
	TypeDiscount Type = "DISCOUNT"
)

// Lock is the opaque encrypted lock returned for a valid code. It is passed
// back verbatim when the credit is redeemed.
type Lock struct {
	Enc  string `json:"enc"`
	IV   string `json:"iv"`
	Auth string `json:"auth"`
}

// ValidateResponse is the validate-and-lock result. Lock, Amount and Type are
// only set when Valid is true.
type ValidateResponse struct {
	Valid  bool           `json:"valid"`
	Lock   *Lock          `json:"lock,omitempty"`
	Amount *catalog.Money `json:"amount,omitempty"`
	Type   Type           `json:"credit_type,omitempty"`
}

// Client calls the storefront payments API.
type Client struct {
	baseURL *url.URL
	http    *http.Client
	tracer  trace.Tracer
}

// Option configures a Client.
type Option func(*Client)

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(client *http.Client) Option {
	return func(c *Client) {
		if client != nil {
			c.http = client
		}
	}
}

// WithTracer overrides the global tracer.
func WithTracer(tracer trace.Tracer) Option {
	return func(c *Client) {
		if tracer != nil {
			c.tracer = tracer
		}
	}
}

// New builds a client for the storefront at baseURL.
func New(baseURL string, opts ...Option) (*Client, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return nil, fmt.Errorf("credit base url is required")
	}
	parsed, err := url.Parse(baseURL)
	if err != nil {
		return nil, fmt.Errorf("parse credit base url: %w", err)
	}
	if parsed.Scheme != "http" && parsed.Scheme != "https" {
		return nil, fmt.Errorf("credit base url %q must use http or https", baseURL)
	}
	c := &Client{
		baseURL: parsed,
		http:    &http.Client{Timeout: timeouts.UpstreamRequest},
		tracer:  otel.Tracer("github.com/laviddichterman/wario-ux-shared/internal/services/mirror/credit"),
	}
	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// Validate validates and locks a store credit code.
func (c *Client) Validate(ctx context.Context, code string) (ValidateResponse, error) {
	code = strings.TrimSpace(code)
	if code == "" {
		return ValidateResponse{}, apperrors.New(apperrors.CodeCreditCodeEmpty, "credit code is required")
	}
	ctx, span := c.tracer.Start(ctx, "mirror.credit.validate")
	defer span.End()

	resp, err := c.validate(ctx, code)
	if err != nil {
		span.RecordError(err)
		span.SetStatus(otelcodes.Error, err.Error())
		return ValidateResponse{}, err
	}
	span.SetAttributes(attribute.Bool("mirror.credit.valid", resp.Valid))
	return resp, nil
}

func (c *Client) validate(ctx context.Context, code string) (ValidateResponse, error) {
	endpoint := c.baseURL.JoinPath(ValidatePath)
	endpoint.RawQuery = url.Values{"code": []string{code}}.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, endpoint.String(), nil)
	if err != nil {
		return ValidateResponse{}, fmt.Errorf("build credit request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	start := time.Now()
	res, err := c.http.Do(req)
	if err != nil {
		return ValidateResponse{}, apperrors.Wrap(apperrors.CodeCreditUnavailable, "credit validation request failed", err)
	}
	defer res.Body.Close()

	if res.StatusCode != http.StatusOK {
		_, _ = io.Copy(io.Discard, io.LimitReader(res.Body, maxResponseBytes))
		return ValidateResponse{}, apperrors.Wrap(
			apperrors.CodeCreditUnavailable,
			"credit validation failed",
			fmt.Errorf("unexpected status %d after %s", res.StatusCode, time.Since(start).Round(time.Millisecond)),
		)
	}

	var out ValidateResponse
	if err := json.NewDecoder(io.LimitReader(res.Body, maxResponseBytes)).Decode(&out); err != nil {
		return ValidateResponse{}, apperrors.Wrap(apperrors.CodeCreditUnavailable, "decode credit response", err)
	}
	if !out.Valid {
		return ValidateResponse{Valid: false}, nil
	}
	return out, nil
}
