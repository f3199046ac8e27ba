package connection

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/mesh-intelligence/prospyr/pkg/types"
)

// Header names the ProsperWorks API authenticates with.
const (
	HeaderAccessToken = "X-PW-AccessToken"
	HeaderApplication = "X-PW-Application"
	HeaderUserEmail   = "X-PW-UserEmail"
	HeaderRequestID   = "X-Request-Id"

	applicationName = "developer_api"
)

// HTTP is a types.Connection over net/http. Every call is a single request;
// non-2xx statuses are returned as responses, not errors.
type HTTP struct {
	config  types.Config
	baseURL *url.URL
	client  *http.Client
	logger  *zap.Logger
}

var _ types.Connection = (*HTTP)(nil)

// NewHTTP creates a connection from cfg after filling defaults and
// validating it. A nil logger disables logging.
func NewHTTP(cfg types.Config, logger *zap.Logger) (*HTTP, error) {
	cfg = cfg.WithDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	base, err := url.Parse(cfg.BaseURL)
	if err != nil {
		return nil, fmt.Errorf("parse base url: %w", err)
	}
	if !strings.HasSuffix(base.Path, "/") {
		base.Path += "/"
	}

	if logger == nil {
		logger = zap.NewNop()
	}

	return &HTTP{
		config:  cfg,
		baseURL: base,
		client:  &http.Client{Timeout: cfg.Timeout},
		logger:  logger.Named("connection"),
	}, nil
}

// BuildAbsoluteURL resolves path against the base URL. A leading slash on
// path is ignored so that paths stay under the API root.
func (c *HTTP) BuildAbsoluteURL(path string) string {
	ref, err := url.Parse(strings.TrimPrefix(path, "/"))
	if err != nil {
		return c.baseURL.String() + strings.TrimPrefix(path, "/")
	}
	return c.baseURL.ResolveReference(ref).String()
}

// Get issues a GET request.
func (c *HTTP) Get(ctx context.Context, url string) (*types.Response, error) {
	return c.do(ctx, http.MethodGet, url, nil)
}

// Post issues a POST request with body encoded as JSON.
func (c *HTTP) Post(ctx context.Context, url string, body any) (*types.Response, error) {
	return c.do(ctx, http.MethodPost, url, body)
}

// Put issues a PUT request with body encoded as JSON.
func (c *HTTP) Put(ctx context.Context, url string, body any) (*types.Response, error) {
	return c.do(ctx, http.MethodPut, url, body)
}

// Delete issues a DELETE request.
func (c *HTTP) Delete(ctx context.Context, url string) (*types.Response, error) {
	return c.do(ctx, http.MethodDelete, url, nil)
}

func (c *HTTP) do(ctx context.Context, method, endpoint string, body any) (*types.Response, error) {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("marshal request body: %w", err)
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	requestID := newRequestID()
	req.Header.Set(HeaderAccessToken, c.config.AccessToken)
	req.Header.Set(HeaderApplication, applicationName)
	req.Header.Set(HeaderUserEmail, c.config.UserEmail)
	req.Header.Set(HeaderRequestID, requestID)
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.logger.Debug("Sending request",
		zap.String("method", method),
		zap.String("url", endpoint),
		zap.String("request_id", requestID))

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%s %s: %w", strings.ToLower(method), endpoint, err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode >= 300 {
		c.logger.Warn("API returned error status",
			zap.String("method", method),
			zap.String("url", endpoint),
			zap.String("request_id", requestID),
			zap.Int("status", resp.StatusCode))
	}

	return &types.Response{StatusCode: resp.StatusCode, Body: data}, nil
}

// newRequestID generates a UUID v7 used to correlate a request in logs.
func newRequestID() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New().String()
	}
	return id.String()
}
