package storefront

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"ecostore/internal/domain"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// APIError is a non-2xx answer from the catalog API.
type APIError struct {
	Status  int
	Message string
	Details []string
}

func (e *APIError) Error() string {
	if len(e.Details) == 0 {
		return fmt.Sprintf("api error %d: %s", e.Status, e.Message)
	}
	return fmt.Sprintf("api error %d: %s (%s)", e.Status, e.Message, strings.Join(e.Details, "; "))
}

// IsNotFound reports whether err is a 404 from the API.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Status == http.StatusNotFound
}

// APIClient talks to the catalog REST API.
type APIClient struct {
	baseURL string
	client  *http.Client
	logger  *zap.Logger
}

// NewAPIClient creates a client for the API rooted at baseURL
// (for example http://localhost:5000/api).
func NewAPIClient(baseURL string, timeout time.Duration, logger *zap.Logger) *APIClient {
	return &APIClient{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		client:  &http.Client{Timeout: timeout},
		logger:  logger,
	}
}

func (c *APIClient) ListProducts(ctx context.Context) ([]domain.Product, error) {
	products := []domain.Product{}
	if err := c.do(ctx, http.MethodGet, "/products", nil, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// SearchProducts omits blank filters from the query string.
func (c *APIClient) SearchProducts(ctx context.Context, query, category string) ([]domain.Product, error) {
	params := url.Values{}
	if query != "" {
		params.Set("query", query)
	}
	if category != "" {
		params.Set("category", category)
	}

	products := []domain.Product{}
	if err := c.do(ctx, http.MethodGet, "/products/search", params, nil, &products); err != nil {
		return nil, err
	}
	return products, nil
}

func (c *APIClient) GetProduct(ctx context.Context, id int64) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodGet, productPath(id), nil, nil, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *APIClient) CreateProduct(ctx context.Context, fields domain.ProductFields) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodPost, "/products", nil, fields, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *APIClient) UpdateProduct(ctx context.Context, id int64, fields domain.ProductFields) (*domain.Product, error) {
	var product domain.Product
	if err := c.do(ctx, http.MethodPut, productPath(id), nil, fields, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

func (c *APIClient) DeleteProduct(ctx context.Context, id int64) error {
	return c.do(ctx, http.MethodDelete, productPath(id), nil, nil, nil)
}

func (c *APIClient) Categories(ctx context.Context) ([]domain.Category, error) {
	categories := []domain.Category{}
	if err := c.do(ctx, http.MethodGet, "/categories", nil, nil, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// Health returns nil when the API answers its liveness check.
func (c *APIClient) Health(ctx context.Context) error {
	return c.do(ctx, http.MethodGet, "/health", nil, nil, nil)
}

func productPath(id int64) string {
	return "/products/" + strconv.FormatInt(id, 10)
}

func (c *APIClient) do(ctx context.Context, method, path string, query url.Values, in, out interface{}) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("failed to encode request: %w", err)
		}
		body = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, body)
	if err != nil {
		return fmt.Errorf("failed to build request: %w", err)
	}
	requestID := uuid.NewString()
	req.Header.Set("Accept", "application/json")
	req.Header.Set("X-Request-Id", requestID)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.client.Do(req)
	if err != nil {
		c.logger.Warn("API request failed",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Error(err),
		)
		return fmt.Errorf("failed to call %s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := decodeAPIError(resp)
		c.logger.Warn("API request rejected",
			zap.String("method", method),
			zap.String("path", path),
			zap.String("request_id", requestID),
			zap.Int("status", apiErr.Status),
			zap.String("error", apiErr.Message),
		)
		return apiErr
	}

	if out == nil {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode response: %w", err)
	}
	return nil
}

// decodeAPIError understands both {error, details:[...]} handler bodies and
// the {success:false, error, details:"..."} envelope.
func decodeAPIError(resp *http.Response) *APIError {
	apiErr := &APIError{Status: resp.StatusCode, Message: http.StatusText(resp.StatusCode)}

	var body struct {
		Error   string          `json:"error"`
		Details json.RawMessage `json:"details"`
	}
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<20)).Decode(&body); err != nil {
		return apiErr
	}

	if body.Error != "" {
		apiErr.Message = body.Error
	}

	var list []string
	var single string
	switch {
	case len(body.Details) == 0:
	case json.Unmarshal(body.Details, &list) == nil:
		apiErr.Details = list
	case json.Unmarshal(body.Details, &single) == nil && single != "":
		apiErr.Details = []string{single}
	}

	return apiErr
}
