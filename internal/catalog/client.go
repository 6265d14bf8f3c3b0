package catalog

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/rookgm/homechef/internal/models"
)

// default time of retry after
const delaySeconds = 60

// Client represents HTTP client for the product catalog
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates new catalog Client instance
func NewClient(baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: baseURL,
	}
}

// GetProduct returns catalog entry of product
// 200 — успешная обработка запроса.
// 404 — товар не найден.
// 429 — превышено количество запросов к сервису.
// 500 — внутренняя ошибка сервера.
func (c *Client) GetProduct(ctx context.Context, id string) (*models.Product, error) {
	// GET /api/products/{id}
	u, err := url.JoinPath(c.baseURL, "api", "products", url.PathEscape(id))
	if err != nil {
		return nil, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK:
		product := models.Product{}
		if err := json.NewDecoder(resp.Body).Decode(&product); err != nil {
			return nil, fmt.Errorf("decode product %q: %w", id, err)
		}
		return &product, nil
	case http.StatusNotFound:
		return nil, models.ErrDataNotFound
	case http.StatusTooManyRequests:
		return nil, models.NewTooManyRequestsError(retryAfter(resp.Header.Get("Retry-After")))
	case http.StatusInternalServerError:
		return nil, models.ErrInternalError
	default:
		return nil, fmt.Errorf("catalog: unexpected status %d for product %q", resp.StatusCode, id)
	}
}

// retryAfter parses Retry-After seconds, falling back to default delay
func retryAfter(val string) time.Duration {
	t, err := strconv.Atoi(val)
	if err != nil || t <= 0 {
		t = delaySeconds
	}
	return time.Duration(t) * time.Second
}
