package reviews

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"time"

	"github.com/rookgm/homechef/internal/models"
)

// Client represents HTTP client for the reviews service
type Client struct {
	client  *http.Client
	baseURL string
}

// NewClient creates new reviews Client instance
func NewClient(baseURL string) *Client {
	return &Client{
		client: &http.Client{
			Timeout: 5 * time.Second,
		},
		baseURL: baseURL,
	}
}

type createReviewRequest struct {
	OrderID    string `json:"order_id"`
	ProductID  string `json:"product_id"`
	CustomerID uint64 `json:"customer_id"`
	Rating     int    `json:"rating"`
	Comment    string `json:"comment"`
}

type createReviewResponse struct {
	ID string `json:"id"`
}

// CreateReview creates a review and returns its id
// 201 — отзыв создан.
// 409 — отзыв на товар по заказу уже существует.
// 500 — внутренняя ошибка сервера.
func (c *Client) CreateReview(ctx context.Context, review models.Review) (string, error) {
	// POST /api/reviews
	u, err := url.JoinPath(c.baseURL, "api", "reviews")
	if err != nil {
		return "", err
	}

	body, err := json.Marshal(createReviewRequest{
		OrderID:    review.OrderID.String(),
		ProductID:  review.ProductID,
		CustomerID: review.CustomerID,
		Rating:     review.Rating,
		Comment:    review.Comment,
	})
	if err != nil {
		return "", err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, u, bytes.NewReader(body))
	if err != nil {
		return "", err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return "", err
	}
	defer resp.Body.Close()

	switch resp.StatusCode {
	case http.StatusOK, http.StatusCreated:
		res := createReviewResponse{}
		if err := json.NewDecoder(resp.Body).Decode(&res); err != nil {
			return "", fmt.Errorf("decode review response: %w", err)
		}
		if res.ID == "" {
			return "", fmt.Errorf("reviews: empty review id")
		}
		return res.ID, nil
	case http.StatusConflict:
		return "", models.ErrAlreadyReviewed
	case http.StatusInternalServerError:
		return "", models.ErrInternalError
	default:
		return "", fmt.Errorf("reviews: unexpected status %d", resp.StatusCode)
	}
}
