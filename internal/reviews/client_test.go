package reviews

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/google/uuid"
	"github.com/rookgm/homechef/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClient_CreateReview(t *testing.T) {
	orderID := uuid.New()

	tests := []struct {
		name    string
		status  int
		body    string
		wantID  string
		wantErr error
	}{
		{
			name:   "created_return_id",
			status: http.StatusCreated,
			body:   `{"id":"r-1"}`,
			wantID: "r-1",
		},
		{
			name:    "conflict_return_already_reviewed",
			status:  http.StatusConflict,
			wantErr: models.ErrAlreadyReviewed,
		},
		{
			name:    "internal_error",
			status:  http.StatusInternalServerError,
			wantErr: models.ErrInternalError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				assert.Equal(t, http.MethodPost, r.Method)
				assert.Equal(t, "/api/reviews", r.URL.Path)

				var req createReviewRequest
				require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
				assert.Equal(t, orderID.String(), req.OrderID)
				assert.Equal(t, "p1", req.ProductID)
				assert.Equal(t, 5, req.Rating)

				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			id, err := NewClient(srv.URL).CreateReview(context.Background(), models.Review{
				OrderID:    orderID,
				ProductID:  "p1",
				CustomerID: 1,
				Rating:     5,
				Comment:    "tasty",
			})
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantID, id)
		})
	}
}
