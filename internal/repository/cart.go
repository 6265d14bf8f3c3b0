package repository

import (
	"context"
	"sort"
	"strings"

	"github.com/rookgm/homechef/internal/models"
	"github.com/rookgm/homechef/internal/repository/postgres"
)

const (
	upsertCartItemQuery = `
						INSERT INTO cart_items (customer_id, product_id, quantity, condiment_ids, condiment_key)
						VALUES ($1, $2, $3, $4, $5)
						ON CONFLICT (customer_id, product_id, condiment_key)
						DO UPDATE SET quantity = cart_items.quantity + EXCLUDED.quantity
						RETURNING id, customer_id, product_id, quantity, condiment_ids, added_at
`
	selectCartItemsQuery = `
						SELECT id, customer_id, product_id, quantity, condiment_ids, added_at FROM cart_items
						WHERE customer_id = $1
						ORDER BY added_at, id
`
	deleteCartItemsQuery = `
						DELETE FROM cart_items
						WHERE customer_id = $1
`
)

// CartRepository is the cart store backed by PostgreSQL
type CartRepository struct {
	db *postgres.DB
}

// NewCartRepository creates new CartRepository instance
func NewCartRepository(db *postgres.DB) *CartRepository {
	return &CartRepository{db: db}
}

// AddCartItem adds item to the cart. A line with the same product and
// condiments has its quantity increased instead.
func (cr *CartRepository) AddCartItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	condiments := append([]string{}, item.CondimentIDs...)
	sort.Strings(condiments)

	res := models.CartItem{}
	var customerID int64
	err := cr.db.QueryRow(ctx, upsertCartItemQuery,
		int64(item.CustomerID),
		item.ProductID,
		item.Quantity,
		condiments,
		strings.Join(condiments, ","),
	).Scan(&res.ID, &customerID, &res.ProductID, &res.Quantity, &res.CondimentIDs, &res.AddedAt)
	if err != nil {
		return nil, err
	}
	res.CustomerID = uint64(customerID)

	return &res, nil
}

// ListCartItems returns cart lines of the customer
func (cr *CartRepository) ListCartItems(ctx context.Context, customerID uint64) ([]models.CartItem, error) {
	rows, err := cr.db.Query(ctx, selectCartItemsQuery, int64(customerID))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var items []models.CartItem

	for rows.Next() {
		item := models.CartItem{}
		var cid int64
		if err := rows.Scan(&item.ID, &cid, &item.ProductID, &item.Quantity, &item.CondimentIDs, &item.AddedAt); err != nil {
			return nil, err
		}
		item.CustomerID = uint64(cid)
		items = append(items, item)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

// ClearCart removes all cart lines of the customer
func (cr *CartRepository) ClearCart(ctx context.Context, customerID uint64) error {
	_, err := cr.db.Exec(ctx, deleteCartItemsQuery, int64(customerID))
	return err
}
