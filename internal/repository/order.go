package repository

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/google/uuid"
	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/rookgm/homechef/internal/models"
	"github.com/rookgm/homechef/internal/repository/postgres"
)

const (
	insertOrderQuery = `
						INSERT INTO orders (id, customer_id, chef_ids, status, deleted, version, document, created_at, updated_at)
						VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
`
	selectOrderByIDQuery = `
						SELECT document, version FROM orders
						WHERE id = $1
`
	updateOrderQuery = `
						UPDATE orders
						SET status = $1, deleted = $2, version = $3, document = $4, updated_at = $5
						WHERE id = $6 AND version = $7
`
	orderExistsQuery = `
						SELECT EXISTS (SELECT 1 FROM orders WHERE id = $1)
`
	deleteOrderQuery = `
						DELETE FROM orders
						WHERE id = $1
`
)

// OrderRepository stores orders as versioned JSON documents
type OrderRepository struct {
	db *postgres.DB
}

// NewOrderRepository creates new OrderRepository instance
func NewOrderRepository(db *postgres.DB) *OrderRepository {
	return &OrderRepository{db: db}
}

// CreateOrder inserts new order document
func (or *OrderRepository) CreateOrder(ctx context.Context, order *models.Order) error {
	if order.Version == 0 {
		order.Version = 1
	}

	doc, err := json.Marshal(order)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	_, err = or.db.Exec(ctx, insertOrderQuery,
		order.ID,
		int64(order.CustomerID),
		chefIDs(order),
		string(order.Status),
		order.Deleted,
		order.Version,
		doc,
		order.CreatedAt,
		order.UpdatedAt,
	)
	if err != nil {
		if or.db.ErrorCode(err) == pgerrcode.UniqueViolation {
			return models.ErrConflictData
		}
		return err
	}

	return nil
}

// GetOrderByID returns order by id
func (or *OrderRepository) GetOrderByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var (
		doc     []byte
		version int64
	)
	err := or.db.QueryRow(ctx, selectOrderByIDQuery, id).Scan(&doc, &version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, models.ErrDataNotFound
		}
		return nil, err
	}

	order, err := decodeOrder(doc, version)
	if err != nil {
		return nil, err
	}

	return order, nil
}

// UpdateOrder replaces the order document if its stored version still equals
// expectedVersion. On success order.Version is bumped.
func (or *OrderRepository) UpdateOrder(ctx context.Context, order *models.Order, expectedVersion int64) error {
	next := *order
	next.Version = expectedVersion + 1
	next.UpdatedAt = time.Now().UTC()

	doc, err := json.Marshal(&next)
	if err != nil {
		return fmt.Errorf("marshal order: %w", err)
	}

	cmd, err := or.db.Exec(ctx, updateOrderQuery,
		string(next.Status),
		next.Deleted,
		next.Version,
		doc,
		next.UpdatedAt,
		next.ID,
		expectedVersion,
	)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		var exists bool
		if err := or.db.QueryRow(ctx, orderExistsQuery, order.ID).Scan(&exists); err != nil {
			return err
		}
		if !exists {
			return models.ErrDataNotFound
		}
		return models.ErrConflict
	}

	*order = next

	return nil
}

// DeleteOrder removes order permanently
func (or *OrderRepository) DeleteOrder(ctx context.Context, id uuid.UUID) error {
	cmd, err := or.db.Exec(ctx, deleteOrderQuery, id)
	if err != nil {
		return err
	}

	if cmd.RowsAffected() == 0 {
		return models.ErrDataNotFound
	}

	return nil
}

// ListOrders returns orders matching filter, newest first
func (or *OrderRepository) ListOrders(ctx context.Context, filter models.OrderFilter) ([]models.Order, error) {
	statement := or.db.QueryBuilder.
		Select("document", "version").
		From("orders").
		OrderBy("created_at DESC")

	if filter.CustomerID != nil {
		statement = statement.Where(sq.Eq{"customer_id": int64(*filter.CustomerID)})
	}
	if filter.ChefID != nil {
		statement = statement.Where(sq.Expr("? = ANY(chef_ids)", int64(*filter.ChefID)))
	}
	if !filter.IncludeDeleted {
		statement = statement.Where(sq.Eq{"deleted": false})
	}

	query, args, err := statement.ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := or.db.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	orders := []models.Order{}

	for rows.Next() {
		var (
			doc     []byte
			version int64
		)
		if err := rows.Scan(&doc, &version); err != nil {
			return nil, err
		}
		order, err := decodeOrder(doc, version)
		if err != nil {
			return nil, err
		}
		orders = append(orders, *order)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return orders, nil
}

func decodeOrder(doc []byte, version int64) (*models.Order, error) {
	order := models.Order{}
	if err := json.Unmarshal(doc, &order); err != nil {
		return nil, fmt.Errorf("unmarshal order: %w", err)
	}
	// the column is authoritative
	order.Version = version
	return &order, nil
}

func chefIDs(order *models.Order) []int64 {
	ids := make([]int64, 0, len(order.ChefSubOrders))
	for _, id := range order.ChefIDs() {
		ids = append(ids, int64(id))
	}
	return ids
}
