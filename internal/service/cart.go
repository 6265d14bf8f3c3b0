package service

import (
	"context"
	"errors"
	"fmt"

	"github.com/rookgm/homechef/internal/logger"
	"github.com/rookgm/homechef/internal/models"
	"github.com/rookgm/homechef/internal/pricing"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
)

// QuoteLine is a line to be priced
type QuoteLine struct {
	ProductID    string
	Quantity     int
	CondimentIDs []string
}

// PricedLine is a priced cart line
type PricedLine struct {
	ProductID  string
	ChefID     uint64
	Name       string
	Quantity   int
	ItemPrice  decimal.Decimal
	Total      decimal.Decimal
	Condiments []models.Condiment
	Available  bool
}

// Quote is a set of priced lines with order totals
type Quote struct {
	Lines   []PricedLine
	Summary pricing.Summary
}

// priceLine fetches product from catalog and prices the line.
// Missing or unavailable products yield models.ErrProductUnavailable.
func priceLine(ctx context.Context, catalog Catalog, line QuoteLine) (PricedLine, error) {
	product, err := catalog.GetProduct(ctx, line.ProductID)
	if err != nil {
		if errors.Is(err, models.ErrDataNotFound) {
			return PricedLine{ProductID: line.ProductID}, fmt.Errorf("%w: %s", models.ErrProductUnavailable, line.ProductID)
		}
		return PricedLine{}, err
	}

	priced := PricedLine{
		ProductID: product.ID,
		ChefID:    product.ChefID,
		Name:      product.Name,
		Quantity:  pricing.Quantity(line.Quantity),
	}
	if !product.IsAvailable {
		return priced, fmt.Errorf("%w: %s", models.ErrProductUnavailable, line.ProductID)
	}

	l, err := pricing.Price(product.Price, line.Quantity, line.CondimentIDs, product.Condiments)
	if err != nil {
		return priced, err
	}

	priced.Quantity = l.Quantity
	priced.ItemPrice = l.ItemPrice
	priced.Total = l.Total
	priced.Condiments = l.Condiments
	priced.Available = true

	return priced, nil
}

// CartService implements live cart operations and price quotes
type CartService struct {
	carts   CartRepository
	catalog Catalog
}

// NewCartService creates new CartService instance
func NewCartService(carts CartRepository, catalog Catalog) *CartService {
	return &CartService{
		carts:   carts,
		catalog: catalog,
	}
}

// AddItem validates the line against the catalog and adds it to the cart
func (cs *CartService) AddItem(ctx context.Context, item *models.CartItem) (*models.CartItem, error) {
	if item.ProductID == "" {
		return nil, models.ErrValidation
	}

	line := QuoteLine{ProductID: item.ProductID, Quantity: item.Quantity, CondimentIDs: item.CondimentIDs}
	priced, err := priceLine(ctx, cs.catalog, line)
	if err != nil {
		return nil, err
	}
	item.Quantity = priced.Quantity

	return cs.carts.AddCartItem(ctx, item)
}

// GetCart prices the customer cart. Unavailable lines are returned but excluded from totals.
func (cs *CartService) GetCart(ctx context.Context, customerID uint64) (*Quote, error) {
	items, err := cs.carts.ListCartItems(ctx, customerID)
	if err != nil {
		return nil, err
	}

	quote := &Quote{Lines: make([]PricedLine, 0, len(items))}
	totals := make([]decimal.Decimal, 0, len(items))

	for _, item := range items {
		priced, err := priceLine(ctx, cs.catalog, QuoteLine{
			ProductID:    item.ProductID,
			Quantity:     item.Quantity,
			CondimentIDs: item.CondimentIDs,
		})
		if err != nil {
			if !errors.Is(err, models.ErrProductUnavailable) && !errors.Is(err, models.ErrUnknownCondiment) {
				return nil, err
			}
			logger.Log.Debug("cart line is not orderable",
				zap.Uint64("customer", customerID),
				zap.String("product", item.ProductID),
				zap.Error(err))
			priced.ProductID = item.ProductID
			priced.Available = false
			quote.Lines = append(quote.Lines, priced)
			continue
		}
		quote.Lines = append(quote.Lines, priced)
		totals = append(totals, priced.Total)
	}

	quote.Summary = pricing.Summarize(totals...)

	return quote, nil
}

// Quote prices arbitrary lines. Every line must be orderable.
func (cs *CartService) Quote(ctx context.Context, lines []QuoteLine) (*Quote, error) {
	if len(lines) == 0 {
		return nil, models.ErrValidation
	}

	quote := &Quote{Lines: make([]PricedLine, 0, len(lines))}
	totals := make([]decimal.Decimal, 0, len(lines))

	for _, line := range lines {
		priced, err := priceLine(ctx, cs.catalog, line)
		if err != nil {
			return nil, err
		}
		quote.Lines = append(quote.Lines, priced)
		totals = append(totals, priced.Total)
	}

	quote.Summary = pricing.Summarize(totals...)

	return quote, nil
}
