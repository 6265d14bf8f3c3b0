package service

import "github.com/rookgm/homechef/internal/models"

func isOwner(order *models.Order, caller models.TokenPayload) bool {
	return order.CustomerID == caller.UserID
}

// isOrderChef reports whether caller is a seller with items in the order
func isOrderChef(order *models.Order, caller models.TokenPayload) bool {
	return caller.Role == models.RoleSeller && order.HasChef(caller.UserID)
}

// canAccess reports whether caller may read or cancel the order
func canAccess(order *models.Order, caller models.TokenPayload) bool {
	return caller.IsAdmin() || isOwner(order, caller) || isOrderChef(order, caller)
}
