package db

import (
	"context"

	"fablink/models"
)

const orderSelect = `
        SELECT o.order_id, o.product_id, o.created_at, p.designer_id, p.name AS product_name
        FROM orders o
        JOIN product p ON p.id = o.product_id`

func (s *Storage) CreateOrder(ctx context.Context, o *models.Order) error {
	query := `
        INSERT INTO orders (product_id)
        VALUES ($1)
        RETURNING order_id, created_at`
	return translate(s.db.QueryRowContext(ctx, query, o.ProductID).Scan(&o.OrderID, &o.CreatedAt))
}

func (s *Storage) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	o := &models.Order{}
	if err := s.db.GetContext(ctx, o, orderSelect+` WHERE o.order_id=$1`, orderID); err != nil {
		return nil, translate(err)
	}
	return o, nil
}

func (s *Storage) ListDesignerOrders(ctx context.Context, designerID int64, limit, offset int) ([]models.Order, error) {
	orders := []models.Order{}
	query := orderSelect + `
        WHERE p.designer_id=$1
        ORDER BY o.created_at DESC, o.order_id DESC
        LIMIT $2 OFFSET $3`
	if err := s.db.SelectContext(ctx, &orders, query, designerID, limit, offset); err != nil {
		return nil, translate(err)
	}
	return orders, nil
}

// ListOrderSnapshots все заказы для пересинхронизации designer_orders
func (s *Storage) ListOrderSnapshots(ctx context.Context) ([]models.OrderSnapshot, error) {
	snapshots := []models.OrderSnapshot{}
	query := `
        SELECT o.order_id, p.designer_id, o.product_id
        FROM orders o
        JOIN product p ON p.id = o.product_id
        ORDER BY o.order_id`
	if err := s.db.SelectContext(ctx, &snapshots, query); err != nil {
		return nil, translate(err)
	}
	return snapshots, nil
}
