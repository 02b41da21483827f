package db

import (
	"context"

	"fablink/models"
)

const requestOrderSelect = `
        SELECT ro.id, ro.order_id, ro.designer_name, ro.product_name, ro.quantity, ro.due_date,
               ro.work_sheet_path, ro.phase, ro.created_at, p.designer_id,
               EXISTS (SELECT 1 FROM bid_factory b WHERE b.request_order_id = ro.id AND b.is_matched) AS matched
        FROM request_order ro
        JOIN orders o ON o.order_id = ro.order_id
        JOIN product p ON p.id = o.product_id`

func (s *Storage) CreateRequestOrder(ctx context.Context, ro *models.RequestOrder) error {
	query := `
        INSERT INTO request_order (order_id, designer_name, product_name, quantity, due_date, work_sheet_path, phase)
        VALUES ($1, $2, $3, $4, $5, $6, $7)
        RETURNING id, created_at`
	err := s.db.QueryRowContext(ctx, query,
		ro.OrderID, ro.DesignerName, ro.ProductName, ro.Quantity, ro.DueDate, ro.WorkSheetPath, ro.Phase,
	).Scan(&ro.ID, &ro.CreatedAt)
	return translate(err)
}

func (s *Storage) GetRequestOrder(ctx context.Context, id int64) (*models.RequestOrder, error) {
	ro := &models.RequestOrder{}
	if err := s.db.GetContext(ctx, ro, requestOrderSelect+` WHERE ro.id=$1`, id); err != nil {
		return nil, translate(err)
	}
	return ro, nil
}

func (s *Storage) ListDesignerRequestOrders(ctx context.Context, designerID int64, limit, offset int) ([]models.RequestOrder, error) {
	list := []models.RequestOrder{}
	query := requestOrderSelect + `
        WHERE p.designer_id=$1
        ORDER BY ro.created_at DESC, ro.id DESC
        LIMIT $2 OFFSET $3`
	if err := s.db.SelectContext(ctx, &list, query, designerID, limit, offset); err != nil {
		return nil, translate(err)
	}
	return list, nil
}

// ListOpenRequestOrders запросы без выбранной ставки, ближайший срок первым
func (s *Storage) ListOpenRequestOrders(ctx context.Context, limit, offset int) ([]models.RequestOrder, error) {
	list := []models.RequestOrder{}
	query := requestOrderSelect + `
        WHERE NOT EXISTS (SELECT 1 FROM bid_factory b WHERE b.request_order_id = ro.id AND b.is_matched)
        ORDER BY ro.due_date, ro.id
        LIMIT $1 OFFSET $2`
	if err := s.db.SelectContext(ctx, &list, query, limit, offset); err != nil {
		return nil, translate(err)
	}
	return list, nil
}
