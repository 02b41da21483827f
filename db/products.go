package db

import (
	"context"

	"fablink/models"
)

const productColumns = `id, designer_id, name, season, target_customer, concept, detail, image_path,
        size, quantity, due_date, created_at, updated_at`

func (s *Storage) CreateProduct(ctx context.Context, p *models.Product) error {
	query := `
        INSERT INTO product (designer_id, name, season, target_customer, concept, detail, image_path, size, quantity, due_date)
        VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
        RETURNING id, created_at, updated_at`
	err := s.db.QueryRowContext(ctx, query,
		p.DesignerID, p.Name, p.Season, p.TargetCustomer, p.Concept,
		p.Detail, p.ImagePath, p.Size, p.Quantity, p.DueDate,
	).Scan(&p.ID, &p.CreatedAt, &p.UpdatedAt)
	return translate(err)
}

func (s *Storage) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	p := &models.Product{}
	query := `SELECT ` + productColumns + ` FROM product WHERE id=$1`
	if err := s.db.GetContext(ctx, p, query, id); err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (s *Storage) ListDesignerProducts(ctx context.Context, designerID int64, limit, offset int) ([]models.Product, error) {
	products := []models.Product{}
	query := `
        SELECT ` + productColumns + `
        FROM product
        WHERE designer_id=$1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`
	if err := s.db.SelectContext(ctx, &products, query, designerID, limit, offset); err != nil {
		return nil, translate(err)
	}
	return products, nil
}

func (s *Storage) UpdateProduct(ctx context.Context, p *models.Product) error {
	query := `
        UPDATE product
        SET name=$1, season=$2, target_customer=$3, concept=$4, detail=$5, image_path=$6,
            size=$7, quantity=$8, due_date=$9, updated_at=NOW()
        WHERE id=$10
        RETURNING updated_at`
	err := s.db.QueryRowContext(ctx, query,
		p.Name, p.Season, p.TargetCustomer, p.Concept, p.Detail, p.ImagePath,
		p.Size, p.Quantity, p.DueDate, p.ID,
	).Scan(&p.UpdatedAt)
	return translate(err)
}

// UpdateProductSchedule меняет только тираж и срок
func (s *Storage) UpdateProductSchedule(ctx context.Context, id int64, quantity int, dueDate models.Date) (*models.Product, error) {
	p := &models.Product{}
	query := `
        UPDATE product
        SET quantity=$1, due_date=$2, updated_at=NOW()
        WHERE id=$3
        RETURNING ` + productColumns
	if err := s.db.GetContext(ctx, p, query, quantity, dueDate, id); err != nil {
		return nil, translate(err)
	}
	return p, nil
}

func (s *Storage) DeleteProduct(ctx context.Context, id int64) error {
	return expectAffected(s.db.ExecContext(ctx, `DELETE FROM product WHERE id=$1`, id))
}
