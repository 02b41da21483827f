package db

import (
	"context"
	"fmt"

	"fablink/models"
)

const accountColumns = `id, user_id, password, name, profile_image, contact, address, created_at, updated_at`

func accountTable(kind models.AccountKind) (string, error) {
	switch kind {
	case models.KindDesigner:
		return "designer", nil
	case models.KindFactory:
		return "factory", nil
	}
	return "", fmt.Errorf("unknown account kind %q", kind)
}

func (s *Storage) CreateAccount(ctx context.Context, kind models.AccountKind, a *models.Account) error {
	table, err := accountTable(kind)
	if err != nil {
		return err
	}
	query := `
        INSERT INTO ` + table + ` (user_id, password, name, profile_image, contact, address)
        VALUES ($1, $2, $3, $4, $5, $6)
        RETURNING id, created_at, updated_at`
	err = s.db.QueryRowContext(ctx, query, a.UserID, a.Password, a.Name, a.ProfileImage, a.Contact, a.Address).
		Scan(&a.ID, &a.CreatedAt, &a.UpdatedAt)
	return translate(err)
}

func (s *Storage) GetAccount(ctx context.Context, kind models.AccountKind, id int64) (*models.Account, error) {
	table, err := accountTable(kind)
	if err != nil {
		return nil, err
	}
	a := &models.Account{}
	query := `SELECT ` + accountColumns + ` FROM ` + table + ` WHERE id=$1`
	if err := s.db.GetContext(ctx, a, query, id); err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (s *Storage) GetAccountByUserID(ctx context.Context, kind models.AccountKind, userID string) (*models.Account, error) {
	table, err := accountTable(kind)
	if err != nil {
		return nil, err
	}
	a := &models.Account{}
	query := `SELECT ` + accountColumns + ` FROM ` + table + ` WHERE user_id=$1`
	if err := s.db.GetContext(ctx, a, query, userID); err != nil {
		return nil, translate(err)
	}
	return a, nil
}

func (s *Storage) UpdateAccountProfile(ctx context.Context, kind models.AccountKind, a *models.Account) error {
	table, err := accountTable(kind)
	if err != nil {
		return err
	}
	query := `
        UPDATE ` + table + `
        SET name=$1, profile_image=$2, contact=$3, address=$4, updated_at=NOW()
        WHERE id=$5
        RETURNING updated_at`
	err = s.db.QueryRowContext(ctx, query, a.Name, a.ProfileImage, a.Contact, a.Address, a.ID).Scan(&a.UpdatedAt)
	return translate(err)
}

func (s *Storage) UpdateAccountPassword(ctx context.Context, kind models.AccountKind, id int64, hash string) error {
	table, err := accountTable(kind)
	if err != nil {
		return err
	}
	query := `UPDATE ` + table + ` SET password=$1, updated_at=NOW() WHERE id=$2`
	return expectAffected(s.db.ExecContext(ctx, query, hash, id))
}
