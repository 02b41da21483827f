package db

import (
	"context"
	"errors"

	"fablink/models"

	"github.com/jmoiron/sqlx"
)

const bidColumns = `id, factory_id, request_order_id, work_price, expect_work_day, settlement_status,
        is_matched, matched_date, created_at`

const matchSnapshotSelect = `
        SELECT ro.order_id, b.factory_id, p.designer_id, o.product_id, ro.phase, ro.quantity,
               b.work_price, b.expect_work_day
        FROM bid_factory b
        JOIN request_order ro ON ro.id = b.request_order_id
        JOIN orders o ON o.order_id = ro.order_id
        JOIN product p ON p.id = o.product_id`

// CreateBid добавляет ставку, если у запроса ещё нет выбранной.
// Строка запроса блокируется FOR SHARE, так что вставка не проходит мимо
// параллельного MatchBid. Повторная ставка той же фабрики даёт ErrConflict.
func (s *Storage) CreateBid(ctx context.Context, b *models.BidFactory) error {
	return s.inTx(ctx, func(tx *sqlx.Tx) error {
		if err := lockRequestOrder(ctx, tx, b.RequestOrderID, "FOR SHARE"); err != nil {
			return err
		}

		query := `
            INSERT INTO bid_factory (factory_id, request_order_id, work_price, expect_work_day)
            SELECT $1::bigint, $2::bigint, $3::int, $4::date
            WHERE NOT EXISTS (
                SELECT 1 FROM bid_factory WHERE request_order_id = $2::bigint AND is_matched
            )
            RETURNING id, settlement_status, is_matched, created_at`
		err := tx.QueryRowContext(ctx, query, b.FactoryID, b.RequestOrderID, b.WorkPrice, b.ExpectWorkDay).
			Scan(&b.ID, &b.SettlementStatus, &b.IsMatched, &b.CreatedAt)
		if err = translate(err); errors.Is(err, ErrNotFound) {
			return ErrAlreadyMatched
		}
		return err
	})
}

// lockRequestOrder блокирует строку request_order; mode это "FOR SHARE" или "FOR UPDATE"
func lockRequestOrder(ctx context.Context, tx *sqlx.Tx, id int64, mode string) error {
	var locked int64
	return translate(tx.GetContext(ctx, &locked, `SELECT id FROM request_order WHERE id=$1 `+mode, id))
}

func (s *Storage) GetBid(ctx context.Context, id int64) (*models.BidFactory, error) {
	b := &models.BidFactory{}
	if err := s.db.GetContext(ctx, b, `SELECT `+bidColumns+` FROM bid_factory WHERE id=$1`, id); err != nil {
		return nil, translate(err)
	}
	return b, nil
}

func (s *Storage) ListFactoryBids(ctx context.Context, factoryID int64, limit, offset int) ([]models.BidFactory, error) {
	bids := []models.BidFactory{}
	query := `
        SELECT ` + bidColumns + `
        FROM bid_factory
        WHERE factory_id=$1
        ORDER BY created_at DESC, id DESC
        LIMIT $2 OFFSET $3`
	if err := s.db.SelectContext(ctx, &bids, query, factoryID, limit, offset); err != nil {
		return nil, translate(err)
	}
	return bids, nil
}

// ListRequestOrderBids ставки на запрос, дешёвые первыми
func (s *Storage) ListRequestOrderBids(ctx context.Context, requestOrderID int64) ([]models.BidFactory, error) {
	bids := []models.BidFactory{}
	query := `
        SELECT ` + bidColumns + `
        FROM bid_factory
        WHERE request_order_id=$1
        ORDER BY work_price, expect_work_day, id`
	if err := s.db.SelectContext(ctx, &bids, query, requestOrderID); err != nil {
		return nil, translate(err)
	}
	return bids, nil
}

// UpdateBidOffer меняет цену и срок, пока ставка не выбрана и не отменена
func (s *Storage) UpdateBidOffer(ctx context.Context, b *models.BidFactory) error {
	query := `
        UPDATE bid_factory
        SET work_price=$1, expect_work_day=$2
        WHERE id=$3 AND settlement_status='pending' AND NOT is_matched
        RETURNING ` + bidColumns
	err := translate(s.db.GetContext(ctx, b, query, b.WorkPrice, b.ExpectWorkDay, b.ID))
	if errors.Is(err, ErrNotFound) {
		return ErrBidNotPending
	}
	return err
}

type bidLock struct {
	ID               int64                   `db:"id"`
	SettlementStatus models.SettlementStatus `db:"settlement_status"`
	IsMatched        bool                    `db:"is_matched"`
}

// MatchBid выбирает ставку: она становится matched/confirmed, остальные
// ожидающие ставки того же запроса отменяются. Всё в одной транзакции:
// сам запрос и его ставки блокируются FOR UPDATE. Возвращает число отменённых ставок.
func (s *Storage) MatchBid(ctx context.Context, bidID int64, matchedDate models.Date) (*models.BidFactory, int64, error) {
	bid := &models.BidFactory{}
	var cancelled int64

	err := s.inTx(ctx, func(tx *sqlx.Tx) error {
		var requestOrderID int64
		err := tx.GetContext(ctx, &requestOrderID, `SELECT request_order_id FROM bid_factory WHERE id=$1`, bidID)
		if err != nil {
			return translate(err)
		}
		if err := lockRequestOrder(ctx, tx, requestOrderID, "FOR UPDATE"); err != nil {
			return err
		}

		var siblings []bidLock
		query := `
            SELECT id, settlement_status, is_matched
            FROM bid_factory
            WHERE request_order_id=$1
            ORDER BY id
            FOR UPDATE`
		if err := tx.SelectContext(ctx, &siblings, query, requestOrderID); err != nil {
			return translate(err)
		}
		for _, sb := range siblings {
			if sb.IsMatched {
				return ErrAlreadyMatched
			}
			if sb.ID == bidID && sb.SettlementStatus != models.SettlementPending {
				return ErrBidNotPending
			}
		}

		query = `
            UPDATE bid_factory
            SET is_matched=TRUE, matched_date=$2, settlement_status='confirmed'
            WHERE id=$1
            RETURNING ` + bidColumns
		if err := tx.GetContext(ctx, bid, query, bidID, matchedDate); err != nil {
			return translate(err)
		}

		res, err := tx.ExecContext(ctx, `
            UPDATE bid_factory
            SET settlement_status='cancelled'
            WHERE request_order_id=$1 AND id<>$2 AND settlement_status='pending'`,
			requestOrderID, bidID)
		if err != nil {
			return translate(err)
		}
		cancelled, err = res.RowsAffected()
		return err
	})
	if err != nil {
		return nil, 0, err
	}
	return bid, cancelled, nil
}

// UpdateSettlementStatus переводит статус, только если он всё ещё равен from
func (s *Storage) UpdateSettlementStatus(ctx context.Context, bidID int64, from, to models.SettlementStatus) (*models.BidFactory, error) {
	b := &models.BidFactory{}
	query := `
        UPDATE bid_factory
        SET settlement_status=$1
        WHERE id=$2 AND settlement_status=$3
        RETURNING ` + bidColumns
	err := translate(s.db.GetContext(ctx, b, query, to, bidID, from))
	if errors.Is(err, ErrNotFound) {
		return nil, ErrStaleStatus
	}
	if err != nil {
		return nil, err
	}
	return b, nil
}

func (s *Storage) GetMatchSnapshot(ctx context.Context, bidID int64) (*models.MatchSnapshot, error) {
	m := &models.MatchSnapshot{}
	if err := s.db.GetContext(ctx, m, matchSnapshotSelect+` WHERE b.id=$1`, bidID); err != nil {
		return nil, translate(err)
	}
	return m, nil
}

// ListMatchSnapshots все выбранные ставки для пересинхронизации factory_orders
func (s *Storage) ListMatchSnapshots(ctx context.Context) ([]models.MatchSnapshot, error) {
	snapshots := []models.MatchSnapshot{}
	if err := s.db.SelectContext(ctx, &snapshots, matchSnapshotSelect+` WHERE b.is_matched ORDER BY b.id`); err != nil {
		return nil, translate(err)
	}
	return snapshots, nil
}
