package mirror

import (
	"context"
	"fmt"
	"time"

	"fablink/models"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

// Source читает из SQL всё, что должно быть в зеркале
type Source interface {
	ListOrderSnapshots(ctx context.Context) ([]models.OrderSnapshot, error)
	ListMatchSnapshots(ctx context.Context) ([]models.MatchSnapshot, error)
}

// Writer upsert документов зеркала
type Writer interface {
	UpsertDesignerOrder(ctx context.Context, s models.OrderSnapshot) error
	UpsertFactoryOrder(ctx context.Context, s models.MatchSnapshot) error
}

// SyncResult итог одного прохода
type SyncResult struct {
	DesignerOrders int
	FactoryOrders  int
	Failed         int
}

// Syncer по расписанию повторяет upsert'ы, пропущенные из-за недоступности MongoDB.
// Upsert'ы идемпотентны: шаблоны шагов пишутся только при вставке.
type Syncer struct {
	source  Source
	writer  Writer
	log     *zap.Logger
	timeout time.Duration
	cron    *cron.Cron
}

func NewSyncer(source Source, writer Writer, log *zap.Logger) *Syncer {
	return &Syncer{
		source:  source,
		writer:  writer,
		log:     log,
		timeout: 5 * time.Minute,
	}
}

// SyncOnce один проход по всем заказам и выбранным ставкам
func (s *Syncer) SyncOnce(ctx context.Context) (SyncResult, error) {
	var res SyncResult

	orders, err := s.source.ListOrderSnapshots(ctx)
	if err != nil {
		return res, fmt.Errorf("list orders: %w", err)
	}
	for _, o := range orders {
		if err := s.writer.UpsertDesignerOrder(ctx, o); err != nil {
			res.Failed++
			s.log.Warn("mirror sync: designer order", zap.Int64("order_id", o.OrderID), zap.Error(err))
			continue
		}
		res.DesignerOrders++
	}

	matches, err := s.source.ListMatchSnapshots(ctx)
	if err != nil {
		return res, fmt.Errorf("list matched bids: %w", err)
	}
	for _, m := range matches {
		if err := s.writer.UpsertFactoryOrder(ctx, m); err != nil {
			res.Failed++
			s.log.Warn("mirror sync: factory order",
				zap.Int64("order_id", m.OrderID),
				zap.Int64("factory_id", m.FactoryID),
				zap.Error(err))
			continue
		}
		res.FactoryOrders++
	}
	return res, nil
}

// Start запускает проходы по cron-расписанию; параллельные проходы пропускаются
func (s *Syncer) Start(schedule string) error {
	c := cron.New(cron.WithChain(cron.SkipIfStillRunning(cron.DiscardLogger)))
	_, err := c.AddFunc(schedule, func() {
		ctx, cancel := context.WithTimeout(context.Background(), s.timeout)
		defer cancel()

		res, err := s.SyncOnce(ctx)
		if err != nil {
			s.log.Error("mirror sync failed", zap.Error(err))
			return
		}
		s.log.Info("mirror sync done",
			zap.Int("designer_orders", res.DesignerOrders),
			zap.Int("factory_orders", res.FactoryOrders),
			zap.Int("failed", res.Failed))
	})
	if err != nil {
		return fmt.Errorf("invalid sync schedule %q: %w", schedule, err)
	}
	s.cron = c
	c.Start()
	return nil
}

// Stop ждёт завершения текущего прохода
func (s *Syncer) Stop() {
	if s.cron != nil {
		<-s.cron.Stop().Done()
	}
}
