package mirror

import (
	"context"
	"errors"
	"fmt"
	"time"

	"fablink/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// Connect подключается к MongoDB и проверяет соединение
func Connect(ctx context.Context, uri string, timeout time.Duration) (*mongo.Client, error) {
	opts := options.Client().
		ApplyURI(uri).
		SetServerSelectionTimeout(timeout).
		SetConnectTimeout(timeout)

	client, err := mongo.Connect(ctx, opts)
	if err != nil {
		return nil, fmt.Errorf("connect to mongo: %w", err)
	}
	pingCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()
	if err := client.Ping(pingCtx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongo: %w", err)
	}
	return client, nil
}

// Mongo зеркало прогресса заказов
type Mongo struct {
	designer *mongo.Collection
	factory  *mongo.Collection
	loc      *time.Location
	log      *zap.Logger
	now      func() time.Time
}

func New(db *mongo.Database, designerCollection, factoryCollection string, loc *time.Location, log *zap.Logger) *Mongo {
	if loc == nil {
		loc = time.UTC
	}
	return &Mongo{
		designer: db.Collection(designerCollection),
		factory:  db.Collection(factoryCollection),
		loc:      loc,
		log:      log,
		now:      time.Now,
	}
}

func (m *Mongo) timestamp() time.Time {
	return m.now().In(m.loc)
}

// EnsureIndexes идемпотентно создаёт индексы обеих коллекций
func (m *Mongo) EnsureIndexes(ctx context.Context) error {
	_, err := m.designer.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "order_id", Value: 1}}, Options: options.Index().SetName("ux_order_id").SetUnique(true)},
		{Keys: bson.D{{Key: "designer_id", Value: 1}}, Options: options.Index().SetName("ix_designer_id")},
		{Keys: bson.D{{Key: "overall_status", Value: 1}}, Options: options.Index().SetName("ix_overall_status")},
	})
	if err != nil {
		return fmt.Errorf("designer indexes: %w", err)
	}

	// старый уникальный индекс по одному order_id мешает нескольким фабрикам и этапам
	if _, err := m.factory.Indexes().DropOne(ctx, "ux_order_id"); err != nil {
		m.log.Debug("legacy factory index not dropped", zap.Error(err))
	}

	_, err = m.factory.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{
			Keys: bson.D{
				{Key: "order_id", Value: 1},
				{Key: "phase", Value: 1},
				{Key: "factory_id", Value: 1},
			},
			Options: options.Index().SetName("ux_order_phase_factory").SetUnique(true),
		},
		{Keys: bson.D{{Key: "factory_id", Value: 1}}, Options: options.Index().SetName("ix_factory_id")},
		{Keys: bson.D{{Key: "overall_status", Value: 1}}, Options: options.Index().SetName("ix_overall_status")},
		{Keys: bson.D{{Key: "due_date", Value: 1}}, Options: options.Index().SetName("ix_due_date")},
	})
	if err != nil {
		return fmt.Errorf("factory indexes: %w", err)
	}
	return nil
}

func (m *Mongo) UpsertDesignerOrder(ctx context.Context, s models.OrderSnapshot) error {
	filter, update := designerUpsert(s, m.timestamp())
	if _, err := m.designer.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert designer order %d: %w", s.OrderID, err)
	}
	return nil
}

func (m *Mongo) UpsertFactoryOrder(ctx context.Context, s models.MatchSnapshot) error {
	filter, update := factoryUpsert(s, m.timestamp())
	if _, err := m.factory.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true)); err != nil {
		return fmt.Errorf("upsert factory order %d/%s/%d: %w", s.OrderID, s.Phase, s.FactoryID, err)
	}
	return nil
}

func (m *Mongo) DesignerOrder(ctx context.Context, orderID int64) (*DesignerOrder, error) {
	doc := &DesignerOrder{}
	err := m.designer.FindOne(ctx, designerFilter(orderID)).Decode(doc)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return doc, nil
}

func (m *Mongo) FactoryOrders(ctx context.Context, factoryID int64) ([]FactoryOrder, error) {
	opts := options.Find().SetSort(bson.D{{Key: "last_updated", Value: -1}})
	cursor, err := m.factory.Find(ctx, bson.D{{Key: "factory_id", Value: id(factoryID)}}, opts)
	if err != nil {
		return nil, err
	}
	docs := []FactoryOrder{}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, err
	}
	return docs, nil
}

func stepFilter(index int) *options.UpdateOptions {
	return options.Update().SetArrayFilters(options.ArrayFilters{
		Filters: []interface{}{bson.M{"s.index": index}},
	})
}

func (m *Mongo) UpdateDesignerStep(ctx context.Context, orderID int64, index int, upd StepUpdate) error {
	if index < 1 || index > len(DesignerSteps()) {
		return ErrStepNotFound
	}
	update := bson.D{{Key: "$set", Value: stepSet(index, upd, m.timestamp())}}
	res, err := m.designer.UpdateOne(ctx, designerFilter(orderID), update, stepFilter(index))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

// AddDesignerFeedback дописывает отзыв в историю шага «샘플 피드백»
func (m *Mongo) AddDesignerFeedback(ctx context.Context, orderID int64, message string) error {
	now := m.timestamp().Format(TimestampLayout)
	update := bson.D{
		{Key: "$push", Value: bson.D{{Key: "steps.$[s].feedback_history", Value: bson.D{
			{Key: "message", Value: message},
			{Key: "created_at", Value: now},
		}}}},
		{Key: "$set", Value: bson.D{{Key: "last_updated", Value: now}}},
	}
	res, err := m.designer.UpdateOne(ctx, designerFilter(orderID), update, stepFilter(FeedbackStepIndex))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) UpdateFactoryStep(ctx context.Context, orderID int64, phase models.Phase, factoryID int64, index int, upd StepUpdate) error {
	if index < 1 || index > len(FactorySteps(phase)) {
		return ErrStepNotFound
	}
	update := bson.D{{Key: "$set", Value: factoryStepSet(index, upd, m.timestamp())}}
	res, err := m.factory.UpdateOne(ctx, factoryFilter(orderID, phase, factoryID), update, stepFilter(index))
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *Mongo) Ping(ctx context.Context) error {
	return m.designer.Database().Client().Ping(ctx, nil)
}

// Disabled используется, когда MongoDB выключена в конфигурации
type Disabled struct{}

func (Disabled) UpsertDesignerOrder(context.Context, models.OrderSnapshot) error { return nil }
func (Disabled) UpsertFactoryOrder(context.Context, models.MatchSnapshot) error  { return nil }
func (Disabled) DesignerOrder(context.Context, int64) (*DesignerOrder, error) {
	return nil, ErrDisabled
}
func (Disabled) FactoryOrders(context.Context, int64) ([]FactoryOrder, error) {
	return nil, ErrDisabled
}
func (Disabled) UpdateDesignerStep(context.Context, int64, int, StepUpdate) error { return ErrDisabled }
func (Disabled) AddDesignerFeedback(context.Context, int64, string) error         { return ErrDisabled }
func (Disabled) UpdateFactoryStep(context.Context, int64, models.Phase, int64, int, StepUpdate) error {
	return ErrDisabled
}
func (Disabled) Ping(context.Context) error { return nil }
