package mirror

import (
	"context"
	"errors"
	"testing"
	"time"

	"fablink/models"

	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.uber.org/zap"
)

func lookup(t *testing.T, d bson.D, key string) interface{} {
	t.Helper()
	for _, e := range d {
		if e.Key == key {
			return e.Value
		}
	}
	t.Fatalf("key %q not found", key)
	return nil
}

func TestDesignerSteps(t *testing.T) {
	steps := DesignerSteps()
	require.Len(t, steps, 7)

	for i, s := range steps {
		require.Equal(t, i+1, lookup(t, s.(bson.D), "index"))
		require.Equal(t, "", lookup(t, s.(bson.D), "status"))
	}
	require.Equal(t, "샘플 피드백", lookup(t, steps[FeedbackStepIndex-1].(bson.D), "name"))

	stage := lookup(t, steps[1].(bson.D), "stage").(bson.A)
	require.Len(t, stage, 6)
	require.Equal(t, "", lookup(t, stage[5].(bson.D), "delivery_code"))
}

func TestFactorySteps(t *testing.T) {
	sample := FactorySteps(models.PhaseSample)
	require.Len(t, sample, 6)
	require.Equal(t, "견적/수주", lookup(t, sample[0].(bson.D), "name"))
	require.Equal(t, "출고", lookup(t, sample[5].(bson.D), "name"))
	require.Equal(t, "", lookup(t, sample[5].(bson.D), "delivery_code"))

	main := FactorySteps(models.PhaseMain)
	require.Len(t, main, 7)
	require.Equal(t, "생산계획", lookup(t, main[0].(bson.D), "name"))
}

func TestDesignerUpsert(t *testing.T) {
	seoul := time.FixedZone("KST", 9*60*60)
	now := time.Date(2030, 1, 15, 14, 5, 33, 0, seoul)

	filter, update := designerUpsert(models.OrderSnapshot{OrderID: 12, DesignerID: 3, ProductID: 8}, now)
	require.Equal(t, bson.D{{Key: "order_id", Value: "12"}}, filter)

	onInsert := lookup(t, update, "$setOnInsert").(bson.D)
	set := lookup(t, update, "$set").(bson.D)
	require.Equal(t, 1, lookup(t, onInsert, "current_step_index"))
	require.Len(t, lookup(t, onInsert, "steps").(bson.A), 7)
	require.Equal(t, "3", lookup(t, set, "designer_id"))
	require.Equal(t, "8", lookup(t, set, "product_id"))
	require.Equal(t, "2030-01-15T14:05+09:00", lookup(t, set, "last_updated"))

	// одно поле не может быть и в $set, и в $setOnInsert
	for _, e := range onInsert {
		for _, s := range set {
			require.NotEqual(t, e.Key, s.Key)
		}
	}
}

func TestFactoryUpsert(t *testing.T) {
	now := time.Date(2030, 1, 15, 5, 5, 0, 0, time.UTC)
	snap := models.MatchSnapshot{
		OrderID: 12, FactoryID: 4, DesignerID: 3, ProductID: 8,
		Quantity: 300, UnitPrice: 12000, DueDate: models.NewDate(2030, 2, 1),
	}

	filter, update := factoryUpsert(snap, now)
	require.Equal(t, bson.D{
		{Key: "order_id", Value: "12"},
		{Key: "phase", Value: "sample"},
		{Key: "factory_id", Value: "4"},
	}, filter)

	onInsert := lookup(t, update, "$setOnInsert").(bson.D)
	set := lookup(t, update, "$set").(bson.D)
	require.Len(t, lookup(t, onInsert, "steps").(bson.A), 6)
	require.Equal(t, "", lookup(t, onInsert, "delivery_status"))
	require.Equal(t, 12000, lookup(t, set, "unit_price"))
	require.Equal(t, "KRW", lookup(t, set, "currency"))
	require.Equal(t, "2030-02-01", lookup(t, set, "due_date"))
	require.Equal(t, "2030-01-15T05:05+00:00", lookup(t, set, "last_updated"))

	for _, e := range onInsert {
		for _, s := range set {
			require.NotEqual(t, e.Key, s.Key)
		}
	}

	snap.Phase = models.PhaseMain
	_, update = factoryUpsert(snap, now)
	onInsert = lookup(t, update, "$setOnInsert").(bson.D)
	require.Len(t, lookup(t, onInsert, "steps").(bson.A), 7)
}

func TestStepSet(t *testing.T) {
	now := time.Date(2030, 1, 15, 5, 5, 0, 0, time.UTC)
	end := "2030-01-20"
	code := "CJ-123"
	overall := "in_progress"

	set := stepSet(6, StepUpdate{Status: "done", EndDate: &end, DeliveryCode: &code, OverallStatus: &overall}, now)
	require.Equal(t, "done", lookup(t, set, "steps.$[s].status"))
	require.Equal(t, 6, lookup(t, set, "current_step_index"))
	require.Equal(t, end, lookup(t, set, "steps.$[s].end_date"))
	require.Equal(t, code, lookup(t, set, "steps.$[s].delivery_code"))
	require.Equal(t, overall, lookup(t, set, "overall_status"))
	for _, e := range set {
		require.NotEqual(t, "delivery_code", e.Key, "designer documents have no top-level delivery code")
	}

	set = stepSet(2, StepUpdate{Status: "in_progress"}, now)
	require.Len(t, set, 3)
}

func TestFactoryStepSet(t *testing.T) {
	now := time.Date(2030, 1, 15, 5, 5, 0, 0, time.UTC)
	code := "CJ-123"

	set := factoryStepSet(6, StepUpdate{Status: "shipped", DeliveryCode: &code}, now)
	require.Equal(t, code, lookup(t, set, "steps.$[s].delivery_code"))
	require.Equal(t, code, lookup(t, set, "delivery_code"))

	set = factoryStepSet(2, StepUpdate{Status: "in_progress"}, now)
	require.Len(t, set, 3)
}

type fakeSource struct {
	orders  []models.OrderSnapshot
	matches []models.MatchSnapshot
	err     error
}

func (f *fakeSource) ListOrderSnapshots(context.Context) ([]models.OrderSnapshot, error) {
	return f.orders, f.err
}

func (f *fakeSource) ListMatchSnapshots(context.Context) ([]models.MatchSnapshot, error) {
	return f.matches, nil
}

type fakeWriter struct {
	designer []int64
	factory  []int64
	failOn   int64
}

func (f *fakeWriter) UpsertDesignerOrder(_ context.Context, s models.OrderSnapshot) error {
	if s.OrderID == f.failOn {
		return errors.New("mongo unavailable")
	}
	f.designer = append(f.designer, s.OrderID)
	return nil
}

func (f *fakeWriter) UpsertFactoryOrder(_ context.Context, s models.MatchSnapshot) error {
	f.factory = append(f.factory, s.OrderID)
	return nil
}

func TestSyncOnce(t *testing.T) {
	source := &fakeSource{
		orders:  []models.OrderSnapshot{{OrderID: 1}, {OrderID: 2}, {OrderID: 3}},
		matches: []models.MatchSnapshot{{OrderID: 1, FactoryID: 9}},
	}
	writer := &fakeWriter{failOn: 2}

	res, err := NewSyncer(source, writer, zap.NewNop()).SyncOnce(context.Background())
	require.NoError(t, err)
	require.Equal(t, SyncResult{DesignerOrders: 2, FactoryOrders: 1, Failed: 1}, res)
	require.Equal(t, []int64{1, 3}, writer.designer)
	require.Equal(t, []int64{1}, writer.factory)
}

func TestSyncOnce_SourceError(t *testing.T) {
	source := &fakeSource{err: errors.New("db down")}
	_, err := NewSyncer(source, &fakeWriter{}, zap.NewNop()).SyncOnce(context.Background())
	require.Error(t, err)
}

func TestSyncerStart_InvalidSchedule(t *testing.T) {
	s := NewSyncer(&fakeSource{}, &fakeWriter{}, zap.NewNop())
	require.Error(t, s.Start("every tuesday"))
	s.Stop()
}

func TestDisabled(t *testing.T) {
	var d Disabled
	ctx := context.Background()
	require.NoError(t, d.UpsertDesignerOrder(ctx, models.OrderSnapshot{}))
	_, err := d.DesignerOrder(ctx, 1)
	require.ErrorIs(t, err, ErrDisabled)
	require.ErrorIs(t, d.UpdateFactoryStep(ctx, 1, models.PhaseSample, 1, 1, StepUpdate{}), ErrDisabled)
}
