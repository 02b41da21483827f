// Package mirror ведёт в MongoDB временные шкалы заказов для дизайнеров
// (designer_orders) и фабрик (factory_orders). PostgreSQL остаётся источником
// истины: ошибки записи сюда не отменяют изменения в SQL.
package mirror

import (
	"errors"
	"strconv"
	"time"

	"fablink/models"

	"go.mongodb.org/mongo-driver/bson"
)

var (
	ErrNotFound     = errors.New("progress document not found")
	ErrStepNotFound = errors.New("step not found")
	ErrDisabled     = errors.New("progress mirror is disabled")
)

// TimestampLayout ISO-8601 с точностью до минуты
const TimestampLayout = "2006-01-02T15:04-07:00"

// DesignerOrder документ designer_orders
type DesignerOrder struct {
	OrderID          string   `bson:"order_id" json:"orderId"`
	DesignerID       string   `bson:"designer_id" json:"designerId"`
	ProductID        string   `bson:"product_id" json:"productId"`
	CurrentStepIndex int      `bson:"current_step_index" json:"currentStepIndex"`
	OverallStatus    string   `bson:"overall_status" json:"overallStatus"`
	LastUpdated      string   `bson:"last_updated" json:"lastUpdated"`
	Steps            []bson.M `bson:"steps" json:"steps"`
}

// FactoryOrder документ factory_orders, ключ (order_id, phase, factory_id)
type FactoryOrder struct {
	OrderID          string   `bson:"order_id" json:"orderId"`
	Phase            string   `bson:"phase" json:"phase"`
	FactoryID        string   `bson:"factory_id" json:"factoryId"`
	DesignerID       string   `bson:"designer_id" json:"designerId"`
	ProductID        string   `bson:"product_id" json:"productId"`
	Quantity         int      `bson:"quantity" json:"quantity"`
	UnitPrice        int      `bson:"unit_price" json:"unitPrice"`
	Currency         string   `bson:"currency" json:"currency"`
	DueDate          string   `bson:"due_date" json:"dueDate"`
	DeliveryStatus   string   `bson:"delivery_status" json:"deliveryStatus"`
	DeliveryCode     string   `bson:"delivery_code" json:"deliveryCode"`
	CurrentStepIndex int      `bson:"current_step_index" json:"currentStepIndex"`
	OverallStatus    string   `bson:"overall_status" json:"overallStatus"`
	LastUpdated      string   `bson:"last_updated" json:"lastUpdated"`
	Steps            []bson.M `bson:"steps" json:"steps"`
}

// StepUpdate изменение одного шага шкалы
type StepUpdate struct {
	Status        string
	EndDate       *string
	DeliveryCode  *string
	OverallStatus *string
}

func id(v int64) string {
	return strconv.FormatInt(v, 10)
}

func designerFilter(orderID int64) bson.D {
	return bson.D{{Key: "order_id", Value: id(orderID)}}
}

func factoryFilter(orderID int64, phase models.Phase, factoryID int64) bson.D {
	return bson.D{
		{Key: "order_id", Value: id(orderID)},
		{Key: "phase", Value: string(phase)},
		{Key: "factory_id", Value: id(factoryID)},
	}
}

// designerUpsert шаблон шагов пишется только при вставке, чтобы не затереть прогресс
func designerUpsert(s models.OrderSnapshot, now time.Time) (bson.D, bson.D) {
	update := bson.D{
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "current_step_index", Value: 1},
			{Key: "overall_status", Value: ""},
			{Key: "steps", Value: DesignerSteps()},
		}},
		{Key: "$set", Value: bson.D{
			{Key: "order_id", Value: id(s.OrderID)},
			{Key: "designer_id", Value: id(s.DesignerID)},
			{Key: "product_id", Value: id(s.ProductID)},
			{Key: "last_updated", Value: now.Format(TimestampLayout)},
		}},
	}
	return designerFilter(s.OrderID), update
}

// factoryUpsert бизнес-поля ставки обновляются всегда, статус доставки только при вставке
func factoryUpsert(m models.MatchSnapshot, now time.Time) (bson.D, bson.D) {
	phase := m.Phase
	if phase == "" {
		phase = models.PhaseSample
	}
	update := bson.D{
		{Key: "$setOnInsert", Value: bson.D{
			{Key: "current_step_index", Value: 1},
			{Key: "overall_status", Value: ""},
			{Key: "delivery_status", Value: ""},
			{Key: "delivery_code", Value: ""},
			{Key: "steps", Value: FactorySteps(phase)},
		}},
		{Key: "$set", Value: bson.D{
			{Key: "order_id", Value: id(m.OrderID)},
			{Key: "phase", Value: string(phase)},
			{Key: "factory_id", Value: id(m.FactoryID)},
			{Key: "designer_id", Value: id(m.DesignerID)},
			{Key: "product_id", Value: id(m.ProductID)},
			{Key: "quantity", Value: m.Quantity},
			{Key: "unit_price", Value: m.UnitPrice},
			{Key: "currency", Value: "KRW"},
			{Key: "due_date", Value: m.DueDate.String()},
			{Key: "last_updated", Value: now.Format(TimestampLayout)},
		}},
	}
	return factoryFilter(m.OrderID, phase, m.FactoryID), update
}

// stepSet поля $set для шага index; шаг выбирается array filter'ом "s"
func stepSet(index int, upd StepUpdate, now time.Time) bson.D {
	set := bson.D{
		{Key: "steps.$[s].status", Value: upd.Status},
		{Key: "current_step_index", Value: index},
		{Key: "last_updated", Value: now.Format(TimestampLayout)},
	}
	if upd.EndDate != nil {
		set = append(set, bson.E{Key: "steps.$[s].end_date", Value: *upd.EndDate})
	}
	if upd.DeliveryCode != nil {
		set = append(set, bson.E{Key: "steps.$[s].delivery_code", Value: *upd.DeliveryCode})
	}
	if upd.OverallStatus != nil {
		set = append(set, bson.E{Key: "overall_status", Value: *upd.OverallStatus})
	}
	return set
}

// factoryStepSet как stepSet, плюс код доставки на уровне документа factory_orders
func factoryStepSet(index int, upd StepUpdate, now time.Time) bson.D {
	set := stepSet(index, upd, now)
	if upd.DeliveryCode != nil {
		set = append(set, bson.E{Key: "delivery_code", Value: *upd.DeliveryCode})
	}
	return set
}
