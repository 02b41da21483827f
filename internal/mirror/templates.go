package mirror

import (
	"fablink/models"

	"go.mongodb.org/mongo-driver/bson"
)

// FeedbackStepIndex шаг «샘플 피드백», в него пишется история отзывов
const FeedbackStepIndex = 4

var productionStages = []string{"1차 가봉", "부자재 부착", "마킹 및 재단", "봉제", "검사 및 다림질", "배송"}

func stages() bson.A {
	out := bson.A{}
	for i, name := range productionStages {
		st := bson.D{
			{Key: "index", Value: i + 1},
			{Key: "name", Value: name},
			{Key: "status", Value: ""},
			{Key: "end_date", Value: ""},
		}
		if i == len(productionStages)-1 {
			st = append(st, bson.E{Key: "delivery_code", Value: ""})
		}
		out = append(out, st)
	}
	return out
}

func factorySelectionStep(index int, name string) bson.D {
	return bson.D{
		{Key: "index", Value: index},
		{Key: "name", Value: name},
		{Key: "status", Value: ""},
		{Key: "factory_list", Value: bson.A{}},
	}
}

func deliveryStep(index int, name string) bson.D {
	return bson.D{
		{Key: "index", Value: index},
		{Key: "name", Value: name},
		{Key: "status", Value: ""},
		{Key: "product_name", Value: ""},
		{Key: "product_quantity", Value: nil},
		{Key: "factory_name", Value: ""},
		{Key: "factory_contact", Value: ""},
		{Key: "delivery_status", Value: ""},
		{Key: "delivery_code", Value: ""},
	}
}

// DesignerSteps начальная временная шкала дизайнера: 7 шагов, значения пустые
func DesignerSteps() bson.A {
	return bson.A{
		factorySelectionStep(1, "샘플 제작 업체 선정"),
		bson.D{
			{Key: "index", Value: 2},
			{Key: "name", Value: "샘플 생산 현황"},
			{Key: "status", Value: ""},
			{Key: "factory_name", Value: ""},
			{Key: "order_date", Value: ""},
			{Key: "factory_contact", Value: ""},
			{Key: "stage", Value: stages()},
		},
		deliveryStep(3, "샘플 생산 배송 조회"),
		bson.D{
			{Key: "index", Value: FeedbackStepIndex},
			{Key: "name", Value: "샘플 피드백"},
			{Key: "status", Value: ""},
			{Key: "feedback_history", Value: bson.A{}},
		},
		factorySelectionStep(5, "본 생산 업체 선정"),
		bson.D{
			{Key: "index", Value: 6},
			{Key: "name", Value: "본 생산 현황"},
			{Key: "status", Value: ""},
			{Key: "stage", Value: stages()},
		},
		deliveryStep(7, "본 생산 배송 조회"),
	}
}

var (
	sampleFactorySteps = []string{"견적/수주", "자재수급", "재단/봉제", "QC", "포장", "출고"}
	mainFactorySteps   = []string{"생산계획", "자재수급", "재단", "봉제", "QC", "포장", "출고"}
)

// FactorySteps шаги фабрики по этапу; последний шаг (출고) несёт delivery_code
func FactorySteps(phase models.Phase) bson.A {
	names := sampleFactorySteps
	if phase == models.PhaseMain {
		names = mainFactorySteps
	}
	out := bson.A{}
	for i, name := range names {
		st := bson.D{
			{Key: "index", Value: i + 1},
			{Key: "name", Value: name},
			{Key: "status", Value: ""},
			{Key: "end_date", Value: ""},
		}
		if i == len(names)-1 {
			st = append(st, bson.E{Key: "delivery_code", Value: ""})
		}
		out = append(out, st)
	}
	return out
}
