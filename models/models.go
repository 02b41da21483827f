package models

import (
	"time"
)

// AccountKind тип пользователя площадки
type AccountKind string

const (
	KindDesigner AccountKind = "designer"
	KindFactory  AccountKind = "factory"
)

// ParseAccountKind возвращает тип аккаунта по строке из пути или токена
func ParseAccountKind(s string) (AccountKind, bool) {
	switch AccountKind(s) {
	case KindDesigner, KindFactory:
		return AccountKind(s), true
	}
	return "", false
}

// Account дизайнер или фабрика. Таблицы designer и factory имеют одинаковую схему.
type Account struct {
	ID           int64     `db:"id" json:"id"`
	UserID       string    `db:"user_id" json:"userId"`
	Password     string    `db:"password" json:"-"`
	Name         string    `db:"name" json:"name"`
	ProfileImage string    `db:"profile_image" json:"profileImage"`
	Contact      string    `db:"contact" json:"contact"`
	Address      string    `db:"address" json:"address"`
	CreatedAt    time.Time `db:"created_at" json:"createdAt"`
	UpdatedAt    time.Time `db:"updated_at" json:"updatedAt"`
}

type Season string

const (
	SeasonSpring Season = "spring"
	SeasonSummer Season = "summer"
	SeasonAutumn Season = "autumn"
	SeasonWinter Season = "winter"
	SeasonAll    Season = "all-season"
)

type TargetCustomer string

const (
	TargetTeens       TargetCustomer = "teens"
	TargetTwenties    TargetCustomer = "twenties"
	TargetThirties    TargetCustomer = "thirties"
	TargetForties     TargetCustomer = "forties"
	TargetFiftiesPlus TargetCustomer = "fifties-plus"
	TargetAllAges     TargetCustomer = "all-ages"
)

// MinScheduledQuantity минимальный тираж при планировании производства
const MinScheduledQuantity = 100

// Product изделие дизайнера
type Product struct {
	ID             int64          `db:"id" json:"id"`
	DesignerID     int64          `db:"designer_id" json:"designerId"`
	Name           string         `db:"name" json:"name"`
	Season         Season         `db:"season" json:"season"`
	TargetCustomer TargetCustomer `db:"target_customer" json:"targetCustomer"`
	Concept        string         `db:"concept" json:"concept"`
	Detail         *string        `db:"detail" json:"detail"`
	ImagePath      *string        `db:"image_path" json:"imagePath"`
	Size           *string        `db:"size" json:"size"`
	Quantity       *int           `db:"quantity" json:"quantity"`
	DueDate        *Date          `db:"due_date" json:"dueDate"`
	CreatedAt      time.Time      `db:"created_at" json:"createdAt"`
	UpdatedAt      time.Time      `db:"updated_at" json:"updatedAt"`
}

// Order заказ на производство изделия
type Order struct {
	OrderID   int64     `db:"order_id" json:"orderId"`
	ProductID int64     `db:"product_id" json:"productId"`
	CreatedAt time.Time `db:"created_at" json:"createdAt"`

	// заполняются join'ом
	DesignerID  int64  `db:"designer_id" json:"designerId"`
	ProductName string `db:"product_name" json:"productName"`
}

// Phase этап производства: образец или основной тираж
type Phase string

const (
	PhaseSample Phase = "sample"
	PhaseMain   Phase = "main"
)

// ParsePhase пустая строка означает образец
func ParsePhase(s string) (Phase, bool) {
	switch Phase(s) {
	case "":
		return PhaseSample, true
	case PhaseSample, PhaseMain:
		return Phase(s), true
	}
	return "", false
}

// RequestOrder запрос на производство, открытый для ставок фабрик
type RequestOrder struct {
	ID            int64     `db:"id" json:"id"`
	OrderID       int64     `db:"order_id" json:"orderId"`
	DesignerName  string    `db:"designer_name" json:"designerName"`
	ProductName   string    `db:"product_name" json:"productName"`
	Quantity      int       `db:"quantity" json:"quantity"`
	DueDate       Date      `db:"due_date" json:"dueDate"`
	WorkSheetPath string    `db:"work_sheet_path" json:"workSheetPath"`
	Phase         Phase     `db:"phase" json:"phase"`
	CreatedAt     time.Time `db:"created_at" json:"createdAt"`

	DesignerID int64 `db:"designer_id" json:"designerId"`
	Matched    bool  `db:"matched" json:"matched"`
}

// SettlementStatus статус расчёта по ставке
type SettlementStatus string

const (
	SettlementPending   SettlementStatus = "pending"   // ставка ожидает решения дизайнера
	SettlementConfirmed SettlementStatus = "confirmed" // ставка выбрана
	SettlementCompleted SettlementStatus = "completed"
	SettlementCancelled SettlementStatus = "cancelled"
)

// BidFactory ставка фабрики на запрос. Одна ставка на пару (фабрика, запрос).
type BidFactory struct {
	ID               int64            `db:"id" json:"id"`
	FactoryID        int64            `db:"factory_id" json:"factoryId"`
	RequestOrderID   int64            `db:"request_order_id" json:"requestOrderId"`
	WorkPrice        int              `db:"work_price" json:"workPrice"`
	ExpectWorkDay    Date             `db:"expect_work_day" json:"expectWorkDay"`
	SettlementStatus SettlementStatus `db:"settlement_status" json:"settlementStatus"`
	IsMatched        bool             `db:"is_matched" json:"isMatched"`
	MatchedDate      *Date            `db:"matched_date" json:"matchedDate"`
	CreatedAt        time.Time        `db:"created_at" json:"createdAt"`
}

// CanTransition проверяет переход статуса расчёта.
// pending -> confirmed выполняется только выбором ставки.
func CanTransition(from, to SettlementStatus) bool {
	switch from {
	case SettlementPending:
		return to == SettlementCancelled
	case SettlementConfirmed:
		return to == SettlementCompleted || to == SettlementCancelled
	}
	return false
}

// OrderSnapshot данные заказа для зеркала designer_orders
type OrderSnapshot struct {
	OrderID    int64 `db:"order_id"`
	DesignerID int64 `db:"designer_id"`
	ProductID  int64 `db:"product_id"`
}

// MatchSnapshot данные выбранной ставки для зеркала factory_orders
type MatchSnapshot struct {
	OrderID    int64 `db:"order_id"`
	FactoryID  int64 `db:"factory_id"`
	DesignerID int64 `db:"designer_id"`
	ProductID  int64 `db:"product_id"`
	Phase      Phase `db:"phase"`
	Quantity   int   `db:"quantity"`
	UnitPrice  int   `db:"work_price"`
	DueDate    Date  `db:"expect_work_day"`
}
