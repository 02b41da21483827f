package models

import (
	"github.com/go-playground/validator/v10"
)

var validate = validator.New()

// FieldProblem ошибка проверки, не выражаемая тегами validator
type FieldProblem struct {
	Field   string
	Message string
}

// FieldProblems реализует error для набора FieldProblem
type FieldProblems []FieldProblem

func (p FieldProblems) Error() string {
	return "Validation failed"
}

func requireDate(field string, d Date) error {
	if d.IsZero() {
		return FieldProblems{{Field: field, Message: "is required"}}
	}
	return nil
}

type SignupRequest struct {
	UserID       string `json:"userId" validate:"required,max=50"`
	Password     string `json:"password" validate:"required,min=8,max=128"`
	Name         string `json:"name" validate:"required,max=50"`
	ProfileImage string `json:"profileImage" validate:"omitempty,max=255"`
	Contact      string `json:"contact" validate:"omitempty,max=50"`
	Address      string `json:"address" validate:"omitempty,max=100"`
}

func (r *SignupRequest) Validate() error {
	return validate.Struct(r)
}

type LoginRequest struct {
	UserID   string `json:"userId" validate:"required"`
	Password string `json:"password" validate:"required"`
}

func (r *LoginRequest) Validate() error {
	return validate.Struct(r)
}

type RefreshRequest struct {
	Refresh string `json:"refresh" validate:"required"`
}

func (r *RefreshRequest) Validate() error {
	return validate.Struct(r)
}

// ProfileUpdateRequest частичное обновление профиля
type ProfileUpdateRequest struct {
	Name         *string `json:"name" validate:"omitempty,min=1,max=50"`
	ProfileImage *string `json:"profileImage" validate:"omitempty,max=255"`
	Contact      *string `json:"contact" validate:"omitempty,max=50"`
	Address      *string `json:"address" validate:"omitempty,max=100"`
}

func (r *ProfileUpdateRequest) Validate() error {
	return validate.Struct(r)
}

type PasswordChangeRequest struct {
	CurrentPassword string `json:"currentPassword" validate:"required"`
	NewPassword     string `json:"newPassword" validate:"required,min=8,max=128,nefield=CurrentPassword"`
}

func (r *PasswordChangeRequest) Validate() error {
	return validate.Struct(r)
}

type ProductRequest struct {
	Name           string  `json:"name" validate:"required,max=100"`
	Season         string  `json:"season" validate:"required,oneof=spring summer autumn winter all-season"`
	TargetCustomer string  `json:"targetCustomer" validate:"required,oneof=teens twenties thirties forties fifties-plus all-ages"`
	Concept        string  `json:"concept" validate:"required"`
	Detail         *string `json:"detail"`
	ImagePath      *string `json:"imagePath" validate:"omitempty,max=255"`
	Size           *string `json:"size" validate:"omitempty,oneof=XS S M L XL XXL 'Free Size'"`
	Quantity       *int    `json:"quantity" validate:"omitempty,min=1"`
	DueDate        *Date   `json:"dueDate"`
}

func (r *ProductRequest) Validate() error {
	return validate.Struct(r)
}

// Apply переносит поля запроса в изделие
func (r *ProductRequest) Apply(p *Product) {
	p.Name = r.Name
	p.Season = Season(r.Season)
	p.TargetCustomer = TargetCustomer(r.TargetCustomer)
	p.Concept = r.Concept
	p.Detail = r.Detail
	p.ImagePath = r.ImagePath
	p.Size = r.Size
	p.Quantity = r.Quantity
	p.DueDate = r.DueDate
}

// ScheduleRequest тираж и срок. Today задаёт обработчик в часовом поясе сервиса.
type ScheduleRequest struct {
	Quantity int  `json:"quantity" validate:"required,min=100"`
	DueDate  Date `json:"dueDate"`

	Today Date `json:"-"`
}

func (r *ScheduleRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	if err := requireDate("dueDate", r.DueDate); err != nil {
		return err
	}
	if !r.DueDate.After(r.Today) {
		return FieldProblems{{Field: "dueDate", Message: "must be after today"}}
	}
	return nil
}

type OrderRequest struct {
	ProductID int64 `json:"productId" validate:"required,gt=0"`
}

func (r *OrderRequest) Validate() error {
	return validate.Struct(r)
}

type RequestOrderRequest struct {
	OrderID       int64  `json:"orderId" validate:"required,gt=0"`
	Quantity      int    `json:"quantity" validate:"required,min=1"`
	DueDate       Date   `json:"dueDate"`
	WorkSheetPath string `json:"workSheetPath" validate:"omitempty,max=255"`
	Phase         string `json:"phase" validate:"omitempty,oneof=sample main"`
}

func (r *RequestOrderRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	return requireDate("dueDate", r.DueDate)
}

type BidRequest struct {
	RequestOrderID int64 `json:"requestOrderId" validate:"required,gt=0"`
	WorkPrice      int   `json:"workPrice" validate:"required,min=1"`
	ExpectWorkDay  Date  `json:"expectWorkDay"`
}

func (r *BidRequest) Validate() error {
	if err := validate.Struct(r); err != nil {
		return err
	}
	return requireDate("expectWorkDay", r.ExpectWorkDay)
}

// BidEditRequest частичное изменение ставки
type BidEditRequest struct {
	WorkPrice     *int  `json:"workPrice" validate:"omitempty,min=1"`
	ExpectWorkDay *Date `json:"expectWorkDay"`
}

func (r *BidEditRequest) Validate() error {
	if r.WorkPrice == nil && r.ExpectWorkDay == nil {
		return FieldProblems{{Field: "workPrice", Message: "nothing to update"}}
	}
	return validate.Struct(r)
}

type SettlementRequest struct {
	Status string `json:"status" validate:"required,oneof=completed cancelled"`
}

func (r *SettlementRequest) Validate() error {
	return validate.Struct(r)
}

type StepUpdateRequest struct {
	Status        string  `json:"status" validate:"required,max=50"`
	EndDate       *Date   `json:"endDate"`
	DeliveryCode  *string `json:"deliveryCode" validate:"omitempty,max=100"`
	OverallStatus *string `json:"overallStatus" validate:"omitempty,max=50"`
}

func (r *StepUpdateRequest) Validate() error {
	return validate.Struct(r)
}

type FeedbackRequest struct {
	Message string `json:"message" validate:"required,max=2000"`
}

func (r *FeedbackRequest) Validate() error {
	return validate.Struct(r)
}
