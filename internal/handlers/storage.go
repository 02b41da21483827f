package handlers

import (
	"context"

	"fablink/internal/mirror"
	"fablink/models"
)

type StorageInterface interface {
	Ping(ctx context.Context) error

	CreateAccount(ctx context.Context, kind models.AccountKind, a *models.Account) error
	GetAccount(ctx context.Context, kind models.AccountKind, id int64) (*models.Account, error)
	GetAccountByUserID(ctx context.Context, kind models.AccountKind, userID string) (*models.Account, error)
	UpdateAccountProfile(ctx context.Context, kind models.AccountKind, a *models.Account) error
	UpdateAccountPassword(ctx context.Context, kind models.AccountKind, id int64, hash string) error

	CreateProduct(ctx context.Context, p *models.Product) error
	GetProduct(ctx context.Context, id int64) (*models.Product, error)
	ListDesignerProducts(ctx context.Context, designerID int64, limit, offset int) ([]models.Product, error)
	UpdateProduct(ctx context.Context, p *models.Product) error
	UpdateProductSchedule(ctx context.Context, id int64, quantity int, dueDate models.Date) (*models.Product, error)
	DeleteProduct(ctx context.Context, id int64) error

	CreateOrder(ctx context.Context, o *models.Order) error
	GetOrder(ctx context.Context, orderID int64) (*models.Order, error)
	ListDesignerOrders(ctx context.Context, designerID int64, limit, offset int) ([]models.Order, error)

	CreateRequestOrder(ctx context.Context, ro *models.RequestOrder) error
	GetRequestOrder(ctx context.Context, id int64) (*models.RequestOrder, error)
	ListDesignerRequestOrders(ctx context.Context, designerID int64, limit, offset int) ([]models.RequestOrder, error)
	ListOpenRequestOrders(ctx context.Context, limit, offset int) ([]models.RequestOrder, error)

	CreateBid(ctx context.Context, b *models.BidFactory) error
	GetBid(ctx context.Context, id int64) (*models.BidFactory, error)
	ListFactoryBids(ctx context.Context, factoryID int64, limit, offset int) ([]models.BidFactory, error)
	ListRequestOrderBids(ctx context.Context, requestOrderID int64) ([]models.BidFactory, error)
	UpdateBidOffer(ctx context.Context, b *models.BidFactory) error
	MatchBid(ctx context.Context, bidID int64, matchedDate models.Date) (*models.BidFactory, int64, error)
	UpdateSettlementStatus(ctx context.Context, bidID int64, from, to models.SettlementStatus) (*models.BidFactory, error)
	GetMatchSnapshot(ctx context.Context, bidID int64) (*models.MatchSnapshot, error)
}

// ProgressMirror временные шкалы заказов в MongoDB
type ProgressMirror interface {
	mirror.Writer

	DesignerOrder(ctx context.Context, orderID int64) (*mirror.DesignerOrder, error)
	FactoryOrders(ctx context.Context, factoryID int64) ([]mirror.FactoryOrder, error)
	UpdateDesignerStep(ctx context.Context, orderID int64, index int, upd mirror.StepUpdate) error
	AddDesignerFeedback(ctx context.Context, orderID int64, message string) error
	UpdateFactoryStep(ctx context.Context, orderID int64, phase models.Phase, factoryID int64, index int, upd mirror.StepUpdate) error
	Ping(ctx context.Context) error
}
