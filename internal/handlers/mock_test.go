package handlers_test

import (
	"context"
	"time"

	"fablink/db"
	"fablink/internal/auth"
	"fablink/internal/handlers"
	"fablink/internal/mirror"
	"fablink/models"
)

// MockStorage реализует StorageInterface; не заданные функции дают ErrNotFound или пустой результат
type MockStorage struct {
	PingFunc func(ctx context.Context) error

	CreateAccountFunc         func(ctx context.Context, kind models.AccountKind, a *models.Account) error
	GetAccountFunc            func(ctx context.Context, kind models.AccountKind, id int64) (*models.Account, error)
	GetAccountByUserIDFunc    func(ctx context.Context, kind models.AccountKind, userID string) (*models.Account, error)
	UpdateAccountProfileFunc  func(ctx context.Context, kind models.AccountKind, a *models.Account) error
	UpdateAccountPasswordFunc func(ctx context.Context, kind models.AccountKind, id int64, hash string) error

	CreateProductFunc         func(ctx context.Context, p *models.Product) error
	GetProductFunc            func(ctx context.Context, id int64) (*models.Product, error)
	ListDesignerProductsFunc  func(ctx context.Context, designerID int64, limit, offset int) ([]models.Product, error)
	UpdateProductFunc         func(ctx context.Context, p *models.Product) error
	UpdateProductScheduleFunc func(ctx context.Context, id int64, quantity int, dueDate models.Date) (*models.Product, error)
	DeleteProductFunc         func(ctx context.Context, id int64) error

	CreateOrderFunc        func(ctx context.Context, o *models.Order) error
	GetOrderFunc           func(ctx context.Context, orderID int64) (*models.Order, error)
	ListDesignerOrdersFunc func(ctx context.Context, designerID int64, limit, offset int) ([]models.Order, error)

	CreateRequestOrderFunc        func(ctx context.Context, ro *models.RequestOrder) error
	GetRequestOrderFunc           func(ctx context.Context, id int64) (*models.RequestOrder, error)
	ListDesignerRequestOrdersFunc func(ctx context.Context, designerID int64, limit, offset int) ([]models.RequestOrder, error)
	ListOpenRequestOrdersFunc     func(ctx context.Context, limit, offset int) ([]models.RequestOrder, error)

	CreateBidFunc              func(ctx context.Context, b *models.BidFactory) error
	GetBidFunc                 func(ctx context.Context, id int64) (*models.BidFactory, error)
	ListFactoryBidsFunc        func(ctx context.Context, factoryID int64, limit, offset int) ([]models.BidFactory, error)
	ListRequestOrderBidsFunc   func(ctx context.Context, requestOrderID int64) ([]models.BidFactory, error)
	UpdateBidOfferFunc         func(ctx context.Context, b *models.BidFactory) error
	MatchBidFunc               func(ctx context.Context, bidID int64, matchedDate models.Date) (*models.BidFactory, int64, error)
	UpdateSettlementStatusFunc func(ctx context.Context, bidID int64, from, to models.SettlementStatus) (*models.BidFactory, error)
	GetMatchSnapshotFunc       func(ctx context.Context, bidID int64) (*models.MatchSnapshot, error)
}

var _ handlers.StorageInterface = (*MockStorage)(nil)

func (m *MockStorage) Ping(ctx context.Context) error {
	if m.PingFunc != nil {
		return m.PingFunc(ctx)
	}
	return nil
}

func (m *MockStorage) CreateAccount(ctx context.Context, kind models.AccountKind, a *models.Account) error {
	if m.CreateAccountFunc != nil {
		return m.CreateAccountFunc(ctx, kind, a)
	}
	a.ID = 1
	return nil
}

func (m *MockStorage) GetAccount(ctx context.Context, kind models.AccountKind, id int64) (*models.Account, error) {
	if m.GetAccountFunc != nil {
		return m.GetAccountFunc(ctx, kind, id)
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) GetAccountByUserID(ctx context.Context, kind models.AccountKind, userID string) (*models.Account, error) {
	if m.GetAccountByUserIDFunc != nil {
		return m.GetAccountByUserIDFunc(ctx, kind, userID)
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) UpdateAccountProfile(ctx context.Context, kind models.AccountKind, a *models.Account) error {
	if m.UpdateAccountProfileFunc != nil {
		return m.UpdateAccountProfileFunc(ctx, kind, a)
	}
	return nil
}

func (m *MockStorage) UpdateAccountPassword(ctx context.Context, kind models.AccountKind, id int64, hash string) error {
	if m.UpdateAccountPasswordFunc != nil {
		return m.UpdateAccountPasswordFunc(ctx, kind, id, hash)
	}
	return nil
}

func (m *MockStorage) CreateProduct(ctx context.Context, p *models.Product) error {
	if m.CreateProductFunc != nil {
		return m.CreateProductFunc(ctx, p)
	}
	p.ID = 1
	return nil
}

func (m *MockStorage) GetProduct(ctx context.Context, id int64) (*models.Product, error) {
	if m.GetProductFunc != nil {
		return m.GetProductFunc(ctx, id)
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) ListDesignerProducts(ctx context.Context, designerID int64, limit, offset int) ([]models.Product, error) {
	if m.ListDesignerProductsFunc != nil {
		return m.ListDesignerProductsFunc(ctx, designerID, limit, offset)
	}
	return []models.Product{}, nil
}

func (m *MockStorage) UpdateProduct(ctx context.Context, p *models.Product) error {
	if m.UpdateProductFunc != nil {
		return m.UpdateProductFunc(ctx, p)
	}
	return nil
}

func (m *MockStorage) UpdateProductSchedule(ctx context.Context, id int64, quantity int, dueDate models.Date) (*models.Product, error) {
	if m.UpdateProductScheduleFunc != nil {
		return m.UpdateProductScheduleFunc(ctx, id, quantity, dueDate)
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) DeleteProduct(ctx context.Context, id int64) error {
	if m.DeleteProductFunc != nil {
		return m.DeleteProductFunc(ctx, id)
	}
	return nil
}

func (m *MockStorage) CreateOrder(ctx context.Context, o *models.Order) error {
	if m.CreateOrderFunc != nil {
		return m.CreateOrderFunc(ctx, o)
	}
	o.OrderID = 1
	return nil
}

func (m *MockStorage) GetOrder(ctx context.Context, orderID int64) (*models.Order, error) {
	if m.GetOrderFunc != nil {
		return m.GetOrderFunc(ctx, orderID)
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) ListDesignerOrders(ctx context.Context, designerID int64, limit, offset int) ([]models.Order, error) {
	if m.ListDesignerOrdersFunc != nil {
		return m.ListDesignerOrdersFunc(ctx, designerID, limit, offset)
	}
	return []models.Order{}, nil
}

func (m *MockStorage) CreateRequestOrder(ctx context.Context, ro *models.RequestOrder) error {
	if m.CreateRequestOrderFunc != nil {
		return m.CreateRequestOrderFunc(ctx, ro)
	}
	ro.ID = 1
	return nil
}

func (m *MockStorage) GetRequestOrder(ctx context.Context, id int64) (*models.RequestOrder, error) {
	if m.GetRequestOrderFunc != nil {
		return m.GetRequestOrderFunc(ctx, id)
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) ListDesignerRequestOrders(ctx context.Context, designerID int64, limit, offset int) ([]models.RequestOrder, error) {
	if m.ListDesignerRequestOrdersFunc != nil {
		return m.ListDesignerRequestOrdersFunc(ctx, designerID, limit, offset)
	}
	return []models.RequestOrder{}, nil
}

func (m *MockStorage) ListOpenRequestOrders(ctx context.Context, limit, offset int) ([]models.RequestOrder, error) {
	if m.ListOpenRequestOrdersFunc != nil {
		return m.ListOpenRequestOrdersFunc(ctx, limit, offset)
	}
	return []models.RequestOrder{}, nil
}

func (m *MockStorage) CreateBid(ctx context.Context, b *models.BidFactory) error {
	if m.CreateBidFunc != nil {
		return m.CreateBidFunc(ctx, b)
	}
	b.ID = 1
	b.SettlementStatus = models.SettlementPending
	return nil
}

func (m *MockStorage) GetBid(ctx context.Context, id int64) (*models.BidFactory, error) {
	if m.GetBidFunc != nil {
		return m.GetBidFunc(ctx, id)
	}
	return nil, db.ErrNotFound
}

func (m *MockStorage) ListFactoryBids(ctx context.Context, factoryID int64, limit, offset int) ([]models.BidFactory, error) {
	if m.ListFactoryBidsFunc != nil {
		return m.ListFactoryBidsFunc(ctx, factoryID, limit, offset)
	}
	return []models.BidFactory{}, nil
}

func (m *MockStorage) ListRequestOrderBids(ctx context.Context, requestOrderID int64) ([]models.BidFactory, error) {
	if m.ListRequestOrderBidsFunc != nil {
		return m.ListRequestOrderBidsFunc(ctx, requestOrderID)
	}
	return []models.BidFactory{}, nil
}

func (m *MockStorage) UpdateBidOffer(ctx context.Context, b *models.BidFactory) error {
	if m.UpdateBidOfferFunc != nil {
		return m.UpdateBidOfferFunc(ctx, b)
	}
	return nil
}

func (m *MockStorage) MatchBid(ctx context.Context, bidID int64, matchedDate models.Date) (*models.BidFactory, int64, error) {
	if m.MatchBidFunc != nil {
		return m.MatchBidFunc(ctx, bidID, matchedDate)
	}
	return nil, 0, db.ErrNotFound
}

func (m *MockStorage) UpdateSettlementStatus(ctx context.Context, bidID int64, from, to models.SettlementStatus) (*models.BidFactory, error) {
	if m.UpdateSettlementStatusFunc != nil {
		return m.UpdateSettlementStatusFunc(ctx, bidID, from, to)
	}
	return &models.BidFactory{ID: bidID, SettlementStatus: to}, nil
}

func (m *MockStorage) GetMatchSnapshot(ctx context.Context, bidID int64) (*models.MatchSnapshot, error) {
	if m.GetMatchSnapshotFunc != nil {
		return m.GetMatchSnapshotFunc(ctx, bidID)
	}
	return nil, db.ErrNotFound
}

// fakeProgress записывает вызовы зеркала
type fakeProgress struct {
	err error

	designerUpserts []models.OrderSnapshot
	factoryUpserts  []models.MatchSnapshot
	stepUpdates     []mirror.StepUpdate
	feedback        []string
	factoryPhase    models.Phase
	factoryID       int64

	designerDoc *mirror.DesignerOrder
	factoryDocs []mirror.FactoryOrder
}

var _ handlers.ProgressMirror = (*fakeProgress)(nil)

func (f *fakeProgress) UpsertDesignerOrder(_ context.Context, s models.OrderSnapshot) error {
	f.designerUpserts = append(f.designerUpserts, s)
	return f.err
}

func (f *fakeProgress) UpsertFactoryOrder(_ context.Context, s models.MatchSnapshot) error {
	f.factoryUpserts = append(f.factoryUpserts, s)
	return f.err
}

func (f *fakeProgress) DesignerOrder(context.Context, int64) (*mirror.DesignerOrder, error) {
	if f.err != nil {
		return nil, f.err
	}
	if f.designerDoc == nil {
		return nil, mirror.ErrNotFound
	}
	return f.designerDoc, nil
}

func (f *fakeProgress) FactoryOrders(context.Context, int64) ([]mirror.FactoryOrder, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.factoryDocs, nil
}

func (f *fakeProgress) UpdateDesignerStep(_ context.Context, _ int64, _ int, upd mirror.StepUpdate) error {
	f.stepUpdates = append(f.stepUpdates, upd)
	return f.err
}

func (f *fakeProgress) AddDesignerFeedback(_ context.Context, _ int64, message string) error {
	f.feedback = append(f.feedback, message)
	return f.err
}

func (f *fakeProgress) UpdateFactoryStep(_ context.Context, _ int64, phase models.Phase, factoryID int64, _ int, upd mirror.StepUpdate) error {
	f.factoryPhase = phase
	f.factoryID = factoryID
	f.stepUpdates = append(f.stepUpdates, upd)
	return f.err
}

func (f *fakeProgress) Ping(context.Context) error {
	return f.err
}

var testToday = time.Date(2030, 1, 15, 10, 0, 0, 0, time.UTC)

func newTestHandler(store *MockStorage, progress handlers.ProgressMirror) *handlers.Handler {
	tokens := auth.NewTokenService("test-secret-key-1234567890", "fablink", time.Hour, 24*time.Hour)
	h := handlers.NewHandler(store, tokens, auth.NewMemoryBlacklist(), progress)
	h.Now = func() time.Time { return testToday }
	return h
}
