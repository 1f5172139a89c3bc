package service

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"storefront/internal/model"
	"storefront/internal/repository"
)

// MockUserRepository is a mock implementation of UserRepository.
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) Create(ctx context.Context, user *model.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *MockUserRepository) UpdateProfile(ctx context.Context, id uuid.UUID, fields map[string]interface{}) error {
	args := m.Called(ctx, id, fields)
	return args.Error(0)
}

func (m *MockUserRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) FindByEmail(ctx context.Context, email string) (*model.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*model.User), args.Error(1)
}

func (m *MockUserRepository) List(ctx context.Context) ([]model.User, error) {
	args := m.Called(ctx)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]model.User), args.Error(1)
}

// MockTokenStore is a mock implementation of TokenStoreInterface.
type MockTokenStore struct {
	mock.Mock
}

func (m *MockTokenStore) Revoke(ctx context.Context, tokenID string, ttl time.Duration) error {
	args := m.Called(ctx, tokenID, ttl)
	return args.Error(0)
}

func (m *MockTokenStore) IsRevoked(ctx context.Context, tokenID string) (bool, error) {
	args := m.Called(ctx, tokenID)
	return args.Bool(0), args.Error(1)
}

// memoryStore is an in-memory product and order store. Transactions hold the
// store lock for their whole duration and roll back every change on error.
type memoryStore struct {
	mu       sync.Mutex
	products map[uuid.UUID]model.Product
	orders   []model.Order

	// beforeTx runs under the lock at the start of a transaction, standing in
	// for a writer that committed between the stock check and the transaction.
	beforeTx func(s *memoryStore)
	// createErr makes order inserts fail after stock was decremented.
	createErr error
}

func newMemoryStore(products ...model.Product) *memoryStore {
	s := &memoryStore{products: map[uuid.UUID]model.Product{}}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memoryStore) Products() repository.ProductRepository { return memProducts{s: s} }
func (s *memoryStore) Orders() repository.OrderRepository { return memOrders{s: s} }

func (s *memoryStore) stock(id uuid.UUID) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.products[id].Stock
}

func (s *memoryStore) orderCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.orders)
}

func (s *memoryStore) WithTransaction(ctx context.Context, fn func(ctx context.Context, products repository.ProductRepository, orders repository.OrderRepository) error) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.beforeTx != nil {
		s.beforeTx(s)
	}

	snapshot := make(map[uuid.UUID]model.Product, len(s.products))
	for id, p := range s.products {
		snapshot[id] = p
	}
	orderCount := len(s.orders)

	err := fn(ctx, memProducts{s: s, held: true}, memOrders{s: s, held: true})
	if err != nil {
		s.products = snapshot
		s.orders = s.orders[:orderCount]
	}
	return err
}

func acquire(s *memoryStore, held bool) func() {
	if held {
		return func() {}
	}
	s.mu.Lock()
	return s.mu.Unlock
}

type memProducts struct {
	s    *memoryStore
	held bool
}

func (r memProducts) Create(ctx context.Context, product *model.Product) error {
	defer acquire(r.s, r.held)()
	_ = product.BeforeCreate(nil)
	r.s.products[product.ID] = *product
	return nil
}

func (r memProducts) Update(ctx context.Context, product *model.Product) error {
	defer acquire(r.s, r.held)()
	r.s.products[product.ID] = *product
	return nil
}

func (r memProducts) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	defer acquire(r.s, r.held)()
	product, ok := r.s.products[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	return &product, nil
}

func (r memProducts) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	defer acquire(r.s, r.held)()
	var out []model.Product
	for _, id := range ids {
		if p, ok := r.s.products[id]; ok {
			out = append(out, p)
		}
	}
	return out, nil
}

func (r memProducts) List(ctx context.Context, filter repository.ProductFilter) ([]model.Product, error) {
	defer acquire(r.s, r.held)()
	var out []model.Product
	for _, p := range r.s.products {
		out = append(out, p)
	}
	return out, nil
}

func (r memProducts) Delete(ctx context.Context, id uuid.UUID) error {
	defer acquire(r.s, r.held)()
	delete(r.s.products, id)
	return nil
}

func (r memProducts) DecrementStock(ctx context.Context, id uuid.UUID, quantity int) (bool, error) {
	defer acquire(r.s, r.held)()
	p, ok := r.s.products[id]
	if !ok || p.Stock < quantity {
		return false, nil
	}
	p.Stock -= quantity
	r.s.products[id] = p
	return true, nil
}

type memOrders struct {
	s    *memoryStore
	held bool
}

func (r memOrders) Create(ctx context.Context, order *model.Order) error {
	defer acquire(r.s, r.held)()
	if r.s.createErr != nil {
		return r.s.createErr
	}
	_ = order.BeforeCreate(nil)
	for i := range order.Items {
		order.Items[i].OrderID = order.ID
		_ = order.Items[i].BeforeCreate(nil)
	}
	r.s.orders = append(r.s.orders, *order)
	return nil
}

func (r memOrders) FindByID(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	defer acquire(r.s, r.held)()
	for i := range r.s.orders {
		if r.s.orders[i].ID == id {
			o := r.s.orders[i]
			return &o, nil
		}
	}
	return nil, gorm.ErrRecordNotFound
}

func (r memOrders) ListByUser(ctx context.Context, userID uuid.UUID) ([]model.Order, error) {
	defer acquire(r.s, r.held)()
	var out []model.Order
	for _, o := range r.s.orders {
		if o.UserID == userID {
			out = append(out, o)
		}
	}
	return out, nil
}

func (r memOrders) ListAll(ctx context.Context) ([]model.Order, error) {
	defer acquire(r.s, r.held)()
	return append([]model.Order(nil), r.s.orders...), nil
}

func (r memOrders) UpdateStatus(ctx context.Context, id uuid.UUID, status model.OrderStatus) error {
	defer acquire(r.s, r.held)()
	for i := range r.s.orders {
		if r.s.orders[i].ID == id {
			r.s.orders[i].Status = status
		}
	}
	return nil
}
