package service

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	apperrors "storefront/internal/errors"
	"storefront/internal/model"
	"storefront/internal/repository"
)

var tracer = otel.Tracer("storefront/internal/service")

// OrderLine is one requested product and quantity.
type OrderLine struct {
	ProductID uuid.UUID
	Quantity  int
}

// OrderService handles order placement and retrieval.
type OrderService interface {
	CreateOrder(ctx context.Context, ownerID uuid.UUID, lines []OrderLine) (*model.Order, error)
	ListOwnOrders(ctx context.Context, ownerID uuid.UUID) ([]model.Order, error)
	ListAllOrders(ctx context.Context) ([]model.Order, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error)
}

type orderService struct {
	productRepo repository.ProductRepository
	orderRepo   repository.OrderRepository
	txManager   repository.TxManager
}

// NewOrderService creates a new order service.
func NewOrderService(
	productRepo repository.ProductRepository,
	orderRepo repository.OrderRepository,
	txManager repository.TxManager,
) OrderService {
	return &orderService{
		productRepo: productRepo,
		orderRepo:   orderRepo,
		txManager:   txManager,
	}
}

// CreateOrder prices the lines against the current catalog, then decrements stock
// and inserts the order in one transaction. Either everything commits or nothing does.
//
// The stock check before the transaction only fails fast; the conditional
// decrement inside the transaction is what keeps stock from going negative.
func (s *orderService) CreateOrder(ctx context.Context, ownerID uuid.UUID, lines []OrderLine) (order *model.Order, err error) {
	ctx, span := tracer.Start(ctx, "order.create", trace.WithAttributes(
		attribute.String("order.owner_id", ownerID.String()),
		attribute.Int("order.lines", len(lines)),
	))
	defer func() {
		if err != nil {
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
		}
		span.End()
	}()

	if len(lines) == 0 {
		return nil, apperrors.ErrEmptyOrder
	}

	// Sum quantities per product so repeated lines are checked as one request.
	requested := make(map[uuid.UUID]int, len(lines))
	ids := make([]uuid.UUID, 0, len(lines))
	for _, line := range lines {
		if line.Quantity <= 0 {
			return nil, apperrors.ErrInvalidQuantity
		}
		if _, seen := requested[line.ProductID]; !seen {
			ids = append(ids, line.ProductID)
		}
		requested[line.ProductID] += line.Quantity
	}

	found, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("load products: %w", err)
	}
	products := make(map[uuid.UUID]model.Product, len(found))
	for _, p := range found {
		products[p.ID] = p
	}

	for _, id := range ids {
		product, ok := products[id]
		if !ok {
			return nil, &apperrors.NotFoundError{Err: apperrors.ErrProductNotFound, ID: id}
		}
		if product.Stock < requested[id] {
			return nil, &apperrors.StockError{
				ProductID:   id,
				ProductName: product.Name,
				Requested:   requested[id],
				Available:   product.Stock,
			}
		}
	}

	order = &model.Order{
		UserID: ownerID,
		Status: model.OrderStatusPending,
		Items:  make([]model.OrderItem, 0, len(lines)),
	}
	total := decimal.Zero
	for _, line := range lines {
		item := model.OrderItem{
			ProductID: line.ProductID,
			Quantity:  line.Quantity,
			Price:     products[line.ProductID].Price,
		}
		total = total.Add(item.LineTotal())
		order.Items = append(order.Items, item)
	}
	order.Total = total
	span.SetAttributes(attribute.String("order.total", total.StringFixed(2)))

	// Decrement in a stable order so concurrent multi-product orders lock rows alike.
	sort.Slice(ids, func(i, j int) bool { return ids[i].String() < ids[j].String() })

	err = s.txManager.WithTransaction(ctx, func(ctx context.Context, txProducts repository.ProductRepository, txOrders repository.OrderRepository) error {
		for _, id := range ids {
			ok, err := txProducts.DecrementStock(ctx, id, requested[id])
			if err != nil {
				return fmt.Errorf("decrement stock: %w", err)
			}
			if !ok {
				return &apperrors.StockError{
					ProductID:   id,
					ProductName: products[id].Name,
					Requested:   requested[id],
				}
			}
		}

		if err := txOrders.Create(ctx, order); err != nil {
			return fmt.Errorf("create order: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	for i := range order.Items {
		product := products[order.Items[i].ProductID]
		product.Stock -= requested[product.ID]
		order.Items[i].Product = &product
	}
	span.SetAttributes(attribute.String("order.id", order.ID.String()))

	return order, nil
}

func (s *orderService) ListOwnOrders(ctx context.Context, ownerID uuid.UUID) ([]model.Order, error) {
	return s.orderRepo.ListByUser(ctx, ownerID)
}

func (s *orderService) ListAllOrders(ctx context.Context) ([]model.Order, error) {
	return s.orderRepo.ListAll(ctx)
}

// UpdateStatus overwrites the order status with any member of the status set.
// Transitions are not restricted.
func (s *orderService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) (*model.Order, error) {
	next, ok := model.ParseOrderStatus(status)
	if !ok {
		return nil, apperrors.ErrInvalidStatus
	}

	if _, err := s.findOrder(ctx, id); err != nil {
		return nil, err
	}

	if err := s.orderRepo.UpdateStatus(ctx, id, next); err != nil {
		return nil, fmt.Errorf("update order status: %w", err)
	}

	return s.findOrder(ctx, id)
}

func (s *orderService) findOrder(ctx context.Context, id uuid.UUID) (*model.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, apperrors.ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}
