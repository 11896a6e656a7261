package orders

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvaldes-dev/storecraft-backend/pkg/db"
	"github.com/mvaldes-dev/storecraft-backend/pkg/db/models"
	"github.com/mvaldes-dev/storecraft-backend/pkg/enums"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
)

// Repository is the durable order store. Soft deletion marks an order as
// superseded; every finder here only sees live rows.
type Repository interface {
	WithTx(tx *gorm.DB) Repository
	Create(ctx context.Context, order *models.Order) (*models.Order, error)
	FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error)
	FindByPaymentReference(ctx context.Context, reference string) (*models.Order, error)
	ListByBuyerEmail(ctx context.Context, email string) ([]models.Order, error)
	Delete(ctx context.Context, order *models.Order) error
	UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error
	AppendStatusEvent(ctx context.Context, event *models.OrderStatusEvent) error
	ListStatusEvents(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusEvent, error)
}

type repository struct {
	db *gorm.DB
}

// NewRepository builds an orders repository bound to the provided DB.
func NewRepository(db *gorm.DB) Repository {
	return &repository{db: db}
}

func (r *repository) WithTx(tx *gorm.DB) Repository {
	if tx == nil {
		return r
	}
	return &repository{db: tx}
}

func (r *repository) Create(ctx context.Context, order *models.Order) (*models.Order, error) {
	if err := r.db.WithContext(ctx).Create(order).Error; err != nil {
		// The only unique constraint beyond the primary key is the partial
		// index keeping one live order per payment reference.
		if db.IsUniqueViolation(err, "") {
			return nil, pkgerrors.Wrap(pkgerrors.CodeConflict, err, "payment reference already bound to a live order")
		}
		return nil, err
	}
	return order, nil
}

func (r *repository) FindByID(ctx context.Context, id uuid.UUID) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("id = ?", id).
		First(&order).Error
	if err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByPaymentReference returns (nil, nil) when no live order carries the
// reference; superseded orders are excluded by the soft-delete scope.
func (r *repository) FindByPaymentReference(ctx context.Context, reference string) (*models.Order, error) {
	var order models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("payment_reference = ?", reference).
		First(&order).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, err
	}
	return &order, nil
}

func (r *repository) ListByBuyerEmail(ctx context.Context, email string) ([]models.Order, error) {
	var orders []models.Order
	err := r.db.WithContext(ctx).
		Preload("Items").
		Where("buyer_email = ?", email).
		Order("created_at DESC").
		Find(&orders).Error
	if err != nil {
		return nil, err
	}
	return orders, nil
}

func (r *repository) Delete(ctx context.Context, order *models.Order) error {
	return r.db.WithContext(ctx).Delete(order).Error
}

func (r *repository) UpdateStatus(ctx context.Context, orderID uuid.UUID, status enums.OrderStatus) error {
	return r.db.WithContext(ctx).
		Model(&models.Order{}).
		Where("id = ?", orderID).
		Update("status", status).Error
}

func (r *repository) AppendStatusEvent(ctx context.Context, event *models.OrderStatusEvent) error {
	return r.db.WithContext(ctx).Create(event).Error
}

func (r *repository) ListStatusEvents(ctx context.Context, orderID uuid.UUID) ([]models.OrderStatusEvent, error) {
	var events []models.OrderStatusEvent
	err := r.db.WithContext(ctx).
		Where("order_id = ?", orderID).
		Order("created_at ASC").
		Find(&events).Error
	if err != nil {
		return nil, err
	}
	return events, nil
}
