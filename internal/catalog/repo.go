package catalog

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/mvaldes-dev/storecraft-backend/pkg/db/models"
	pkgerrors "github.com/mvaldes-dev/storecraft-backend/pkg/errors"
)

// ProductCatalog is the read-only product lookup the checkout core prices against.
type ProductCatalog interface {
	FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error)
	ListProducts(ctx context.Context) ([]models.Product, error)
}

// DeliveryCatalog is the read-only delivery method lookup.
type DeliveryCatalog interface {
	FindDeliveryMethodByID(ctx context.Context, id uuid.UUID) (*models.DeliveryMethod, error)
	ListDeliveryMethods(ctx context.Context) ([]models.DeliveryMethod, error)
}

// Repository serves both catalogs from the relational store.
type Repository struct {
	db *gorm.DB
}

// NewRepository builds a repository tied to the provided GORM DB.
func NewRepository(db *gorm.DB) *Repository {
	return &Repository{db: db}
}

// WithTx returns a repository bound to the provided transaction.
func (r *Repository) WithTx(tx *gorm.DB) *Repository {
	if tx == nil {
		return r
	}
	return &Repository{db: tx}
}

func (r *Repository) FindProductByID(ctx context.Context, id uuid.UUID) (*models.Product, error) {
	var product models.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&product).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "product not found").
				WithDetails(map[string]any{"product_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load product")
	}
	return &product, nil
}

func (r *Repository) ListProducts(ctx context.Context) ([]models.Product, error) {
	var products []models.Product
	err := r.db.WithContext(ctx).Order("name ASC").Find(&products).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list products")
	}
	return products, nil
}

func (r *Repository) FindDeliveryMethodByID(ctx context.Context, id uuid.UUID) (*models.DeliveryMethod, error) {
	var method models.DeliveryMethod
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&method).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "delivery method not found").
				WithDetails(map[string]any{"delivery_method_id": id})
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load delivery method")
	}
	return &method, nil
}

func (r *Repository) ListDeliveryMethods(ctx context.Context) ([]models.DeliveryMethod, error) {
	var methods []models.DeliveryMethod
	err := r.db.WithContext(ctx).Order("price ASC").Find(&methods).Error
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "list delivery methods")
	}
	return methods, nil
}
