package catalog

import (
	"context"
	"errors"
	"time"

	"gorm.io/gorm"

	"github.com/strandtech/storefront/internal/domain"
)

// Sentinel errors distinguishing client-visible failures from plain
// data-access errors.
var (
	ErrNotFound = errors.New("product not found")
	ErrNoFields = errors.New("no fields to update")
)

// ProductRepository is the catalog data access contract.
type ProductRepository interface {
	ListAll(ctx context.Context) ([]domain.Product, error)
	GetByID(ctx context.Context, id int64) (*domain.Product, error)
	Count(ctx context.Context) (int64, error)
	Insert(ctx context.Context, p *domain.Product) error
	UpdateFields(ctx context.Context, id int64, values map[string]interface{}) (int64, error)
	DeleteByID(ctx context.Context, id int64) (int64, error)
	Categories(ctx context.Context) ([]string, error)
	Prices(ctx context.Context) ([]float64, error)
}

// GormProductRepository is the gorm implementation of ProductRepository.
type GormProductRepository struct {
	db *gorm.DB
}

func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) ListAll(ctx context.Context) ([]domain.Product, error) {
	var products []domain.Product
	err := r.db.WithContext(ctx).Find(&products).Error
	return products, err
}

func (r *GormProductRepository) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	var p domain.Product
	err := r.db.WithContext(ctx).Where("id = ?", id).First(&p).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &p, nil
}

func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	var total int64
	err := r.db.WithContext(ctx).Model(&domain.Product{}).Count(&total).Error
	return total, err
}

func (r *GormProductRepository) Insert(ctx context.Context, p *domain.Product) error {
	now := time.Now()
	if p.CreatedAt.IsZero() {
		p.CreatedAt = now
	}
	p.UpdatedAt = now
	return r.db.WithContext(ctx).Create(p).Error
}

// UpdateFields applies the prepared assignment map and reports rows affected.
func (r *GormProductRepository) UpdateFields(ctx context.Context, id int64, values map[string]interface{}) (int64, error) {
	res := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Where("id = ?", id).
		Updates(values)
	return res.RowsAffected, res.Error
}

func (r *GormProductRepository) DeleteByID(ctx context.Context, id int64) (int64, error) {
	res := r.db.WithContext(ctx).Where("id = ?", id).Delete(&domain.Product{})
	return res.RowsAffected, res.Error
}

func (r *GormProductRepository) Categories(ctx context.Context) ([]string, error) {
	var categories []string
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Pluck("category", &categories).Error
	return categories, err
}

func (r *GormProductRepository) Prices(ctx context.Context) ([]float64, error) {
	var prices []float64
	err := r.db.WithContext(ctx).
		Model(&domain.Product{}).
		Pluck("price", &prices).Error
	return prices, err
}
