package catalog

import (
	"context"
	"time"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"go.uber.org/zap"

	"github.com/strandtech/storefront/internal/blob"
	"github.com/strandtech/storefront/internal/domain"
)

// TaskRunner dispatches a fire-and-forget task. *ants.Pool satisfies it.
type TaskRunner interface {
	Submit(task func()) error
}

// CreateInput carries the fields and image payload for product creation.
// The image is mandatory on this path.
type CreateInput struct {
	Name        string
	MakeModel   string
	Category    string
	Description string
	Quantity    int
	Price       float64
	ImageName   string
	ImageData   []byte
}

// CategoryMetrics tallies products into the five fixed category buckets.
// Unrecognized categories are dropped from the tally, not folded into other.
type CategoryMetrics struct {
	Printer int `json:"printer"`
	Laptop  int `json:"laptop"`
	Screen  int `json:"screen"`
	Acc     int `json:"acc"`
	Other   int `json:"other"`
}

// PriceStats summarizes catalog prices for the admin surface.
type PriceStats struct {
	Count  int     `json:"count"`
	Mean   float64 `json:"mean"`
	Median float64 `json:"median"`
	Min    float64 `json:"min"`
	Max    float64 `json:"max"`
}

// Service implements the catalog operations over a repository and the
// external blob store.
type Service struct {
	repo   ProductRepository
	blobs  blob.Store
	runner TaskRunner
}

func NewService(repo ProductRepository, blobs blob.Store, runner TaskRunner) *Service {
	return &Service{repo: repo, blobs: blobs, runner: runner}
}

func (s *Service) ListAll(ctx context.Context) ([]domain.Product, error) {
	return s.repo.ListAll(ctx)
}

func (s *Service) GetByID(ctx context.Context, id int64) (*domain.Product, error) {
	return s.repo.GetByID(ctx, id)
}

func (s *Service) Count(ctx context.Context) (int64, error) {
	return s.repo.Count(ctx)
}

// Create uploads the image first and then inserts the product row. If the
// insert fails after a successful upload, a compensating delete is issued
// against the blob store so the orphaned blob does not leak.
func (s *Service) Create(ctx context.Context, in CreateInput) (*domain.Product, *blob.PutResult, error) {
	if len(in.ImageData) == 0 {
		return nil, nil, errors.New("catalog: image payload is required")
	}

	put, err := s.blobs.Put(ctx, in.ImageName, in.ImageData)
	if err != nil {
		return nil, nil, errors.Wrap(err, "catalog: image upload failed")
	}

	product := &domain.Product{
		Name:        in.Name,
		MakeModel:   in.MakeModel,
		Category:    in.Category,
		Description: in.Description,
		Quantity:    in.Quantity,
		Price:       in.Price,
		ImageURL:    &put.URL,
	}
	if err := s.repo.Insert(ctx, product); err != nil {
		s.compensateBlob(put.URL)
		return nil, nil, errors.Wrap(err, "catalog: product insert failed")
	}
	return product, put, nil
}

// PartialUpdate applies the supplied fields to one product. An empty patch
// with no image fails before any database statement. An image, when
// supplied, is uploaded first and included unconditionally.
func (s *Service) PartialUpdate(ctx context.Context, id int64, patch ProductPatch, imageName string, imageData []byte) (*domain.Product, error) {
	if patch.IsEmpty() && len(imageData) == 0 {
		return nil, ErrNoFields
	}

	if _, err := s.repo.GetByID(ctx, id); err != nil {
		return nil, err
	}

	var uploadedURL string
	if len(imageData) > 0 {
		put, err := s.blobs.Put(ctx, imageName, imageData)
		if err != nil {
			return nil, errors.Wrap(err, "catalog: image upload failed")
		}
		uploadedURL = put.URL
		patch.ImageURL = &put.URL
	}

	affected, err := s.repo.UpdateFields(ctx, id, patch.Values(time.Now()))
	if err != nil {
		if uploadedURL != "" {
			s.compensateBlob(uploadedURL)
		}
		return nil, errors.Wrap(err, "catalog: product update failed")
	}
	if affected == 0 {
		if uploadedURL != "" {
			s.compensateBlob(uploadedURL)
		}
		return nil, ErrNotFound
	}

	return s.repo.GetByID(ctx, id)
}

func (s *Service) DeleteByID(ctx context.Context, id int64) error {
	affected, err := s.repo.DeleteByID(ctx, id)
	if err != nil {
		return err
	}
	if affected == 0 {
		return ErrNotFound
	}
	return nil
}

// CategoryMetrics reads every product category and tallies the five fixed
// buckets. Values outside the fixed set vanish from the tally.
func (s *Service) CategoryMetrics(ctx context.Context) (*CategoryMetrics, error) {
	categories, err := s.repo.Categories(ctx)
	if err != nil {
		return nil, err
	}
	m := &CategoryMetrics{}
	for _, c := range categories {
		switch c {
		case domain.CategoryPrinter:
			m.Printer++
		case domain.CategoryLaptop:
			m.Laptop++
		case domain.CategoryScreen:
			m.Screen++
		case domain.CategoryAccessory:
			m.Acc++
		case domain.CategoryOther:
			m.Other++
		}
	}
	return m, nil
}

// PriceStats summarizes catalog prices. An empty catalog yields zeroes.
func (s *Service) PriceStats(ctx context.Context) (*PriceStats, error) {
	prices, err := s.repo.Prices(ctx)
	if err != nil {
		return nil, err
	}
	if len(prices) == 0 {
		return &PriceStats{}, nil
	}
	mean, _ := stats.Mean(prices)
	median, _ := stats.Median(prices)
	minv, _ := stats.Min(prices)
	maxv, _ := stats.Max(prices)
	return &PriceStats{
		Count:  len(prices),
		Mean:   mean,
		Median: median,
		Min:    minv,
		Max:    maxv,
	}, nil
}

// compensateBlob deletes an uploaded blob after a failed write, via the
// task pool when available. Failures are logged, never surfaced.
func (s *Service) compensateBlob(url string) {
	task := func() {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		if err := s.blobs.Delete(ctx, url); err != nil {
			zap.L().Warn("blob compensation delete failed", zap.String("url", url), zap.Error(err))
		}
	}
	if s.runner != nil {
		if err := s.runner.Submit(task); err == nil {
			return
		}
	}
	task()
}
