package catalog

import (
	"context"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/strandtech/storefront/internal/blob"
	"github.com/strandtech/storefront/internal/domain"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(domain.Tables...))
	return db
}

// fakeBlobStore records calls and hands back deterministic URLs.
type fakeBlobStore struct {
	mu      sync.Mutex
	puts    []string
	deletes []string
	putErr  error
}

func (f *fakeBlobStore) Put(_ context.Context, name string, _ []byte) (*blob.PutResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.putErr != nil {
		return nil, f.putErr
	}
	f.puts = append(f.puts, name)
	return &blob.PutResult{URL: "https://cdn.test/" + name, Pathname: name}, nil
}

func (f *fakeBlobStore) Delete(_ context.Context, url string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, url)
	return nil
}

func (f *fakeBlobStore) deleted() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]string(nil), f.deletes...)
}

func newTestService(t *testing.T) (*Service, *GormProductRepository, *fakeBlobStore) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	blobs := &fakeBlobStore{}
	return NewService(repo, blobs, nil), repo, blobs
}

func seedProduct(t *testing.T, repo *GormProductRepository, name, category string, qty int, price float64) *domain.Product {
	t.Helper()
	p := &domain.Product{
		Name:        name,
		MakeModel:   "ACME " + name,
		Category:    category,
		Description: "test item",
		Quantity:    qty,
		Price:       price,
	}
	require.NoError(t, repo.Insert(context.Background(), p))
	return p
}

func TestGetByIDNotFound(t *testing.T) {
	svc, _, _ := newTestService(t)
	_, err := svc.GetByID(context.Background(), 424242)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCreateRequiresImage(t *testing.T) {
	svc, _, blobs := newTestService(t)
	_, _, err := svc.Create(context.Background(), CreateInput{Name: "no image"})
	require.Error(t, err)
	require.Empty(t, blobs.puts)
}

func TestCreateUploadsThenInserts(t *testing.T) {
	svc, repo, blobs := newTestService(t)
	p, put, err := svc.Create(context.Background(), CreateInput{
		Name:      "HP LaserJet",
		Category:  domain.CategoryPrinter,
		Quantity:  4,
		Price:     199.90,
		ImageName: "laser.png",
		ImageData: []byte{1, 2, 3},
	})
	require.NoError(t, err)
	require.Equal(t, "https://cdn.test/laser.png", put.URL)
	require.NotNil(t, p.ImageURL)
	require.Equal(t, put.URL, *p.ImageURL)

	stored, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, 4, stored.Quantity)
	require.Empty(t, blobs.deleted())
}

func TestCreateCompensatesBlobOnInsertFailure(t *testing.T) {
	db := newTestDB(t)
	repo := NewGormProductRepository(db)
	blobs := &fakeBlobStore{}
	svc := NewService(repo, blobs, nil)

	// Break the insert path after the upload succeeds.
	require.NoError(t, db.Migrator().DropTable(&domain.Product{}))

	_, _, err := svc.Create(context.Background(), CreateInput{
		Name:      "orphan",
		ImageName: "orphan.png",
		ImageData: []byte{9},
	})
	require.Error(t, err)
	require.Equal(t, []string{"https://cdn.test/orphan.png"}, blobs.deleted())
}

func TestPartialUpdateEmptyPatchFailsEarly(t *testing.T) {
	svc, repo, blobs := newTestService(t)
	p := seedProduct(t, repo, "Dell XPS", domain.CategoryLaptop, 7, 1200)

	_, err := svc.PartialUpdate(context.Background(), p.ID, ProductPatch{}, "", nil)
	require.ErrorIs(t, err, ErrNoFields)
	require.Empty(t, blobs.puts)

	unchanged, err := repo.GetByID(context.Background(), p.ID)
	require.NoError(t, err)
	require.Equal(t, 7, unchanged.Quantity)
}

func TestPartialUpdateQuantityOnly(t *testing.T) {
	svc, repo, _ := newTestService(t)
	p := seedProduct(t, repo, "Dell XPS", domain.CategoryLaptop, 7, 1200)

	qty := 5
	updated, err := svc.PartialUpdate(context.Background(), p.ID, ProductPatch{Quantity: &qty}, "", nil)
	require.NoError(t, err)
	require.Equal(t, 5, updated.Quantity)
	require.Equal(t, "Dell XPS", updated.Name)
	require.Equal(t, "ACME Dell XPS", updated.MakeModel)
	require.Equal(t, domain.CategoryLaptop, updated.Category)
	require.Equal(t, 1200.0, updated.Price)
}

func TestPartialUpdateZeroIsLegitimate(t *testing.T) {
	svc, repo, _ := newTestService(t)
	p := seedProduct(t, repo, "Old Screen", domain.CategoryScreen, 3, 250)

	qty := 0
	price := 0.0
	updated, err := svc.PartialUpdate(context.Background(), p.ID, ProductPatch{Quantity: &qty, Price: &price}, "", nil)
	require.NoError(t, err)
	require.Equal(t, 0, updated.Quantity)
	require.Equal(t, 0.0, updated.Price)
}

func TestPartialUpdateWithImage(t *testing.T) {
	svc, repo, blobs := newTestService(t)
	p := seedProduct(t, repo, "Canon", domain.CategoryPrinter, 1, 80)

	updated, err := svc.PartialUpdate(context.Background(), p.ID, ProductPatch{}, "canon.png", []byte{7})
	require.NoError(t, err)
	require.NotNil(t, updated.ImageURL)
	require.Equal(t, "https://cdn.test/canon.png", *updated.ImageURL)
	require.Equal(t, []string{"canon.png"}, blobs.puts)
}

func TestPartialUpdateNotFound(t *testing.T) {
	svc, _, blobs := newTestService(t)
	name := "ghost"
	_, err := svc.PartialUpdate(context.Background(), 999, ProductPatch{Name: &name}, "", nil)
	require.ErrorIs(t, err, ErrNotFound)
	require.Empty(t, blobs.puts, "nothing should be uploaded for a missing product")
}

func TestDeleteByID(t *testing.T) {
	svc, repo, _ := newTestService(t)
	p := seedProduct(t, repo, "Epson", domain.CategoryPrinter, 2, 99)

	require.NoError(t, svc.DeleteByID(context.Background(), p.ID))
	require.ErrorIs(t, svc.DeleteByID(context.Background(), p.ID), ErrNotFound)

	_, err := svc.GetByID(context.Background(), p.ID)
	require.ErrorIs(t, err, ErrNotFound)
}

func TestCategoryMetricsDropsUnknown(t *testing.T) {
	svc, repo, _ := newTestService(t)
	seedProduct(t, repo, "p1", domain.CategoryPrinter, 1, 10)
	seedProduct(t, repo, "p2", domain.CategoryPrinter, 1, 10)
	seedProduct(t, repo, "p3", "unknown", 1, 10)
	seedProduct(t, repo, "p4", domain.CategoryLaptop, 1, 10)

	m, err := svc.CategoryMetrics(context.Background())
	require.NoError(t, err)
	require.Equal(t, &CategoryMetrics{Printer: 2, Laptop: 1, Screen: 0, Acc: 0, Other: 0}, m)
}

func TestPriceStats(t *testing.T) {
	svc, repo, _ := newTestService(t)

	empty, err := svc.PriceStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, &PriceStats{}, empty)

	seedProduct(t, repo, "a", domain.CategoryOther, 1, 10)
	seedProduct(t, repo, "b", domain.CategoryOther, 1, 20)
	seedProduct(t, repo, "c", domain.CategoryOther, 1, 60)

	s, err := svc.PriceStats(context.Background())
	require.NoError(t, err)
	require.Equal(t, 3, s.Count)
	require.InDelta(t, 30.0, s.Mean, 0.001)
	require.InDelta(t, 20.0, s.Median, 0.001)
	require.Equal(t, 10.0, s.Min)
	require.Equal(t, 60.0, s.Max)
}
