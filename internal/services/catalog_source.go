package services

import (
	"errors"
	"fmt"
	"log"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/models"
)

// ProductRecord is one row returned by an external catalog source.
type ProductRecord struct {
	ExternalID   string
	Name         string
	Description  string
	Price        decimal.Decimal
	Stock        int
	Category     string
	ImageURL     string
	ShippingTime string
	ShippingCost decimal.Decimal
	Rating       decimal.Decimal
	ReviewCount  int
}

// CatalogSource supplies product records from an external catalog. Real
// integrations live behind this interface; the server ships with a mock.
type CatalogSource interface {
	FetchProducts(count int) ([]ProductRecord, error)
}

// ImportService upserts products from a CatalogSource, keyed by the
// source's external id so repeated imports stay idempotent.
type ImportService struct {
	db     *gorm.DB
	source CatalogSource
}

// NewImportService constructs ImportService.
func NewImportService(db *gorm.DB, source CatalogSource) *ImportService {
	return &ImportService{db: db, source: source}
}

// ImportProducts pulls up to count records and upserts them. Returns how
// many products were newly created. Stock is set only when a product is
// first created; re-imports never touch it, since local stock already
// reflects placed orders.
func (s *ImportService) ImportProducts(count int) (int, error) {
	if count < 1 {
		return 0, Validation("count must be at least 1")
	}

	records, err := s.source.FetchProducts(count)
	if err != nil {
		return 0, fmt.Errorf("fetch catalog records: %w", err)
	}

	added := 0
	for _, rec := range records {
		if rec.ExternalID == "" || rec.Name == "" {
			log.Printf("[Import] skipping record without external id or name")
			continue
		}

		var existing models.Product
		err := s.db.Where("external_id = ?", rec.ExternalID).First(&existing).Error
		switch {
		case err == nil:
			updates := map[string]interface{}{
				"name":          rec.Name,
				"description":   rec.Description,
				"price":         rec.Price,
				"category":      rec.Category,
				"image_url":     rec.ImageURL,
				"shipping_time": rec.ShippingTime,
				"shipping_cost": rec.ShippingCost,
				"rating":        rec.Rating,
				"review_count":  rec.ReviewCount,
			}
			if err := s.db.Model(&existing).Updates(updates).Error; err != nil {
				return added, err
			}
		case errors.Is(err, gorm.ErrRecordNotFound):
			product := models.Product{
				Name:         rec.Name,
				Description:  rec.Description,
				Price:        rec.Price,
				Stock:        rec.Stock,
				Category:     rec.Category,
				ImageURL:     rec.ImageURL,
				ShippingTime: rec.ShippingTime,
				ShippingCost: rec.ShippingCost,
				Rating:       rec.Rating,
				ReviewCount:  rec.ReviewCount,
				ExternalID:   rec.ExternalID,
			}
			if err := s.db.Create(&product).Error; err != nil {
				return added, err
			}
			added++
		default:
			return added, err
		}
	}

	log.Printf("[Import] upserted %d records, %d new", len(records), added)
	return added, nil
}

// MockCatalogSource generates deterministic placeholder records for
// development and seeding.
type MockCatalogSource struct{}

var mockCategories = []string{"Electronics", "Home & Garden", "Fashion", "Toys", "Sports"}

// FetchProducts returns count synthetic product records.
func (MockCatalogSource) FetchProducts(count int) ([]ProductRecord, error) {
	records := make([]ProductRecord, 0, count)
	for i := 0; i < count; i++ {
		category := mockCategories[i%len(mockCategories)]
		records = append(records, ProductRecord{
			ExternalID:   fmt.Sprintf("mock-%04d", i+1),
			Name:         fmt.Sprintf("%s Sample Item %d", category, i+1),
			Description:  fmt.Sprintf("Placeholder listing %d from the mock catalog feed.", i+1),
			Price:        decimal.NewFromInt(int64(5 + i%50)).Add(decimal.NewFromFloat(0.99)),
			Stock:        10 + i%90,
			Category:     category,
			ImageURL:     fmt.Sprintf("https://placehold.co/400x400?text=Item+%d", i+1),
			ShippingTime: "7-15 days",
			ShippingCost: decimal.Zero,
			Rating:       decimal.NewFromFloat(3.5),
			ReviewCount:  i % 200,
		})
	}
	return records, nil
}
