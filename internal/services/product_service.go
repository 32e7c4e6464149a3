package services

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"

	"catalog/internal/models"
	"catalog/internal/repositories"
)

// MaxPhotoSize is the largest accepted product photo, in bytes.
const MaxPhotoSize = 1000000

var (
	// ErrPhotoTooLarge is returned when an uploaded photo exceeds MaxPhotoSize.
	ErrPhotoTooLarge = errors.New("photo exceeds maximum size")
	// ErrInvalidCategory is returned when a product references a category
	// that does not exist.
	ErrInvalidCategory = errors.New("category does not exist")
)

// Defaults applied when a request leaves the corresponding parameter unset.
const (
	defaultListLimit   = 6
	defaultSearchLimit = 100
)

// EventPublisher publishes catalog events to the message broker.
type EventPublisher interface {
	Publish(exchange, routingKey string, body []byte) error
}

// ProductService handles business logic related to products.
type ProductService struct {
	repo         repositories.ProductRepository
	categoryRepo repositories.CategoryRepository
	publisher    EventPublisher
}

// NewProductService creates a new ProductService. The publisher may be nil,
// in which case stock events are skipped.
func NewProductService(repo repositories.ProductRepository, categoryRepo repositories.CategoryRepository, publisher EventPublisher) *ProductService {
	return &ProductService{
		repo:         repo,
		categoryRepo: categoryRepo,
		publisher:    publisher,
	}
}

// ListProducts retrieves products sorted by the requested field and
// direction. Unset parameters default to sorting ascending by identifier
// with at most six results.
func (s *ProductService) ListProducts(sortBy, order string, limit int) ([]models.Product, error) {
	opts := repositories.ListOptions{SortBy: sortBy, Order: order, Limit: limit}
	if opts.SortBy == "" {
		opts.SortBy = "id"
	}
	if opts.Order == "" {
		opts.Order = "asc"
	}
	if opts.Limit <= 0 {
		opts.Limit = defaultListLimit
	}
	return s.repo.List(opts)
}

// RelatedProducts retrieves products sharing the given product's category,
// excluding the product itself.
func (s *ProductService) RelatedProducts(product *models.Product, limit int) ([]models.Product, error) {
	if limit <= 0 {
		limit = defaultListLimit
	}
	return s.repo.ListRelated(product, limit)
}

// CategoryIDs returns the distinct category identifiers referenced by any
// product.
func (s *ProductService) CategoryIDs() ([]string, error) {
	return s.repo.DistinctCategoryIDs()
}

// SearchProducts runs the filtered search with the endpoint's defaults:
// descending by identifier, at most a hundred results.
func (s *ProductService) SearchProducts(query models.SearchQuery) (*models.SearchResult, error) {
	if query.SortBy == "" {
		query.SortBy = "id"
	}
	if query.Order == "" {
		query.Order = "desc"
	}
	if query.Limit <= 0 {
		query.Limit = defaultSearchLimit
	}
	if query.Skip < 0 {
		query.Skip = 0
	}

	products, err := s.repo.Search(query)
	if err != nil {
		return nil, err
	}
	return &models.SearchResult{Size: len(products), Data: products}, nil
}

// SearchProductsByName matches product names against the term,
// case-insensitively, optionally narrowed to a category.
func (s *ProductService) SearchProductsByName(term, categoryID string) ([]models.Product, error) {
	return s.repo.SearchByName(term, categoryID)
}

// GetProductByID retrieves a single product with its category expanded.
func (s *ProductService) GetProductByID(id string) (*models.Product, error) {
	return s.repo.GetByID(id)
}

// CreateProduct builds a product from the validated form and persists it.
// A non-empty photo is stored alongside the product unless it exceeds
// MaxPhotoSize.
func (s *ProductService) CreateProduct(form *models.ProductForm, photoData []byte, photoContentType string) (*models.Product, error) {
	if _, err := s.categoryRepo.GetByID(form.CategoryID); err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidCategory, form.CategoryID)
	}
	if len(photoData) > MaxPhotoSize {
		return nil, ErrPhotoTooLarge
	}

	product := &models.Product{}
	form.Apply(product)
	if len(photoData) > 0 {
		product.PhotoData = photoData
		product.PhotoContentType = photoContentType
	}

	if err := s.repo.Create(product); err != nil {
		return nil, err
	}
	return product, nil
}

// UpdateProduct merges the validated form into the existing product and
// persists it. The photo is replaced only when a new one is submitted.
func (s *ProductService) UpdateProduct(product *models.Product, form *models.ProductForm, photoData []byte, photoContentType string) error {
	if form.CategoryID != product.CategoryID {
		if _, err := s.categoryRepo.GetByID(form.CategoryID); err != nil {
			return fmt.Errorf("%w: %s", ErrInvalidCategory, form.CategoryID)
		}
	}
	if len(photoData) > MaxPhotoSize {
		return ErrPhotoTooLarge
	}

	form.Apply(product)
	if len(photoData) > 0 {
		product.PhotoData = photoData
		product.PhotoContentType = photoContentType
	}

	return s.repo.Update(product)
}

// DeleteProduct deletes a product by its ID.
func (s *ProductService) DeleteProduct(id string) error {
	return s.repo.Delete(id)
}

// UpdateStock applies the stock mutations of a completed order: for every
// line item the product's quantity drops by the purchased count and its sold
// counter rises by the same amount. The batch write is awaited before the
// stock-updated event is published, so callers observe its real outcome.
func (s *ProductService) UpdateStock(order models.OrderPlaced) error {
	if err := s.repo.UpdateStock(order.Products); err != nil {
		return fmt.Errorf("failed to update stock for order %s: %w", order.OrderID, err)
	}

	if s.publisher == nil {
		return nil
	}
	event := map[string]interface{}{
		"order_id": order.OrderID,
		"products": order.Products,
	}
	body, err := json.Marshal(event)
	if err != nil {
		log.Printf("Failed to marshal stock event for order %s: %v", order.OrderID, err)
		return nil
	}
	if err := s.publisher.Publish("catalog", "product.stock_updated", body); err != nil {
		log.Printf("Warning: Failed to publish stock updated event for order %s: %v", order.OrderID, err)
	}
	return nil
}
