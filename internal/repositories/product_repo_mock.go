package repositories

import (
	"fmt"
	"sort"
	"strings"
	"sync"

	"catalog/internal/models"

	"github.com/google/uuid"
)

// MockProductRepository is an in-memory implementation of ProductRepository.
// It backs local development when no database is configured and doubles as a
// test fixture.
type MockProductRepository struct {
	products map[string]models.Product
	mu       sync.RWMutex
}

// NewMockProductRepository creates a new instance of MockProductRepository.
func NewMockProductRepository() *MockProductRepository {
	return &MockProductRepository{
		products: make(map[string]models.Product),
	}
}

// sortProducts orders the slice in place by the requested field/direction.
// Unknown sort fields fall back to the identifier, matching the GORM
// implementation.
func sortProducts(products []models.Product, sortBy, order string) {
	desc := strings.EqualFold(order, "desc")
	sort.Slice(products, func(i, j int) bool {
		a, b := products[i], products[j]
		if desc {
			a, b = b, a
		}
		switch sortBy {
		case "name":
			return a.Name < b.Name
		case "price":
			return a.Price < b.Price
		case "sold":
			return a.Sold < b.Sold
		case "quantity":
			return a.Quantity < b.Quantity
		case "createdAt":
			return a.CreatedAt.Before(b.CreatedAt)
		default:
			return a.ID < b.ID
		}
	})
}

// stripPhoto clears the photo fields, mirroring the photo exclusion the
// GORM queries get from their column selection.
func stripPhoto(p models.Product) models.Product {
	p.PhotoData = nil
	p.PhotoContentType = ""
	return p
}

// List returns products sorted and truncated per opts, photo excluded.
func (r *MockProductRepository) List(opts ListOptions) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	productList := make([]models.Product, 0, len(r.products))
	for _, p := range r.products {
		productList = append(productList, stripPhoto(p))
	}
	sortProducts(productList, opts.SortBy, opts.Order)
	if opts.Limit > 0 && len(productList) > opts.Limit {
		productList = productList[:opts.Limit]
	}
	return productList, nil
}

// ListRelated returns products sharing the given product's category,
// excluding the product itself.
func (r *MockProductRepository) ListRelated(product *models.Product, limit int) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var related []models.Product
	for _, p := range r.products {
		if p.ID == product.ID || p.CategoryID != product.CategoryID {
			continue
		}
		related = append(related, stripPhoto(p))
	}
	sortProducts(related, "id", "asc")
	if limit > 0 && len(related) > limit {
		related = related[:limit]
	}
	return related, nil
}

// DistinctCategoryIDs returns the distinct category identifiers referenced
// by the stored products.
func (r *MockProductRepository) DistinctCategoryIDs() ([]string, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	seen := make(map[string]bool)
	var ids []string
	for _, p := range r.products {
		if !seen[p.CategoryID] {
			seen[p.CategoryID] = true
			ids = append(ids, p.CategoryID)
		}
	}
	sort.Strings(ids)
	return ids, nil
}

// matchesFilters reports whether the product satisfies every non-empty
// filter of the query.
func matchesFilters(p models.Product, f models.SearchFilters) bool {
	if len(f.Category) > 0 {
		found := false
		for _, id := range f.Category {
			if p.CategoryID == id {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	if len(f.Price) > 0 {
		if p.Price < f.Price[0] {
			return false
		}
		if len(f.Price) > 1 && p.Price > f.Price[1] {
			return false
		}
	}
	if len(f.Shipping) > 0 {
		found := false
		for _, s := range f.Shipping {
			if p.Shipping == s {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// Search runs the filtered search against the in-memory store.
func (r *MockProductRepository) Search(query models.SearchQuery) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var matched []models.Product
	for _, p := range r.products {
		if matchesFilters(p, query.Filters) {
			matched = append(matched, stripPhoto(p))
		}
	}
	sortProducts(matched, query.SortBy, query.Order)
	if query.Skip > 0 {
		if query.Skip >= len(matched) {
			matched = nil
		} else {
			matched = matched[query.Skip:]
		}
	}
	if query.Limit > 0 && len(matched) > query.Limit {
		matched = matched[:query.Limit]
	}
	return matched, nil
}

// SearchByName matches product names case-insensitively against the term.
func (r *MockProductRepository) SearchByName(term, categoryID string) ([]models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	lowered := strings.ToLower(term)
	var matched []models.Product
	for _, p := range r.products {
		if !strings.Contains(strings.ToLower(p.Name), lowered) {
			continue
		}
		if categoryID != "" && categoryID != "All" && p.CategoryID != categoryID {
			continue
		}
		matched = append(matched, stripPhoto(p))
	}
	sortProducts(matched, "id", "asc")
	return matched, nil
}

// GetByID returns a product by its ID.
func (r *MockProductRepository) GetByID(id string) (*models.Product, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	product, ok := r.products[id]
	if !ok {
		return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return &product, nil
}

// Create adds a new product.
func (r *MockProductRepository) Create(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	r.products[product.ID] = *product
	return nil
}

// Update modifies an existing product.
func (r *MockProductRepository) Update(product *models.Product) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[product.ID]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	r.products[product.ID] = *product
	return nil
}

// Delete removes a product by its ID.
func (r *MockProductRepository) Delete(id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	_, ok := r.products[id]
	if !ok {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	delete(r.products, id)
	return nil
}

// UpdateStock applies the batch of stock mutations. All items are checked
// before any mutation so a bad line item leaves the store untouched.
func (r *MockProductRepository) UpdateStock(items []models.OrderLine) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, item := range items {
		if _, ok := r.products[item.ProductID]; !ok {
			return fmt.Errorf("product with ID %s: %w", item.ProductID, ErrNotFound)
		}
	}
	for _, item := range items {
		p := r.products[item.ProductID]
		p.Quantity -= item.Count
		p.Sold += item.Count
		r.products[item.ProductID] = p
	}
	return nil
}

// MockCategoryRepository is an in-memory implementation of CategoryRepository.
type MockCategoryRepository struct {
	categories map[string]models.Category
	mu         sync.RWMutex
}

// NewMockCategoryRepository creates a new instance of MockCategoryRepository.
func NewMockCategoryRepository() *MockCategoryRepository {
	return &MockCategoryRepository{
		categories: make(map[string]models.Category),
	}
}

// GetByID returns a category by its ID.
func (r *MockCategoryRepository) GetByID(id string) (*models.Category, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	category, ok := r.categories[id]
	if !ok {
		return nil, fmt.Errorf("category with ID %s: %w", id, ErrNotFound)
	}
	return &category, nil
}

// Create adds a new category.
func (r *MockCategoryRepository) Create(category *models.Category) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if category.ID == "" {
		category.ID = uuid.New().String()
	}
	r.categories[category.ID] = *category
	return nil
}
