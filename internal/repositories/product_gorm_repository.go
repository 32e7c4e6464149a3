package repositories

import (
	"errors"
	"fmt"
	"strings"

	"catalog/internal/models"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// productListColumns are the columns selected by list and search queries.
// The photo blob columns are deliberately absent so listings stay small;
// the photo endpoint loads them on its own.
var productListColumns = []string{
	"id", "name", "description", "price", "category_id",
	"quantity", "sold", "shipping", "created_at", "updated_at", "deleted_at",
}

// sortColumns whitelists the sort fields accepted from clients. Anything
// not in this map falls back to the primary key.
var sortColumns = map[string]string{
	"id":        "id",
	"name":      "name",
	"price":     "price",
	"sold":      "sold",
	"quantity":  "quantity",
	"createdAt": "created_at",
}

// GORMProductRepository is a GORM implementation of ProductRepository.
type GORMProductRepository struct {
	db *gorm.DB
}

// NewGORMProductRepository creates a new instance of GORMProductRepository.
func NewGORMProductRepository(db *gorm.DB) *GORMProductRepository {
	return &GORMProductRepository{
		db: db,
	}
}

// orderClause builds a safe ORDER BY expression from client-supplied sort
// parameters. Both the column and the direction are whitelisted.
func orderClause(sortBy, order string) string {
	column, ok := sortColumns[sortBy]
	if !ok {
		column = "id"
	}
	direction := "asc"
	if strings.EqualFold(order, "desc") {
		direction = "desc"
	}
	return fmt.Sprintf("%s %s", column, direction)
}

// List retrieves products sorted and truncated per opts, with the category
// association expanded and the photo columns excluded.
func (r *GORMProductRepository) List(opts ListOptions) ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Select(productListColumns).
		Preload("Category").
		Order(orderClause(opts.SortBy, opts.Order)).
		Limit(opts.Limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list products: %w", err)
	}
	return products, nil
}

// ListRelated retrieves products sharing the given product's category,
// excluding the product itself. The expanded category carries only its
// identifier and name.
func (r *GORMProductRepository) ListRelated(product *models.Product, limit int) ([]models.Product, error) {
	var products []models.Product
	err := r.db.
		Select(productListColumns).
		Where("category_id = ? AND id <> ?", product.CategoryID, product.ID).
		Preload("Category", func(db *gorm.DB) *gorm.DB {
			return db.Select("id", "name")
		}).
		Limit(limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list related products: %w", err)
	}
	return products, nil
}

// DistinctCategoryIDs returns the distinct category identifiers referenced
// by any product. This is a projection over the product table, not a read of
// the category table, so it yields raw identifiers.
func (r *GORMProductRepository) DistinctCategoryIDs() ([]string, error) {
	var ids []string
	err := r.db.Model(&models.Product{}).
		Distinct().
		Pluck("category_id", &ids).Error
	if err != nil {
		return nil, fmt.Errorf("failed to get distinct categories: %w", err)
	}
	return ids, nil
}

// Search runs the filtered search query. Filter fields with an empty value
// set impose no constraint; price is interpreted as a closed [min, max]
// interval (a single value becomes a lower bound only).
func (r *GORMProductRepository) Search(query models.SearchQuery) ([]models.Product, error) {
	tx := r.db.
		Select(productListColumns).
		Preload("Category")

	filters := query.Filters
	if len(filters.Category) > 0 {
		tx = tx.Where("category_id IN ?", filters.Category)
	}
	if len(filters.Price) > 0 {
		tx = tx.Where("price >= ?", filters.Price[0])
		if len(filters.Price) > 1 {
			tx = tx.Where("price <= ?", filters.Price[1])
		}
	}
	if len(filters.Shipping) > 0 {
		tx = tx.Where("shipping IN ?", filters.Shipping)
	}

	var products []models.Product
	err := tx.
		Order(orderClause(query.SortBy, query.Order)).
		Offset(query.Skip).
		Limit(query.Limit).
		Find(&products).Error
	if err != nil {
		return nil, fmt.Errorf("failed to search products: %w", err)
	}
	return products, nil
}

// SearchByName matches products whose name contains the term,
// case-insensitively. A category narrows the match unless it is empty or
// the literal "All".
func (r *GORMProductRepository) SearchByName(term, categoryID string) ([]models.Product, error) {
	tx := r.db.
		Select(productListColumns).
		Where("LOWER(name) LIKE ?", "%"+strings.ToLower(term)+"%")
	if categoryID != "" && categoryID != "All" {
		tx = tx.Where("category_id = ?", categoryID)
	}

	var products []models.Product
	if err := tx.Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to search products by name: %w", err)
	}
	return products, nil
}

// GetByID retrieves a single product with its category expanded.
func (r *GORMProductRepository) GetByID(id string) (*models.Product, error) {
	var product models.Product
	if err := r.db.Preload("Category").First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
		}
		return nil, fmt.Errorf("failed to get product by ID %s: %w", id, err)
	}
	return &product, nil
}

// Create creates a new product in the database.
func (r *GORMProductRepository) Create(product *models.Product) error {
	if product.ID == "" {
		product.ID = uuid.New().String()
	}
	if err := r.db.Create(product).Error; err != nil {
		return fmt.Errorf("failed to create product: %w", err)
	}
	return nil
}

// Update updates an existing product in the database.
func (r *GORMProductRepository) Update(product *models.Product) error {
	res := r.db.Save(product) // Save will update all fields, including zero values
	if res.Error != nil {
		return fmt.Errorf("failed to update product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", product.ID, ErrNotFound)
	}
	return nil
}

// Delete deletes a product by its ID from the database.
func (r *GORMProductRepository) Delete(id string) error {
	res := r.db.Delete(&models.Product{}, "id = ?", id)
	if res.Error != nil {
		return fmt.Errorf("failed to delete product: %w", res.Error)
	}
	if res.RowsAffected == 0 {
		return fmt.Errorf("product with ID %s: %w", id, ErrNotFound)
	}
	return nil
}

// UpdateStock applies a batch of stock mutations in one transaction. Each
// line item decrements quantity and increments sold by its count. The
// increments run inside the database so concurrent batches for the same
// product cannot lose updates.
func (r *GORMProductRepository) UpdateStock(items []models.OrderLine) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			res := tx.Model(&models.Product{}).
				Where("id = ?", item.ProductID).
				UpdateColumns(map[string]interface{}{
					"quantity": gorm.Expr("quantity - ?", item.Count),
					"sold":     gorm.Expr("sold + ?", item.Count),
				})
			if res.Error != nil {
				return fmt.Errorf("failed to update stock for product %s: %w", item.ProductID, res.Error)
			}
			if res.RowsAffected == 0 {
				return fmt.Errorf("product with ID %s: %w", item.ProductID, ErrNotFound)
			}
		}
		return nil
	})
}
