package repositories

import (
	"errors"

	"catalog/internal/models"
)

// ErrNotFound is returned when a requested record does not exist. Callers
// unwrap it with errors.Is to map the failure onto a 404.
var ErrNotFound = errors.New("record not found")

// ListOptions controls the plain list query: sort field, direction and the
// maximum number of products returned.
type ListOptions struct {
	SortBy string
	Order  string
	Limit  int
}

// ProductRepository defines the interface for product data access.
type ProductRepository interface {
	List(opts ListOptions) ([]models.Product, error)
	ListRelated(product *models.Product, limit int) ([]models.Product, error)
	DistinctCategoryIDs() ([]string, error)
	Search(query models.SearchQuery) ([]models.Product, error)
	SearchByName(term, categoryID string) ([]models.Product, error)
	GetByID(id string) (*models.Product, error)
	Create(product *models.Product) error
	Update(product *models.Product) error
	Delete(id string) error
	UpdateStock(items []models.OrderLine) error
}
