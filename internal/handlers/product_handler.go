package handlers

import (
	"errors"
	"io"
	"log"
	"mime/multipart"

	"catalog/internal/models"
	"catalog/internal/repositories"
	"catalog/internal/services"

	"github.com/go-playground/validator/v10"
	"github.com/gofiber/fiber/v2"
)

// productLocalKey is the fiber locals key under which the product lookup
// middleware stores the resolved product.
const productLocalKey = "product"

// ProductHandler handles HTTP requests for the product catalog.
type ProductHandler struct {
	service  *services.ProductService
	validate *validator.Validate
}

// NewProductHandler creates a new ProductHandler.
func NewProductHandler(service *services.ProductService) *ProductHandler {
	return &ProductHandler{
		service:  service,
		validate: validator.New(),
	}
}

// RegisterRoutes registers the catalog routes with the Fiber app. Mutating
// routes are wrapped with the supplied auth middleware.
func (h *ProductHandler) RegisterRoutes(router fiber.Router, authRequired fiber.Handler) {
	router.Get("/products", h.HandleList)
	router.Get("/products/search", h.HandleSearch)
	router.Get("/products/categories", h.HandleCategories)
	router.Post("/products/by/search", h.HandleFilteredSearch)
	router.Get("/products/related/:productId", h.ProductByID, h.HandleRelated)

	router.Post("/product/create/:userId", authRequired, h.HandleCreate)
	router.Get("/product/photo/:productId", h.ProductByID, h.HandlePhoto)
	router.Get("/product/:productId", h.ProductByID, h.HandleRead)
	router.Put("/product/:productId", authRequired, h.ProductByID, h.HandleUpdate)
	router.Delete("/product/:productId", authRequired, h.ProductByID, h.HandleDelete)
}

// ProductByID is a route middleware that resolves the product named in the
// URL and stores it in the request context. A missing or failed lookup
// short-circuits the chain with a 404.
func (h *ProductHandler) ProductByID(c *fiber.Ctx) error {
	productID := c.Params("productId")
	product, err := h.service.GetProductByID(productID)
	if err != nil {
		if !errors.Is(err, repositories.ErrNotFound) {
			log.Printf("Error resolving product %s: %v", productID, err)
		}
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Product not found",
		})
	}
	c.Locals(productLocalKey, product)
	return c.Next()
}

// localProduct retrieves the product resolved by ProductByID.
func localProduct(c *fiber.Ctx) *models.Product {
	return c.Locals(productLocalKey).(*models.Product)
}

// HandleList returns products sorted by the requested field/direction,
// photo excluded, at most `limit` results (default 6).
func (h *ProductHandler) HandleList(c *fiber.Ctx) error {
	products, err := h.service.ListProducts(
		c.Query("sortBy"),
		c.Query("order"),
		c.QueryInt("limit"),
	)
	if err != nil {
		log.Printf("Error listing products: %v", err)
		// Message kept for compatibility with existing API consumers.
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Product not found",
		})
	}
	return c.JSON(products)
}

// HandleRelated returns products sharing the resolved product's category.
func (h *ProductHandler) HandleRelated(c *fiber.Ctx) error {
	products, err := h.service.RelatedProducts(localProduct(c), c.QueryInt("limit"))
	if err != nil {
		log.Printf("Error listing related products: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Product not found",
		})
	}
	return c.JSON(products)
}

// HandleCategories returns the distinct category identifiers referenced by
// any product.
func (h *ProductHandler) HandleCategories(c *fiber.Ctx) error {
	categories, err := h.service.CategoryIDs()
	if err != nil {
		log.Printf("Error listing categories: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Product not found",
		})
	}
	return c.JSON(categories)
}

// HandleFilteredSearch runs the filtered search described by the request
// body and returns the matches together with their count.
func (h *ProductHandler) HandleFilteredSearch(c *fiber.Ctx) error {
	var query models.SearchQuery
	if err := c.BodyParser(&query); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid search request",
		})
	}

	result, err := h.service.SearchProducts(query)
	if err != nil {
		log.Printf("Error searching products: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Products not found",
		})
	}
	return c.JSON(result)
}

// HandleSearch matches product names against the `search` query parameter,
// optionally narrowed by `category`. A missing search term is a client
// error rather than a silent no-op.
func (h *ProductHandler) HandleSearch(c *fiber.Ctx) error {
	term := c.Query("search")
	if term == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Search term is required",
		})
	}

	products, err := h.service.SearchProductsByName(term, c.Query("category"))
	if err != nil {
		log.Printf("Error searching products by name: %v", err)
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Could not search products",
		})
	}
	if len(products) == 0 {
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Product does not exist",
		})
	}
	return c.JSON(products)
}

// parseProductForm binds and validates the multipart form of the create and
// update endpoints, and reads the optional photo upload. It returns a fiber
// response when the request is invalid.
func (h *ProductHandler) parseProductForm(c *fiber.Ctx) (*models.ProductForm, []byte, string, error) {
	var form models.ProductForm
	if err := c.BodyParser(&form); err != nil {
		return nil, nil, "", c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "All fields are required",
		})
	}
	if err := h.validate.Struct(&form); err != nil {
		return nil, nil, "", c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "All fields are required",
		})
	}

	fileHeader, err := c.FormFile("photo")
	if err != nil {
		// No photo submitted.
		return &form, nil, "", nil
	}
	if fileHeader.Size > services.MaxPhotoSize {
		return nil, nil, "", c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image should be less than 1mb in size",
		})
	}
	data, contentType, err := readUpload(fileHeader)
	if err != nil {
		return nil, nil, "", c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image could not be uploaded",
		})
	}
	return &form, data, contentType, nil
}

// readUpload reads the uploaded file into memory.
func readUpload(fileHeader *multipart.FileHeader) ([]byte, string, error) {
	file, err := fileHeader.Open()
	if err != nil {
		return nil, "", err
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, fileHeader.Header.Get("Content-Type"), nil
}

// mapProductWriteError shapes create/update failures onto the error
// contract: validation problems and persistence failures are both 400s.
func mapProductWriteError(c *fiber.Ctx, err error) error {
	switch {
	case errors.Is(err, services.ErrPhotoTooLarge):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Image should be less than 1mb in size",
		})
	case errors.Is(err, services.ErrInvalidCategory):
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Category does not exist",
		})
	default:
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": err.Error(),
		})
	}
}

// HandleCreate creates a product from a multipart form. The saved product,
// photo included, is echoed back.
func (h *ProductHandler) HandleCreate(c *fiber.Ctx) error {
	form, photoData, photoContentType, resp := h.parseProductForm(c)
	if form == nil {
		return resp
	}

	product, err := h.service.CreateProduct(form, photoData, photoContentType)
	if err != nil {
		log.Printf("Error creating product: %v", err)
		return mapProductWriteError(c, err)
	}
	return c.JSON(product)
}

// HandleRead returns the resolved product with its photo stripped.
func (h *ProductHandler) HandleRead(c *fiber.Ctx) error {
	product := localProduct(c)
	product.PhotoData = nil
	product.PhotoContentType = ""
	return c.JSON(product)
}

// HandleUpdate merges the submitted multipart form into the resolved
// product. The photo is replaced only when a new file is submitted.
func (h *ProductHandler) HandleUpdate(c *fiber.Ctx) error {
	form, photoData, photoContentType, resp := h.parseProductForm(c)
	if form == nil {
		return resp
	}

	product := localProduct(c)
	if err := h.service.UpdateProduct(product, form, photoData, photoContentType); err != nil {
		log.Printf("Error updating product %s: %v", product.ID, err)
		return mapProductWriteError(c, err)
	}
	return c.JSON(product)
}

// HandleDelete removes the resolved product.
func (h *ProductHandler) HandleDelete(c *fiber.Ctx) error {
	product := localProduct(c)
	if err := h.service.DeleteProduct(product.ID); err != nil {
		log.Printf("Error deleting product %s: %v", product.ID, err)
		return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
			"error": "Could not delete product",
		})
	}
	return c.JSON(fiber.Map{
		"message": "Product deleted successfully",
		"product": fiber.Map{"name": product.Name},
	})
}

// HandlePhoto serves the resolved product's photo with its stored content
// type. Products without a photo fall through to the next matching handler.
func (h *ProductHandler) HandlePhoto(c *fiber.Ctx) error {
	product := localProduct(c)
	if len(product.PhotoData) == 0 {
		return c.Next()
	}
	c.Set(fiber.HeaderContentType, product.PhotoContentType)
	return c.Send(product.PhotoData)
}
