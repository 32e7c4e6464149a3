// Package client is a Go consumer of the catalog HTTP API. It mirrors the
// server's endpoints one method per operation and surfaces failures as
// errors instead of swallowing them.
package client

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strconv"
	"time"

	"catalog/internal/models"
)

// ErrNotFound is returned when the catalog reports a missing product.
var ErrNotFound = errors.New("product not found")

// APIError carries a non-success response from the catalog.
type APIError struct {
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("catalog API error (status %d): %s", e.StatusCode, e.Message)
}

// ProductUpload is the payload of the create and update operations. Photo
// fields are optional.
type ProductUpload struct {
	Name             string
	Description      string
	Price            float64
	CategoryID       string
	Quantity         int
	Shipping         bool
	PhotoName        string
	PhotoContentType string
	Photo            []byte
}

// Client calls the catalog API. BaseURL should include the API prefix,
// e.g. "http://localhost:8080/api/v1".
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
}

// New creates a catalog client. The token authenticates mutating calls and
// may be empty for read-only use.
func New(baseURL, token string) *Client {
	return &Client{
		baseURL: baseURL,
		token:   token,
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}
}

// do runs the request and decodes the JSON response into out. Error bodies
// of the form {"error": "..."} become APIErrors; 404s become ErrNotFound.
func (c *Client) do(req *http.Request, out interface{}) error {
	req.Header.Set("Accept", "application/json")
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		apiErr := &APIError{StatusCode: resp.StatusCode}
		var body struct {
			Error   string `json:"error"`
			Message string `json:"message"`
		}
		if decodeErr := json.NewDecoder(resp.Body).Decode(&body); decodeErr == nil {
			apiErr.Message = body.Error
			if apiErr.Message == "" {
				apiErr.Message = body.Message
			}
		}
		return apiErr
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("failed to decode catalog response: %w", err)
	}
	return nil
}

// GetProducts lists products sorted by the given field and direction,
// truncated to limit.
func (c *Client) GetProducts(ctx context.Context, sortBy, order string, limit int) ([]models.Product, error) {
	params := url.Values{}
	if sortBy != "" {
		params.Set("sortBy", sortBy)
	}
	if order != "" {
		params.Set("order", order)
	}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/products?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := c.do(req, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetProduct fetches one product by its identifier, photo excluded.
func (c *Client) GetProduct(ctx context.Context, productID string) (*models.Product, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/product/%s", c.baseURL, url.PathEscape(productID)), nil)
	if err != nil {
		return nil, err
	}
	var product models.Product
	if err := c.do(req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// GetRelatedProducts lists products sharing the given product's category.
func (c *Client) GetRelatedProducts(ctx context.Context, productID string, limit int) ([]models.Product, error) {
	u := fmt.Sprintf("%s/products/related/%s", c.baseURL, url.PathEscape(productID))
	if limit > 0 {
		u += "?limit=" + strconv.Itoa(limit)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := c.do(req, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// GetCategories returns the distinct category identifiers referenced by the
// catalog's products.
func (c *Client) GetCategories(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		c.baseURL+"/products/categories", nil)
	if err != nil {
		return nil, err
	}
	var categories []string
	if err := c.do(req, &categories); err != nil {
		return nil, err
	}
	return categories, nil
}

// GetFilteredProducts runs the filtered search.
func (c *Client) GetFilteredProducts(ctx context.Context, query models.SearchQuery) (*models.SearchResult, error) {
	body, err := json.Marshal(query)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal search query: %w", err)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.baseURL+"/products/by/search", bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", "application/json")

	var result models.SearchResult
	if err := c.do(req, &result); err != nil {
		return nil, err
	}
	return &result, nil
}

// SearchProducts matches product names against the search term, optionally
// narrowed to a category ("All" means no narrowing).
func (c *Client) SearchProducts(ctx context.Context, search, category string) ([]models.Product, error) {
	params := url.Values{}
	params.Set("search", search)
	if category != "" {
		params.Set("category", category)
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/products/search?%s", c.baseURL, params.Encode()), nil)
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := c.do(req, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// CreateProduct creates a product from the upload via multipart form.
func (c *Client) CreateProduct(ctx context.Context, userID string, upload ProductUpload) (*models.Product, error) {
	body, contentType, err := encodeUpload(upload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		fmt.Sprintf("%s/product/create/%s", c.baseURL, url.PathEscape(userID)), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var product models.Product
	if err := c.do(req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// UpdateProduct replaces the product's fields with the upload's. The photo
// stays untouched unless the upload carries a new one.
func (c *Client) UpdateProduct(ctx context.Context, productID string, upload ProductUpload) (*models.Product, error) {
	body, contentType, err := encodeUpload(upload)
	if err != nil {
		return nil, err
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPut,
		fmt.Sprintf("%s/product/%s", c.baseURL, url.PathEscape(productID)), body)
	if err != nil {
		return nil, err
	}
	req.Header.Set("Content-Type", contentType)

	var product models.Product
	if err := c.do(req, &product); err != nil {
		return nil, err
	}
	return &product, nil
}

// DeleteProduct removes a product.
func (c *Client) DeleteProduct(ctx context.Context, productID string) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodDelete,
		fmt.Sprintf("%s/product/%s", c.baseURL, url.PathEscape(productID)), nil)
	if err != nil {
		return err
	}
	return c.do(req, nil)
}

// GetPhoto fetches the product's photo bytes and their content type.
func (c *Client) GetPhoto(ctx context.Context, productID string) ([]byte, string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet,
		fmt.Sprintf("%s/product/photo/%s", c.baseURL, url.PathEscape(productID)), nil)
	if err != nil {
		return nil, "", err
	}
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, "", fmt.Errorf("catalog request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return nil, "", ErrNotFound
	}
	if resp.StatusCode != http.StatusOK {
		return nil, "", &APIError{StatusCode: resp.StatusCode}
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read photo body: %w", err)
	}
	return data, resp.Header.Get("Content-Type"), nil
}

// encodeUpload builds the multipart form body for create/update calls.
func encodeUpload(upload ProductUpload) (*bytes.Buffer, string, error) {
	body := &bytes.Buffer{}
	w := multipart.NewWriter(body)

	fields := map[string]string{
		"name":        upload.Name,
		"description": upload.Description,
		"price":       strconv.FormatFloat(upload.Price, 'f', -1, 64),
		"category":    upload.CategoryID,
		"quantity":    strconv.Itoa(upload.Quantity),
		"shipping":    strconv.FormatBool(upload.Shipping),
	}
	for name, value := range fields {
		if err := w.WriteField(name, value); err != nil {
			return nil, "", fmt.Errorf("failed to write form field %s: %w", name, err)
		}
	}

	if len(upload.Photo) > 0 {
		header := make(textproto.MIMEHeader)
		header.Set("Content-Disposition",
			fmt.Sprintf(`form-data; name="photo"; filename=%q`, upload.PhotoName))
		if upload.PhotoContentType != "" {
			header.Set("Content-Type", upload.PhotoContentType)
		}
		part, err := w.CreatePart(header)
		if err != nil {
			return nil, "", fmt.Errorf("failed to create photo part: %w", err)
		}
		if _, err := part.Write(upload.Photo); err != nil {
			return nil, "", fmt.Errorf("failed to write photo: %w", err)
		}
	}

	if err := w.Close(); err != nil {
		return nil, "", fmt.Errorf("failed to finalize form: %w", err)
	}
	return body, w.FormDataContentType(), nil
}
