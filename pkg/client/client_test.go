package client_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"catalog/internal/models"
	"catalog/pkg/client"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()

	mux := http.NewServeMux()
	mux.HandleFunc("/api/v1/products", func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "sold", r.URL.Query().Get("sortBy"))
		assert.Equal(t, "desc", r.URL.Query().Get("order"))
		assert.Equal(t, "2", r.URL.Query().Get("limit"))
		json.NewEncoder(w).Encode([]models.Product{
			{ID: "p1", Name: "Laptop"},
			{ID: "p2", Name: "Mouse"},
		})
	})
	mux.HandleFunc("/api/v1/products/categories", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode([]string{"cat-1", "cat-2"})
	})
	mux.HandleFunc("/api/v1/products/by/search", func(w http.ResponseWriter, r *http.Request) {
		var query models.SearchQuery
		require.NoError(t, json.NewDecoder(r.Body).Decode(&query))
		assert.Equal(t, []string{"cat-1"}, query.Filters.Category)
		json.NewEncoder(w).Encode(models.SearchResult{
			Size: 1,
			Data: []models.Product{{ID: "p1", Name: "Laptop"}},
		})
	})
	mux.HandleFunc("/api/v1/product/p1", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(models.Product{ID: "p1", Name: "Laptop"})
	})
	mux.HandleFunc("/api/v1/product/photo/p1", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		w.Write([]byte("png-bytes"))
	})
	mux.HandleFunc("/api/v1/product/create/u1", func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, r.ParseMultipartForm(2<<20))
		assert.Equal(t, "Laptop", r.FormValue("name"))
		assert.Equal(t, "1200", r.FormValue("price"))
		assert.Equal(t, "cat-1", r.FormValue("category"))
		assert.Equal(t, "true", r.FormValue("shipping"))
		assert.Equal(t, "Bearer test-token", r.Header.Get("Authorization"))

		file, header, err := r.FormFile("photo")
		require.NoError(t, err)
		defer file.Close()
		data, err := io.ReadAll(file)
		require.NoError(t, err)
		assert.Equal(t, []byte("photo-bytes"), data)
		assert.Equal(t, "image/png", header.Header.Get("Content-Type"))

		json.NewEncoder(w).Encode(models.Product{ID: "p-new", Name: "Laptop"})
	})
	mux.HandleFunc("/", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Product not found"})
	})

	server := httptest.NewServer(mux)
	t.Cleanup(server.Close)
	return server
}

func TestClient_GetProducts(t *testing.T) {
	server := newTestServer(t)
	c := client.New(server.URL+"/api/v1", "")

	products, err := c.GetProducts(context.Background(), "sold", "desc", 2)
	require.NoError(t, err)
	require.Len(t, products, 2)
	assert.Equal(t, "Laptop", products[0].Name)
}

func TestClient_GetProduct(t *testing.T) {
	server := newTestServer(t)
	c := client.New(server.URL+"/api/v1", "")

	product, err := c.GetProduct(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, "p1", product.ID)
}

func TestClient_GetProduct_NotFound(t *testing.T) {
	server := newTestServer(t)
	c := client.New(server.URL+"/api/v1", "")

	product, err := c.GetProduct(context.Background(), "missing")
	assert.Nil(t, product)
	assert.ErrorIs(t, err, client.ErrNotFound)
}

func TestClient_GetCategories(t *testing.T) {
	server := newTestServer(t)
	c := client.New(server.URL+"/api/v1", "")

	categories, err := c.GetCategories(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"cat-1", "cat-2"}, categories)
}

func TestClient_GetFilteredProducts(t *testing.T) {
	server := newTestServer(t)
	c := client.New(server.URL+"/api/v1", "")

	result, err := c.GetFilteredProducts(context.Background(), models.SearchQuery{
		Filters: models.SearchFilters{Category: []string{"cat-1"}},
	})
	require.NoError(t, err)
	assert.Equal(t, 1, result.Size)
	require.Len(t, result.Data, 1)
	assert.Equal(t, "Laptop", result.Data[0].Name)
}

func TestClient_CreateProduct(t *testing.T) {
	server := newTestServer(t)
	c := client.New(server.URL+"/api/v1", "test-token")

	product, err := c.CreateProduct(context.Background(), "u1", client.ProductUpload{
		Name:             "Laptop",
		Description:      "High performance laptop",
		Price:            1200,
		CategoryID:       "cat-1",
		Quantity:         10,
		Shipping:         true,
		PhotoName:        "laptop.png",
		PhotoContentType: "image/png",
		Photo:            []byte("photo-bytes"),
	})
	require.NoError(t, err)
	assert.Equal(t, "p-new", product.ID)
}

func TestClient_GetPhoto(t *testing.T) {
	server := newTestServer(t)
	c := client.New(server.URL+"/api/v1", "")

	data, contentType, err := c.GetPhoto(context.Background(), "p1")
	require.NoError(t, err)
	assert.Equal(t, []byte("png-bytes"), data)
	assert.Equal(t, "image/png", contentType)
}
