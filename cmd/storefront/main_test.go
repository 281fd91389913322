package main

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"ecostore/internal/domain"
	"ecostore/internal/storefront"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sampleProducts = []domain.Product{
	{ID: 2, Name: "Yoga Mat", Description: "Non-slip", Price: 34.99, Image: "http://img/2.png", Category: "Sports", Stock: 60},
	{ID: 1, Name: "Coffee Mug", Description: "Ceramic", Price: 9.99, Image: "http://img/1.png", Category: "Home", Stock: 40},
}

func fakeAPI(t *testing.T) (string, *[]domain.ProductFields) {
	t.Helper()
	var updates []domain.ProductFields

	r := chi.NewRouter()
	r.Get("/api/products", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(sampleProducts)
	})
	r.Get("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		if chi.URLParam(r, "id") == "1" {
			json.NewEncoder(w).Encode(sampleProducts[1])
			return
		}
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]string{"error": "Product not found"})
	})
	r.Put("/api/products/{id}", func(w http.ResponseWriter, r *http.Request) {
		var fields domain.ProductFields
		require.NoError(t, json.NewDecoder(r.Body).Decode(&fields))
		updates = append(updates, fields)
		json.NewEncoder(w).Encode(domain.Product{ID: 1, Name: fields.Name, Price: fields.Price, Stock: fields.Stock})
	})

	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv.URL + "/api", &updates
}

func run(t *testing.T, apiURL string, args ...string) (string, string, error) {
	t.Helper()
	var out, errOut bytes.Buffer

	root := newRootCommand()
	root.SetOut(&out)
	root.SetErr(&errOut)
	root.SetArgs(append([]string{"--api-url", apiURL}, args...))

	err := root.Execute()
	return out.String(), errOut.String(), err
}

func TestProductsList(t *testing.T) {
	apiURL, _ := fakeAPI(t)

	out, _, err := run(t, apiURL, "products", "list")

	require.NoError(t, err)
	assert.Contains(t, out, "Yoga Mat")
	assert.Contains(t, out, "34.99")
	assert.Less(t, bytes.Index([]byte(out), []byte("Yoga Mat")), bytes.Index([]byte(out), []byte("Coffee Mug")))
}

func TestCartAdd(t *testing.T) {
	apiURL, _ := fakeAPI(t)

	out, errOut, err := run(t, apiURL, "cart", "add", "1", "2", "1")

	require.NoError(t, err)
	assert.Contains(t, out, "19.98")
	assert.Contains(t, out, "54.97")
	assert.Contains(t, errOut, "Added to cart")
}

func TestCartAddUnknownProduct(t *testing.T) {
	apiURL, _ := fakeAPI(t)

	_, _, err := run(t, apiURL, "cart", "add", "99")

	assert.EqualError(t, err, "product 99 not found")
}

func TestProductsUpdateKeepsUnsetFields(t *testing.T) {
	apiURL, updates := fakeAPI(t)

	_, errOut, err := run(t, apiURL, "products", "update", "1", "--price", "12.5")

	require.NoError(t, err)
	require.Len(t, *updates, 1)
	assert.Equal(t, domain.ProductFields{
		Name: "Coffee Mug", Description: "Ceramic", Price: 12.5, Image: "http://img/1.png", Category: "Home", Stock: 40,
	}, (*updates)[0])
	assert.Contains(t, errOut, "Product updated successfully")
}

func TestProductsGetMissing(t *testing.T) {
	apiURL, _ := fakeAPI(t)

	_, _, err := run(t, apiURL, "products", "get", "5")

	require.Error(t, err)
	assert.Equal(t, "product not found", describeError(err))
}

func TestDescribeError_OnlyShortensMissingProducts(t *testing.T) {
	missing := &storefront.APIError{Status: http.StatusNotFound, Message: "Product not found"}
	assert.Equal(t, "product not found", describeError(fmt.Errorf("get: %w", missing)))

	route := &storefront.APIError{Status: http.StatusNotFound, Message: "Route not found"}
	assert.Equal(t, route.Error(), describeError(route))
	assert.Contains(t, describeError(route), "Route not found")
}

func TestWrongAPIURLKeepsRouteError(t *testing.T) {
	r := chi.NewRouter()
	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
		json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "error": "Route not found", "path": r.URL.Path})
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)

	_, _, err := run(t, srv.URL+"/wrong", "products", "get", "1")

	require.Error(t, err)
	assert.Contains(t, describeError(err), "Route not found")
}

func TestProductsCreateValidatesLocally(t *testing.T) {
	_, _, err := run(t, "http://127.0.0.1:1/api", "products", "create", "--name", "Mug", "--price", "0")

	require.True(t, domain.IsValidationError(err))
	assert.Contains(t, err.Error(), domain.MsgPriceInvalid)
}

func TestParseProductID(t *testing.T) {
	for _, raw := range []string{"0", "-1", "abc", "1.5", ""} {
		_, err := parseProductID(raw)
		assert.ErrorIs(t, err, errInvalidID, raw)
	}

	id, err := parseProductID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)
}
