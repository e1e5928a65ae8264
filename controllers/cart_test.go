package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/cart"
	"go-storefront/catalog"
	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/pricing"
	"go-storefront/utils"
)

type stubSource struct {
	products []models.Product
}

func (s *stubSource) Products(ctx context.Context) ([]models.Product, error) {
	return s.products, nil
}

// memCartStore backs both the engine's Save and the controller's Load.
type memCartStore struct {
	carts map[primitive.ObjectID][]models.CartItem
}

func newMemCartStore() *memCartStore {
	return &memCartStore{carts: map[primitive.ObjectID][]models.CartItem{}}
}

func (s *memCartStore) Save(ctx context.Context, c *models.Cart) error {
	s.carts[c.UserID] = append([]models.CartItem(nil), c.Items...)
	return nil
}

func (s *memCartStore) Load(ctx context.Context, userID primitive.ObjectID) *models.Cart {
	return &models.Cart{
		UserID: userID,
		Items:  append([]models.CartItem{}, s.carts[userID]...),
	}
}

type cartResponse struct {
	Items  []models.CartItem `json:"items"`
	Totals pricing.Rounded   `json:"totals"`

	Quantity *int   `json:"quantity"`
	Limited  bool   `json:"limited"`
	Message  string `json:"message"`
}

func setupCartAPI(t *testing.T, products ...models.Product) (*mux.Router, *memCartStore, string) {
	t.Helper()
	utils.JwtKey = []byte("test-secret")

	cache := catalog.New(&stubSource{products: products}, zerolog.Nop())
	require.NoError(t, cache.Load(context.Background()))

	store := newMemCartStore()
	engine := cart.NewEngine(cache, store, zerolog.Nop())
	cc := controllers.NewCartController(engine, store, pricing.DefaultPolicy(), zerolog.Nop())

	router := mux.NewRouter()
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/cart", cc.GetCart).Methods("GET")
	protected.HandleFunc("/cart", cc.ClearCart).Methods("DELETE")
	protected.HandleFunc("/cart/items", cc.AddItem).Methods("POST")
	protected.HandleFunc("/cart/items/{id}", cc.UpdateItem).Methods("PUT")
	protected.HandleFunc("/cart/items/{id}", cc.RemoveItem).Methods("DELETE")

	userID := primitive.NewObjectID()
	token, err := utils.GenerateJWT(userID.Hex(), "Jo", "jo@example.com", false)
	require.NoError(t, err)

	return router, store, token
}

func call(t *testing.T, router *mux.Router, token, method, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *strings.Reader
	if body == "" {
		reader = strings.NewReader("")
	} else {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Authorization", "Bearer "+token)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartResponse {
	t.Helper()
	var resp cartResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	return resp
}

func TestCartAPI_AddAndGet(t *testing.T) {
	router, store, token := setupCartAPI(t,
		models.Product{ID: 1, Name: "Apples", Price: 30, Stock: 10},
		models.Product{ID: 2, Name: "Honey", Price: 25, Stock: 10},
	)

	// Numeric wire id is normalized at the boundary.
	rec := call(t, router, token, http.MethodPost, "/api/cart/items", `{"product_id": 1}`)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	rec = call(t, router, token, http.MethodPost, "/api/cart/items", `{"product_id": "2"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decodeCart(t, call(t, router, token, http.MethodGet, "/api/cart", ""))
	require.Len(t, resp.Items, 2)
	assert.Equal(t, 55.00, resp.Totals.Subtotal)
	assert.Equal(t, 5.50, resp.Totals.Discount)
	assert.Equal(t, 2.48, resp.Totals.Tax)
	assert.Equal(t, 51.98, resp.Totals.Total)

	// Mutations were persisted before the handler returned.
	assert.Len(t, store.carts, 1)
}

func TestCartAPI_AddFractionalID(t *testing.T) {
	router, store, token := setupCartAPI(t, models.Product{ID: 1, Name: "Apples", Price: 30, Stock: 10})

	rec := call(t, router, token, http.MethodPost, "/api/cart/items", `{"product_id": 1.9}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, store.carts)
}

func TestCartAPI_AddUnknownProduct(t *testing.T) {
	router, _, token := setupCartAPI(t)

	rec := call(t, router, token, http.MethodPost, "/api/cart/items", `{"product_id": "42"}`)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestCartAPI_StockExhausted(t *testing.T) {
	router, _, token := setupCartAPI(t, models.Product{ID: 1, Name: "Bread", Price: 5, Stock: 1})

	rec := call(t, router, token, http.MethodPost, "/api/cart/items", `{"product_id": "1"}`)
	require.Equal(t, http.StatusOK, rec.Code)

	rec = call(t, router, token, http.MethodPost, "/api/cart/items", `{"product_id": "1"}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCartAPI_QuantityClamp(t *testing.T) {
	router, _, token := setupCartAPI(t, models.Product{ID: 1, Name: "Eggs", Price: 4, Stock: 5})

	call(t, router, token, http.MethodPost, "/api/cart/items", `{"product_id": "1"}`)

	rec := call(t, router, token, http.MethodPut, "/api/cart/items/1", `{"quantity": 100}`)
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	require.NotNil(t, resp.Quantity)
	assert.Equal(t, 5, *resp.Quantity)
	assert.True(t, resp.Limited)
	assert.Equal(t, "Only 5 in stock", resp.Message)
}

func TestCartAPI_SetQuantityZeroRemoves(t *testing.T) {
	router, _, token := setupCartAPI(t, models.Product{ID: 1, Name: "Eggs", Price: 4, Stock: 5})

	call(t, router, token, http.MethodPost, "/api/cart/items", `{"product_id": "1"}`)

	rec := call(t, router, token, http.MethodPut, "/api/cart/items/1", `{"quantity": 0}`)
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Items)
}

func TestCartAPI_RemoveIsIdempotent(t *testing.T) {
	router, _, token := setupCartAPI(t, models.Product{ID: 1, Name: "Eggs", Price: 4, Stock: 5})

	call(t, router, token, http.MethodPost, "/api/cart/items", `{"product_id": "1"}`)

	rec := call(t, router, token, http.MethodDelete, "/api/cart/items/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Items)

	rec = call(t, router, token, http.MethodDelete, "/api/cart/items/1", "")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, decodeCart(t, rec).Items)
}

func TestCartAPI_Clear(t *testing.T) {
	router, store, token := setupCartAPI(t, models.Product{ID: 1, Name: "Eggs", Price: 4, Stock: 5})

	call(t, router, token, http.MethodPost, "/api/cart/items", `{"product_id": "1"}`)

	rec := call(t, router, token, http.MethodDelete, "/api/cart", "")
	require.Equal(t, http.StatusOK, rec.Code)
	resp := decodeCart(t, rec)
	assert.Empty(t, resp.Items)
	assert.Equal(t, 0.0, resp.Totals.Total)

	for _, items := range store.carts {
		assert.Empty(t, items)
	}
}

func TestCartAPI_RequiresAuth(t *testing.T) {
	router, _, _ := setupCartAPI(t)

	req := httptest.NewRequest(http.MethodGet, "/api/cart", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
