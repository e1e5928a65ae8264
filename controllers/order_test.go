package controllers_test

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"go-storefront/cart"
	"go-storefront/catalog"
	"go-storefront/controllers"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/pricing"
	"go-storefront/utils"
)

// memProductStock holds product rows keyed by public id. Ids in depleted
// pass validation but fail the conditional decrement, standing in for a
// concurrent checkout draining the stock in between.
type memProductStock struct {
	products map[int]models.Product
	depleted map[int]bool
}

func newMemProductStock(products ...models.Product) *memProductStock {
	s := &memProductStock{products: map[int]models.Product{}, depleted: map[int]bool{}}
	for _, p := range products {
		s.products[p.ID] = p
	}
	return s
}

func (s *memProductStock) FindByID(ctx context.Context, id int) (*models.Product, error) {
	p, ok := s.products[id]
	if !ok {
		return nil, mongo.ErrNoDocuments
	}
	return &p, nil
}

func (s *memProductStock) DecrementStock(ctx context.Context, id, qty int) (bool, error) {
	p, ok := s.products[id]
	if !ok || s.depleted[id] || p.Stock < qty {
		return false, nil
	}
	p.Stock -= qty
	s.products[id] = p
	return true, nil
}

func (s *memProductStock) RestoreStock(ctx context.Context, id, qty int) error {
	p := s.products[id]
	p.Stock += qty
	s.products[id] = p
	return nil
}

func setupOrderAPI(t *testing.T, products *memProductStock) (*mux.Router, *memCartStore, string, primitive.ObjectID) {
	t.Helper()
	utils.JwtKey = []byte("test-secret")

	cache := catalog.New(&stubSource{}, zerolog.Nop())
	require.NoError(t, cache.Load(context.Background()))

	cartStore := newMemCartStore()
	oc := &controllers.OrderController{
		Products:  products,
		CartStore: cartStore,
		Engine:    cart.NewEngine(cache, cartStore, zerolog.Nop()),
		Policy:    pricing.DefaultPolicy(),
		Log:       zerolog.Nop(),
	}

	router := mux.NewRouter()
	protected := router.PathPrefix("/api").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/orders", oc.CreateOrder).Methods("POST")

	userID := primitive.NewObjectID()
	token, err := utils.GenerateJWT(userID.Hex(), "Jo", "jo@example.com", false)
	require.NoError(t, err)

	return router, cartStore, token, userID
}

func errorMessage(t *testing.T, body []byte) string {
	t.Helper()
	var resp struct {
		Message string `json:"message"`
	}
	require.NoError(t, json.Unmarshal(body, &resp))
	return resp.Message
}

func TestOrderAPI_EmptyCartBlocked(t *testing.T) {
	router, _, token, _ := setupOrderAPI(t, newMemProductStock())

	rec := call(t, router, token, http.MethodPost, "/api/orders", "")
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "Cart is empty", errorMessage(t, rec.Body.Bytes()))
}

func TestOrderAPI_ProductNoLongerAvailable(t *testing.T) {
	router, cartStore, token, userID := setupOrderAPI(t, newMemProductStock())

	cartStore.carts[userID] = []models.CartItem{
		{ProductID: "9", Name: "Figs", Price: 7, Quantity: 1},
	}

	rec := call(t, router, token, http.MethodPost, "/api/orders", "")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestOrderAPI_InsufficientStock(t *testing.T) {
	products := newMemProductStock(models.Product{ID: 1, Name: "Bread", Price: 5, Stock: 1})
	router, cartStore, token, userID := setupOrderAPI(t, products)

	cartStore.carts[userID] = []models.CartItem{
		{ProductID: "1", Name: "Bread", Price: 5, Quantity: 3},
	}

	rec := call(t, router, token, http.MethodPost, "/api/orders", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "Insufficient stock for product: Bread", errorMessage(t, rec.Body.Bytes()))
	assert.Equal(t, 1, products.products[1].Stock)
}

func TestOrderAPI_ConcurrentDepletionRollsBack(t *testing.T) {
	products := newMemProductStock(
		models.Product{ID: 1, Name: "Apples", Price: 30, Stock: 5},
		models.Product{ID: 2, Name: "Honey", Price: 25, Stock: 5},
	)
	products.depleted[2] = true
	router, cartStore, token, userID := setupOrderAPI(t, products)

	cartStore.carts[userID] = []models.CartItem{
		{ProductID: "1", Name: "Apples", Price: 30, Quantity: 2},
		{ProductID: "2", Name: "Honey", Price: 25, Quantity: 1},
	}

	rec := call(t, router, token, http.MethodPost, "/api/orders", "")
	assert.Equal(t, http.StatusConflict, rec.Code)

	// The first line's decrement was undone when the second lost the race.
	assert.Equal(t, 5, products.products[1].Stock)
	assert.Equal(t, 5, products.products[2].Stock)
}

func TestOrderAPI_RequiresAuth(t *testing.T) {
	router, _, _, _ := setupOrderAPI(t, newMemProductStock())

	rec := call(t, router, "", http.MethodPost, "/api/orders", "")
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}
