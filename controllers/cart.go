package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"go-storefront/cart"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/pricing"
)

// CartLoader fetches the caller's saved cart; implementations follow the
// best-effort contract (empty cart on miss or failure).
type CartLoader interface {
	Load(ctx context.Context, userID primitive.ObjectID) *models.Cart
}

// CartController exposes the cart engine over HTTP. Each request loads the
// caller's cart, applies one mutation through the engine, and returns the new
// cart with its totals.
type CartController struct {
	Engine *cart.Engine
	Store  CartLoader
	Policy pricing.Policy
	Log    zerolog.Logger
}

// NewCartController creates a new CartController.
func NewCartController(engine *cart.Engine, cartStore CartLoader, policy pricing.Policy, log zerolog.Logger) *CartController {
	return &CartController{
		Engine: engine,
		Store:  cartStore,
		Policy: policy,
		Log:    log,
	}
}

type addItemRequest struct {
	// Accepts both string and numeric product ids; normalized to the
	// canonical string form before it reaches the engine.
	ProductID interface{} `json:"product_id"`
}

type cartResponse struct {
	Items    []models.CartItem `json:"items"`
	Totals   pricing.Rounded   `json:"totals"`
	Quantity *int              `json:"quantity,omitempty"`
	Limited  bool              `json:"limited,omitempty"`
	Message  string            `json:"message,omitempty"`
}

// GetCart returns the caller's cart and its totals.
func (cc *CartController) GetCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := cc.callerID(w, r)
	if !ok {
		return
	}
	c := cc.Store.Load(r.Context(), userID)
	cc.respond(w, http.StatusOK, c, nil, "")
}

// AddItem adds one unit of a product to the caller's cart.
func (cc *CartController) AddItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := cc.callerID(w, r)
	if !ok {
		return
	}

	var req addItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	productID, err := normalizeID(req.ProductID)
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	c := cc.Store.Load(r.Context(), userID)
	switch err := cc.Engine.AddItem(r.Context(), c, productID); {
	case errors.Is(err, cart.ErrProductNotFound):
		writeError(w, http.StatusNotFound, "Product not found")
		return
	case errors.Is(err, cart.ErrStockExhausted):
		writeError(w, http.StatusConflict, "You've already added all available stock")
		return
	case err != nil:
		writeError(w, http.StatusInternalServerError, "Error updating cart")
		return
	}

	cc.respond(w, http.StatusOK, c, nil, "")
}

type updateItemRequest struct {
	Quantity int `json:"quantity"`
}

// UpdateItem sets the absolute quantity for a cart line. Quantities above the
// available stock are clamped and reported; zero or below removes the line.
func (cc *CartController) UpdateItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := cc.callerID(w, r)
	if !ok {
		return
	}
	productID := mux.Vars(r)["id"]

	var req updateItemRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}

	c := cc.Store.Load(r.Context(), userID)
	res, err := cc.Engine.SetQuantity(r.Context(), c, productID, req.Quantity)
	if errors.Is(err, cart.ErrProductNotFound) {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	msg := ""
	if res.Limited {
		msg = fmt.Sprintf("Only %d in stock", res.Stock)
	}
	cc.respond(w, http.StatusOK, c, &res, msg)
}

// RemoveItem deletes a cart line. Removing an absent line succeeds.
func (cc *CartController) RemoveItem(w http.ResponseWriter, r *http.Request) {
	userID, ok := cc.callerID(w, r)
	if !ok {
		return
	}
	productID := mux.Vars(r)["id"]

	c := cc.Store.Load(r.Context(), userID)
	cc.Engine.RemoveItem(r.Context(), c, productID)
	cc.respond(w, http.StatusOK, c, nil, "")
}

// ClearCart empties the caller's cart.
func (cc *CartController) ClearCart(w http.ResponseWriter, r *http.Request) {
	userID, ok := cc.callerID(w, r)
	if !ok {
		return
	}

	c := cc.Store.Load(r.Context(), userID)
	cc.Engine.Clear(r.Context(), c)
	cc.respond(w, http.StatusOK, c, nil, "")
}

func (cc *CartController) respond(w http.ResponseWriter, status int, c *models.Cart, res *cart.Result, msg string) {
	resp := cartResponse{
		Items:   c.Items,
		Totals:  pricing.Compute(c.Items, cc.Policy).Round(),
		Message: msg,
	}
	if res != nil {
		resp.Quantity = &res.Quantity
		resp.Limited = res.Limited
	}
	writeJSON(w, status, resp)
}

func (cc *CartController) callerID(w http.ResponseWriter, r *http.Request) (primitive.ObjectID, bool) {
	claims := middleware.ClaimsFrom(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return primitive.NilObjectID, false
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return primitive.NilObjectID, false
	}
	return userID, true
}

// normalizeID canonicalizes a wire product id (JSON string or number) to its
// base-10 string form.
func normalizeID(v interface{}) (string, error) {
	switch id := v.(type) {
	case string:
		if id == "" {
			return "", fmt.Errorf("empty product id")
		}
		return id, nil
	case float64:
		if id != math.Trunc(id) {
			return "", fmt.Errorf("non-integral product id %v", id)
		}
		return strconv.Itoa(int(id)), nil
	default:
		return "", fmt.Errorf("unsupported product id type %T", v)
	}
}
