package controllers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/cart"
	"go-storefront/middleware"
	"go-storefront/models"
	"go-storefront/pricing"
	"go-storefront/utils"
)

// ProductStock is the slice of product persistence checkout needs: fresh
// reads for validation and conditional stock decrements.
type ProductStock interface {
	FindByID(ctx context.Context, id int) (*models.Product, error)
	// DecrementStock subtracts qty only while at least qty remains; the
	// boolean reports whether the decrement was applied.
	DecrementStock(ctx context.Context, id, qty int) (bool, error)
	RestoreStock(ctx context.Context, id, qty int) error
}

// OrderController handles order placement and history.
type OrderController struct {
	OrderCollection *mongo.Collection
	Products        ProductStock
	CartStore       CartLoader
	Engine          *cart.Engine
	Policy          pricing.Policy
	EmailService    *utils.EmailService
	Log             zerolog.Logger
}

// NewOrderController creates a new OrderController.
func NewOrderController(db *mongo.Database, products ProductStock, cartStore CartLoader, engine *cart.Engine, policy pricing.Policy, emailService *utils.EmailService, log zerolog.Logger) *OrderController {
	return &OrderController{
		OrderCollection: db.Collection("orders"),
		Products:        products,
		CartStore:       cartStore,
		Engine:          engine,
		Policy:          policy,
		EmailService:    emailService,
		Log:             log,
	}
}

// CreateOrder places an order from the caller's saved cart. Stock is
// re-validated against the live products collection, totals are recomputed
// server-side, stock is decremented, the order is stored and the cart cleared.
func (oc *OrderController) CreateOrder(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	c := oc.CartStore.Load(ctx, userID)
	if len(c.Items) == 0 {
		writeError(w, http.StatusBadRequest, "Cart is empty")
		return
	}

	// Authoritative stock check against current product data, not the
	// session's catalog snapshot.
	for _, item := range c.Items {
		publicID, err := strconv.Atoi(item.ProductID)
		if err != nil {
			writeError(w, http.StatusBadRequest, fmt.Sprintf("Invalid product id %q in cart", item.ProductID))
			return
		}
		product, err := oc.Products.FindByID(ctx, publicID)
		if err != nil {
			writeError(w, http.StatusNotFound, fmt.Sprintf("Product %s is no longer available", item.Name))
			return
		}
		if product.Stock < item.Quantity {
			writeError(w, http.StatusConflict, fmt.Sprintf("Insufficient stock for product: %s", product.Name))
			return
		}
	}

	// Decrements are conditional on remaining stock, so a concurrent
	// checkout cannot push a line negative. If one line loses the race,
	// restore the lines already taken and report the conflict.
	decremented := make([]models.CartItem, 0, len(c.Items))
	for _, item := range c.Items {
		publicID, _ := strconv.Atoi(item.ProductID)
		applied, err := oc.Products.DecrementStock(ctx, publicID, item.Quantity)
		if err == nil && !applied {
			oc.restoreStock(ctx, decremented)
			writeError(w, http.StatusConflict, fmt.Sprintf("Insufficient stock for product: %s", item.Name))
			return
		}
		if err != nil {
			oc.restoreStock(ctx, decremented)
			writeError(w, http.StatusInternalServerError, "Failed to update product stock")
			return
		}
		decremented = append(decremented, item)
	}

	totals := pricing.Compute(c.Items, oc.Policy)
	order := models.Order{
		UserID:   userID,
		Items:    c.Items,
		Subtotal: totals.Subtotal.InexactFloat64(),
		Discount: totals.Discount.InexactFloat64(),
		Tax:      totals.Tax.InexactFloat64(),
		Total:    totals.Total.InexactFloat64(),
		Date:     time.Now().UTC(),
	}

	result, err := oc.OrderCollection.InsertOne(ctx, order)
	if err != nil {
		oc.restoreStock(ctx, decremented)
		writeError(w, http.StatusInternalServerError, "Failed to create order")
		return
	}
	order.ID = result.InsertedID.(primitive.ObjectID)

	oc.Engine.Clear(ctx, c)

	go func(email, name string, order models.Order) {
		if err := oc.EmailService.SendOrderConfirmationEmail(email, name, order); err != nil {
			oc.Log.Error().Err(err).Str("email", email).Msg("order confirmation email failed")
		}
	}(claims.Email, claims.Name, order)

	writeJSON(w, http.StatusCreated, map[string]interface{}{
		"order_id": order.ID,
		"totals":   totals.Round(),
		"message":  "Order created successfully",
	})
}

func (oc *OrderController) restoreStock(ctx context.Context, items []models.CartItem) {
	for _, item := range items {
		publicID, _ := strconv.Atoi(item.ProductID)
		if err := oc.Products.RestoreStock(ctx, publicID, item.Quantity); err != nil {
			oc.Log.Error().Err(err).Str("product_id", item.ProductID).Msg("stock restore failed")
		}
	}
}

// GetOrders retrieves the caller's orders, newest first.
func (oc *OrderController) GetOrders(w http.ResponseWriter, r *http.Request) {
	claims := middleware.ClaimsFrom(r)
	if claims == nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}
	userID, err := primitive.ObjectIDFromHex(claims.UserID)
	if err != nil {
		writeError(w, http.StatusUnauthorized, "Unauthorized")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := oc.OrderCollection.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to retrieve orders")
		return
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		writeError(w, http.StatusInternalServerError, "Error decoding orders")
		return
	}

	writeJSON(w, http.StatusOK, orders)
}
