package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"go-storefront/catalog"
	"go-storefront/models"
)

// AdminController serves the back-office: dashboard stats, order and customer
// listings, and product CRUD.
type AdminController struct {
	ProductCollection *mongo.Collection
	OrderCollection   *mongo.Collection
	UserCollection    *mongo.Collection
	Catalog           *catalog.Cache
	Log               zerolog.Logger
}

// NewAdminController creates a new AdminController.
func NewAdminController(db *mongo.Database, cache *catalog.Cache, log zerolog.Logger) *AdminController {
	return &AdminController{
		ProductCollection: db.Collection("products"),
		OrderCollection:   db.Collection("orders"),
		UserCollection:    db.Collection("users"),
		Catalog:           cache,
		Log:               log,
	}
}

// GetStats returns dashboard counters: revenue, order/product/customer counts.
func (ac *AdminController) GetStats(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orders, err := ac.allOrders(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching stats")
		return
	}

	revenue := 0.0
	for _, order := range orders {
		revenue += order.Total
	}

	productCount, err := ac.ProductCollection.CountDocuments(ctx, bson.M{})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching stats")
		return
	}
	customerCount, err := ac.UserCollection.CountDocuments(ctx, bson.M{"is_admin": bson.M{"$ne": true}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching stats")
		return
	}

	writeJSON(w, http.StatusOK, map[string]interface{}{
		"revenue":   revenue,
		"orders":    len(orders),
		"products":  productCount,
		"customers": customerCount,
	})
}

// GetRecentOrders returns the five most recent orders.
func (ac *AdminController) GetRecentOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}}).SetLimit(5)
	cursor, err := ac.OrderCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching orders")
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

// GetAllOrders returns every order, newest first.
func (ac *AdminController) GetAllOrders(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	orders, err := ac.allOrders(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching orders")
		return
	}
	writeJSON(w, http.StatusOK, orders)
}

type customerStats struct {
	ID         string  `json:"id"`
	Name       string  `json:"name"`
	Email      string  `json:"email"`
	OrderCount int     `json:"order_count"`
	TotalSpent float64 `json:"total_spent"`
}

// GetCustomers lists non-admin users with their order count and total spend.
func (ac *AdminController) GetCustomers(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	cursor, err := ac.UserCollection.Find(ctx, bson.M{"is_admin": bson.M{"$ne": true}})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching customers")
		return
	}
	defer cursor.Close(ctx)

	users := []models.User{}
	if err := cursor.All(ctx, &users); err != nil {
		writeError(w, http.StatusInternalServerError, "Error decoding customers")
		return
	}

	orders, err := ac.allOrders(ctx)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error fetching orders")
		return
	}

	stats := make([]customerStats, 0, len(users))
	for _, user := range users {
		cs := customerStats{
			ID:    user.ID.Hex(),
			Name:  user.Name,
			Email: user.Email,
		}
		for _, order := range orders {
			if order.UserID == user.ID {
				cs.OrderCount++
				cs.TotalSpent += order.Total
			}
		}
		stats = append(stats, cs)
	}
	writeJSON(w, http.StatusOK, stats)
}

type productRequest struct {
	Name        string  `json:"name" validate:"required"`
	Description string  `json:"description" validate:"required"`
	Price       float64 `json:"price" validate:"required,gte=0"`
	Unit        string  `json:"unit" validate:"required"`
	Image       string  `json:"image" validate:"required,url"`
	Category    string  `json:"category" validate:"required"`
	Stock       int     `json:"stock" validate:"gte=0"`
}

// CreateProduct adds a product with the next public numeric id.
func (ac *AdminController) CreateProduct(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product data")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	// Next public id = highest existing + 1.
	newID := 1
	var last models.Product
	opts := options.FindOne().SetSort(bson.D{{Key: "id", Value: -1}})
	err := ac.ProductCollection.FindOne(ctx, bson.M{}, opts).Decode(&last)
	if err == nil {
		newID = last.ID + 1
	} else if !errors.Is(err, mongo.ErrNoDocuments) {
		writeError(w, http.StatusInternalServerError, "Error creating product")
		return
	}

	product := models.Product{
		ID:          newID,
		Name:        req.Name,
		Description: req.Description,
		Price:       req.Price,
		Unit:        req.Unit,
		Image:       req.Image,
		Category:    req.Category,
		Stock:       req.Stock,
	}
	if _, err := ac.ProductCollection.InsertOne(ctx, product); err != nil {
		writeError(w, http.StatusInternalServerError, "Error creating product")
		return
	}

	ac.refreshCatalog(ctx)
	writeJSON(w, http.StatusCreated, product)
}

// UpdateProduct replaces a product's fields by public numeric id.
func (ac *AdminController) UpdateProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	var req productRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid input")
		return
	}
	if err := validate.Struct(req); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product data")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	update := bson.M{"$set": bson.M{
		"name":        req.Name,
		"description": req.Description,
		"price":       req.Price,
		"unit":        req.Unit,
		"image":       req.Image,
		"category":    req.Category,
		"stock":       req.Stock,
	}}
	result, err := ac.ProductCollection.UpdateOne(ctx, bson.M{"id": id}, update)
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error updating product")
		return
	}
	if result.MatchedCount == 0 {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	ac.refreshCatalog(ctx)

	var product models.Product
	if err := ac.ProductCollection.FindOne(ctx, bson.M{"id": id}).Decode(&product); err != nil {
		writeError(w, http.StatusInternalServerError, "Error reading product")
		return
	}
	writeJSON(w, http.StatusOK, product)
}

// DeleteProduct removes a product by public numeric id.
func (ac *AdminController) DeleteProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.Atoi(mux.Vars(r)["id"])
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid product ID")
		return
	}

	ctx, cancel := context.WithTimeout(r.Context(), 10*time.Second)
	defer cancel()

	result, err := ac.ProductCollection.DeleteOne(ctx, bson.M{"id": id})
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Error deleting product")
		return
	}
	if result.DeletedCount == 0 {
		writeError(w, http.StatusNotFound, "Product not found")
		return
	}

	ac.refreshCatalog(ctx)
	writeJSON(w, http.StatusOK, map[string]string{"message": "Product deleted successfully"})
}

func (ac *AdminController) allOrders(ctx context.Context) ([]models.Order, error) {
	opts := options.Find().SetSort(bson.D{{Key: "date", Value: -1}})
	cursor, err := ac.OrderCollection.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	orders := []models.Order{}
	if err := cursor.All(ctx, &orders); err != nil {
		return nil, err
	}
	return orders, nil
}

// refreshCatalog reloads the session catalog snapshot after a product
// mutation so cart stock checks see current data.
func (ac *AdminController) refreshCatalog(ctx context.Context) {
	if err := ac.Catalog.Load(ctx); err != nil {
		ac.Log.Error().Err(err).Msg("catalog refresh after product mutation failed")
	}
}
