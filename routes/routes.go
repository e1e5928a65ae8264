// routes/routes.go
package routes

import (
	"github.com/gorilla/mux"

	"go-storefront/controllers"
	"go-storefront/middleware"
)

// RegisterRoutes sets up all the routes for the application.
func RegisterRoutes(router *mux.Router, userController *controllers.UserController, productController *controllers.ProductController, cartController *controllers.CartController, orderController *controllers.OrderController, adminController *controllers.AdminController) {
	api := router.PathPrefix("/api").Subrouter()

	// Public routes
	api.HandleFunc("/auth/signup", userController.Signup).Methods("POST")
	api.HandleFunc("/auth/login", userController.Login).Methods("POST")
	api.HandleFunc("/products", productController.GetProducts).Methods("GET")
	api.HandleFunc("/products/{id}", productController.GetProductByID).Methods("GET")

	// Admin routes
	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AuthMiddleware)
	admin.Use(middleware.AdminMiddleware)
	admin.HandleFunc("/stats", adminController.GetStats).Methods("GET")
	admin.HandleFunc("/orders/recent", adminController.GetRecentOrders).Methods("GET")
	admin.HandleFunc("/orders", adminController.GetAllOrders).Methods("GET")
	admin.HandleFunc("/customers", adminController.GetCustomers).Methods("GET")
	admin.HandleFunc("/products", adminController.CreateProduct).Methods("POST")
	admin.HandleFunc("/products/{id}", adminController.UpdateProduct).Methods("PUT")
	admin.HandleFunc("/products/{id}", adminController.DeleteProduct).Methods("DELETE")

	// Protected routes
	protected := api.PathPrefix("/").Subrouter()
	protected.Use(middleware.AuthMiddleware)
	protected.HandleFunc("/auth/me", userController.GetProfile).Methods("GET")

	// Cart routes
	protected.HandleFunc("/cart", cartController.GetCart).Methods("GET")
	protected.HandleFunc("/cart", cartController.ClearCart).Methods("DELETE")
	protected.HandleFunc("/cart/items", cartController.AddItem).Methods("POST")
	protected.HandleFunc("/cart/items/{id}", cartController.UpdateItem).Methods("PUT")
	protected.HandleFunc("/cart/items/{id}", cartController.RemoveItem).Methods("DELETE")

	// Order routes
	protected.HandleFunc("/orders", orderController.GetOrders).Methods("GET")
	protected.HandleFunc("/orders", orderController.CreateOrder).Methods("POST")
}
