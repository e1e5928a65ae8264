// main.go
package main

import (
	"context"
	"net/http"
	"os"

	"github.com/gorilla/mux"
	"github.com/joho/godotenv"

	"go-storefront/cart"
	"go-storefront/catalog"
	"go-storefront/controllers"
	"go-storefront/logger"
	"go-storefront/models"
	"go-storefront/pricing"
	"go-storefront/routes"
	"go-storefront/store"
	"go-storefront/utils"
)

func main() {
	// Load environment variables from .env file; absent in deployed
	// environments.
	_ = godotenv.Load()

	log := logger.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	// Set the JWT secret key
	utils.JwtKey = []byte(os.Getenv("JWT_SECRET"))
	if len(utils.JwtKey) == 0 {
		log.Fatal().Msg("JWT_SECRET is not set")
	}

	// Connect to MongoDB
	client, err := utils.ConnectDB()
	if err != nil {
		log.Fatal().Err(err).Msg("MongoDB connection failed")
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("MongoDB disconnect failed")
		}
	}()
	db := client.Database("storefront")

	// Core components: catalog snapshot, cart engine, pricing policy.
	policy := pricing.DefaultPolicy()
	cache := catalog.New(store.NewCatalogSource(db), log)
	if err := cache.Load(context.Background()); err != nil {
		// Server still starts; every cart mutation reports unknown products
		// until a catalog refresh succeeds.
		log.Warn().Err(err).Msg("initial catalog load failed")
	}
	cartStore := store.NewCartStore(db, log)
	engine := cart.NewEngine(cache, cartStore, log)
	engine.OnChange(func(c *models.Cart) {
		log.Debug().Str("user_id", c.UserID.Hex()).Int("lines", len(c.Items)).Msg("cart changed")
	})

	emailService := utils.NewEmailService(log)

	// Initialize controllers
	userController := controllers.NewUserController(db, log)
	productController := controllers.NewProductController(db)
	cartController := controllers.NewCartController(engine, cartStore, policy, log)
	orderController := controllers.NewOrderController(db, store.NewProductStore(db), cartStore, engine, policy, emailService, log)
	adminController := controllers.NewAdminController(db, cache, log)

	// Set up the router
	router := mux.NewRouter()
	routes.RegisterRoutes(router, userController, productController, cartController, orderController, adminController)

	port := os.Getenv("PORT")
	if port == "" {
		port = "8000"
	}
	log.Info().Str("port", port).Msg("server is running")
	if err := http.ListenAndServe(":"+port, router); err != nil {
		log.Fatal().Err(err).Msg("server stopped")
	}
}
