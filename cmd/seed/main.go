// Seeds the products collection from data/products.json and bootstraps an
// admin account. Run with -d to destroy seeded product data instead.
package main

import (
	"context"
	"encoding/json"
	"flag"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"golang.org/x/crypto/bcrypt"

	"go-storefront/logger"
	"go-storefront/models"
	"go-storefront/utils"
)

func main() {
	destroy := flag.Bool("d", false, "destroy product data instead of importing")
	dataFile := flag.String("data", "data/products.json", "path to the product seed file")
	flag.Parse()

	_ = godotenv.Load()
	log := logger.New(os.Getenv("APP_ENV"), os.Getenv("LOG_LEVEL"))

	// Fatal would skip the deferred disconnect, so run carries the work and
	// main reports the outcome.
	if err := run(*destroy, *dataFile, log); err != nil {
		log.Fatal().Err(err).Msg("seed failed")
	}
}

func run(destroy bool, dataFile string, log zerolog.Logger) error {
	client, err := utils.ConnectDB()
	if err != nil {
		return err
	}
	defer func() {
		if err := client.Disconnect(context.Background()); err != nil {
			log.Error().Err(err).Msg("MongoDB disconnect failed")
		}
	}()
	db := client.Database("storefront")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if destroy {
		if _, err := db.Collection("products").DeleteMany(ctx, bson.M{}); err != nil {
			return err
		}
		log.Info().Msg("product data destroyed")
		return nil
	}

	count, err := importProducts(ctx, db, dataFile)
	if err != nil {
		return err
	}
	log.Info().Int("count", count).Msg("products imported")

	if err := ensureAdmin(ctx, db); err != nil {
		return err
	}
	log.Info().Msg("seed complete")
	return nil
}

func importProducts(ctx context.Context, db *mongo.Database, path string) (int, error) {
	products, err := readProducts(path)
	if err != nil {
		return 0, err
	}

	coll := db.Collection("products")
	if _, err := coll.DeleteMany(ctx, bson.M{}); err != nil {
		return 0, err
	}
	// InsertMany rejects an empty slice.
	if len(products) == 0 {
		return 0, nil
	}
	docs := make([]interface{}, len(products))
	for i, p := range products {
		docs[i] = p
	}
	if _, err := coll.InsertMany(ctx, docs); err != nil {
		return 0, err
	}
	return len(products), nil
}

func readProducts(path string) ([]models.Product, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var products []models.Product
	if err := json.Unmarshal(raw, &products); err != nil {
		return nil, err
	}
	return products, nil
}

// ensureAdmin creates the bootstrap admin user when missing. Credentials come
// from ADMIN_EMAIL / ADMIN_PASSWORD, with development defaults.
func ensureAdmin(ctx context.Context, db *mongo.Database) error {
	email := os.Getenv("ADMIN_EMAIL")
	if email == "" {
		email = "admin@example.com"
	}
	password := os.Getenv("ADMIN_PASSWORD")
	if password == "" {
		password = "admin123"
	}

	coll := db.Collection("users")
	count, err := coll.CountDocuments(ctx, bson.M{"email": email})
	if err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return err
	}
	_, err = coll.InsertOne(ctx, models.User{
		Name:         "Admin",
		Email:        email,
		PasswordHash: string(hash),
		IsAdmin:      true,
	})
	return err
}
