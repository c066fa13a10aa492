package main

import (
	"database/sql"
	"log"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	jwtware "github.com/gofiber/jwt/v2"
	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/joho/godotenv"
	"github.com/storefront-labs/storefront-backend/internal/cart"
	"github.com/storefront-labs/storefront-backend/internal/category"
	"github.com/storefront-labs/storefront-backend/internal/checkout"
	"github.com/storefront-labs/storefront-backend/internal/config"
	"github.com/storefront-labs/storefront-backend/internal/email"
	"github.com/storefront-labs/storefront-backend/internal/order"
	"github.com/storefront-labs/storefront-backend/internal/payment"
	"github.com/storefront-labs/storefront-backend/internal/product"
	"github.com/storefront-labs/storefront-backend/internal/user"
)

func main() {
	_ = godotenv.Load()
	cfg := config.Load()

	app := fiber.New()
	setupCORS(app)
	app.Use(requestLogger)

	db := mustOpenDB(cfg.DatabaseURL)
	defer db.Close()
	ensureSchema(db)

	userService := user.NewService(user.NewPostgresRepository(db))
	userHandler := user.NewHandler(userService)

	productService := product.NewService(product.NewPostgresRepository(db))
	productHandler := product.NewHandler(productService, userService)

	categoryHandler := category.NewHandler(category.NewService(category.NewPostgresRepository(db)))

	orderService := order.NewService(order.NewPostgresRepository(db))
	orderHandler := order.NewHandler(orderService)

	cartHandler := cart.NewHandler(cart.NewService(cart.NewPostgresRepository(db), productService))

	gateway := payment.NewHTTPGateway(cfg.GatewayURL, cfg.GatewayAPIKey)
	checkoutService := checkout.NewService(
		checkout.NewPostgresStore(db), orderService, gateway,
		cfg.SuccessURL, cfg.CancelURL, cfg.Currency,
	)
	checkoutHandler := checkout.NewHandler(checkoutService)

	sender := email.NewSMTPSender(cfg.SMTPHost, cfg.SMTPPort, cfg.EmailFrom)
	webhookHandler := payment.NewWebhookHandler(orderService, sender, []byte(cfg.WebhookSecret))

	// public surface: auth, catalog browsing and the signed payment webhook
	userHandler.RegisterPublicRoutes(app)
	categoryHandler.RegisterPublicRoutes(app)
	productHandler.RegisterPublicRoutes(app)
	webhookHandler.RegisterPublicRoutes(app)

	app.Use(jwtware.New(jwtware.Config{
		SigningKey: []byte(cfg.JWTSecret),
		// cart and checkout also serve anonymous sessions; requests that
		// carry a token still get their claims parsed so the cart is keyed
		// by user instead of session
		Filter: func(c *fiber.Ctx) bool {
			if c.Get(fiber.HeaderAuthorization) != "" {
				return false
			}
			p := c.Path()
			return strings.HasPrefix(p, "/api/v1/cart") || p == "/api/v1/checkout"
		},
	}))

	cartHandler.RegisterRoutes(app)
	checkoutHandler.RegisterRoutes(app)

	userHandler.RegisterProtectedRoutes(app)
	orderHandler.RegisterProtectedRoutes(app)
	checkoutHandler.RegisterProtectedRoutes(app)
	productHandler.RegisterProtectedRoutes(app)

	log.Fatal(app.Listen(cfg.Addr))
}

func setupCORS(app *fiber.App) {
	app.Use(cors.New(cors.Config{
		AllowOrigins: "*",
		AllowMethods: "GET,POST,HEAD,PUT,DELETE,PATCH",
		AllowHeaders: "Origin, Content-Type, Accept, Authorization, " + cart.SessionHeader,
	}))
}

func requestLogger(c *fiber.Ctx) error {
	start := time.Now()
	err := c.Next()
	log.Printf("%s %s -> %d (%v)", c.Method(), c.OriginalURL(), c.Response().StatusCode(), time.Since(start))
	return err
}

func mustOpenDB(dbURL string) *sql.DB {
	if dbURL == "" {
		panic("DATABASE_URL is not set")
	}

	db, err := sql.Open("pgx", dbURL)
	if err != nil {
		panic(err)
	}

	if err := db.Ping(); err != nil {
		panic(err)
	}

	return db
}

func ensureSchema(db *sql.DB) {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS users (
			"userId" SERIAL PRIMARY KEY,
			email TEXT UNIQUE NOT NULL,
			password TEXT NOT NULL,
			"firstName" TEXT,
			"lastName" TEXT,
			phone TEXT,
			role TEXT NOT NULL DEFAULT 'buyer',
			address TEXT,
			city TEXT,
			"createdAt" TEXT,
			"updatedAt" TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS categories (
			"categoryId" SERIAL PRIMARY KEY,
			"categoryName" TEXT NOT NULL,
			slug TEXT UNIQUE NOT NULL
		)`,
		`CREATE TABLE IF NOT EXISTS products (
			"productId" SERIAL PRIMARY KEY,
			"sellerId" INT NOT NULL,
			"categoryId" INT REFERENCES categories ("categoryId"),
			"productName" TEXT NOT NULL,
			slug TEXT,
			description TEXT,
			price BIGINT NOT NULL DEFAULT 0,
			stock INT NOT NULL DEFAULT 0 CHECK (stock >= 0),
			available BOOLEAN NOT NULL DEFAULT TRUE,
			"createdAt" TEXT,
			"updatedAt" TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS carts (
			"cartId" SERIAL PRIMARY KEY,
			"userId" INT UNIQUE,
			"sessionToken" TEXT UNIQUE
		)`,
		`CREATE TABLE IF NOT EXISTS cart_items (
			"cartId" INT NOT NULL REFERENCES carts ("cartId") ON DELETE CASCADE,
			"productId" INT NOT NULL REFERENCES products ("productId") ON DELETE CASCADE,
			quantity INT NOT NULL,
			PRIMARY KEY ("cartId", "productId")
		)`,
		`CREATE TABLE IF NOT EXISTS orders (
			"orderId" SERIAL PRIMARY KEY,
			"userId" INT,
			status TEXT NOT NULL,
			"paymentRef" TEXT,
			currency TEXT,
			"fullName" TEXT,
			email TEXT,
			address TEXT,
			city TEXT,
			phone TEXT,
			"createdAt" TEXT,
			"updatedAt" TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS order_items (
			"orderId" INT NOT NULL REFERENCES orders ("orderId") ON DELETE CASCADE,
			"productId" INT NOT NULL REFERENCES products ("productId"),
			"productName" TEXT NOT NULL,
			"unitPrice" BIGINT NOT NULL,
			quantity INT NOT NULL
		)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			panic(err)
		}
	}

	// seed the default categories once
	var categoryCount int
	if err := db.QueryRow(`SELECT COUNT(*) FROM categories`).Scan(&categoryCount); err == nil && categoryCount == 0 {
		seed := []struct{ name, slug string }{
			{"Apparel", "apparel"},
			{"Home & Kitchen", "home-kitchen"},
			{"Electronics", "electronics"},
			{"Books", "books"},
			{"Toys", "toys"},
		}
		for _, s := range seed {
			if _, err := db.Exec(`INSERT INTO categories ("categoryName", slug) VALUES ($1, $2)`, s.name, s.slug); err != nil {
				continue
			}
		}
	}
}
