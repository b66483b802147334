package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/adire/internal/config"
	"github.com/example/adire/internal/handlers"
	"github.com/example/adire/internal/middleware"
	"github.com/example/adire/internal/services"
	"github.com/example/adire/internal/store"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	paystack := services.NewPaystackService(services.PaystackConfig{
		SecretKey: cfg.PaystackSecretKey,
		BaseURL:   cfg.PaystackBaseURL,
		Currency:  cfg.Currency,
	})
	checkoutService := services.NewCheckoutService(
		store.New(db),
		paystack,
		cfg.BaseURL+"/api/checkout/verify",
	)

	authHandler := handlers.NewAuthHandler(db, cfg)
	checkoutHandler := handlers.NewCheckoutHandler(checkoutService)
	webhookHandler := handlers.NewWebhookHandler(paystack, checkoutService)
	orderHandler := handlers.NewOrderHandler(db)
	adminHandler := handlers.NewAdminHandler(db)
	productHandler := handlers.NewProductHandler(db)
	catalogHandler := handlers.NewCatalogHandler(db)
	marketingHandler := handlers.NewMarketingHandler(db)

	api := app.Group("/api")

	// Auth
	api.Post("/auth/login", authHandler.Login)

	// Checkout pipeline
	api.Post("/checkout/initiate", checkoutHandler.Initiate)
	api.Get("/checkout/verify", checkoutHandler.Verify)
	api.Post("/webhook/paystack", webhookHandler.Paystack)

	// Public storefront
	api.Get("/products", productHandler.ListProducts)
	api.Get("/products/:slug", productHandler.GetProductBySlug)
	api.Get("/categories", catalogHandler.ListCategories)
	api.Get("/orders/:id", orderHandler.GetOrder)
	api.Post("/newsletter", marketingHandler.Subscribe)
	api.Post("/contact", marketingHandler.Contact)

	// Admin back office
	admin := api.Group("/admin", middleware.AuthMiddleware(cfg))

	admin.Get("/orders", adminHandler.ListOrders)
	admin.Get("/orders/:id", adminHandler.GetOrder)
	admin.Put("/orders/:id", adminHandler.UpdateOrderStatus)

	admin.Get("/customers", adminHandler.ListCustomers)
	admin.Get("/analytics/overview", adminHandler.AnalyticsOverview)
	admin.Get("/analytics/revenue", adminHandler.RevenueSeries)

	admin.Post("/products", productHandler.CreateProduct)
	admin.Put("/products/:id", productHandler.UpdateProduct)
	admin.Delete("/products/:id", productHandler.DeleteProduct)

	admin.Post("/categories", catalogHandler.CreateCategory)
	admin.Get("/categories/:id", catalogHandler.GetCategory)
	admin.Put("/categories/:id", catalogHandler.UpdateCategory)
	admin.Delete("/categories/:id", catalogHandler.DeleteCategory)
}
