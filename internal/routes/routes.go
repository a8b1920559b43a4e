package routes

import (
	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"

	"github.com/example/bazaar/internal/config"
	"github.com/example/bazaar/internal/handlers"
	"github.com/example/bazaar/internal/middleware"
	"github.com/example/bazaar/internal/services"
)

// Register wires up all HTTP routes.
func Register(app *fiber.App, db *gorm.DB, cfg *config.Config) {
	accountService := services.NewAccountService(db, cfg.MinPasswordLen)
	cartService := services.NewCartService(db)
	orderService := services.NewOrderService(db)
	importService := services.NewImportService(db, services.MockCatalogSource{})

	authHandler := handlers.NewAuthHandler(db, cfg, accountService)
	profileHandler := handlers.NewProfileHandler(accountService)
	productHandler := handlers.NewProductHandler(db, importService)
	cartHandler := handlers.NewCartHandler(db, cfg, cartService)
	orderHandler := handlers.NewOrderHandler(orderService)

	api := app.Group("/api")

	// Catalog routes; /categories must precede /:id.
	products := api.Group("/products")
	products.Get("/", productHandler.ListProducts)
	products.Get("/categories", productHandler.ListCategories)
	products.Get("/:id", productHandler.GetProduct)
	products.Post("/", productHandler.CreateProduct)
	products.Post("/import", productHandler.ImportProducts)

	// Cart routes, open to guests.
	cart := api.Group("/cart")
	cart.Get("/", cartHandler.ListCart)
	cart.Post("/", cartHandler.AddItem)
	cart.Put("/:item_id", cartHandler.UpdateItem)
	cart.Delete("/:item_id", cartHandler.RemoveItem)

	// Account routes
	users := api.Group("/users")
	users.Post("/register", authHandler.Register)
	users.Post("/login", authHandler.Login)
	users.Post("/logout", authHandler.Logout)
	users.Get("/me", authHandler.Me)

	// Protected routes
	protected := users.Group("", middleware.RequireAuth())
	protected.Get("/addresses", profileHandler.ListAddresses)
	protected.Post("/addresses", profileHandler.CreateAddress)
	protected.Get("/addresses/:id", profileHandler.GetAddress)
	protected.Put("/addresses/:id", profileHandler.UpdateAddress)
	protected.Delete("/addresses/:id", profileHandler.DeleteAddress)

	protected.Get("/payment-methods", profileHandler.ListPaymentMethods)
	protected.Post("/payment-methods", profileHandler.CreatePaymentMethod)
	protected.Get("/payment-methods/:id", profileHandler.GetPaymentMethod)
	protected.Put("/payment-methods/:id", profileHandler.UpdatePaymentMethod)
	protected.Delete("/payment-methods/:id", profileHandler.DeletePaymentMethod)

	merchants := api.Group("/merchants", middleware.RequireAuth())
	merchants.Get("/profile", profileHandler.GetMerchantProfile)
	merchants.Put("/profile", profileHandler.UpsertMerchantProfile)

	orders := api.Group("/orders", middleware.RequireAuth())
	orders.Post("/", orderHandler.CreateOrder)
	orders.Get("/", orderHandler.ListOrders)
	orders.Get("/:id", orderHandler.GetOrder)
}
