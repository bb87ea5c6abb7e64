package main

import (
	"context"
	"time"

	"qbuy_backend/config"
	"qbuy_backend/handlers"
	"qbuy_backend/internal/metrics"
	"qbuy_backend/internal/outbox"
	"qbuy_backend/internal/ws"
	"qbuy_backend/middleware"
	"qbuy_backend/utils"

	"github.com/gofiber/adaptor/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/sirupsen/logrus"
)

func main() {
	cfg := config.LoadConfig()

	db := config.ConnectDatabase(cfg)
	if err := config.Migrate(db); err != nil {
		logrus.Fatalf("Migration failed: %v", err)
	}

	m := metrics.NewServerMetrics("api")

	hub := ws.NewHub()
	go hub.Run()

	// The outbox publisher only runs when brokers are configured; without
	// them, lifecycle events stay queued in the outbox table.
	if brokers := outbox.NewClient(cfg.KafkaBrokers); len(brokers) > 0 {
		publisher := outbox.NewPublisher(db, brokers, cfg.KafkaTopic)
		go publisher.Run(context.Background())
		logrus.Infof("Outbox publisher started for topic %s", cfg.KafkaTopic)
	}

	app := fiber.New(fiber.Config{
		AppName:      "Qbuy Backend",
		ServerHeader: "Qbuy Backend Server/1.0",
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			code := fiber.StatusInternalServerError
			msg := "Internal Server Error"
			if e, ok := err.(*fiber.Error); ok {
				code = e.Code
				msg = e.Message
			}
			return c.Status(code).JSON(fiber.Map{
				"error":   true,
				"message": msg,
			})
		},
	})

	middleware.SetupMiddleware(app)
	middleware.SetupMetrics(app, m)

	// Handlers
	authHandler := handlers.NewAuthHandler(db, time.Duration(cfg.JWTExpiryHours)*time.Hour)
	userHandler := handlers.NewUserHandler(db)
	categoryHandler := handlers.NewCategoryHandler(db)
	productHandler := handlers.NewProductHandler(db, cfg.DiscoveryRadiusKm)
	storeHandler := handlers.NewStoreHandler(db)
	cartHandler := handlers.NewCartHandler(db)
	checkoutHandler := handlers.NewCheckoutHandler(db, m, cfg.DeliveryCost)
	orderHandler := handlers.NewOrderHandler(db)
	reviewHandler := handlers.NewReviewHandler(db)
	paymentHandler := handlers.NewPaymentHandler(db)
	favoriteHandler := handlers.NewFavoriteHandler(db)
	uploadHandler := handlers.NewUploadHandler(cfg.UploadDir)
	chatHandler := handlers.NewChatHandler(hub, db)

	// Health & metrics
	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status":  "success",
			"message": "API is healthy",
		})
	})
	app.Get("/metrics", adaptor.HTTPHandler(metrics.Handler()))

	// Static uploads
	app.Static("/uploads", cfg.UploadDir)

	api := app.Group("/api")

	// Public routes
	api.Post("/auth/register", authHandler.Register)
	api.Post("/auth/login", authHandler.Login)
	api.Get("/categories", categoryHandler.GetCategories)
	api.Get("/products", productHandler.GetProducts)
	api.Get("/products/:id", productHandler.GetProduct)
	api.Get("/products/:id/reviews", reviewHandler.GetProductReviews)
	api.Get("/stores/:id<int>", storeHandler.GetStore)
	api.Get("/stores/:id<int>/reviews", reviewHandler.GetStoreReviews)

	// Authenticated routes
	auth := api.Group("", utils.AuthMiddleware)

	auth.Get("/users/me", userHandler.GetMe)
	auth.Put("/users/me", userHandler.UpdateMe)
	auth.Put("/users/me/location", userHandler.UpdateLocation)
	auth.Post("/users/me/membership", userHandler.UpgradeMembership)

	auth.Get("/products/:id/offers", productHandler.GetOffers)
	auth.Post("/products", productHandler.CreateProduct)
	auth.Put("/products/:id", productHandler.UpdateProduct)
	auth.Delete("/products/:id", productHandler.DeleteProduct)
	auth.Post("/products/:id/favorite", favoriteHandler.ToggleFavorite)
	auth.Get("/favorites", favoriteHandler.GetFavorites)

	auth.Post("/stores", storeHandler.CreateStore)
	auth.Get("/stores/me", storeHandler.GetMyStore)
	auth.Put("/stores/me", storeHandler.UpdateMyStore)
	auth.Get("/stores/me/orders", orderHandler.GetStoreOrders)
	auth.Post("/stores/me/orders/:id/accept", orderHandler.AcceptOrder)
	auth.Post("/stores/me/orders/:id/cancel", orderHandler.RejectOrder)

	auth.Get("/cart", cartHandler.GetCart)
	auth.Post("/cart", cartHandler.AddToCart)
	auth.Put("/cart/:id", cartHandler.UpdateCartItem)
	auth.Delete("/cart/:id", cartHandler.RemoveCartItem)

	auth.Post("/checkout", checkoutHandler.Checkout)

	auth.Get("/orders", orderHandler.GetMyOrders)
	auth.Get("/orders/:id", orderHandler.GetOrder)
	auth.Post("/orders/:id/cancel", orderHandler.CancelOrder)
	auth.Post("/orders/:id/confirm", orderHandler.ConfirmDelivery)
	auth.Post("/orders/:id/review", reviewHandler.SubmitReview)

	auth.Get("/cards", paymentHandler.GetCards)
	auth.Post("/cards", paymentHandler.AddCard)
	auth.Delete("/cards/:id", paymentHandler.DeleteCard)

	auth.Post("/uploads", uploadHandler.UploadImage)

	auth.Post("/chats", chatHandler.InitPrivateChat)
	auth.Get("/chats", chatHandler.GetMyChats)
	auth.Get("/chats/:roomID/messages", chatHandler.GetChatMessages)
	auth.Get("/chats/:roomID/status", chatHandler.GetRoomStatus)
	auth.Delete("/chats/:roomID", chatHandler.DeleteChat)

	// Websocket chat; JWT is checked before the upgrade.
	app.Use("/ws/chat", utils.AuthMiddleware, chatHandler.WebSocketUpgradeMiddleware)
	app.Get("/ws/chat", chatHandler.Handler())

	middleware.SetupErrorHandler(app)

	logrus.Infof("Server starting on %s:%s", cfg.Host, cfg.AppPort)
	if err := app.Listen(cfg.Host + ":" + cfg.AppPort); err != nil {
		logrus.Fatalf("Failed to start server: %v", err)
	}
}
