package main

import (
	"net/http"

	"tokopay-be/internal/config"
	"tokopay-be/internal/db"
	"tokopay-be/internal/logger"
	"tokopay-be/internal/metrics"
	"tokopay-be/internal/middleware"
	"tokopay-be/internal/notify"
	"tokopay-be/internal/order"
	"tokopay-be/internal/payment"
	"tokopay-be/internal/payment/webhook"
	"tokopay-be/internal/product"
	"tokopay-be/internal/utils"

	"go.uber.org/zap"
)

func main() {
	cfg := config.LoadConfig()
	logger.Init(cfg.AppEnv)
	defer logger.Sync()

	database := db.InitDB(cfg)
	defer database.Close()

	checkoutMetrics := &metrics.CheckoutMetrics{}
	webhookMetrics := &metrics.WebhookMetrics{}

	gateway := payment.NewXenditGateway(cfg.XenditSecretKey, cfg.XenditCallbackToken)
	sender := notify.NewFonnteSender(cfg.FonnteToken)
	notifier := notify.NewNotifier(sender, cfg.AppName, checkoutMetrics)

	productRepo := product.NewRepository(database)
	productSvc := product.NewService(productRepo)
	productHandler := product.NewHandler(productSvc)

	orderRepo := order.NewRepository(database)
	orderSvc := order.NewService(orderRepo, gateway, notifier, cfg.AppURL, checkoutMetrics)
	orderHandler := order.NewHandler(orderSvc)

	webhookHandler := webhook.NewHandler(orderSvc, gateway, webhookMetrics)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /api/products", productHandler.List)
	mux.HandleFunc("GET /api/products/{id}", productHandler.Get)
	mux.HandleFunc("POST /api/checkout", orderHandler.Checkout)
	mux.HandleFunc("GET /api/orders/{id}", orderHandler.GetOrder)
	mux.Handle("GET /api/admin/orders", middleware.RequireAdmin(cfg.AdminKey, http.HandlerFunc(orderHandler.AdminOrders)))
	mux.Handle("POST /api/webhook/xendit", webhookHandler)
	mux.HandleFunc("GET /api/health", func(w http.ResponseWriter, r *http.Request) {
		if err := database.Ping(); err != nil {
			utils.WriteJSONError(w, "database unreachable", http.StatusServiceUnavailable)
			return
		}
		utils.WriteJSON(w, http.StatusOK, map[string]interface{}{
			"ok":              true,
			"ordersCreated":   checkoutMetrics.OrdersCreated.Load(),
			"webhooksApplied": webhookMetrics.Applied.Load(),
		})
	})

	handler := logger.RequestIDMiddleware(
		logger.LoggingMiddleware(
			middleware.AuthMiddleware(
				middleware.RateLimitMiddleware(mux),
			),
		),
	)

	port := cfg.AppPort
	if port == "" {
		port = "8080"
	}

	logger.L().Info("server starting", zap.String("port", port))
	if err := http.ListenAndServe(":"+port, handler); err != nil {
		logger.L().Fatal("server stopped", zap.Error(err))
	}
}
