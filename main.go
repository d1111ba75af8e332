// @title           Compras API
// @version         1.0
// @description     Procurement backend API - suppliers, materials, quote comparisons, quote requests and purchase orders.

// @contact.name   API Support

// @BasePath  /

// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization

// @schemes http https
package main

import (
	_ "backend/docs"
	"backend/handlers"
	"backend/storage"
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"sync/atomic"
	"syscall"
	"time"

	"backend/services"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/robfig/cron/v3"

	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"
)

func CORSConfig() cors.Config {
	corsConfig := cors.DefaultConfig()
	corsConfig.AllowOrigins = []string{
		"http://localhost:9000",
		"http://localhost:8080",
		"http://localhost:3000",
		"http://localhost:5173",
	}
	if origin := os.Getenv("FRONTEND_ORIGIN"); origin != "" {
		corsConfig.AllowOrigins = append(corsConfig.AllowOrigins, origin)
	}
	corsConfig.AllowCredentials = true
	corsConfig.AllowHeaders = []string{
		"Content-Type", "Content-Length", "Accept-Encoding",
		"Accept", "Origin", "X-Requested-With", "Authorization", "User-Agent",
		"Cache-Control", "Referer",
		"Access-Control-Request-Method", "Access-Control-Request-Headers",
	}
	corsConfig.AllowMethods = []string{
		"GET", "POST", "PUT", "DELETE", "OPTIONS", "HEAD", "PATCH",
	}
	corsConfig.ExposeHeaders = []string{
		"Content-Length", "Authorization", "Content-Type", "Content-Disposition",
	}
	corsConfig.MaxAge = 12 * time.Hour
	return corsConfig
}

var maintenanceRunning int32

func main() {
	db := storage.InitDB()
	defer db.Close()

	gormDB := storage.InitGormDB()
	handlers.SetActivityLogDB(gormDB)

	rateService := services.NewExchangeRateService(os.Getenv("BCV_API_URL"))
	if err := rateService.Refresh(context.Background()); err != nil {
		log.Printf("Initial exchange rate fetch failed: %v", err)
	}

	mailer := services.NewEmailServiceFromEnv()
	if mailer == nil {
		log.Println("SMTP not configured, quote request emails disabled")
	}

	var fcmService *services.FCMService
	if credsPath := os.Getenv("FCM_CREDENTIALS_FILE"); credsPath != "" {
		var err error
		fcmService, err = services.NewFCMService(credsPath, db)
		if err != nil {
			log.Printf("FCM disabled: %v", err)
			fcmService = nil
		}
	} else {
		log.Println("FCM_CREDENTIALS_FILE not set, push notifications disabled")
	}

	// Daily maintenance at 8 AM: refresh the official rate and drop
	// expired sessions. The atomic flag keeps overlapping runs out.
	c := cron.New(
		cron.WithLogger(cron.VerbosePrintfLogger(log.New(os.Stdout, "cron: ", log.LstdFlags))),
	)
	_, err := c.AddFunc("0 8 * * *", func() {
		if !atomic.CompareAndSwapInt32(&maintenanceRunning, 0, 1) {
			log.Println("Previous maintenance run still active. Skipping.")
			return
		}
		defer atomic.StoreInt32(&maintenanceRunning, 0)

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
		defer cancel()

		if err := rateService.Refresh(ctx); err != nil {
			log.Printf("Daily exchange rate refresh failed: %v", err)
		}
		if err := storage.CleanupExpiredSessions(db); err != nil {
			log.Printf("Session cleanup failed: %v", err)
		}
	})
	if err != nil {
		log.Fatalf("Failed to schedule daily maintenance: %v", err)
	}
	c.Start()
	defer c.Stop()

	r := gin.Default()
	r.Use(cors.New(CORSConfig()))

	// ==================== AUTH ====================
	r.POST("/api/login", handlers.LoginHandler(db))
	r.POST("/api/refresh-token", handlers.RefreshTokenHandler(db))
	r.POST("/api/validate-session", handlers.ValidateSession(db))
	r.POST("/api/logout", handlers.LogoutHandler(db))

	// ==================== USERS ====================
	r.POST("/api/create_user", handlers.CreateUser(db))
	r.GET("/api/get_user", handlers.GetUserFromSession(db))
	r.GET("/api/users", handlers.GetAllUsers(db))
	r.PUT("/api/user/:id/suspend", handlers.SuspendUser(db))

	// ==================== SUPPLIERS ====================
	r.POST("/api/supplier", handlers.CreateSupplier(db))
	r.PUT("/api/supplier/:id", handlers.UpdateSupplier(db))
	r.GET("/api/supplier/:id", handlers.GetSupplier(db))
	r.GET("/api/suppliers", handlers.GetAllSuppliers(db))
	r.DELETE("/api/supplier/:id", handlers.DeleteSupplier(db))

	// ==================== MATERIALS ====================
	r.POST("/api/material", handlers.CreateMaterial(db))
	r.PUT("/api/material/:id", handlers.UpdateMaterial(db))
	r.GET("/api/material/:id", handlers.GetMaterial(db))
	r.DELETE("/api/material/:id", handlers.DeleteMaterial(db))
	r.GET("/api/materials/search", handlers.SearchMaterials(db))
	r.GET("/api/material/:id/suppliers", handlers.GetSuppliersByMaterial(db))
	r.POST("/api/material/:id/supplier/:supplier_id", handlers.LinkSupplierMaterial(db))

	// ==================== QUOTE COMPARISONS ====================
	r.POST("/api/quote_comparison/compute", handlers.ComputeQuoteComparison())
	r.POST("/api/quote_comparison", handlers.CreateQuoteComparison(db))
	r.PUT("/api/quote_comparison/:id", handlers.UpdateQuoteComparison(db))
	r.GET("/api/quote_comparison/:id", handlers.GetQuoteComparisonByID(db))
	r.GET("/api/quote_comparisons", handlers.GetAllQuoteComparisons(db))
	r.DELETE("/api/quote_comparison/:id", handlers.DeleteQuoteComparison(db))
	r.GET("/api/quote_comparison/:id/pdf", handlers.GenerateComparisonPDF(db))
	r.GET("/api/quote_comparison/:id/excel", handlers.ExportComparisonExcel(db))

	// ==================== EXCHANGE RATE ====================
	r.GET("/api/exchange_rate", handlers.GetDailyExchangeRate(rateService))

	// ==================== QUOTE REQUESTS ====================
	r.POST("/api/quote_request", handlers.CreateQuoteRequest(db))
	r.GET("/api/quote_request/:id", handlers.GetQuoteRequest(db))
	r.GET("/api/quote_requests", handlers.GetAllQuoteRequests(db))
	r.POST("/api/quote_request/:id/send", handlers.SendQuoteRequestEmail(db, mailer))
	r.PUT("/api/quote_request/:id/status", handlers.UpdateQuoteRequestStatus(db))
	r.DELETE("/api/quote_request/:id", handlers.DeleteQuoteRequest(db))

	// ==================== PURCHASE ORDERS ====================
	r.POST("/api/purchase_order", handlers.CreatePurchaseOrder(db))
	r.GET("/api/purchase_order/:id", handlers.GetPurchaseOrder(db))
	r.GET("/api/purchase_orders", handlers.GetAllPurchaseOrders(db))
	r.PUT("/api/purchase_order/:id/status", handlers.UpdatePurchaseOrderStatus(db, fcmService))
	r.DELETE("/api/purchase_order/:id", handlers.DeletePurchaseOrder(db))
	r.GET("/api/purchase_order/:id/pdf", handlers.GeneratePurchaseOrderPDF(db))

	// ==================== NOTIFICATIONS ====================
	r.POST("/api/device_token", handlers.RegisterDeviceToken(db))
	r.DELETE("/api/device_token", handlers.UnregisterDeviceToken(db))

	// ==================== ACTIVITY LOGS ====================
	r.GET("/api/logs", handlers.GetActivityLogsHandler(gormDB))

	// ==================== SWAGGER ====================
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	port := os.Getenv("PORT")
	if port == "" {
		port = "9000"
	}
	portInt, err := strconv.Atoi(port)
	if err != nil {
		log.Fatalf("Invalid PORT environment variable: %s. Must be a number.", port)
	}
	if portInt < 0 || portInt > 65535 {
		log.Fatalf("Invalid PORT: %d. Must be between 0 and 65535.", portInt)
	}

	srv := &http.Server{
		Addr:    ":" + port,
		Handler: r,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	<-quit
	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
	log.Println("Server exiting")
}
