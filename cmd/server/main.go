package main

import (
	"log"
	"net/http"
	"os"

	"github.com/joho/godotenv"
	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"

	"campuslink_echo/internal/handlers"
	"campuslink_echo/internal/middleware"
	"campuslink_echo/internal/services"
	"campuslink_echo/internal/tasks"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment")
	}

	// Initialize Firebase
	credPath := os.Getenv("FIREBASE_CREDENTIALS_PATH")
	if credPath == "" {
		credPath = "./firebase-service-account.json"
	}

	authClient, err := services.InitFirebase(credPath)
	if err != nil {
		log.Printf("Warning: Firebase initialization failed: %v", err)
		log.Println("Auth features will not work until valid credentials are provided")
	}

	// Initialize Database
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL not set")
	}

	db, err := services.InitDB(databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	if err := services.AutoMigrate(db); err != nil {
		log.Fatalf("Failed to run database migrations: %v", err)
	}

	// Initialize Redis (optional; handlers fall back to direct reads)
	var cache *services.RedisCache
	if redisURL := os.Getenv("REDIS_URL"); redisURL != "" {
		cache, err = services.NewRedisCache(redisURL)
		if err != nil {
			log.Printf("Warning: Redis initialization failed: %v", err)
			cache = nil
		}
	} else {
		log.Println("Warning: REDIS_URL not set, caching disabled")
	}

	// Services
	midtransClient := services.NewMidtransService()
	feeService := services.NewFeeService(db)
	paymentService := services.NewPaymentService(db, midtransClient, feeService)
	swapService := services.NewSwapService(db, tasks.NewTaskNotifier(db))

	// Create Echo instance
	e := echo.New()
	e.HTTPErrorHandler = middleware.JSONErrorHandler

	// Middleware
	e.Use(echomw.Logger())
	e.Use(echomw.Recover())

	// Handlers
	swapHandler := handlers.NewSwapHandler(db, cache, swapService)
	maintenanceHandler := handlers.NewMaintenanceHandler(db, feeService, paymentService, midtransClient)
	userHandler := handlers.NewUserHandler(db, cache)
	prefHandler := handlers.NewUserPreferenceHandler(db)
	dashboardHandler := handlers.NewDashboardHandler(db, cache)

	requireAuth := middleware.RequireAuth(authClient, db)
	requireAdmin := middleware.RequireAdmin()

	// Health check
	e.GET("/", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Swapping routes
	swapping := e.Group("/swapping")
	swapping.GET("/swappingData", swapHandler.SwappingData)
	swapping.POST("/createUserProfile", swapHandler.CreateUserProfile)
	swapping.POST("/acceptSwap", swapHandler.AcceptSwap)
	swapping.POST("/updateSwapDetails", swapHandler.UpdateSwapDetails)
	swapping.DELETE("/deleteSwapByUser", swapHandler.DeleteSwapByUser)
	swapping.DELETE("/deleteSwapByAdmin", swapHandler.DeleteSwapByAdmin, requireAuth, requireAdmin)

	// Maintenance fee routes
	maintenance := e.Group("/maintenance")
	maintenance.GET("/user/:userId", maintenanceHandler.UserDetails)
	maintenance.POST("/payment", maintenanceHandler.ApplyPayment)
	maintenance.GET("/payment-history/:userId", maintenanceHandler.PaymentHistory)
	maintenance.POST("/payment/initiate", maintenanceHandler.InitiatePayment)
	maintenance.POST("/payment/callback", maintenanceHandler.GatewayCallback)

	// User management
	users := e.Group("/users")
	users.GET("", userHandler.ListUsers)
	users.POST("", userHandler.CreateUser, requireAuth, requireAdmin)
	users.GET("/:id", userHandler.GetUser)
	users.PUT("/:id", userHandler.UpdateUser, requireAuth, requireAdmin)
	users.DELETE("/:id", userHandler.DeleteUser, requireAuth, requireAdmin)
	users.GET("/:id/notification-preference", prefHandler.GetUserPreference)
	users.PUT("/:id/notification-preference", prefHandler.UpdateUserPreference)

	// Admin dashboard
	e.GET("/dashboard/stats", dashboardHandler.Stats, requireAuth, requireAdmin)

	// Start server
	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	log.Printf("Server starting on port %s", port)
	e.Logger.Fatal(e.Start(":" + port))
}
