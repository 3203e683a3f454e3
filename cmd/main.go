package main

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	echoMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/random"

	"fixhub/internal/caching"
	"fixhub/internal/handlers"
	"fixhub/internal/jobs"
	"fixhub/internal/jobs/background"
	"fixhub/internal/middleware"
	"fixhub/internal/repositories"
	"fixhub/internal/services"
	"fixhub/pkg/database"
)

const version = "1.0.0"

func main() {
	databaseURL := os.Getenv("DATABASE_URL")
	if databaseURL == "" {
		log.Fatal("DATABASE_URL environment variable is required")
	}

	pool, err := database.NewPool(context.Background(), databaseURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer pool.Close()

	jwtSecret := os.Getenv("JWT_SECRET")
	if jwtSecret == "" {
		jwtSecret = random.String(32) // Generate random secret for development
		log.Printf("WARNING: JWT_SECRET not set, using a generated secret; tokens will not survive a restart")
	}

	redisAddr := os.Getenv("REDIS_ADDR")
	if redisAddr == "" {
		redisAddr = "localhost:6379"
	}
	redisPassword := os.Getenv("REDIS_PASSWORD")
	redisDB := 0
	if redisDBStr := os.Getenv("REDIS_DB"); redisDBStr != "" {
		if db, err := strconv.Atoi(redisDBStr); err == nil {
			redisDB = db
		}
	}

	minioEndpoint := os.Getenv("MINIO_ENDPOINT")
	if minioEndpoint == "" {
		minioEndpoint = "localhost:9000"
	}
	minioAccessKey := os.Getenv("MINIO_ACCESS_KEY")
	if minioAccessKey == "" {
		minioAccessKey = "minioadmin"
	}
	minioSecretKey := os.Getenv("MINIO_SECRET_KEY")
	if minioSecretKey == "" {
		minioSecretKey = "minioadmin"
	}
	minioUseSSL := os.Getenv("MINIO_USE_SSL") == "true"

	minioSvc, err := services.NewMinioService(minioEndpoint, minioAccessKey, minioSecretKey, minioUseSSL)
	if err != nil {
		log.Fatalf("Failed to initialize MinIO service: %v", err)
	}

	// Repositories
	companyRepo := repositories.NewCompanyRepo(pool)
	locationRepo := repositories.NewLocationRepo(pool)
	userRepo := repositories.NewUserRepo(pool)
	roleRepo := repositories.NewRoleRepo(pool)
	customerRepo := repositories.NewCustomerRepo(pool)
	itemRepo := repositories.NewInventoryItemRepo(pool)
	poRepo := repositories.NewPurchaseOrderRepo(pool)
	transferRepo := repositories.NewInventoryTransferRepo(pool)
	ticketRepo := repositories.NewTicketRepo(pool)
	invoiceRepo := repositories.NewInvoiceRepo(pool)
	txManager := repositories.NewTxManager(pool)

	cacheSvc := caching.NewRedisCacheService(redisAddr, redisPassword, redisDB)

	// Services
	rbacSvc := services.NewRBACService(roleRepo)
	companySvc := services.NewCompanyService(companyRepo, rbacSvc)
	userSvc := services.NewUserService(userRepo, roleRepo, cacheSvc, jwtSecret)
	locationSvc := services.NewLocationService(locationRepo, itemRepo)
	customerSvc := services.NewCustomerService(customerRepo)
	inventorySvc := services.NewInventoryService(itemRepo, locationRepo, cacheSvc)
	poSvc := services.NewPurchaseOrderService(poRepo, inventorySvc, txManager)
	transferSvc := services.NewInventoryTransferService(transferRepo, locationRepo, inventorySvc, txManager)
	ticketSvc := services.NewTicketService(ticketRepo, customerRepo, locationRepo, inventorySvc, txManager)
	invoiceSvc := services.NewInvoiceService(invoiceRepo, ticketRepo, customerRepo, companyRepo, minioSvc)

	// Handlers
	healthHandlers := handlers.NewHealthHandlers(pool)
	authHandlers := handlers.NewAuthHandlers(userSvc, companySvc, rbacSvc)
	companyHandlers := handlers.NewCompanyHandlers(companySvc)
	userHandlers := handlers.NewUserHandlers(userSvc, rbacSvc)
	locationHandlers := handlers.NewLocationHandlers(locationSvc)
	customerHandlers := handlers.NewCustomerHandlers(customerSvc)
	inventoryHandlers := handlers.NewInventoryHandlers(inventorySvc)
	poHandlers := handlers.NewPurchaseOrderHandlers(poSvc)
	transferHandlers := handlers.NewTransferHandlers(transferSvc)
	ticketHandlers := handlers.NewTicketHandlers(ticketSvc)
	invoiceHandlers := handlers.NewInvoiceHandlers(invoiceSvc)

	rbacMW := middleware.NewRBACMiddleware(rbacSvc)

	e := echo.New()
	e.HideBanner = true

	e.Use(echoMiddleware.Logger())
	e.Use(echoMiddleware.Recover())
	e.Use(echoMiddleware.CORS())
	e.Use(echoMiddleware.RemoveTrailingSlash())

	e.GET("/health", healthHandlers.HealthCheck)
	e.GET("/health/live", healthHandlers.LivenessCheck)

	v1 := e.Group("/v1")

	auth := v1.Group("/auth")
	auth.POST("/signup", authHandlers.Signup)
	auth.POST("/login", authHandlers.Login)
	auth.POST("/refresh", authHandlers.Refresh)
	auth.POST("/logout", authHandlers.Logout)

	protected := v1.Group("")
	protected.Use(middleware.JWTMiddleware(jwtSecret))

	canReadInventory := rbacMW.RequirePermission(services.PermInventoryRead)
	canWriteInventory := rbacMW.RequirePermission(services.PermInventoryWrite)
	canPurchase := rbacMW.RequirePermission(services.PermPurchasing)
	canTransfer := rbacMW.RequirePermission(services.PermTransfers)
	canManageTickets := rbacMW.RequirePermission(services.PermTickets)
	canManageInvoices := rbacMW.RequirePermission(services.PermInvoices)
	canManageUsers := rbacMW.RequirePermission(services.PermUsersManage)

	protected.GET("/company", companyHandlers.Get)
	protected.PUT("/company", companyHandlers.Update, canManageUsers)

	protected.POST("/users", userHandlers.Create, canManageUsers)
	protected.GET("/users", userHandlers.List, canManageUsers)
	protected.GET("/users/:id", userHandlers.Get, canManageUsers)
	protected.POST("/users/:id/roles", userHandlers.AssignRole, canManageUsers)
	protected.GET("/users/:id/permissions", userHandlers.Permissions, canManageUsers)

	protected.POST("/locations", locationHandlers.Create, canWriteInventory)
	protected.GET("/locations", locationHandlers.List, canReadInventory)
	protected.GET("/locations/:id", locationHandlers.Get, canReadInventory)
	protected.PUT("/locations/:id", locationHandlers.Update, canWriteInventory)
	protected.DELETE("/locations/:id", locationHandlers.Delete, canWriteInventory)

	protected.POST("/customers", customerHandlers.Create, canManageTickets)
	protected.GET("/customers", customerHandlers.List, canManageTickets)
	protected.GET("/customers/:id", customerHandlers.Get, canManageTickets)
	protected.PUT("/customers/:id", customerHandlers.Update, canManageTickets)
	protected.DELETE("/customers/:id", customerHandlers.Delete, canManageTickets)

	protected.POST("/inventory", inventoryHandlers.CreateItem, canWriteInventory)
	protected.GET("/inventory", inventoryHandlers.ListItems, canReadInventory)
	protected.GET("/inventory/search", inventoryHandlers.SearchItems, canReadInventory)
	protected.GET("/inventory/low-stock", inventoryHandlers.LowStock, canReadInventory)
	protected.GET("/inventory/:id", inventoryHandlers.GetItem, canReadInventory)
	protected.PUT("/inventory/:id", inventoryHandlers.UpdateItem, canWriteInventory)
	protected.POST("/inventory/:id/adjust", inventoryHandlers.AdjustQuantity, canWriteInventory)
	protected.DELETE("/inventory/:id", inventoryHandlers.DeleteItem, canWriteInventory)

	protected.POST("/purchase-orders", poHandlers.Create, canPurchase)
	protected.GET("/purchase-orders", poHandlers.List, canPurchase)
	protected.GET("/purchase-orders/:id", poHandlers.Get, canPurchase)
	protected.PUT("/purchase-orders/:id", poHandlers.Update, canPurchase)
	protected.POST("/purchase-orders/:id/order", poHandlers.MarkOrdered, canPurchase)
	protected.POST("/purchase-orders/:id/receive", poHandlers.Receive, canPurchase)
	protected.POST("/purchase-orders/:id/cancel", poHandlers.Cancel, canPurchase)
	protected.DELETE("/purchase-orders/:id", poHandlers.Delete, canPurchase)

	protected.POST("/transfers", transferHandlers.Create, canTransfer)
	protected.GET("/transfers", transferHandlers.List, canTransfer)
	protected.GET("/transfers/:id", transferHandlers.Get, canTransfer)
	protected.POST("/transfers/:id/complete", transferHandlers.Complete, canTransfer)
	protected.POST("/transfers/:id/cancel", transferHandlers.Cancel, canTransfer)

	protected.POST("/tickets", ticketHandlers.Create, canManageTickets)
	protected.GET("/tickets", ticketHandlers.List, canManageTickets)
	protected.GET("/tickets/:id", ticketHandlers.Get, canManageTickets)
	protected.PUT("/tickets/:id", ticketHandlers.Update, canManageTickets)
	protected.PUT("/tickets/:id/status", ticketHandlers.UpdateStatus, canManageTickets)
	protected.POST("/tickets/:id/parts", ticketHandlers.UsePart, canManageTickets)
	protected.DELETE("/tickets/:id", ticketHandlers.Delete, canManageTickets)

	protected.POST("/invoices", invoiceHandlers.Create, canManageInvoices)
	protected.GET("/invoices", invoiceHandlers.List, canManageInvoices)
	protected.GET("/invoices/:id", invoiceHandlers.Get, canManageInvoices)
	protected.POST("/invoices/:id/pay", invoiceHandlers.MarkPaid, canManageInvoices)
	protected.POST("/invoices/:id/cancel", invoiceHandlers.Cancel, canManageInvoices)
	protected.POST("/invoices/:id/pdf", invoiceHandlers.GeneratePDF, canManageInvoices)
	protected.DELETE("/invoices/:id", invoiceHandlers.Delete, canManageInvoices)

	// Background jobs
	alertSvc := jobs.NewInventoryAlertService(itemRepo, companyRepo)
	scheduler, err := background.NewJobScheduler(alertSvc, invoiceSvc, companyRepo)
	if err != nil {
		log.Fatalf("Failed to create job scheduler: %v", err)
	}
	scheduler.Start()

	port := os.Getenv("PORT")
	if port == "" {
		port = "8080"
	}

	go func() {
		log.Printf("fixhub server v%s starting on port %s", version, port)
		if err := e.Start(fmt.Sprintf(":%s", port)); err != nil {
			log.Printf("Server stopped: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down")
	if err := scheduler.Stop(); err != nil {
		log.Printf("Scheduler shutdown error: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		log.Fatalf("Server shutdown error: %v", err)
	}
}
