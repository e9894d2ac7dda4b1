package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/equitywire/research/config"
	"github.com/equitywire/research/internal/cache"
	"github.com/equitywire/research/internal/database"
	"github.com/equitywire/research/internal/handlers"
	"github.com/equitywire/research/internal/repository"
	"github.com/equitywire/research/internal/services"
	"github.com/gin-gonic/gin"
	log "github.com/sirupsen/logrus"
)

func main() {
	importMode := flag.Bool("import", false, "run a batch import of REPORT_DIR and exit")
	dryRun := flag.Bool("dry-run", false, "with -import: parse and validate only, no writes")
	workers := flag.Int("workers", 1, "with -import: number of concurrent document workers")
	flag.Parse()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	loc, err := cfg.Location()
	if err != nil {
		log.Fatalf("Failed to resolve time zone: %v", err)
	}

	// Create context for initialization
	ctx := context.Background()

	// Initialize database connection
	db, err := database.New(ctx, cfg.PGURL)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	defer db.Close()

	if err := db.EnsureSchema(ctx); err != nil {
		log.Fatalf("Failed to ensure schema: %v", err)
	}

	// Initialize repositories
	stockRepo := repository.NewStockRepository(db.Pool)
	reportRepo := repository.NewReportRepository(db.Pool)
	analyticsRepo := repository.NewAnalyticsRepository(db.Pool)

	// Initialize services
	importSvc := services.NewImportService(stockRepo, reportRepo, loc)
	analyticsSvc := services.NewAnalyticsService(analyticsRepo)

	if *importMode {
		runImport(ctx, importSvc, cfg.ReportDir, *dryRun, *workers)
		return
	}

	// Initialize cache and handlers
	memCache := cache.NewMemoryCache(time.Minute)
	dashboardHandler := handlers.NewDashboardHandler(analyticsSvc, stockRepo, memCache)
	importHandler := handlers.NewImportHandler(importSvc, cfg.ReportDir, memCache)

	// Setup Gin router
	router := gin.Default()

	// Health check endpoint
	router.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	// Analytics routes
	router.GET("/dashboard", dashboardHandler.Dashboard)
	router.GET("/stocks/:id/prices", dashboardHandler.StockPrices)

	// Admin routes
	router.POST("/admin/import", importHandler.Import)

	// Create HTTP server
	srv := &http.Server{
		Addr:    ":" + cfg.Port,
		Handler: router,
	}

	// Start server in goroutine
	go func() {
		log.Infof("Starting server on port %s", cfg.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Failed to start server: %v", err)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")

	// Give outstanding requests 5 seconds to complete
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	fmt.Println("Server exited")
}

// runImport executes one batch import. The exit code reflects only
// document-level and connectivity failures; skipped records are normal.
func runImport(ctx context.Context, importSvc *services.ImportService, dir string, dryRun bool, workers int) {
	summary, err := importSvc.ImportDir(ctx, dir, dryRun, workers)
	fmt.Printf("Done. Parsed=%d Created=%d Skipped=%d\n", summary.Parsed, summary.Created, summary.Skipped)
	if err != nil {
		log.Errorf("Import finished with errors: %v", err)
		os.Exit(1)
	}
}
