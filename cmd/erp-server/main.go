package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/shopspring/decimal"

	dashboardhandler "github.com/agroflow/agroflow-backend/internal/dashboard/handler"
	dashboardservice "github.com/agroflow/agroflow-backend/internal/dashboard/service"
	hrevents "github.com/agroflow/agroflow-backend/internal/hr/events"
	hrhandler "github.com/agroflow/agroflow-backend/internal/hr/handler"
	hrrepository "github.com/agroflow/agroflow-backend/internal/hr/repository"
	hrservice "github.com/agroflow/agroflow-backend/internal/hr/service"
	identityevents "github.com/agroflow/agroflow-backend/internal/identity/events"
	identityhandler "github.com/agroflow/agroflow-backend/internal/identity/handler"
	identityrepository "github.com/agroflow/agroflow-backend/internal/identity/repository"
	identityservice "github.com/agroflow/agroflow-backend/internal/identity/service"
	inventoryevents "github.com/agroflow/agroflow-backend/internal/inventory/events"
	inventoryhandler "github.com/agroflow/agroflow-backend/internal/inventory/handler"
	inventoryrepository "github.com/agroflow/agroflow-backend/internal/inventory/repository"
	inventoryservice "github.com/agroflow/agroflow-backend/internal/inventory/service"
	notificationconsumers "github.com/agroflow/agroflow-backend/internal/notification/consumers"
	notificationhandler "github.com/agroflow/agroflow-backend/internal/notification/handler"
	notificationrepository "github.com/agroflow/agroflow-backend/internal/notification/repository"
	"github.com/agroflow/agroflow-backend/internal/prediction"
	productionevents "github.com/agroflow/agroflow-backend/internal/production/events"
	productionhandler "github.com/agroflow/agroflow-backend/internal/production/handler"
	productionrepository "github.com/agroflow/agroflow-backend/internal/production/repository"
	productionservice "github.com/agroflow/agroflow-backend/internal/production/service"
	settingshandler "github.com/agroflow/agroflow-backend/internal/settings/handler"
	settingsrepository "github.com/agroflow/agroflow-backend/internal/settings/repository"
	"github.com/agroflow/agroflow-backend/internal/weather"
	"github.com/agroflow/agroflow-backend/pkg/config"
	"github.com/agroflow/agroflow-backend/pkg/database"
	"github.com/agroflow/agroflow-backend/pkg/httputil"
	"github.com/agroflow/agroflow-backend/pkg/logger"
	"github.com/agroflow/agroflow-backend/pkg/messaging"
)

// inventoryStats joins product and stock counters for the dashboard
type inventoryStats struct {
	products *inventoryrepository.ProductRepository
	stocks   *inventoryrepository.StockRepository
}

func (s inventoryStats) CountActive(ctx context.Context) (int64, error) {
	return s.products.CountActive(ctx)
}

func (s inventoryStats) TotalValuation(ctx context.Context) (decimal.Decimal, error) {
	return s.stocks.TotalValuation(ctx)
}

func (s inventoryStats) CountBelowThreshold(ctx context.Context) (int64, error) {
	return s.stocks.CountBelowThreshold(ctx)
}

// hrStats joins employee and leave counters for the dashboard
type hrStats struct {
	employees *hrrepository.EmployeeRepository
	leaves    *hrrepository.LeaveRepository
}

func (s hrStats) CountActive(ctx context.Context) (int64, error) {
	return s.employees.CountActive(ctx)
}

func (s hrStats) CountPending(ctx context.Context) (int64, error) {
	return s.leaves.CountPending(ctx)
}

func main() {
	// Load configuration with validation (fails fast in production if required config is missing)
	cfg, err := config.LoadWithValidation("erp-server")
	if err != nil {
		fmt.Fprintf(os.Stderr, "configuration error: %v\n", err)
		os.Exit(1)
	}

	// Initialize logger
	log := logger.New("erp-server", cfg.Server.Environment)
	log.Info().Msg("starting ERP server")

	// Connect to database
	db, err := database.New(&cfg.Database, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	// Connect to RabbitMQ
	rmq, err := messaging.New(&cfg.RabbitMQ, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to RabbitMQ")
	}
	defer rmq.Close()

	// Event publishers
	inventoryPublisher, err := inventoryevents.NewInventoryEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create inventory event publisher")
	}
	productionPublisher, err := productionevents.NewProductionEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create production event publisher")
	}
	hrPublisher, err := hrevents.NewHREventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create HR event publisher")
	}
	identityPublisher, err := identityevents.NewIdentityEventPublisher(rmq, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create identity event publisher")
	}

	// Repositories
	productRepo := inventoryrepository.NewProductRepository(db)
	warehouseRepo := inventoryrepository.NewWarehouseRepository(db)
	stockRepo := inventoryrepository.NewStockRepository(db)
	movementRepo := inventoryrepository.NewMovementRepository(db)
	projectRepo := productionrepository.NewProjectRepository(db)
	taskRepo := productionrepository.NewTaskRepository(db)
	dependencyRepo := productionrepository.NewDependencyRepository(db)
	resourceRepo := productionrepository.NewResourceRepository(db)
	employeeRepo := hrrepository.NewEmployeeRepository(db)
	leaveRepo := hrrepository.NewLeaveRepository(db)
	userRepo := identityrepository.NewUserRepository(db)
	notificationRepo := notificationrepository.NewNotificationRepository(db)
	parameterRepo := settingsrepository.NewParameterRepository(db)

	// Collaborator clients
	weatherClient := weather.NewClient(cfg.Weather, log)
	predictionClient := prediction.NewClient(cfg.Prediction, log)

	// Services
	inventorySvc := inventoryservice.NewInventoryService(
		db, productRepo, warehouseRepo, stockRepo, movementRepo,
		employeeRepo, inventoryPublisher, log)
	productionSvc := productionservice.NewProductionService(
		projectRepo, taskRepo, dependencyRepo, resourceRepo,
		employeeRepo, productRepo, productionPublisher, log)
	hrSvc := hrservice.NewHRService(employeeRepo, leaveRepo, hrPublisher, log)
	identitySvc := identityservice.NewIdentityService(userRepo, identityPublisher, cfg.JWT, log)
	dashboardSvc := dashboardservice.NewDashboardService(
		inventoryStats{products: productRepo, stocks: stockRepo},
		taskRepo,
		hrStats{employees: employeeRepo, leaves: leaveRepo},
		weatherClient, predictionClient, cfg.Dashboard, log)

	// Handlers
	productHandler := inventoryhandler.NewProductHandler(inventorySvc, log)
	warehouseHandler := inventoryhandler.NewWarehouseHandler(inventorySvc, log)
	movementHandler := inventoryhandler.NewMovementHandler(inventorySvc, log)
	projectHandler := productionhandler.NewProjectHandler(productionSvc, log)
	taskHandler := productionhandler.NewTaskHandler(productionSvc, log)
	employeeHandler := hrhandler.NewEmployeeHandler(hrSvc, log)
	leaveHandler := hrhandler.NewLeaveHandler(hrSvc, log)
	userHandler := identityhandler.NewUserHandler(identitySvc, log)
	notificationHandler := notificationhandler.NewNotificationHandler(notificationRepo, log)
	parameterHandler := settingshandler.NewParameterHandler(parameterRepo, log)
	dashboardHandler := dashboardhandler.NewDashboardHandler(dashboardSvc, log)

	// Low stock alert consumer
	lowStockConsumer, err := notificationconsumers.NewLowStockConsumer(rmq, notificationRepo, userRepo, log)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to create low stock consumer")
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	if err := lowStockConsumer.Start(ctx); err != nil {
		log.Fatal().Err(err).Msg("failed to start low stock consumer")
	}

	// Create router
	r := chi.NewRouter()

	// Middleware
	r.Use(middleware.RealIP)
	r.Use(httputil.RequestID)
	r.Use(httputil.Logger(log))
	r.Use(httputil.Recoverer(log))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000", "http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-Request-ID"},
		AllowCredentials: true,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		httputil.JSON(w, http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"service":  "erp-server",
			"database": db.Health(r.Context()),
			"rabbitmq": rmq.Health(),
		})
	})

	// Public routes
	r.Post("/api/v1/auth/bootstrap", userHandler.Bootstrap)
	r.Post("/api/v1/auth/login", userHandler.Login)

	// Authenticated API routes
	r.Route("/api/v1", func(r chi.Router) {
		r.Use(httputil.Auth(cfg.JWT.Secret, log))

		r.Get("/auth/me", userHandler.Me)

		r.Route("/users", func(r chi.Router) {
			r.Get("/", userHandler.List)
			r.Post("/", userHandler.Create)
			r.Get("/{id}", userHandler.Get)
			r.Put("/{id}/permissions", userHandler.UpdatePermissions)
		})

		r.Route("/inventaire", func(r chi.Router) {
			r.Route("/products", func(r chi.Router) {
				r.Get("/", productHandler.List)
				r.Post("/", productHandler.Create)
				r.Get("/{id}", productHandler.Get)
				r.Patch("/{id}", productHandler.Update)
				r.Delete("/{id}", productHandler.Delete)
				r.Get("/{id}/stocks", productHandler.Stocks)
			})
			r.Route("/warehouses", func(r chi.Router) {
				r.Get("/", warehouseHandler.List)
				r.Post("/", warehouseHandler.Create)
				r.Get("/{id}", warehouseHandler.Get)
				r.Put("/{id}", warehouseHandler.Update)
				r.Delete("/{id}", warehouseHandler.Delete)
				r.Get("/{id}/stocks", warehouseHandler.Stocks)
			})
			r.Route("/movements", func(r chi.Router) {
				r.Get("/", movementHandler.List)
				r.Post("/", movementHandler.Create)
			})
		})

		r.Route("/production", func(r chi.Router) {
			r.Route("/projects", func(r chi.Router) {
				r.Get("/", projectHandler.List)
				r.Post("/", projectHandler.Create)
				r.Get("/{id}", projectHandler.Get)
				r.Put("/{id}", projectHandler.Update)
				r.Delete("/{id}", projectHandler.Delete)
				r.Get("/{id}/tasks", projectHandler.Tasks)
			})
			r.Route("/tasks", func(r chi.Router) {
				r.Post("/", taskHandler.Create)
				r.Get("/{id}", taskHandler.Get)
				r.Put("/{id}", taskHandler.Update)
				r.Delete("/{id}", taskHandler.Delete)
				r.Post("/{id}/suitability", taskHandler.Suitability)
				r.Get("/{id}/dependencies", taskHandler.Dependencies)
				r.Post("/{id}/dependencies", taskHandler.AddDependency)
				r.Delete("/{id}/dependencies/{depID}", taskHandler.RemoveDependency)
				r.Get("/{id}/resources", taskHandler.Resources)
				r.Post("/{id}/resources", taskHandler.AddResource)
				r.Put("/{id}/resources/{resourceID}", taskHandler.UpdateResourceUsage)
				r.Delete("/{id}/resources/{resourceID}", taskHandler.RemoveResource)
			})
		})

		r.Route("/rh", func(r chi.Router) {
			r.Route("/employees", func(r chi.Router) {
				r.Get("/", employeeHandler.List)
				r.Post("/", employeeHandler.Create)
				r.Get("/{id}", employeeHandler.Get)
				r.Put("/{id}", employeeHandler.Update)
				r.Delete("/{id}", employeeHandler.Delete)
			})
			r.Route("/conges", func(r chi.Router) {
				r.Get("/", leaveHandler.List)
				r.Post("/", leaveHandler.Create)
				r.Get("/{id}", leaveHandler.Get)
				r.Post("/{id}/decision", leaveHandler.Decide)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Get("/unread-count", notificationHandler.UnreadCount)
			r.Put("/{id}/read", notificationHandler.MarkRead)
			r.Put("/read-all", notificationHandler.MarkAllRead)
		})

		r.Route("/parametres", func(r chi.Router) {
			r.Get("/{module}", parameterHandler.List)
			r.Put("/{module}/{key}", parameterHandler.Upsert)
		})

		r.Get("/dashboard", dashboardHandler.Get)
	})

	// Create server
	addr := fmt.Sprintf("%s:%d", cfg.Server.Host, cfg.Server.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
	}

	// Start server
	go func() {
		log.Info().Str("addr", addr).Msg("server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("server error")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("shutting down server")

	// Cancel context to stop consumers
	cancel()

	// Graceful shutdown
	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("server forced to shutdown")
	}

	log.Info().Msg("server stopped")
}
