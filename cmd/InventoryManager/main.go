package main

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"

	database "github.com/renkoyama/InventoryManager/internal/db"
	"github.com/renkoyama/InventoryManager/internal/inventory/categories"
	"github.com/renkoyama/InventoryManager/internal/inventory/items"
)

const defaultMaxCustomCategories = 50

type Response struct {
	Message string `json:"message"`
}

func loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestID := uuid.NewString()
		log.Printf("[%s] Started %s %s", requestID, r.Method, r.URL.Path)

		next.ServeHTTP(w, r)

		log.Printf("[%s] Completed %s in %v", requestID, r.URL.Path, time.Since(start))
	})
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(payload)
}

// respondError writes the error envelope shared by every endpoint.
func respondError(w http.ResponseWriter, status int, code, message string) {
	respondJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// HealthReporter is the slice of the database service the readiness probe
// needs.
type HealthReporter interface {
	Health(ctx context.Context) map[string]string
}

type Server struct {
	router          *http.ServeMux
	categoryHandler *categories.CategoryHandler
	itemHandler     *items.ItemHandler
	health          HealthReporter
}

func NewServer(categoryHandler *categories.CategoryHandler, itemHandler *items.ItemHandler, health HealthReporter) *Server {
	return &Server{
		categoryHandler: categoryHandler,
		itemHandler:     itemHandler,
		health:          health,
		router:          http.NewServeMux(),
	}
}

func notFoundHandler(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusNotFound)
	json.NewEncoder(w).Encode(Response{Message: "Path not found"})
}

func checkConfiguration() error {
	err := godotenv.Load()
	if err != nil {
		log.Println("Error loading .env file, continuing with system environment variables")
	}

	if os.Getenv("DB_CONNECTION_STRING") == "" {
		return errors.New("no DB_CONNECTION_STRING provided")
	}
	return nil
}

func maxCustomCategoryLimit() int {
	raw := os.Getenv("CATEGORY_MAX_CUSTOM_LIMIT")
	if raw == "" {
		return defaultMaxCustomCategories
	}
	limit, err := strconv.Atoi(raw)
	if err != nil || limit <= 0 {
		log.Printf("Invalid CATEGORY_MAX_CUSTOM_LIMIT %q, using default %d", raw, defaultMaxCustomCategories)
		return defaultMaxCustomCategories
	}
	return limit
}

func serverPort() string {
	if port := os.Getenv("SERVER_PORT"); port != "" {
		return port
	}
	return "8080"
}

// handleReady answers the readiness probe with the database's health.
func (s *Server) handleReady(w http.ResponseWriter, r *http.Request) {
	stats := s.health.Health(r.Context())
	status := http.StatusOK
	if stats["status"] != "up" {
		status = http.StatusServiceUnavailable
	}
	respondJSON(w, status, stats)
}

func (s *Server) RegisterRoutes() {
	mainRouter := http.NewServeMux()

	mainRouter.Handle("POST /categories", http.HandlerFunc(s.categoryHandler.HandleCreate))
	mainRouter.Handle("GET /categories", http.HandlerFunc(s.categoryHandler.HandleList))
	mainRouter.Handle("PATCH /categories/{categoryID}", http.HandlerFunc(s.categoryHandler.HandleUpdate))
	mainRouter.Handle("DELETE /categories/{categoryID}", http.HandlerFunc(s.categoryHandler.HandleDelete))

	mainRouter.Handle("POST /items", http.HandlerFunc(s.itemHandler.HandleCreate))

	mainRouter.Handle("GET /ready", http.HandlerFunc(s.handleReady))
	mainRouter.Handle("/", http.HandlerFunc(notFoundHandler))

	s.router = mainRouter
}

func main() {
	if err := checkConfiguration(); err != nil {
		log.Fatalf("Missing configuration, update to start server: %v", err)
	}

	dbService, err := database.NewDBService(context.Background())
	if err != nil {
		log.Fatalf("Could not initialize database: %v", err)
	}
	defer dbService.Close()

	if err := database.EnsureSchema(context.Background(), dbService.DB); err != nil {
		log.Fatalf("Could not prepare database schema: %v", err)
	}

	categoryRepo := categories.NewCategoryRepository(dbService.DB)
	itemRepo := items.NewItemRepository(dbService.DB)

	categoryService := categories.NewCategoryService(categoryRepo, itemRepo, maxCustomCategoryLimit())
	itemService := items.NewItemService(itemRepo, categoryRepo)

	categoryHandler := categories.NewCategoryHandler(categoryService, respondJSON, respondError)
	itemHandler := items.NewItemHandler(itemService, respondJSON, respondError)

	server := NewServer(categoryHandler, itemHandler, dbService)
	server.RegisterRoutes()

	if err := categoryService.EnsureDefaults(context.Background()); err != nil {
		log.Fatalf("Could not seed default categories: %v", err)
	}

	handler := loggingMiddleware(server.router)
	addr := ":" + serverPort()
	log.Printf("Server starting on port %s...", serverPort())
	if err := http.ListenAndServe(addr, handler); err != nil {
		log.Fatalf("Server failed to start: %v", err)
	}
}
