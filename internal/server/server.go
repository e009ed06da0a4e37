package server

import (
	"context"
	"database/sql"
	"fmt"
	"log"
	"net/http"
	"os"
	"strconv"
	"time"

	_ "github.com/joho/godotenv/autoload"
	"github.com/pressly/goose/v3"

	"partyhub-server/internal/database"
	"partyhub-server/internal/game"
)

type Server struct {
	port               int
	db                 database.Service
	connectionManager  *ConnectionManager
	persistenceManager *PersistenceManager
	games              *game.Service
}

func NewServer() (*Server, *http.Server) {
	port, _ := strconv.Atoi(os.Getenv("PORT"))
	if port == 0 {
		port = 8080
	}

	// Initialize database
	dbService := database.New()

	// Run migrations
	if err := runMigrations(dbService.DB()); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Initialize persistence manager
	persistenceManager := NewPersistenceManager(dbService.DB())

	connectionManager := NewConnectionManager()

	NewServer := &Server{
		port:               port,
		db:                 dbService,
		connectionManager:  connectionManager,
		persistenceManager: persistenceManager,
		games:              game.NewService(connectionManager, persistenceManager),
	}

	// Declare Server config
	httpServer := &http.Server{
		Addr:         fmt.Sprintf(":%d", NewServer.port),
		Handler:      NewServer.RegisterRoutes(),
		IdleTimeout:  time.Minute,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
	}

	return NewServer, httpServer
}

// runMigrations applies database migrations using goose
func runMigrations(db *sql.DB) error {
	if err := goose.SetDialect("postgres"); err != nil {
		return fmt.Errorf("failed to set goose dialect: %w", err)
	}

	// Run migrations from db/migrations directory
	if err := goose.Up(db, "./db/migrations"); err != nil {
		return fmt.Errorf("failed to apply migrations: %w", err)
	}

	log.Println("Database migrations applied successfully")
	return nil
}

// Shutdown closes the database pool. Rooms are in-memory only; clients see
// the socket close and reconnect to an empty lobby list.
func (s *Server) Shutdown(ctx context.Context) error {
	log.Printf("Shutting down with %d open connections", s.connectionManager.Count())
	return s.db.Close()
}
