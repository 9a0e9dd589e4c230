// Package store opens the question store selected by configuration.
package store

import (
	"context"
	"fmt"
	"log"

	"learningtime/internal/config"
	"learningtime/internal/database"
	"learningtime/internal/firestore"
	"learningtime/internal/repository"
)

// Backend names accepted in STORE_BACKEND
const (
	BackendSQL       = "sql"
	BackendFirestore = "firestore"
	BackendMemory    = "memory"
)

// Open connects the configured backend. SQL databases are migrated
// before use. The returned function releases the connection.
func Open(ctx context.Context, cfg *config.Config) (repository.QuestionStore, func() error, error) {
	switch cfg.StoreBackend {
	case BackendSQL, "":
		db, err := database.InitializeWithConfig(cfg)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to initialize database: %w", err)
		}
		log.Printf("Database connection established (type: %s)", db.Dialect.Name())

		if err := db.RunMigrations(ctx, cfg.MigrationsPath); err != nil {
			db.Close()
			return nil, nil, fmt.Errorf("failed to run migrations: %w", err)
		}
		return repository.NewQuestionRepository(db), db.Close, nil

	case BackendFirestore:
		fs, err := firestore.New(ctx, cfg)
		if err != nil {
			return nil, nil, err
		}
		log.Printf("Firestore client ready (project: %s, collection: %s)", cfg.GCPProjectID, cfg.FirestoreCollection)
		return fs, fs.Close, nil

	case BackendMemory:
		log.Println("Using in-memory question store; data is lost on exit")
		return repository.NewMemoryQuestionStore(), func() error { return nil }, nil

	default:
		return nil, nil, fmt.Errorf("unknown store backend %q", cfg.StoreBackend)
	}
}
