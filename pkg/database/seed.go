package database

import (
	"context"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// SeedIfEmpty loads demo data from seedFile when the documents table has no
// rows. A missing or empty seedFile path disables seeding. Schema creation is
// handled by migrations; this only covers initial data.
func SeedIfEmpty(ctx context.Context, db *DB, seedFile string, logger *zap.Logger) error {
	if seedFile == "" {
		return nil
	}

	var count int
	if err := db.QueryRow(ctx, "SELECT COUNT(*) FROM documents").Scan(&count); err != nil {
		return fmt.Errorf("failed to count documents: %w", err)
	}
	if count > 0 {
		logger.Info("Seed skipped, documents already present", zap.Int("count", count))
		return nil
	}

	seedSQL, err := os.ReadFile(seedFile)
	if err != nil {
		if os.IsNotExist(err) {
			logger.Warn("Seed file not found, skipping", zap.String("file", seedFile))
			return nil
		}
		return fmt.Errorf("failed to read seed file: %w", err)
	}

	if _, err := db.Exec(ctx, string(seedSQL)); err != nil {
		return fmt.Errorf("failed to apply seed file: %w", err)
	}

	logger.Info("Seeded demo data", zap.String("file", seedFile))
	return nil
}
