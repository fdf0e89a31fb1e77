// Command seed loads catalog items into MongoDB.
//
//	go run ./cmd/seed -file items.json
//
// Without -file the bundled starter catalog is used.
package main

import (
	"context"
	_ "embed"
	"encoding/json"
	"flag"
	"fmt"
	"log/slog"
	"os"
	"time"

	"fitshare/config"
	"fitshare/db"
	"fitshare/logger"
	"fitshare/models"
)

//go:embed catalog.json
var starterCatalog []byte

func main() {
	file := flag.String("file", "", "path to a JSON array of catalog items")
	flag.Parse()

	cfg, err := config.Load(".env")
	if err != nil {
		slog.Error("loading config", "error", err)
		os.Exit(1)
	}
	log := logger.New(logger.Config{Environment: cfg.App.Environment, Level: logger.ParseLevel(cfg.App.LogLevel)})

	if err := seed(cfg, *file, log); err != nil {
		log.Error("seeding catalog", "error", err)
		os.Exit(1)
	}
}

func seed(cfg *config.Config, file string, log *slog.Logger) error {
	raw := starterCatalog
	if file != "" {
		var err error
		if raw, err = os.ReadFile(file); err != nil {
			return err
		}
	}
	items, err := parseItems(raw)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	store, err := db.Connect(ctx, cfg.Mongo.URI, cfg.Mongo.Database, cfg.Mongo.Timeout)
	if err != nil {
		return err
	}
	defer func() { _ = store.Close(context.Background()) }()

	if err := store.EnsureIndexes(ctx); err != nil {
		return err
	}
	if err := store.SeedCatalog(ctx, items); err != nil {
		return err
	}
	log.Info("catalog seeded", "items", len(items))
	return nil
}

// parseItems decodes and checks catalog items. Every item needs a known
// category, a name and an image.
func parseItems(raw []byte) ([]models.CatalogItem, error) {
	var items []models.CatalogItem
	if err := json.Unmarshal(raw, &items); err != nil {
		return nil, fmt.Errorf("decoding catalog: %w", err)
	}
	for i, it := range items {
		if !it.Category.Valid() {
			return nil, fmt.Errorf("item %d: unknown category %q", i, it.Category)
		}
		if it.Name == "" || it.Image == "" {
			return nil, fmt.Errorf("item %d: name and image are required", i)
		}
	}
	return items, nil
}
