package db

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fitshare/models"
)

func (m *Mongo) CatalogItems(ctx context.Context, category models.Category) ([]models.CatalogItem, error) {
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	filter := bson.M{}
	if category != "" {
		filter["category"] = category
	}

	cursor, err := m.catalog.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "category", Value: 1}, {Key: "name", Value: 1}}))
	if err != nil {
		return nil, storeErr(err, "", "listing catalog")
	}
	defer cursor.Close(ctx)

	items := []models.CatalogItem{}
	if err := cursor.All(ctx, &items); err != nil {
		return nil, storeErr(err, "", "decoding catalog")
	}
	return items, nil
}

// SeedCatalog inserts items, used by the seed command and integration tests.
func (m *Mongo) SeedCatalog(ctx context.Context, items []models.CatalogItem) error {
	if len(items) == 0 {
		return nil
	}
	ctx, cancel := m.withTimeout(ctx)
	defer cancel()

	docs := make([]any, len(items))
	for i := range items {
		docs[i] = items[i]
	}
	_, err := m.catalog.InsertMany(ctx, docs)
	return storeErr(err, "", "seeding catalog")
}
