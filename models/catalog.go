package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Category discriminates catalog items.
type Category string

const (
	CategoryTop       Category = "top"
	CategoryBottom    Category = "bottom"
	CategoryFootwear  Category = "footwear"
	CategoryAccessory Category = "accessory"
)

// Categories lists every known category in display order.
var Categories = []Category{CategoryTop, CategoryBottom, CategoryFootwear, CategoryAccessory}

// Valid reports whether c is a known category.
func (c Category) Valid() bool {
	for _, known := range Categories {
		if c == known {
			return true
		}
	}
	return false
}

// CatalogItem is a read-only clothing item offered for outfit composition.
type CatalogItem struct {
	ID       primitive.ObjectID `json:"_id" bson:"_id,omitempty"`
	Category Category           `json:"category" bson:"category"`
	Name     string             `json:"name" bson:"name"`
	Brand    string             `json:"brand,omitempty" bson:"brand,omitempty"`
	Image    string             `json:"image" bson:"image"`
	Price    float64            `json:"price,omitempty" bson:"price,omitempty"`
	Link     string             `json:"link,omitempty" bson:"link,omitempty"`
}
