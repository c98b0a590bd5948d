package models

import (
	"strings"
	"time"
)

// Location identifies where a bucket physically sits.
type Location string

const (
	LocationFactory Location = "Factory"
	LocationStoreA  Location = "Store A"
	LocationStoreB  Location = "Store B"
	LocationStoreC  Location = "Store C"
)

// Stores lists the retail locations that receive distributed buckets.
var Stores = []Location{LocationStoreA, LocationStoreB, LocationStoreC}

// Locations lists every location, factory first.
var Locations = []Location{LocationFactory, LocationStoreA, LocationStoreB, LocationStoreC}

// IsStore reports whether the location is one of the retail stores.
func (l Location) IsStore() bool {
	for _, store := range Stores {
		if l == store {
			return true
		}
	}
	return false
}

// ParseLocation accepts the display name or a slug ("store-a", "factory").
func ParseLocation(value string) (Location, bool) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	normalized = strings.NewReplacer("-", " ", "_", " ").Replace(normalized)

	for _, loc := range Locations {
		if strings.ToLower(string(loc)) == normalized {
			return loc, true
		}
	}
	return "", false
}

// BucketStatus enumerates the lifecycle states of a bucket.
type BucketStatus string

const (
	StatusInStock BucketStatus = "in-stock"
	StatusSold    BucketStatus = "sold"
	// StatusInTransit is reserved; no ledger operation produces it.
	StatusInTransit BucketStatus = "in-transit"
)

// Bucket is one container of a single flavor, tracked by weight and location.
type Bucket struct {
	ID          string       `bson:"_id" json:"id"`
	FlavorID    string       `bson:"flavor_id" json:"flavorId"`
	WeightGrams float64      `bson:"weight_grams" json:"weightGrams"`
	ProducedAt  time.Time    `bson:"produced_at" json:"producedAt"`
	Note        string       `bson:"note,omitempty" json:"note,omitempty"`
	Location    Location     `bson:"location" json:"location"`
	Status      BucketStatus `bson:"status" json:"status"`
	Sequence    int          `bson:"sequence" json:"sequence"`
}

// Flavor is a named product variant. Flavors are deactivated, never deleted.
type Flavor struct {
	ID          string   `bson:"_id" json:"id"`
	Name        string   `bson:"name" json:"name"`
	Initials    string   `bson:"initials" json:"initials"`
	CategoryIDs []string `bson:"category_ids" json:"categoryIds"`
	Active      bool     `bson:"active" json:"active"`
}

// HasCategory reports whether the flavor is linked to the category.
func (f Flavor) HasCategory(categoryID string) bool {
	for _, id := range f.CategoryIDs {
		if id == categoryID {
			return true
		}
	}
	return false
}

// Category is a grouping label for flavors.
type Category struct {
	ID   string `bson:"_id" json:"id"`
	Name string `bson:"name" json:"name"`
}
