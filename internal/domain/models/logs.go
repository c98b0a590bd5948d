package models

import "time"

// ProductionLog records one flavor's worth of buckets from a production event.
type ProductionLog struct {
	ID          string    `bson:"_id" json:"id"`
	FlavorID    string    `bson:"flavor_id" json:"flavorId"`
	TotalWeight float64   `bson:"total_weight" json:"totalWeight"`
	BucketCount int       `bson:"bucket_count" json:"bucketCount"`
	ProducedAt  time.Time `bson:"produced_at" json:"producedAt"`
	Note        string    `bson:"note,omitempty" json:"note,omitempty"`
}

// ClosingItem is the remaining weight of one bucket at closing time.
type ClosingItem struct {
	FlavorID string  `bson:"flavor_id" json:"flavorId"`
	Grams    float64 `bson:"grams" json:"grams"`
}

// ClosingLog records one store-closing reconciliation.
type ClosingLog struct {
	ID          string        `bson:"_id" json:"id"`
	Store       Location      `bson:"store" json:"store"`
	ClosedAt    time.Time     `bson:"closed_at" json:"closedAt"`
	TotalWeight float64       `bson:"total_weight" json:"totalWeight"`
	Items       []ClosingItem `bson:"items" json:"items"`
}
