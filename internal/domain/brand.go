package domain

import "time"

// Brand is a product brand with its logo asset.
type Brand struct {
	BrandID    string    `json:"brandId" bson:"brandId"`
	BrandName  string    `json:"brandname" bson:"brandname"`
	BrandImage string    `json:"brandimage" bson:"brandimage"`
	PublicID   string    `json:"public_id" bson:"public_id"`
	CreatedAt  time.Time `json:"createdAt" bson:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt" bson:"updatedAt"`
}
