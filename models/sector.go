package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Sector holds the structure for the sector collection in mongo
type Sector struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details SectorDetails      `json:"sector" bson:"sector"`
	Version int32              `json:"__v" bson:"__v"`
}

// SectorDetails holds the structure for the inner sector structure as
// defined in the sector collection in mongo
type SectorDetails struct {
	Name      string             `json:"name" bson:"name"`
	CreatedAt primitive.DateTime `json:"createdAt" bson:"createdAt"`
	UpdatedAt primitive.DateTime `json:"updatedAt" bson:"updatedAt"`
}
