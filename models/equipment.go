package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// Equipment holds the structure for the equipment collection in mongo
type Equipment struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details EquipmentDetails   `json:"equipment" bson:"equipment"`
	Version int32              `json:"__v" bson:"__v"`
}

// EquipmentDetails holds the structure for the inner equipment structure as
// defined in the equipment collection in mongo.
//
// SectorName is a denormalized copy of the referenced sector's name, written
// at equipment write time. It can go stale if the sector is later renamed;
// the repair job re-syncs it in batch.
type EquipmentDetails struct {
	Type                 string              `json:"type" bson:"type"`
	Name                 string              `json:"name" bson:"name"`
	Model                string              `json:"model,omitempty" bson:"model,omitempty"`
	SerialNumber         string              `json:"serialNumber,omitempty" bson:"serialNumber,omitempty"`
	Description          string              `json:"description,omitempty" bson:"description,omitempty"`
	Barcode              string              `json:"barcode" bson:"barcode"`
	SectorID             string              `json:"sectorId,omitempty" bson:"sectorId,omitempty"`
	SectorName           string              `json:"sectorName,omitempty" bson:"sectorName,omitempty"`
	CreatedAt            primitive.DateTime  `json:"createdAt" bson:"createdAt"`
	LastCheckedTimestamp *primitive.DateTime `json:"lastCheckedTimestamp,omitempty" bson:"lastCheckedTimestamp,omitempty"`
}
