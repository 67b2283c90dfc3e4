package models

import "go.mongodb.org/mongo-driver/bson/primitive"

// ConferenceRecord holds the structure for the conference collection in mongo.
// Records are append-only: one per successful barcode check, never updated or
// deleted by the application.
type ConferenceRecord struct {
	ID      primitive.ObjectID `json:"_id" bson:"_id"`
	Details ConferenceDetails  `json:"conference" bson:"conference"`
	Version int32              `json:"__v" bson:"__v"`
}

// ConferenceDetails holds the structure for the inner conference structure as
// defined in the conference collection in mongo. Equipment and sector fields
// are snapshots taken at check time, not live references.
type ConferenceDetails struct {
	EquipmentID    string             `json:"equipmentID" bson:"equipmentID"`
	Barcode        string             `json:"barcode" bson:"barcode"`
	EquipmentName  string             `json:"equipmentName" bson:"equipmentName"`
	EquipmentType  string             `json:"equipmentType" bson:"equipmentType"`
	SectorID       string             `json:"sectorId,omitempty" bson:"sectorId,omitempty"`
	SectorName     string             `json:"sectorName,omitempty" bson:"sectorName,omitempty"`
	CheckedByID    string             `json:"checkedByID" bson:"checkedByID"`
	CheckedByEmail string             `json:"checkedByEmail" bson:"checkedByEmail"`
	CheckedAt      primitive.DateTime `json:"checkedAt" bson:"checkedAt"`
}
