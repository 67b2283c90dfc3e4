package databases

//go generate: mockery --name ConferenceDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inventario-app/inventario-api/models"
)

const conferenceName = "conferences"

// ConferenceDatabase contains the methods to use with the conference database
type ConferenceDatabase interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ConferenceRecord, error)
	Count(ctx context.Context, filter interface{}) (int64, error)
	RecordCheck(ctx context.Context, equipmentID primitive.ObjectID, details models.ConferenceDetails) error
}

type conferenceDatabase struct {
	db DatabaseHelper
}

// NewConferenceDatabase initializes a new instance of conference database with the provided db connection
func NewConferenceDatabase(db DatabaseHelper) ConferenceDatabase {
	return &conferenceDatabase{
		db: db,
	}
}

func (c *conferenceDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.ConferenceRecord, error) {
	var records []models.ConferenceRecord
	err := c.db.Collection(conferenceName).Find(ctx, filter, opts...).Decode(&records)
	if err != nil {
		return nil, err
	}
	return records, nil
}

func (c *conferenceDatabase) Count(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(conferenceName).CountDocuments(ctx, filter)
}

// RecordCheck appends the audit record and advances the equipment's
// lastCheckedTimestamp in one transaction. Both writes commit together or
// neither does; atomicity is delegated to the store.
func (c *conferenceDatabase) RecordCheck(ctx context.Context, equipmentID primitive.ObjectID, details models.ConferenceDetails) error {
	record := models.ConferenceRecord{
		ID:      primitive.NewObjectID(),
		Details: details,
	}

	session, err := c.db.Client().StartSession()
	if err != nil {
		return err
	}
	defer session.EndSession(ctx)

	if err := session.StartTransaction(); err != nil {
		return err
	}
	sc := session.Context(ctx)
	if _, err := c.db.Collection(conferenceName).InsertOne(sc, record); err != nil {
		_ = session.AbortTransaction(ctx)
		return err
	}
	_, err = c.db.Collection(equipmentName).UpdateOne(sc,
		bson.M{"_id": equipmentID},
		bson.M{"$set": bson.M{"equipment.lastCheckedTimestamp": details.CheckedAt}},
	)
	if err != nil {
		_ = session.AbortTransaction(ctx)
		return err
	}
	return session.CommitTransaction(ctx)
}
