package databases

//go generate: mockery --name EquipmentDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inventario-app/inventario-api/models"
)

const equipmentName = "equipments"

// EquipmentDatabase contains the methods to use with the equipment database
type EquipmentDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Equipment, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Equipment, error)
	Count(ctx context.Context, filter interface{}) (int64, error)
	InsertOne(ctx context.Context, equipment models.Equipment) (interface{}, error)
	InsertManyAtomic(ctx context.Context, equipments []models.Equipment) error
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error)
	UpdateMany(ctx context.Context, filter interface{}, update interface{}) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
	DeleteMany(ctx context.Context, filter interface{}) (int64, error)
	RepairSectorNames(ctx context.Context, sectors []models.Sector) (int64, error)
}

type equipmentDatabase struct {
	db DatabaseHelper
}

// NewEquipmentDatabase initializes a new instance of equipment database with the provided db connection
func NewEquipmentDatabase(db DatabaseHelper) EquipmentDatabase {
	return &equipmentDatabase{
		db: db,
	}
}

func (c *equipmentDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Equipment, error) {
	equipment := &models.Equipment{}
	err := c.db.Collection(equipmentName).FindOne(ctx, filter).Decode(&equipment)
	if err != nil {
		return nil, err
	}
	return equipment, nil
}

func (c *equipmentDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Equipment, error) {
	var equipments []models.Equipment
	err := c.db.Collection(equipmentName).Find(ctx, filter, opts...).Decode(&equipments)
	if err != nil {
		return nil, err
	}
	return equipments, nil
}

func (c *equipmentDatabase) Count(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(equipmentName).CountDocuments(ctx, filter)
}

func (c *equipmentDatabase) InsertOne(ctx context.Context, equipment models.Equipment) (interface{}, error) {
	return c.db.Collection(equipmentName).InsertOne(ctx, equipment)
}

// InsertManyAtomic commits the given equipments in a single transaction so a
// bulk import either lands completely or not at all
func (c *equipmentDatabase) InsertManyAtomic(ctx context.Context, equipments []models.Equipment) error {
	docs := make([]interface{}, 0, len(equipments))
	for _, eq := range equipments {
		docs = append(docs, eq)
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
	if _, err := c.db.Collection(equipmentName).InsertMany(sc, docs); err != nil {
		_ = session.AbortTransaction(ctx)
		return err
	}
	return session.CommitTransaction(ctx)
}

func (c *equipmentDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	return c.db.Collection(equipmentName).UpdateOne(ctx, filter, update)
}

func (c *equipmentDatabase) UpdateMany(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	return c.db.Collection(equipmentName).UpdateMany(ctx, filter, update)
}

func (c *equipmentDatabase) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(equipmentName).DeleteOne(ctx, filter)
}

func (c *equipmentDatabase) DeleteMany(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(equipmentName).DeleteMany(ctx, filter)
}

// RepairSectorNames re-syncs the denormalized sectorName on every equipment
// whose copy drifted from the current sector set. Returns the number of
// repaired documents.
func (c *equipmentDatabase) RepairSectorNames(ctx context.Context, sectors []models.Sector) (int64, error) {
	var repaired int64
	for _, s := range sectors {
		n, err := c.db.Collection(equipmentName).UpdateMany(ctx,
			bson.M{
				"equipment.sectorId":   s.ID.Hex(),
				"equipment.sectorName": bson.M{"$ne": s.Details.Name},
			},
			bson.M{"$set": bson.M{"equipment.sectorName": s.Details.Name}},
		)
		if err != nil {
			return repaired, err
		}
		repaired += n
	}
	return repaired, nil
}
