package databases

//go generate: mockery --name SectorDatabase

import (
	"context"

	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/inventario-app/inventario-api/models"
)

const sectorName = "sectors"

// SectorDatabase contains the methods to use with the sector database
type SectorDatabase interface {
	FindOne(ctx context.Context, filter interface{}) (*models.Sector, error)
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Sector, error)
	Count(ctx context.Context, filter interface{}) (int64, error)
	InsertOne(ctx context.Context, sector models.Sector) (interface{}, error)
	UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error)
	DeleteOne(ctx context.Context, filter interface{}) (int64, error)
}

type sectorDatabase struct {
	db DatabaseHelper
}

// NewSectorDatabase initializes a new instance of sector database with the provided db connection
func NewSectorDatabase(db DatabaseHelper) SectorDatabase {
	return &sectorDatabase{
		db: db,
	}
}

func (c *sectorDatabase) FindOne(ctx context.Context, filter interface{}) (*models.Sector, error) {
	sector := &models.Sector{}
	err := c.db.Collection(sectorName).FindOne(ctx, filter).Decode(&sector)
	if err != nil {
		return nil, err
	}
	return sector, nil
}

func (c *sectorDatabase) Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) ([]models.Sector, error) {
	var sectors []models.Sector
	err := c.db.Collection(sectorName).Find(ctx, filter, opts...).Decode(&sectors)
	if err != nil {
		return nil, err
	}
	return sectors, nil
}

func (c *sectorDatabase) Count(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(sectorName).CountDocuments(ctx, filter)
}

func (c *sectorDatabase) InsertOne(ctx context.Context, sector models.Sector) (interface{}, error) {
	return c.db.Collection(sectorName).InsertOne(ctx, sector)
}

func (c *sectorDatabase) UpdateOne(ctx context.Context, filter interface{}, update interface{}) (int64, error) {
	return c.db.Collection(sectorName).UpdateOne(ctx, filter, update)
}

func (c *sectorDatabase) DeleteOne(ctx context.Context, filter interface{}) (int64, error) {
	return c.db.Collection(sectorName).DeleteOne(ctx, filter)
}
