package databases

//go generate: mockery --name SchedulerLockDatabase

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const schedulerLockName = "schedulerLocks"

// SchedulerLockDatabase serializes cron jobs across instances with a
// lock document per job name
type SchedulerLockDatabase interface {
	TryAcquireLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error)
	ReleaseLock(ctx context.Context, name, holder string) error
}

type schedulerLockDatabase struct {
	db DatabaseHelper
}

// NewSchedulerLockDatabase initializes a new instance of scheduler lock database with the provided db connection
func NewSchedulerLockDatabase(db DatabaseHelper) SchedulerLockDatabase {
	return &schedulerLockDatabase{
		db: db,
	}
}

// TryAcquireLock upserts the lock document keyed by job name. The filter only
// matches when the lock is expired, so a concurrent holder makes the upsert
// fail with a duplicate key error, which reports as not acquired.
func (c *schedulerLockDatabase) TryAcquireLock(ctx context.Context, name, holder string, ttl time.Duration) (bool, error) {
	now := time.Now()
	filter := bson.M{
		"_id":       name,
		"expiresAt": bson.M{"$lt": primitive.NewDateTimeFromTime(now)},
	}
	update := bson.M{"$set": bson.M{
		"holder":    holder,
		"expiresAt": primitive.NewDateTimeFromTime(now.Add(ttl)),
	}}
	opts := options.Update().SetUpsert(true)

	_, err := c.db.Collection(schedulerLockName).UpdateOne(ctx, filter, update, opts)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (c *schedulerLockDatabase) ReleaseLock(ctx context.Context, name, holder string) error {
	_, err := c.db.Collection(schedulerLockName).DeleteOne(ctx, bson.M{"_id": name, "holder": holder})
	return err
}
