package databases_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/inventario-app/inventario-api/databases"
	"github.com/inventario-app/inventario-api/databases/mocks"
	"github.com/inventario-app/inventario-api/models"
)

func TestConferenceDatabase_RecordCheckCommitsBothWrites(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var conferences databases.CollectionHelper
	var equipments databases.CollectionHelper
	var clientHelper databases.ClientHelper
	var sessionHelper databases.SessionHelper

	dbHelper = &mocks.DatabaseHelper{}
	conferences = &mocks.CollectionHelper{}
	equipments = &mocks.CollectionHelper{}
	clientHelper = &mocks.ClientHelper{}
	sessionHelper = &mocks.SessionHelper{}

	ctx := context.Background()

	sessionHelper.(*mocks.SessionHelper).On("StartTransaction").Return(nil)
	sessionHelper.(*mocks.SessionHelper).On("Context", ctx).Return(ctx)
	sessionHelper.(*mocks.SessionHelper).On("CommitTransaction", ctx).Return(nil)
	sessionHelper.(*mocks.SessionHelper).On("EndSession", ctx).Return()

	clientHelper.(*mocks.ClientHelper).On("StartSession").Return(sessionHelper, nil)

	conferences.(*mocks.CollectionHelper).
		On("InsertOne", ctx, mock.Anything).
		Return("mocked-id", nil)
	equipments.(*mocks.CollectionHelper).
		On("UpdateOne", ctx, mock.Anything, mock.Anything).
		Return(int64(1), nil)

	dbHelper.(*mocks.DatabaseHelper).On("Client").Return(clientHelper)
	dbHelper.(*mocks.DatabaseHelper).On("Collection", "conferences").Return(conferences)
	dbHelper.(*mocks.DatabaseHelper).On("Collection", "equipments").Return(equipments)

	conferenceDB := databases.NewConferenceDatabase(dbHelper)

	err := conferenceDB.RecordCheck(ctx, primitive.NewObjectID(), models.ConferenceDetails{
		Barcode:   "12345",
		CheckedAt: primitive.NewDateTimeFromTime(time.Now()),
	})
	assert.NoError(t, err)
	equipments.(*mocks.CollectionHelper).AssertCalled(t, "UpdateOne", ctx, mock.Anything, mock.Anything)
	sessionHelper.(*mocks.SessionHelper).AssertCalled(t, "CommitTransaction", ctx)
}

func TestConferenceDatabase_RecordCheckAbortsWhenTimestampWriteFails(t *testing.T) {
	var dbHelper databases.DatabaseHelper
	var conferences databases.CollectionHelper
	var equipments databases.CollectionHelper
	var clientHelper databases.ClientHelper
	var sessionHelper databases.SessionHelper

	dbHelper = &mocks.DatabaseHelper{}
	conferences = &mocks.CollectionHelper{}
	equipments = &mocks.CollectionHelper{}
	clientHelper = &mocks.ClientHelper{}
	sessionHelper = &mocks.SessionHelper{}

	ctx := context.Background()

	sessionHelper.(*mocks.SessionHelper).On("StartTransaction").Return(nil)
	sessionHelper.(*mocks.SessionHelper).On("Context", ctx).Return(ctx)
	sessionHelper.(*mocks.SessionHelper).On("AbortTransaction", ctx).Return(nil)
	sessionHelper.(*mocks.SessionHelper).On("EndSession", ctx).Return()

	clientHelper.(*mocks.ClientHelper).On("StartSession").Return(sessionHelper, nil)

	conferences.(*mocks.CollectionHelper).
		On("InsertOne", ctx, mock.Anything).
		Return("mocked-id", nil)
	equipments.(*mocks.CollectionHelper).
		On("UpdateOne", ctx, mock.Anything, mock.Anything).
		Return(int64(0), errors.New("mocked-error"))

	dbHelper.(*mocks.DatabaseHelper).On("Client").Return(clientHelper)
	dbHelper.(*mocks.DatabaseHelper).On("Collection", "conferences").Return(conferences)
	dbHelper.(*mocks.DatabaseHelper).On("Collection", "equipments").Return(equipments)

	conferenceDB := databases.NewConferenceDatabase(dbHelper)

	err := conferenceDB.RecordCheck(ctx, primitive.NewObjectID(), models.ConferenceDetails{
		Barcode:   "12345",
		CheckedAt: primitive.NewDateTimeFromTime(time.Now()),
	})
	assert.EqualError(t, err, "mocked-error")
	sessionHelper.(*mocks.SessionHelper).AssertCalled(t, "AbortTransaction", ctx)
	sessionHelper.(*mocks.SessionHelper).AssertNotCalled(t, "CommitTransaction", ctx)
}
