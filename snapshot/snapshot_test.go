package snapshot_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/inventario-app/inventario-api/databases/mocks"
	"github.com/inventario-app/inventario-api/models"
	"github.com/inventario-app/inventario-api/snapshot"
)

func testEquipments() []models.Equipment {
	return []models.Equipment{
		{ID: primitive.NewObjectID(), Details: models.EquipmentDetails{Name: "Dell Latitude", Barcode: "12345"}},
		{ID: primitive.NewObjectID(), Details: models.EquipmentDetails{Name: "LG Monitor", Barcode: "67890"}},
	}
}

func TestCache_StartLoadsInitialSnapshot(t *testing.T) {
	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return(testEquipments(), nil)

	cache := snapshot.New(equipmentDatabase, time.Hour)
	assert.NoError(t, cache.Start(context.Background()))
	defer cache.Stop()

	assert.Len(t, cache.Equipments(), 2)
}

func TestCache_StartFailsWhenStoreUnavailable(t *testing.T) {
	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return(nil, errors.New("mocked-error"))

	cache := snapshot.New(equipmentDatabase, time.Hour)
	assert.EqualError(t, cache.Start(context.Background()), "mocked-error")
}

func TestCache_MatchBarcode(t *testing.T) {
	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return(testEquipments(), nil)

	cache := snapshot.New(equipmentDatabase, time.Hour)
	assert.NoError(t, cache.Start(context.Background()))
	defer cache.Stop()

	// exact match after trimming
	eq, ok := cache.MatchBarcode(" 12345 ")
	assert.True(t, ok)
	assert.Equal(t, "Dell Latitude", eq.Details.Name)

	// never a prefix match
	_, ok = cache.MatchBarcode("1234")
	assert.False(t, ok)

	// never case-normalized beyond trimming
	_, ok = cache.MatchBarcode("")
	assert.False(t, ok)
}

func TestCache_EquipmentsReturnsACopy(t *testing.T) {
	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return(testEquipments(), nil)

	cache := snapshot.New(equipmentDatabase, time.Hour)
	assert.NoError(t, cache.Start(context.Background()))
	defer cache.Stop()

	first := cache.Equipments()
	first[0].Details.Barcode = "mutated"

	second := cache.Equipments()
	assert.Equal(t, "12345", second[0].Details.Barcode)
}

func TestCache_OnUpdateFiresOnRefresh(t *testing.T) {
	equipmentDatabase := &mocks.EquipmentDatabase{}
	equipmentDatabase.On("Find", mock.Anything, mock.Anything).Return(testEquipments(), nil)

	cache := snapshot.New(equipmentDatabase, time.Hour)

	got := make(chan int, 1)
	cache.OnUpdate(func(equipments []models.Equipment) {
		select {
		case got <- len(equipments):
		default:
		}
	})

	assert.NoError(t, cache.Start(context.Background()))
	defer cache.Stop()

	select {
	case n := <-got:
		assert.Equal(t, 2, n)
	case <-time.After(time.Second):
		t.Fatal("listener was not notified on the initial refresh")
	}
}
