package reports

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/inventario-app/inventario-api/models"
)

func equipmentChecked(name, sectorName, typ string, checkedAt time.Time) models.Equipment {
	ts := primitive.NewDateTimeFromTime(checkedAt)
	return models.Equipment{
		ID: primitive.NewObjectID(),
		Details: models.EquipmentDetails{
			Type:                 typ,
			Name:                 name,
			SectorName:           sectorName,
			LastCheckedTimestamp: &ts,
		},
	}
}

func equipmentUnchecked(name, sectorName, typ string) models.Equipment {
	return models.Equipment{
		ID: primitive.NewObjectID(),
		Details: models.EquipmentDetails{
			Type:       typ,
			Name:       name,
			SectorName: sectorName,
		},
	}
}

func TestSummarize(t *testing.T) {
	now := time.Date(2026, 3, 10, 15, 0, 0, 0, time.UTC)
	equipments := []models.Equipment{
		equipmentUnchecked("Equipment A", "", ""),
		equipmentChecked("Equipment B", "", "", now.Add(-2*time.Hour)),
	}

	summary := Summarize(equipments, now, time.UTC)

	assert.Equal(t, 2, summary.Total)
	assert.Equal(t, 1, summary.CheckedToday)
	assert.Equal(t, 1, summary.TotalChecked)
	assert.Equal(t, 1, summary.TotalUnchecked)
}

func TestSummarizeTotalsInvariant(t *testing.T) {
	now := time.Now()
	equipments := []models.Equipment{
		equipmentUnchecked("A1", "", ""),
		equipmentUnchecked("A2", "", ""),
		equipmentChecked("B1", "", "", now),
		equipmentChecked("B2", "", "", now.AddDate(0, 0, -3)),
	}

	summary := Summarize(equipments, now, time.Local)
	assert.Equal(t, summary.Total, summary.TotalChecked+summary.TotalUnchecked)
}

func TestIsCheckedTodayDayBoundary(t *testing.T) {
	now := time.Date(2026, 3, 10, 0, 30, 0, 0, time.UTC)

	// 2 hours ago is still yesterday, even though it is inside a rolling 24h window
	yesterday := equipmentChecked("A", "", "", now.Add(-2*time.Hour))
	assert.False(t, IsCheckedToday(yesterday, now, time.UTC))

	today := equipmentChecked("B", "", "", now.Add(-10*time.Minute))
	assert.True(t, IsCheckedToday(today, now, time.UTC))

	never := equipmentUnchecked("C", "", "")
	assert.False(t, IsCheckedToday(never, now, time.UTC))
}

func TestBySectorOrderingAndFallback(t *testing.T) {
	now := time.Now()
	equipments := []models.Equipment{
		equipmentChecked("A", "TI", "", now),
		equipmentUnchecked("B", "TI", ""),
		equipmentUnchecked("C", "TI", ""),
		equipmentChecked("D", "Almoxarifado", "", now),
		equipmentUnchecked("E", "", ""),
	}

	breakdown := BySector(equipments)

	if assert.Len(t, breakdown, 3) {
		assert.Equal(t, "TI", breakdown[0].SectorName)
		assert.Equal(t, 1, breakdown[0].Checked)
		assert.Equal(t, 2, breakdown[0].Unchecked)

		// equal totals keep first-seen order
		assert.Equal(t, "Almoxarifado", breakdown[1].SectorName)
		assert.Equal(t, UnassignedSector, breakdown[2].SectorName)
	}
}

func TestGroupByTypeAlphabetical(t *testing.T) {
	equipments := []models.Equipment{
		equipmentUnchecked("A", "", "Notebook"),
		equipmentUnchecked("B", "", "Monitor"),
		equipmentUnchecked("C", "", "Notebook"),
		equipmentUnchecked("D", "", ""),
	}

	counts := GroupByType(equipments)

	assert.Equal(t, []models.TypeCount{
		{Type: "Monitor", Count: 1},
		{Type: "Notebook", Count: 2},
		{Type: UnspecifiedType, Count: 1},
	}, counts)
}

func TestUnchecked(t *testing.T) {
	now := time.Now()
	equipments := []models.Equipment{
		equipmentChecked("A", "", "", now),
		equipmentUnchecked("B", "", ""),
		equipmentUnchecked("C", "", ""),
	}

	unchecked := Unchecked(equipments)
	if assert.Len(t, unchecked, 2) {
		assert.Equal(t, "B", unchecked[0].Details.Name)
		assert.Equal(t, "C", unchecked[1].Details.Name)
	}
}
