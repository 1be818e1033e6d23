package services

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"kefystore-backend/internal/models"
)

func TestFeeForCity(t *testing.T) {
	db := newTestDB(t)
	delivery := NewDeliveryService(db, decimal.NewFromInt(2500))

	_, err := delivery.CreateZone(&models.DeliveryZoneCreation{
		City: "Abidjan",
		Zone: "Zone A",
		Fee:  "1000",
	})
	require.NoError(t, err)

	fee, zone, err := delivery.FeeForCity("Abidjan")
	require.NoError(t, err)
	assert.True(t, fee.Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, zone)
	assert.Equal(t, "Zone A", *zone)

	// City lookup is case-insensitive
	fee, zone, err = delivery.FeeForCity("ABIDJAN")
	require.NoError(t, err)
	assert.True(t, fee.Equal(decimal.NewFromInt(1000)))
	require.NotNil(t, zone)
}

func TestFeeForUnknownCityFallsBack(t *testing.T) {
	db := newTestDB(t)
	delivery := NewDeliveryService(db, decimal.NewFromInt(2500))

	fee, zone, err := delivery.FeeForCity("Korhogo")
	require.NoError(t, err)
	assert.True(t, fee.Equal(decimal.NewFromInt(2500)))
	assert.Nil(t, zone)

	fee, zone, err = delivery.FeeForCity("   ")
	require.NoError(t, err)
	assert.True(t, fee.Equal(decimal.NewFromInt(2500)))
	assert.Nil(t, zone)
}

func TestCreateZoneValidation(t *testing.T) {
	db := newTestDB(t)
	delivery := NewDeliveryService(db, decimal.NewFromInt(2500))

	_, err := delivery.CreateZone(&models.DeliveryZoneCreation{
		City: "Bouaké",
		Zone: "Zone B",
		Fee:  "gratuit",
	})
	assert.ErrorContains(t, err, "invalid delivery fee")

	_, err = delivery.CreateZone(&models.DeliveryZoneCreation{
		City: "Bouaké",
		Zone: "Zone B",
		Fee:  "-500",
	})
	assert.ErrorContains(t, err, "invalid delivery fee")
}

func TestDeactivateZoneHidesIt(t *testing.T) {
	db := newTestDB(t)
	delivery := NewDeliveryService(db, decimal.NewFromInt(2500))

	zone, err := delivery.CreateZone(&models.DeliveryZoneCreation{
		City: "Yamoussoukro",
		Zone: "Zone C",
		Fee:  "2000",
	})
	require.NoError(t, err)

	zones, err := delivery.ListZones()
	require.NoError(t, err)
	assert.Len(t, zones, 1)

	require.NoError(t, delivery.DeactivateZone(zone.ID))

	zones, err = delivery.ListZones()
	require.NoError(t, err)
	assert.Empty(t, zones)

	// A deactivated zone no longer prices deliveries
	fee, zoneName, err := delivery.FeeForCity("Yamoussoukro")
	require.NoError(t, err)
	assert.True(t, fee.Equal(decimal.NewFromInt(2500)))
	assert.Nil(t, zoneName)

	assert.Error(t, delivery.DeactivateZone("missing-zone"))
}
