package services_test

import (
	"testing"
	"time"

	"mietlink_backend/internal/config"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestVisitSlotService_SeatsNeverBelowZero(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	property := env.newProperty(t, owner.ID)

	slot, err := env.slot.Create(env.db, owner.ID, &dto.CreateVisitSlotRequest{
		PropertyID:  property.ID,
		StartsAt:    time.Now().Add(48 * time.Hour),
		DurationMin: 15,
		Capacity:    2,
	})
	require.NoError(t, err)
	assert.Equal(t, 2, slot.SeatsLeft)

	anna := env.tenant(t, "Anna")
	ben := env.tenant(t, "Ben")
	cleo := env.tenant(t, "Cleo")

	booked, err := env.slot.Book(env.db, slot.ID, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, booked.SeatsLeft)

	_, err = env.slot.Book(env.db, slot.ID, anna.ID)
	assert.ErrorIs(t, err, apperrors.ErrDuplicateBooking)

	booked, err = env.slot.Book(env.db, slot.ID, ben.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, booked.SeatsLeft)

	_, err = env.slot.Book(env.db, slot.ID, cleo.ID)
	assert.ErrorIs(t, err, apperrors.ErrSlotFull)

	var stored models.VisitSlot
	require.NoError(t, env.db.First(&stored, "id = ?", slot.ID).Error)
	assert.Equal(t, 0, stored.SeatsLeft)

	var bookings int64
	env.db.Model(&models.VisitBooking{}).Where("slot_id = ?", slot.ID).Count(&bookings)
	assert.Equal(t, int64(2), bookings)
}

func TestVisitSlotService_UnknownSlotAndOwnership(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	property := env.newProperty(t, owner.ID)
	anna := env.tenant(t, "Anna")

	_, err := env.slot.Book(env.db, "missing", anna.ID)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))

	_, err = env.slot.Create(env.db, anna.ID, &dto.CreateVisitSlotRequest{
		PropertyID:  property.ID,
		StartsAt:    time.Now().Add(time.Hour),
		DurationMin: 15,
		Capacity:    5,
	})
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	slots, err := env.slot.ListByProperty(env.db, property.ID)
	require.NoError(t, err)
	assert.Empty(t, slots)
}
