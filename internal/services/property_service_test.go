package services_test

import (
	"context"
	"testing"

	"mietlink_backend/internal/config"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/pkg/apperrors"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPropertyService_CreateDefaultsAndTasks(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)

	res, err := env.property.Create(context.Background(), env.db, owner.ID, &dto.CreatePropertyRequest{
		Address:      "  Marktgasse 5, 3011 Bern ",
		RentChf:      decimal.RequireFromString("1890.555"),
		EarliestExit: "2025-09-30",
		Obligations:  []string{"Wohnung reinigen", "  ", "Schlüssel abgeben"},
	})
	require.NoError(t, err)

	assert.Equal(t, "Marktgasse 5, 3011 Bern", res.Address)
	assert.Equal(t, 3, res.NoticeMonths)
	assert.Equal(t, 1, res.KeyCount)
	assert.True(t, res.RentChf.Equal(decimal.RequireFromString("1890.56")))
	assert.Len(t, res.Slug, 8)
	require.NotNil(t, res.Tasks)
	assert.Equal(t, 2, res.Tasks.Created)
	assert.Empty(t, res.Tasks.Error)

	found, err := env.property.GetBySlug(env.db, res.Slug)
	require.NoError(t, err)
	assert.Equal(t, res.ID, found.ID)

	mine, err := env.property.ListMine(env.db, owner.ID)
	require.NoError(t, err)
	assert.Len(t, mine, 1)
}

func TestPropertyService_Validation(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)

	_, err := env.property.Create(context.Background(), env.db, owner.ID, &dto.CreatePropertyRequest{
		Address: "Somewhere",
		RentChf: decimal.NewFromInt(-1),
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))

	_, err = env.property.GetBySlug(env.db, "nope1234")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeNotFound))
}

func TestPropertyService_CloseIsIdempotent(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	property := env.newProperty(t, owner.ID)

	closed, err := env.property.Close(env.db, property.ID, owner.ID)
	require.NoError(t, err)
	require.NotNil(t, closed.ClosedAt)
	first := *closed.ClosedAt

	again, err := env.property.Close(env.db, property.ID, owner.ID)
	require.NoError(t, err)
	assert.True(t, first.Equal(again.ClosedAt.UTC()), "closed_at must not move")

	var closeEvents int64
	env.db.Model(&models.Event{}).Where("type = ?", models.EventPropertyClosed).Count(&closeEvents)
	assert.Equal(t, int64(1), closeEvents)

	stranger := env.landlord(t)
	_, err = env.property.Close(env.db, property.ID, stranger.ID)
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)
}
