package services_test

import (
	"testing"

	"mietlink_backend/internal/config"
	"mietlink_backend/internal/models"
	"mietlink_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEventService_ListByProperty(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	property := env.newProperty(t, owner.ID)
	anna := env.tenant(t, "Anna")
	env.upload(t, anna.ID, property.ID, models.DocumentTypeIdentity)
	env.apply(t, anna.ID, property.ID)

	events, err := env.events.ListByProperty(env.db, property.ID, owner.ID, 0)
	require.NoError(t, err)

	types := make([]string, 0, len(events))
	for _, e := range events {
		types = append(types, e.Type)
	}
	assert.Contains(t, types, models.EventPropertyCreated)
	assert.Contains(t, types, models.EventDocumentUploaded)
	assert.Contains(t, types, models.EventCandidateCreated)

	limited, err := env.events.ListByProperty(env.db, property.ID, owner.ID, 1)
	require.NoError(t, err)
	assert.Len(t, limited, 1)

	_, err = env.events.ListByProperty(env.db, property.ID, anna.ID, 10)
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)
}
