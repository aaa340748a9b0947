package services_test

import (
	"context"
	"strings"
	"testing"
	"time"

	"mietlink_backend/internal/algorithms"
	"mietlink_backend/internal/config"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskService_GeneratePartialBatch(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	property := env.newProperty(t, owner.ID)

	env.ai.specs = []algorithms.TaskSpec{
		{Title: "Endreinigung buchen", DaysBeforeExit: 14},
		{Title: "Wände streichen", DaysBeforeExit: 30},
		{Title: "", DaysBeforeExit: 7},
		{Title: "Übergabe vereinbaren", DaysBeforeExit: 3},
		{Title: "Schlüssel abgeben", DaysBeforeExit: 0},
	}

	resp, err := env.task.Generate(context.Background(), env.db, owner.ID, &dto.GenerateTasksRequest{
		PropertyID:   property.ID,
		Obligations:  []string{"contract text"},
		EarliestExit: "2025-06-30",
	})
	require.NoError(t, err)

	assert.Equal(t, 4, resp.Created)
	assert.Equal(t, 1, resp.Failed)
	require.Len(t, resp.Failures, 1)
	assert.Equal(t, 2, resp.Failures[0].Index)

	require.NotNil(t, resp.Tasks[0].DueDate)
	assert.Equal(t, "2025-06-16", resp.Tasks[0].DueDate.Format("2006-01-02"))

	tasks, err := env.task.ListByProperty(env.db, property.ID)
	require.NoError(t, err)
	assert.Len(t, tasks, 4)
	// ближайший срок первым
	assert.Equal(t, "Wände streichen", tasks[0].Title)
}

func TestTaskService_GenerateIsolatesBadObligations(t *testing.T) {
	tests := []struct {
		name       string
		obligation string
		reason     string
	}{
		{name: "empty", obligation: "", reason: algorithms.ErrEmptyObligation.Error()},
		{name: "whitespace", obligation: "   ", reason: algorithms.ErrEmptyObligation.Error()},
		{name: "too long", obligation: strings.Repeat("x", 300), reason: algorithms.ErrObligationTooLong.Error()},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newEnv(t, config.FailModeOpen)
			owner := env.landlord(t)
			property := env.newProperty(t, owner.ID)

			resp, err := env.task.Generate(context.Background(), env.db, owner.ID, &dto.GenerateTasksRequest{
				PropertyID:   property.ID,
				Obligations:  []string{"Reinigen", "Schlüssel", tt.obligation, "Maler", "Zähler"},
				EarliestExit: "2025-06-30",
			})
			require.NoError(t, err)

			assert.Equal(t, 4, resp.Created)
			assert.Equal(t, 1, resp.Failed)
			require.Len(t, resp.Failures, 1)
			assert.Equal(t, 2, resp.Failures[0].Index)
			assert.Equal(t, tt.reason, resp.Failures[0].Reason)
			assert.Equal(t, "Maler", resp.Tasks[2].Title)
		})
	}
}

func TestTaskService_GenerateAllObligationsInvalid(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	property := env.newProperty(t, owner.ID)
	// extractor is not called when nothing survives the checks
	env.ai.generateErr = errUnavailable

	resp, err := env.task.Generate(context.Background(), env.db, owner.ID, &dto.GenerateTasksRequest{
		PropertyID:  property.ID,
		Obligations: []string{" ", ""},
	})
	require.NoError(t, err)
	assert.Equal(t, 0, resp.Created)
	assert.Equal(t, 2, resp.Failed)
	assert.Equal(t, 0, resp.Failures[0].Index)
	assert.Equal(t, 1, resp.Failures[1].Index)
}

func TestTaskService_GenerateWithoutExitDate(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	property := env.newProperty(t, owner.ID)

	resp, err := env.task.Generate(context.Background(), env.db, owner.ID, &dto.GenerateTasksRequest{
		PropertyID:  property.ID,
		Obligations: []string{"Schlüssel abgeben"},
	})
	require.NoError(t, err)
	require.Len(t, resp.Tasks, 1)
	assert.Nil(t, resp.Tasks[0].DueDate)
	assert.True(t, resp.Tasks[0].Mandatory)
	assert.Equal(t, models.TaskStatusPending, resp.Tasks[0].Status)
}

func TestTaskService_GenerateExtractorDown(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	property := env.newProperty(t, owner.ID)
	env.ai.generateErr = errUnavailable

	_, err := env.task.Generate(context.Background(), env.db, owner.ID, &dto.GenerateTasksRequest{
		PropertyID:  property.ID,
		Obligations: []string{"Schlüssel abgeben"},
	})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeExternalServiceError))
}

func TestTaskService_PropertyCreateSurvivesExtractorFailure(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	env.ai.generateErr = errUnavailable

	res, err := env.property.Create(context.Background(), env.db, owner.ID, &dto.CreatePropertyRequest{
		Address:     "Rue du Rhône 10, 1204 Genève",
		Obligations: []string{"Peindre les murs"},
	})
	require.NoError(t, err)
	require.NotNil(t, res.Tasks)
	assert.NotEmpty(t, res.Tasks.Error)
	assert.NotEmpty(t, res.Slug)
}

func TestTaskService_CreateAndUpdate(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	property := env.newProperty(t, owner.ID)
	optional := false

	task, err := env.task.Create(env.db, owner.ID, &dto.CreateTaskRequest{
		PropertyID: property.ID,
		Title:      "  Keller räumen ",
		DueDate:    "2025-07-01",
		Mandatory:  &optional,
	})
	require.NoError(t, err)
	assert.Equal(t, "Keller räumen", task.Title)
	assert.False(t, task.Mandatory)
	assert.Equal(t, time.Date(2025, 7, 1, 0, 0, 0, 0, time.UTC), task.DueDate.UTC())

	done := "completed"
	updated, err := env.task.Update(env.db, task.ID, owner.ID, &dto.UpdateTaskRequest{Status: &done})
	require.NoError(t, err)
	assert.Equal(t, models.TaskStatusCompleted, updated.Status)
	assert.Equal(t, "Keller räumen", updated.Title)

	stranger := env.landlord(t)
	_, err = env.task.Update(env.db, task.ID, stranger.ID, &dto.UpdateTaskRequest{Status: &done})
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)

	_, err = env.task.Create(env.db, owner.ID, &dto.CreateTaskRequest{PropertyID: property.ID, Title: "x", DueDate: "01.07.2025"})
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}
