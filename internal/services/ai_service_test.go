package services_test

import (
	"context"
	"testing"

	"mietlink_backend/internal/config"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAIService_CoverLetterStoredOnApplication(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	property := env.newProperty(t, owner.ID)
	anna := env.tenant(t, "Anna Muster")
	c := env.apply(t, anna.ID, property.ID)

	resp, err := env.aiSvc.CoverLetter(context.Background(), env.db, anna.ID, &dto.CoverLetterRequest{PropertyID: property.ID})
	require.NoError(t, err)
	assert.Equal(t, c.ID, resp.CandidateID)
	assert.Contains(t, resp.Text, "Anna Muster")
	assert.Contains(t, resp.Text, property.Address)

	var stored models.Candidate
	require.NoError(t, env.db.First(&stored, "id = ?", c.ID).Error)
	require.NotNil(t, stored.CoverLetter)
	assert.Equal(t, resp.Text, *stored.CoverLetter)

	// без заявки текст только возвращается
	ben := env.tenant(t, "Ben")
	resp, err = env.aiSvc.CoverLetter(context.Background(), env.db, ben.ID, &dto.CoverLetterRequest{PropertyID: property.ID, Language: "fr"})
	require.NoError(t, err)
	assert.Empty(t, resp.CandidateID)
	assert.Contains(t, resp.Text, "Madame")
}

func TestAIService_ExplainScoreAccess(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	property := env.newProperty(t, owner.ID)
	anna := env.tenant(t, "Anna")
	env.upload(t, anna.ID, property.ID, models.DocumentTypeIdentity)
	env.upload(t, anna.ID, property.ID, models.DocumentTypeIncomeProof)
	c := env.apply(t, anna.ID, property.ID)

	resp, err := env.aiSvc.ExplainScore(context.Background(), env.db, anna.ID, &dto.ExplainScoreRequest{CandidateID: c.ID})
	require.NoError(t, err)
	assert.Contains(t, resp.Reason, "2 of 3")

	_, err = env.aiSvc.ExplainScore(context.Background(), env.db, owner.ID, &dto.ExplainScoreRequest{CandidateID: c.ID})
	require.NoError(t, err)

	ben := env.tenant(t, "Ben")
	_, err = env.aiSvc.ExplainScore(context.Background(), env.db, ben.ID, &dto.ExplainScoreRequest{CandidateID: c.ID})
	assert.ErrorIs(t, err, apperrors.ErrNotOwner)
}

func TestAIService_RegieEmailSendsTopCandidates(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	property := env.newProperty(t, owner.ID)
	for _, name := range []string{"Anna", "Ben", "Cleo", "Dario"} {
		u := env.tenant(t, name)
		env.apply(t, u.ID, property.ID)
	}

	resp, err := env.aiSvc.RegieEmail(context.Background(), env.db, owner.ID, &dto.RegieEmailRequest{
		PropertyID: property.ID,
		SendTo:     "verwaltung@regie.ch",
	})
	require.NoError(t, err)
	assert.True(t, resp.Sent)
	assert.Contains(t, resp.Body, "| 3 |")
	assert.NotContains(t, resp.Body, "| 4 |")

	require.Len(t, env.mailer.Sent, 1)
	assert.Equal(t, []string{"verwaltung@regie.ch"}, env.mailer.Sent[0].To)
	assert.Equal(t, owner.Email, env.mailer.Sent[0].ReplyTo)
}

func TestAIService_ParseContractFile(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	ctx := context.Background()

	terms, err := env.aiSvc.ParseContractFile(ctx, &dto.UploadedFile{Filename: "vertrag.txt", MimeType: "text/plain", Data: []byte("Mietvertrag")})
	require.NoError(t, err)
	assert.Equal(t, 3, terms.NoticeMonths)

	_, err = env.aiSvc.ParseContractFile(ctx, &dto.UploadedFile{Filename: "vertrag.pdf", MimeType: "application/pdf", Data: pdfBytes})
	assert.ErrorIs(t, err, apperrors.ErrInvalidFileType)

	_, err = env.aiSvc.ParseContract(ctx, "   ")
	assert.True(t, apperrors.HasCode(err, apperrors.CodeValidationFailed))
}
