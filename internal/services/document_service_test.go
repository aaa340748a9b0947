package services_test

import (
	"context"
	"testing"

	"mietlink_backend/internal/ai"
	"mietlink_backend/internal/config"
	"mietlink_backend/internal/models"
	"mietlink_backend/internal/services"
	"mietlink_backend/internal/services/dto"
	"mietlink_backend/pkg/apperrors"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func uploadImage(env *testEnv, userID string) (*models.Document, error) {
	return env.document.Upload(context.Background(), env.db, userID,
		&dto.UploadDocumentRequest{Type: "id"},
		&dto.UploadedFile{Filename: "passport.png", MimeType: "image/png", Data: pngBytes})
}

func TestDocumentService_PDFSkipsClassifier(t *testing.T) {
	env := newEnv(t, config.FailModeClosed)
	anna := env.tenant(t, "Anna")

	doc := env.upload(t, anna.ID, "", models.DocumentTypeLease)

	assert.Equal(t, 0, env.ai.calls)
	assert.True(t, doc.IsValid)
	assert.Equal(t, ai.StaticConfidence, doc.Confidence)
	assert.Equal(t, "application/pdf", doc.MimeType)
	assert.NotEmpty(t, doc.URL)

	exists, err := env.storage.Exists(context.Background(), doc.StorageKey)
	require.NoError(t, err)
	assert.True(t, exists)
}

func TestDocumentService_ImageUsesClassifierAndClampsConfidence(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	anna := env.tenant(t, "Anna")
	env.ai.verdict = &ai.Verdict{Valid: true, Confidence: 1.7, Reason: "Passport detected"}

	doc, err := uploadImage(env, anna.ID)
	require.NoError(t, err)

	assert.Equal(t, 1, env.ai.calls)
	assert.Equal(t, models.DocumentTypeIdentity, doc.Type, "alias id maps to identity")
	assert.Equal(t, 1.0, doc.Confidence)
	assert.Equal(t, "Passport detected", doc.ValidationReason)

	env.ai.verdict = &ai.Verdict{Valid: false, Confidence: -0.3, Reason: "Blurry"}
	doc, err = uploadImage(env, anna.ID)
	require.NoError(t, err)
	assert.Equal(t, 0.0, doc.Confidence)
	assert.False(t, doc.IsValid)
}

func TestDocumentService_FailOpenStoresInvalid(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	anna := env.tenant(t, "Anna")
	env.ai.validateErr = errUnavailable

	doc, err := uploadImage(env, anna.ID)
	require.NoError(t, err)

	assert.False(t, doc.IsValid)
	assert.Equal(t, 0.0, doc.Confidence)
	assert.Equal(t, services.ReasonValidationUnavailable, doc.ValidationReason)
}

func TestDocumentService_FailClosedStoresNothing(t *testing.T) {
	env := newEnv(t, config.FailModeClosed)
	anna := env.tenant(t, "Anna")
	env.ai.validateErr = errUnavailable

	_, err := uploadImage(env, anna.ID)
	require.Error(t, err)
	assert.True(t, apperrors.HasCode(err, apperrors.CodeExternalServiceError))

	var count int64
	env.db.Model(&models.Document{}).Count(&count)
	assert.Zero(t, count)
}

func TestDocumentService_RejectsBadInput(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	anna := env.tenant(t, "Anna")
	ctx := context.Background()

	tests := []struct {
		name string
		req  *dto.UploadDocumentRequest
		file *dto.UploadedFile
		code apperrors.ErrorCode
	}{
		{
			name: "unknown type",
			req:  &dto.UploadDocumentRequest{Type: "salary_slip"},
			file: &dto.UploadedFile{Filename: "a.pdf", MimeType: "application/pdf", Data: pdfBytes},
			code: apperrors.CodeValidationFailed,
		},
		{
			name: "empty file",
			req:  &dto.UploadDocumentRequest{Type: "identity"},
			file: &dto.UploadedFile{Filename: "a.pdf", MimeType: "application/pdf"},
			code: apperrors.CodeValidationFailed,
		},
		{
			name: "too large",
			req:  &dto.UploadDocumentRequest{Type: "identity"},
			file: &dto.UploadedFile{Filename: "a.pdf", MimeType: "application/pdf", Data: make([]byte, 1<<20+1)},
			code: apperrors.CodeLimitExceeded,
		},
		{
			name: "mime not allowed",
			req:  &dto.UploadDocumentRequest{Type: "identity"},
			file: &dto.UploadedFile{Filename: "a.txt", MimeType: "text/plain", Data: []byte("hello")},
			code: apperrors.CodeValidationFailed,
		},
		{
			name: "unknown property",
			req:  &dto.UploadDocumentRequest{Type: "identity", PropertyID: "missing"},
			file: &dto.UploadedFile{Filename: "a.pdf", MimeType: "application/pdf", Data: pdfBytes},
			code: apperrors.CodeNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := env.document.Upload(ctx, env.db, anna.ID, tt.req, tt.file)
			require.Error(t, err)
			assert.True(t, apperrors.HasCode(err, tt.code), "got %v", err)
		})
	}
}

func TestDocumentService_ReuploadKeepsHistory(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	anna := env.tenant(t, "Anna")

	first := env.upload(t, anna.ID, "", models.DocumentTypeIdentity)
	second := env.upload(t, anna.ID, "", models.DocumentTypeIdentity)
	assert.NotEqual(t, first.ID, second.ID)

	docs, err := env.document.ListMine(env.db, anna.ID)
	require.NoError(t, err)
	assert.Len(t, docs, 2)
}

func TestDocumentService_SharedUploadRescoresEveryApplication(t *testing.T) {
	env := newEnv(t, config.FailModeOpen)
	owner := env.landlord(t)
	first := env.newProperty(t, owner.ID)
	second := env.newProperty(t, owner.ID)
	tenant := env.tenant(t, "Anna")

	env.apply(t, tenant.ID, first.ID)
	env.apply(t, tenant.ID, second.ID)

	env.upload(t, tenant.ID, "", models.DocumentTypeIdentity)
	env.upload(t, tenant.ID, "", models.DocumentTypeDebtExtract)
	env.upload(t, tenant.ID, "", models.DocumentTypeIncomeProof)

	mine, err := env.candidate.ListMine(env.db, tenant.ID)
	require.NoError(t, err)
	require.Len(t, mine, 2)
	for _, c := range mine {
		assert.Equal(t, 85, c.TenantScore, "property %s", c.PropertyID)
		assert.Equal(t, models.ScoreTierGreen, c.ScoreTier)
	}

	// another tenant's applications are untouched
	other := env.tenant(t, "Ben")
	otherCandidate := env.apply(t, other.ID, first.ID)
	env.upload(t, tenant.ID, "", models.DocumentTypeLease)
	list, err := env.candidate.ListMine(env.db, other.ID)
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, otherCandidate.TenantScore, list[0].TenantScore)
	assert.Equal(t, 25, list[0].TenantScore)
}
