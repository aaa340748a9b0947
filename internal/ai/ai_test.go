package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"image"
	"image/png"
	"io"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeModel отвечает на /v1/chat/completions заранее заданным содержимым
func fakeModel(t *testing.T, content string, seen *map[string]interface{}) *Client {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		if seen != nil {
			body, _ := io.ReadAll(r.Body)
			assert.NoError(t, json.Unmarshal(body, seen))
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"id":      "chatcmpl-test",
			"object":  "chat.completion",
			"created": 1,
			"model":   "gpt-4o",
			"choices": []map[string]interface{}{{
				"index":         0,
				"finish_reason": "stop",
				"message":       map[string]string{"role": "assistant", "content": content},
			}},
		})
	}))
	t.Cleanup(srv.Close)
	return NewClient(Config{APIKey: "test", BaseURL: srv.URL + "/v1"})
}

func pngDoc(t *testing.T) []byte {
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, image.NewRGBA(image.Rect(0, 0, 20, 10))))
	return buf.Bytes()
}

func TestClampConfidence(t *testing.T) {
	assert.Equal(t, 1.0, ClampConfidence(1.4))
	assert.Equal(t, 0.0, ClampConfidence(-0.2))
	assert.Equal(t, 0.5, ClampConfidence(0.5))
	assert.Equal(t, 0.0, ClampConfidence(math.NaN()))
}

func TestClient_ValidateClampsAndSendsImage(t *testing.T) {
	var seen map[string]interface{}
	c := fakeModel(t, `{"valid": true, "confidence": 1.4, "doc_type": "debt_extract", "reason": "Betreibungsauszug ok"}`, &seen)

	v, err := c.Validate(context.Background(), DocumentInput{Bytes: pngDoc(t), MimeType: "image/png", Filename: "auszug.png"})
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, 1.0, v.Confidence)
	assert.Equal(t, "debt_extract", v.DetectedType)

	raw, _ := json.Marshal(seen)
	assert.Contains(t, string(raw), "data:image/jpeg;base64,")
	assert.Contains(t, string(raw), `"json_object"`)
}

func TestClient_ValidateDefaults(t *testing.T) {
	c := fakeModel(t, `{"confidence": -0.2}`, nil)

	v, err := c.Validate(context.Background(), DocumentInput{Bytes: pngDoc(t), MimeType: "image/png"})
	require.NoError(t, err)
	assert.False(t, v.Valid)
	assert.Equal(t, 0.0, v.Confidence)
	assert.Equal(t, "unknown", v.DetectedType)
	assert.Equal(t, "Unable to classify document", v.Reason)
}

func TestClient_ValidateRejectsNonImages(t *testing.T) {
	c := fakeModel(t, `{}`, nil)
	_, err := c.Validate(context.Background(), DocumentInput{Bytes: []byte("%PDF"), MimeType: "application/pdf"})
	assert.ErrorIs(t, err, ErrUnsupportedInput)
}

func TestClient_ParseContractDefaults(t *testing.T) {
	c := fakeModel(t, `{"rent_chf": 2150.5, "obligations": ["Endreinigung", " ", "Schlüssel abgeben"]}`, nil)

	terms, err := c.ParseContract(context.Background(), "Mietvertrag ...")
	require.NoError(t, err)
	assert.Equal(t, "2150.5", terms.RentChf.String())
	assert.Equal(t, 3, terms.NoticeMonths)
	assert.Equal(t, 1, terms.KeyCount)
	assert.Equal(t, []string{"Endreinigung", "Schlüssel abgeben"}, terms.Obligations)
}

func TestClient_GenerateTasksWrappedObject(t *testing.T) {
	c := fakeModel(t, `{"tasks": [{"title": "Book final cleaning", "days_before_exit": 14.0}]}`, nil)

	specs, err := c.GenerateTasks(context.Background(), []string{"final cleaning"})
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, 14, specs[0].DaysBeforeExit)
}

func TestParseTaskReply_BareArray(t *testing.T) {
	specs, err := parseTaskReply([]byte(` [{"title": "Return keys", "days_before_exit": 0}]`))
	require.NoError(t, err)
	require.Len(t, specs, 1)
	assert.Equal(t, "Return keys", specs[0].Title)

	_, err = parseTaskReply([]byte(`{"tasks": "nope"}`))
	assert.Error(t, err)
}

func TestClient_EmptyReply(t *testing.T) {
	c := fakeModel(t, ``, nil)
	_, err := c.ExplainScore(context.Background(), ScoreFacts{Score: 60})
	assert.ErrorIs(t, err, ErrEmptyResponse)
}

func TestClient_RegieEmailFallbackText(t *testing.T) {
	c := fakeModel(t, `{"subject": ""}`, nil)
	subject, body, err := c.RegieEmail(context.Background(), []RegieCandidate{{Name: "A", Score: 85}}, "de")
	require.NoError(t, err)
	assert.Equal(t, "Top 3 Kandidaten für Ihre Wohnung", subject)
	assert.NotEmpty(t, body)
}

func TestStatic(t *testing.T) {
	s := New(Config{})
	ctx := context.Background()

	v, err := s.Validate(ctx, DocumentInput{MimeType: "image/png", TypeHint: "identity"})
	require.NoError(t, err)
	assert.True(t, v.Valid)
	assert.Equal(t, StaticConfidence, v.Confidence)
	assert.Equal(t, StaticReason, v.Reason)

	specs, err := s.GenerateTasks(ctx, []string{"Endreinigung", "Schlüsselübergabe"})
	require.NoError(t, err)
	require.Len(t, specs, 2)
	assert.Equal(t, StaticDaysBeforeExit, specs[1].DaysBeforeExit)

	terms, err := s.ParseContract(ctx, "")
	require.NoError(t, err)
	assert.Equal(t, 3, terms.NoticeMonths)
	assert.Equal(t, 1, terms.KeyCount)

	letter, err := s.CoverLetter(ctx, ApplicantProfile{Name: "Anna"}, PropertySummary{Address: "Bahnhofstrasse 1"}, "fr")
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(letter, "Madame"))
	assert.Contains(t, letter, "Bahnhofstrasse 1")

	_, body, err := s.RegieEmail(ctx, []RegieCandidate{{Name: "Anna", Score: 85, Tier: "green"}}, "de")
	require.NoError(t, err)
	assert.Contains(t, body, "| 1 | Anna | 85 | green |")
}
