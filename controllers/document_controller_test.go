package controllers_test

import (
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podgen/podcast-generator-backend/models"
)

const sampleText = "The quick brown fox jumps over the lazy dog near the riverbank every single morning."

func TestUploadDocumentTXT(t *testing.T) {
	env := newTestEnv(t)

	w := env.upload(t, "/api/documents/upload", "file", "notes.txt", []byte(sampleText), nil, env.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	payload := decodeJSON(t, w)
	doc := payload["document"].(map[string]interface{})
	assert.Equal(t, "notes", doc["title"])
	assert.Equal(t, "txt", doc["file_type"])
	assert.Equal(t, models.StatusCompleted, doc["processing_status"])
	assert.EqualValues(t, 15, doc["word_count"])
	assert.Equal(t, sampleText, doc["extracted_text"])

	// The original bytes went to the blob store.
	var fileCount int64
	require.NoError(t, env.db.Model(&models.StoredFile{}).Count(&fileCount).Error)
	assert.EqualValues(t, 1, fileCount)
}

func TestUploadDocumentRejectsEmpty(t *testing.T) {
	env := newTestEnv(t)

	w := env.upload(t, "/api/documents/upload", "file", "empty.txt", []byte("   \n\t  "), nil, env.token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeJSON(t, w)
	assert.Contains(t, payload["message"], "no extractable text")

	var count int64
	require.NoError(t, env.db.Model(&models.Document{}).Count(&count).Error)
	assert.Zero(t, count, "nothing persisted on rejection")
}

func TestUploadDocumentRejectsTooShort(t *testing.T) {
	env := newTestEnv(t)

	w := env.upload(t, "/api/documents/upload", "file", "short.txt", []byte("only five words right here"), nil, env.token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeJSON(t, w)
	assert.Contains(t, payload["message"], "too short")

	var count int64
	require.NoError(t, env.db.Model(&models.StoredFile{}).Count(&count).Error)
	assert.Zero(t, count, "no blob stored on rejection")
}

func TestUploadDocumentRejectsUnsupportedType(t *testing.T) {
	env := newTestEnv(t)

	w := env.upload(t, "/api/documents/upload", "file", "program.exe", []byte(sampleText), nil, env.token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	payload := decodeJSON(t, w)
	assert.Contains(t, payload["message"], "Unsupported file type")
}

func TestGetDocumentOwnership(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, sampleText)

	w := env.request(t, http.MethodGet, "/api/documents/"+doc.ID.String(), nil, env.token)
	assert.Equal(t, http.StatusOK, w.Code)

	_, otherToken := env.otherUser(t)
	w = env.request(t, http.MethodGet, "/api/documents/"+doc.ID.String(), nil, otherToken)
	assert.Equal(t, http.StatusNotFound, w.Code, "someone else's document reads as not found")
}

func TestDeleteDocumentCascades(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, sampleText)

	summary := models.Summary{UserID: env.user.ID, DocumentID: doc.ID, SummaryText: "short", Status: models.StatusCompleted}
	require.NoError(t, env.db.Create(&summary).Error)
	podcast := models.Podcast{
		UserID: env.user.ID, DocumentID: doc.ID, SummaryID: &summary.ID,
		Title: "ep", VoiceProvider: models.ProviderMock,
		SourceType: models.SourceSummary, Status: models.StatusCompleted,
	}
	require.NoError(t, env.db.Create(&podcast).Error)

	w := env.request(t, http.MethodDelete, "/api/documents/"+doc.ID.String(), nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)

	var docs, summaries, podcasts int64
	env.db.Model(&models.Document{}).Count(&docs)
	env.db.Model(&models.Summary{}).Count(&summaries)
	env.db.Model(&models.Podcast{}).Count(&podcasts)
	assert.Zero(t, docs)
	assert.Zero(t, summaries)
	assert.Zero(t, podcasts)
}

func TestGetDocumentFileStreams(t *testing.T) {
	env := newTestEnv(t)

	w := env.upload(t, "/api/documents/upload", "file", "stream.txt", []byte(sampleText), nil, env.token)
	require.Equal(t, http.StatusCreated, w.Code)
	payload := decodeJSON(t, w)
	doc := payload["document"].(map[string]interface{})
	fileKey := doc["file_path"].(string)

	w = env.request(t, http.MethodGet, "/api/documents/file/"+fileKey, nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, sampleText, w.Body.String())
	assert.True(t, strings.Contains(w.Header().Get("Content-Disposition"), "stream.txt"))
}

func TestGetDocumentFileOwnership(t *testing.T) {
	env := newTestEnv(t)

	w := env.upload(t, "/api/documents/upload", "file", "mine.txt", []byte(sampleText), nil, env.token)
	require.Equal(t, http.StatusCreated, w.Code)
	fileKey := decodeJSON(t, w)["document"].(map[string]interface{})["file_path"].(string)

	_, otherToken := env.otherUser(t)
	w = env.request(t, http.MethodGet, "/api/documents/file/"+fileKey, nil, otherToken)
	assert.Equal(t, http.StatusNotFound, w.Code)
}
