package controllers_test

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podgen/podcast-generator-backend/models"
)

func longText() string {
	var b strings.Builder
	for i := 0; i < 12; i++ {
		fmt.Fprintf(&b, "Paragraph %d explains storage engines and compaction strategies in detail. ", i)
	}
	return strings.TrimSpace(b.String())
}

func TestCreateSummary(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, longText())

	w := env.request(t, http.MethodPost, "/api/summaries", map[string]string{
		"documentId": doc.ID.String(),
	}, env.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	payload := decodeJSON(t, w)
	summary := payload["summary"].(map[string]interface{})
	assert.Equal(t, models.StatusCompleted, summary["processing_status"])
	assert.NotEmpty(t, summary["summary_text"])

	words := summary["word_count"].(float64)
	assert.Greater(t, words, 0.0)
	assert.Less(t, words, float64(doc.WordCount), "summary is shorter than the document")

	ratio := summary["compression_ratio"].(float64)
	assert.Greater(t, ratio, 0.0)
	assert.LessOrEqual(t, ratio, 1.0)

	assert.GreaterOrEqual(t, summary["reading_time"].(float64), 1.0)
}

func TestCreateSummaryDuplicateRejected(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, longText())

	body := map[string]string{"documentId": doc.ID.String()}
	w := env.request(t, http.MethodPost, "/api/summaries", body, env.token)
	require.Equal(t, http.StatusCreated, w.Code)

	w = env.request(t, http.MethodPost, "/api/summaries", body, env.token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeJSON(t, w)["message"], "already exists")

	var count int64
	env.db.Model(&models.Summary{}).Count(&count)
	assert.EqualValues(t, 1, count)
}

func TestCreateSummaryDocumentNotFound(t *testing.T) {
	env := newTestEnv(t)

	w := env.request(t, http.MethodPost, "/api/summaries", map[string]string{
		"documentId": "1b671a64-40d5-491e-99b0-da01ff1f3341",
	}, env.token)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestBulkGenerateSummaries(t *testing.T) {
	env := newTestEnv(t)
	doc1 := env.createDocument(t, env.user, longText())
	doc2 := env.createDocument(t, env.user, longText())

	w := env.request(t, http.MethodPost, "/api/summaries/bulk-generate", map[string]interface{}{
		"documentIds": []string{doc1.ID.String(), doc2.ID.String(), "1b671a64-40d5-491e-99b0-da01ff1f3341"},
	}, env.token)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	results := decodeJSON(t, w)["results"].([]interface{})
	require.Len(t, results, 3)

	first := results[0].(map[string]interface{})
	second := results[1].(map[string]interface{})
	third := results[2].(map[string]interface{})
	assert.Equal(t, true, first["success"])
	assert.Equal(t, true, second["success"])
	assert.Equal(t, false, third["success"])
	assert.Contains(t, third["message"], "not found")

	var count int64
	env.db.Model(&models.Summary{}).Where("status = ?", models.StatusCompleted).Count(&count)
	assert.EqualValues(t, 2, count)
}

func TestDeleteSummaryCascadesPodcastsOnly(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, longText())

	summary := models.Summary{UserID: env.user.ID, DocumentID: doc.ID, SummaryText: "s", Status: models.StatusCompleted}
	require.NoError(t, env.db.Create(&summary).Error)

	fromSummary := models.Podcast{
		UserID: env.user.ID, DocumentID: doc.ID, SummaryID: &summary.ID,
		Title: "from summary", VoiceProvider: models.ProviderMock,
		SourceType: models.SourceSummary, Status: models.StatusCompleted,
	}
	require.NoError(t, env.db.Create(&fromSummary).Error)
	fromDocument := models.Podcast{
		UserID: env.user.ID, DocumentID: doc.ID,
		Title: "from document", VoiceProvider: models.ProviderMock,
		SourceType: models.SourceFullDocument, Status: models.StatusCompleted,
	}
	require.NoError(t, env.db.Create(&fromDocument).Error)

	w := env.request(t, http.MethodDelete, "/api/summaries/"+summary.ID.String(), nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)

	var docs, summaries, podcasts int64
	env.db.Model(&models.Document{}).Count(&docs)
	env.db.Model(&models.Summary{}).Count(&summaries)
	env.db.Model(&models.Podcast{}).Count(&podcasts)
	assert.EqualValues(t, 1, docs, "the document stays")
	assert.Zero(t, summaries)
	assert.EqualValues(t, 1, podcasts, "only podcasts from the summary go")
}
