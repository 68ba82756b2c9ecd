package controllers_test

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/podgen/podcast-generator-backend/models"
	"github.com/podgen/podcast-generator-backend/storage"
)

func podcastBody(docID, sourceType, provider string) map[string]interface{} {
	return map[string]interface{}{
		"documentId":    docID,
		"title":         "Test Episode",
		"sourceType":    sourceType,
		"voiceProvider": provider,
		"voiceSettings": map[string]interface{}{"voice": "default"},
	}
}

func TestCreatePodcastBrowser(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, sampleText)

	w := env.request(t, http.MethodPost, "/api/podcasts",
		podcastBody(doc.ID.String(), models.SourceFullDocument, models.ProviderBrowser), env.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	podcast := decodeJSON(t, w)["podcast"].(map[string]interface{})
	assert.Equal(t, models.BrowserAudioSentinel, podcast["audio_url"])
	assert.Equal(t, sampleText, podcast["audio_text"])
	assert.Equal(t, storage.BackendBrowser, podcast["storage_type"])
	assert.Equal(t, models.StatusCompleted, podcast["processing_status"])
	assert.EqualValues(t, len(sampleText), podcast["audio_size"])
	// 15 words at 2.5 words/sec → 6 seconds.
	assert.EqualValues(t, 6, podcast["duration"])

	var blobs int64
	env.db.Model(&models.StoredFile{}).Count(&blobs)
	assert.Zero(t, blobs, "browser synthesis stores no audio")
}

func TestCreatePodcastMockStoresAudio(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, sampleText)

	w := env.request(t, http.MethodPost, "/api/podcasts",
		podcastBody(doc.ID.String(), models.SourceFullDocument, models.ProviderMock), env.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	podcast := decodeJSON(t, w)["podcast"].(map[string]interface{})
	assert.Equal(t, models.StatusCompleted, podcast["processing_status"])
	assert.Equal(t, models.ProviderMock, podcast["voice_provider"])
	assert.Equal(t, storage.BackendGridFS, podcast["storage_type"])
	// Placeholder audio is floored at 20 seconds.
	assert.GreaterOrEqual(t, podcast["duration"].(float64), 20.0)
	assert.Greater(t, podcast["audio_size"].(float64), 0.0)

	var blobs int64
	env.db.Model(&models.StoredFile{}).Count(&blobs)
	assert.EqualValues(t, 1, blobs)
}

func TestCreatePodcastRequiresVoice(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, sampleText)

	body := podcastBody(doc.ID.String(), models.SourceFullDocument, models.ProviderMock)
	body["voiceSettings"] = map[string]interface{}{"speed": 1.0}
	w := env.request(t, http.MethodPost, "/api/podcasts", body, env.token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeJSON(t, w)["message"], "voice")
}

func TestCreatePodcastSummarySourceNeedsSummary(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, sampleText)

	w := env.request(t, http.MethodPost, "/api/podcasts",
		podcastBody(doc.ID.String(), models.SourceSummary, models.ProviderBrowser), env.token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeJSON(t, w)["message"], "summary")
}

func TestCreatePodcastInvalidSourceType(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, sampleText)

	w := env.request(t, http.MethodPost, "/api/podcasts",
		podcastBody(doc.ID.String(), "partial", models.ProviderBrowser), env.token)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestCreatePodcastFromSummary(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, sampleText)
	summary := models.Summary{
		UserID: env.user.ID, DocumentID: doc.ID,
		SummaryText: "A condensed version with enough words to matter.",
		WordCount:   8, Status: models.StatusCompleted,
	}
	require.NoError(t, env.db.Create(&summary).Error)

	w := env.request(t, http.MethodPost, "/api/podcasts/from-summary/"+summary.ID.String(),
		map[string]interface{}{
			"documentId":    doc.ID.String(),
			"title":         "Summary Episode",
			"sourceType":    models.SourceSummary,
			"voiceProvider": models.ProviderBrowser,
			"voiceSettings": map[string]interface{}{"voice": "default"},
		}, env.token)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())

	podcast := decodeJSON(t, w)["podcast"].(map[string]interface{})
	assert.Equal(t, models.SourceSummary, podcast["source_type"])
	assert.Equal(t, summary.ID.String(), podcast["summary_id"])
	assert.Equal(t, summary.SummaryText, podcast["audio_text"])
}

func TestDownloadPodcast(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, sampleText)

	w := env.request(t, http.MethodPost, "/api/podcasts",
		podcastBody(doc.ID.String(), models.SourceFullDocument, models.ProviderMock), env.token)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["podcast"].(map[string]interface{})["id"].(string)

	w = env.request(t, http.MethodGet, "/api/podcasts/"+id+"/download", nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "audio/mpeg", w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), "test-episode.mp3")
	assert.Equal(t, "ID3", w.Body.String()[:3])
}

func TestDownloadBrowserPodcastRejected(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, sampleText)

	w := env.request(t, http.MethodPost, "/api/podcasts",
		podcastBody(doc.ID.String(), models.SourceFullDocument, models.ProviderBrowser), env.token)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["podcast"].(map[string]interface{})["id"].(string)

	w = env.request(t, http.MethodGet, "/api/podcasts/"+id+"/download", nil, env.token)
	require.Equal(t, http.StatusBadRequest, w.Code)
	assert.Contains(t, decodeJSON(t, w)["message"], "browser")
}

func TestDeletePodcastRemovesAudio(t *testing.T) {
	env := newTestEnv(t)
	doc := env.createDocument(t, env.user, sampleText)

	w := env.request(t, http.MethodPost, "/api/podcasts",
		podcastBody(doc.ID.String(), models.SourceFullDocument, models.ProviderMock), env.token)
	require.Equal(t, http.StatusCreated, w.Code)
	id := decodeJSON(t, w)["podcast"].(map[string]interface{})["id"].(string)

	w = env.request(t, http.MethodDelete, "/api/podcasts/"+id, nil, env.token)
	require.Equal(t, http.StatusOK, w.Code)

	var podcasts, blobs int64
	env.db.Model(&models.Podcast{}).Count(&podcasts)
	env.db.Model(&models.StoredFile{}).Count(&blobs)
	assert.Zero(t, podcasts)
	assert.Zero(t, blobs)
}
