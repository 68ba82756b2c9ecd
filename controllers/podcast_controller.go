package controllers

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/gosimple/slug"
	"gorm.io/gorm"

	"github.com/podgen/podcast-generator-backend/models"
	"github.com/podgen/podcast-generator-backend/services"
	"github.com/podgen/podcast-generator-backend/storage"
	"github.com/podgen/podcast-generator-backend/ws"
)

type CreatePodcastInput struct {
	DocumentID    string                `json:"documentId" binding:"required"`
	SummaryID     string                `json:"summaryId"`
	Title         string                `json:"title" binding:"required"`
	Description   string                `json:"description"`
	SourceType    string                `json:"sourceType" binding:"required"`
	VoiceProvider string                `json:"voiceProvider" binding:"required"`
	VoiceSettings *models.VoiceSettings `json:"voiceSettings" binding:"required"`
	CustomVoiceID string                `json:"customVoiceId"`
}

func normalizeVoiceSettings(vs *models.VoiceSettings) {
	if vs.Speed <= 0 {
		vs.Speed = 1.0
	}
	if vs.Pitch == 0 {
		vs.Pitch = 1.0
	}
	if vs.Volume <= 0 {
		vs.Volume = 1.0
	}
}

// CreatePodcast synthesizes audio for a document or one of its summaries.
// The record is created in processing state, synthesis runs inline, and the
// record completes or fails before the response is written.
func CreatePodcast(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreatePodcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if input.VoiceSettings.Voice == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "voiceSettings.voice is required"})
		return
	}
	if input.SourceType != models.SourceFullDocument && input.SourceType != models.SourceSummary {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "sourceType must be full_document or summary"})
		return
	}

	doc, ok := ownedDocument(c, db, uid, input.DocumentID)
	if !ok {
		return
	}

	sourceText := doc.ExtractedText
	var summaryID *uuid.UUID
	if input.SourceType == models.SourceSummary {
		id := input.SummaryID
		var summary models.Summary
		var err error
		if id != "" {
			err = db.First(&summary, "id = ? AND user_id = ?", id, uid).Error
		} else {
			err = db.First(&summary, "document_id = ? AND user_id = ?", doc.ID, uid).Error
		}
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No summary exists for this document"})
			return
		}
		sourceText = summary.SummaryText
		summaryID = &summary.ID
	}

	generatePodcast(c, db, uid, doc, summaryID, sourceText, input)
}

// CreatePodcastFromSummary is the summary-pinned variant of CreatePodcast.
func CreatePodcastFromSummary(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, ok := ownedSummary(c, db, uid, c.Param("id"))
	if !ok {
		return
	}

	var input CreatePodcastInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}
	if input.VoiceSettings == nil || input.VoiceSettings.Voice == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "voiceSettings.voice is required"})
		return
	}

	var doc models.Document
	if err := db.First(&doc, "id = ?", summary.DocumentID).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Document not found"})
		return
	}

	input.SourceType = models.SourceSummary
	if input.Title == "" {
		input.Title = doc.Title + " (summary)"
	}
	generatePodcast(c, db, uid, &doc, &summary.ID, summary.SummaryText, input)
}

func generatePodcast(c *gin.Context, db *gorm.DB, uid uuid.UUID, doc *models.Document, summaryID *uuid.UUID, sourceText string, input CreatePodcastInput) {
	settings := *input.VoiceSettings
	normalizeVoiceSettings(&settings)

	var customVoiceID *uuid.UUID
	if input.CustomVoiceID != "" {
		id, err := uuid.Parse(input.CustomVoiceID)
		if err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid customVoiceId"})
			return
		}
		customVoiceID = &id
	}

	podcast := models.Podcast{
		UserID:        uid,
		DocumentID:    doc.ID,
		SummaryID:     summaryID,
		Title:         input.Title,
		Description:   input.Description,
		VoiceProvider: input.VoiceProvider,
		VoiceSettings: settings,
		CustomVoiceID: customVoiceID,
		SourceType:    input.SourceType,
		Status:        models.StatusProcessing,
	}
	if err := db.Create(&podcast).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not create the podcast record"})
		return
	}
	ws.SendStatusUpdate("podcast", podcast.ID.String(), models.StatusProcessing, 0, "")

	wordCount := services.CountWords(sourceText)

	var updates map[string]interface{}
	if input.VoiceProvider == models.ProviderBrowser {
		// Client-side synthesis: keep the text and a sentinel, store no audio.
		updates = map[string]interface{}{
			"audio_url":    models.BrowserAudioSentinel,
			"audio_text":   sourceText,
			"audio_size":   int64(len(sourceText)),
			"duration":     services.EstimateDuration(wordCount, settings.Speed),
			"storage_type": storage.BackendBrowser,
			"status":       models.StatusCompleted,
		}
	} else {
		result, err := services.GenerateAudio(c.Request.Context(), sourceText, input.VoiceProvider, settings, uid.String())
		if err != nil {
			db.Model(&podcast).Update("status", models.StatusFailed)
			ws.SendStatusUpdate("podcast", podcast.ID.String(), models.StatusFailed, 1, err.Error())
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Audio generation failed: " + err.Error()})
			return
		}
		updates = map[string]interface{}{
			"audio_url":        result.Location.Key,
			"audio_signed_url": result.Location.SignedURL,
			"audio_size":       result.Size,
			"duration":         result.Duration,
			"storage_type":     result.Location.Backend,
			"voice_provider":   result.Provider,
			"status":           models.StatusCompleted,
		}
	}

	if err := db.Model(&podcast).Updates(updates).Error; err != nil {
		db.Model(&podcast).Update("status", models.StatusFailed)
		ws.SendStatusUpdate("podcast", podcast.ID.String(), models.StatusFailed, 1, err.Error())
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not save the podcast"})
		return
	}

	if customVoiceID != nil {
		db.Model(&models.CustomVoice{}).Where("id = ?", *customVoiceID).
			UpdateColumn("times_used", gorm.Expr("times_used + 1"))
	}

	db.First(&podcast, "id = ?", podcast.ID)
	ws.SendStatusUpdate("podcast", podcast.ID.String(), models.StatusCompleted, 1, "")
	ws.BroadcastListChanged("podcast")

	c.JSON(http.StatusCreated, gin.H{"success": true, "podcast": podcast})
}

func GetPodcasts(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	query := db.Where("user_id = ?", uid)
	if docID := c.Query("documentId"); docID != "" {
		query = query.Where("document_id = ?", docID)
	}

	var podcasts []models.Podcast
	if err := query.Order("created_at DESC").Find(&podcasts).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not list podcasts"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": podcasts})
}

func ownedPodcast(c *gin.Context, db *gorm.DB, uid uuid.UUID, id string) (*models.Podcast, bool) {
	var podcast models.Podcast
	if err := db.First(&podcast, "id = ? AND user_id = ?", id, uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Podcast not found"})
		return nil, false
	}
	return &podcast, true
}

func GetPodcastDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	podcast, ok := ownedPodcast(c, db, uid, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "podcast": podcast})
}

// DownloadPodcast serves the audio file. Remote backends redirect to their
// URL; database and disk backends stream the bytes. Browser podcasts have no
// server-side audio to download.
func DownloadPodcast(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	podcast, ok := ownedPodcast(c, db, uid, c.Param("id"))
	if !ok {
		return
	}

	if podcast.VoiceProvider == models.ProviderBrowser || podcast.StorageType == storage.BackendBrowser {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "This podcast uses browser synthesis and has no audio file",
		})
		return
	}
	if podcast.Status != models.StatusCompleted {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "The podcast is not ready yet"})
		return
	}

	switch podcast.StorageType {
	case storage.BackendGCS, storage.BackendSupabase:
		url := podcast.AudioSignedURL
		if url == "" {
			url = podcast.AudioURL
		}
		c.Redirect(http.StatusFound, url)
	default:
		loc := storage.Location{Backend: podcast.StorageType, Key: podcast.AudioURL}
		data, err := storage.Download(c.Request.Context(), loc)
		if err != nil {
			if errors.Is(err, storage.ErrNotFound) {
				c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Audio file not found"})
				return
			}
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not read the audio file"})
			return
		}
		filename := slug.Make(podcast.Title) + ".mp3"
		c.Header("Content-Disposition", `attachment; filename="`+filename+`"`)
		c.Data(http.StatusOK, "audio/mpeg", data)
	}
}

func DeletePodcast(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	podcast, ok := ownedPodcast(c, db, uid, c.Param("id"))
	if !ok {
		return
	}

	if err := db.Delete(&models.Podcast{}, "id = ?", podcast.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not delete the podcast"})
		return
	}

	if podcast.AudioURL != "" && podcast.AudioURL != models.BrowserAudioSentinel {
		loc := storage.Location{Backend: podcast.StorageType, Key: podcast.AudioURL}
		_ = storage.Delete(c.Request.Context(), loc)
	}

	ws.BroadcastListChanged("podcast")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Podcast deleted"})
}
