package controllers

import (
	"io"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/podgen/podcast-generator-backend/models"
	"github.com/podgen/podcast-generator-backend/services"
	"github.com/podgen/podcast-generator-backend/ws"
)

const (
	maxCloneSamples    = 25
	maxCloneSampleSize = 10 * 1024 * 1024
)

// GetCloningVoices lists the provider catalog plus the user's own voices.
// The catalog is empty when no provider key is configured; that is not an
// error.
func GetCloningVoices(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	providerVoices, err := services.GetElevenLabsVoices(c.Request.Context())
	if err != nil {
		log.Println("Could not fetch provider voices:", err)
		providerVoices = []services.ElevenLabsVoice{}
	}

	var customVoices []models.CustomVoice
	if err := db.Where("user_id = ?", uid).Order("created_at DESC").Find(&customVoices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not list custom voices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":         true,
		"provider_voices": providerVoices,
		"custom_voices":   customVoices,
	})
}

// CloneVoice submits audio samples to the cloning provider and records the
// resulting voice.
func CloneVoice(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	if !services.ElevenLabsConfigured() {
		c.JSON(http.StatusServiceUnavailable, gin.H{"success": false, "message": "Voice cloning is not configured"})
		return
	}

	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "name is required"})
		return
	}

	form, err := c.MultipartForm()
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid multipart form"})
		return
	}
	files := form.File["samples"]
	if len(files) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "At least one audio sample is required"})
		return
	}
	if len(files) > maxCloneSamples {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Too many samples (maximum 25)"})
		return
	}

	samples := make([]services.CloneSample, 0, len(files))
	sampleNames := make([]string, 0, len(files))
	for _, fh := range files {
		if fh.Size > maxCloneSampleSize {
			c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Sample " + fh.Filename + " exceeds the 10MB limit"})
			return
		}
		f, err := fh.Open()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not read sample " + fh.Filename})
			return
		}
		data, err := io.ReadAll(f)
		f.Close()
		if err != nil {
			c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not read sample " + fh.Filename})
			return
		}
		samples = append(samples, services.CloneSample{Filename: fh.Filename, Data: data})
		sampleNames = append(sampleNames, fh.Filename)
	}

	description := c.PostForm("description")
	voiceID, err := services.CloneVoice(c.Request.Context(), name, description, samples)
	if err != nil {
		c.JSON(http.StatusBadGateway, gin.H{"success": false, "message": "Voice cloning failed: " + err.Error()})
		return
	}

	voice := models.CustomVoice{
		UserID:      uid,
		Name:        name,
		Description: description,
		VoiceID:     voiceID,
		Provider:    "elevenlabs",
		SampleFiles: sampleNames,
		Status:      models.VoiceReady,
	}
	if err := db.Create(&voice).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not save the cloned voice"})
		return
	}

	ws.BroadcastListChanged("voice")
	c.JSON(http.StatusCreated, gin.H{"success": true, "voice": voice})
}
