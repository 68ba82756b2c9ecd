package controllers

import (
	"encoding/base64"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/podgen/podcast-generator-backend/models"
	"github.com/podgen/podcast-generator-backend/services"
)

type TTSRequest struct {
	Text         string  `json:"text" binding:"required"`
	Provider     string  `json:"provider"`
	Voice        string  `json:"voice"`
	SpeakingRate float64 `json:"speaking_rate"`
	Pitch        float64 `json:"pitch"`
	Volume       float64 `json:"volume"`
}

// TextToSpeechHandler converts text to audio without creating a podcast
// record. The audio is returned inline as base64.
func TextToSpeechHandler(c *gin.Context) {
	var req TTSRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid request"})
		return
	}

	settings := models.VoiceSettings{
		Voice:  req.Voice,
		Speed:  req.SpeakingRate,
		Pitch:  req.Pitch,
		Volume: req.Volume,
	}
	normalizeVoiceSettings(&settings)

	var (
		audio []byte
		err   error
		used  string
	)
	switch {
	case req.Provider == models.ProviderAzure && services.AzureSpeechConfigured():
		used = models.ProviderAzure
		audio, err = services.SynthesizeAzure(c.Request.Context(), req.Text, settings)
	default:
		used = models.ProviderGoogle
		audio, err = services.SynthesizeGoogle(c.Request.Context(), req.Text, settings)
	}
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": err.Error()})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success":       true,
		"provider":      used,
		"voice_used":    settings.Voice,
		"audio_content": base64.StdEncoding.EncodeToString(audio),
		"message":       "Text converted to speech successfully",
	})
}
