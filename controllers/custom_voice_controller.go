package controllers

import (
	"context"
	"io"
	"log"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podgen/podcast-generator-backend/models"
	"github.com/podgen/podcast-generator-backend/services"
	"github.com/podgen/podcast-generator-backend/storage"
	"github.com/podgen/podcast-generator-backend/ws"
)

const maxVoiceSampleSize = 50 * 1024 * 1024

var voiceSampleFormats = map[string]bool{
	"mp3": true,
	"wav": true,
	"ogg": true,
	"m4a": true,
}

// UploadCustomVoice stores a voice sample and kicks off model training in
// the background. The response returns immediately with the voice in
// uploaded state; training moves it to ready or failed.
func UploadCustomVoice(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	name := c.PostForm("name")
	if name == "" {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "name is required"})
		return
	}

	fileHeader, err := c.FormFile("audio")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No audio file uploaded"})
		return
	}
	if fileHeader.Size > maxVoiceSampleSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Audio file exceeds the 50MB limit"})
		return
	}

	format := strings.ToLower(strings.TrimPrefix(filepath.Ext(fileHeader.Filename), "."))
	if !voiceSampleFormats[format] {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Unsupported audio format. Use mp3, wav, ogg or m4a"})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not read the audio file"})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not read the audio file"})
		return
	}

	store, err := storage.Default()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Storage backend unavailable"})
		return
	}
	key := "voices/" + uid.String() + "/" + uuid.New().String() + "." + format
	loc, err := store.Upload(c.Request.Context(), data, key, storage.UploadOptions{
		ContentType: fileHeader.Header.Get("Content-Type"),
		Filename:    fileHeader.Filename,
		OwnerID:     uid.String(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not store the audio file: " + err.Error()})
		return
	}

	duration := 0.0
	if format == "mp3" {
		if d, err := services.MP3Duration(data); err == nil {
			duration = d
		}
	}

	voice := models.CustomVoice{
		UserID:        uid,
		Name:          name,
		Description:   c.PostForm("description"),
		Provider:      "rvc",
		AudioFileID:   loc.Key,
		AudioFileName: fileHeader.Filename,
		AudioFileSize: fileHeader.Size,
		StorageType:   loc.Backend,
		Duration:      duration,
		Format:        format,
		Status:        models.VoiceUploaded,
		Gender:        c.DefaultPostForm("gender", "unknown"),
		Language:      c.DefaultPostForm("language", "en-US"),
		Accent:        c.PostForm("accent"),
	}
	if err := db.Create(&voice).Error; err != nil {
		_ = store.Delete(c.Request.Context(), *loc)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not save the voice"})
		return
	}

	if services.RVCConfigured() {
		go trainCustomVoice(db, voice.ID, fileHeader.Filename, data)
	}

	ws.BroadcastListChanged("voice")
	c.JSON(http.StatusCreated, gin.H{"success": true, "voice": voice})
}

// trainCustomVoice runs model training in the background and records the
// outcome. Training can legitimately take many minutes.
func trainCustomVoice(db *gorm.DB, voiceID uuid.UUID, filename string, sample []byte) {
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Minute)
	defer cancel()

	db.Model(&models.CustomVoice{}).Where("id = ?", voiceID).Update("status", models.VoiceProcessing)
	ws.SendStatusUpdate("voice", voiceID.String(), models.VoiceProcessing, 0, "")

	modelID, err := services.TrainVoiceModel(ctx, voiceID.String(), filename, sample)
	if err != nil {
		log.Println("Voice training failed:", err)
		db.Model(&models.CustomVoice{}).Where("id = ?", voiceID).Updates(map[string]interface{}{
			"status":           models.VoiceFailed,
			"processing_error": err.Error(),
		})
		ws.SendStatusUpdate("voice", voiceID.String(), models.VoiceFailed, 1, err.Error())
		return
	}

	db.Model(&models.CustomVoice{}).Where("id = ?", voiceID).Updates(map[string]interface{}{
		"status":   models.VoiceReady,
		"voice_id": modelID,
	})
	ws.SendStatusUpdate("voice", voiceID.String(), models.VoiceReady, 1, "")
	ws.BroadcastListChanged("voice")
}

func GetCustomVoices(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var voices []models.CustomVoice
	if err := db.Where("user_id = ?", uid).Order("created_at DESC").Find(&voices).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not list voices"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": voices})
}

func ownedCustomVoice(c *gin.Context, db *gorm.DB, uid uuid.UUID, id string) (*models.CustomVoice, bool) {
	var voice models.CustomVoice
	if err := db.First(&voice, "id = ? AND user_id = ?", id, uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Voice not found"})
		return nil, false
	}
	return &voice, true
}

func GetCustomVoiceDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	voice, ok := ownedCustomVoice(c, db, uid, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "voice": voice})
}

// GetCustomVoiceAudio streams the stored voice sample.
func GetCustomVoiceAudio(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	voice, ok := ownedCustomVoice(c, db, uid, c.Param("id"))
	if !ok {
		return
	}
	if voice.AudioFileID == "" {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "This voice has no stored sample"})
		return
	}

	loc := storage.Location{Backend: voice.StorageType, Key: voice.AudioFileID}
	data, err := storage.Download(c.Request.Context(), loc)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Audio sample not found"})
		return
	}

	contentType := "audio/mpeg"
	switch voice.Format {
	case "wav":
		contentType = "audio/wav"
	case "ogg":
		contentType = "audio/ogg"
	case "m4a":
		contentType = "audio/mp4"
	}
	c.Header("Content-Disposition", `inline; filename="`+voice.AudioFileName+`"`)
	c.Data(http.StatusOK, contentType, data)
}

type UpdateCustomVoiceInput struct {
	Name        *string   `json:"name"`
	Description *string   `json:"description"`
	Gender      *string   `json:"gender"`
	Language    *string   `json:"language"`
	Accent      *string   `json:"accent"`
	IsDefault   *bool     `json:"is_default"`
	Tags        *[]string `json:"tags"`
}

// UpdateCustomVoice patches voice metadata. Setting is_default unsets the
// flag on the user's other voices so at most one is default.
func UpdateCustomVoice(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	voice, ok := ownedCustomVoice(c, db, uid, c.Param("id"))
	if !ok {
		return
	}

	var input UpdateCustomVoiceInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	updates := map[string]interface{}{}
	if input.Name != nil {
		updates["name"] = *input.Name
	}
	if input.Description != nil {
		updates["description"] = *input.Description
	}
	if input.Gender != nil {
		updates["gender"] = *input.Gender
	}
	if input.Language != nil {
		updates["language"] = *input.Language
	}
	if input.Accent != nil {
		updates["accent"] = *input.Accent
	}
	if input.IsDefault != nil {
		updates["is_default"] = *input.IsDefault
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if input.IsDefault != nil && *input.IsDefault {
			if err := tx.Model(&models.CustomVoice{}).
				Where("user_id = ? AND id <> ?", uid, voice.ID).
				Update("is_default", false).Error; err != nil {
				return err
			}
		}
		if len(updates) > 0 {
			if err := tx.Model(voice).Updates(updates).Error; err != nil {
				return err
			}
		}
		if input.Tags != nil {
			if err := tx.Model(voice).Update("tags", *input.Tags).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not update the voice"})
		return
	}

	db.First(voice, "id = ?", voice.ID)
	ws.BroadcastListChanged("voice")
	c.JSON(http.StatusOK, gin.H{"success": true, "voice": voice})
}

// DeleteCustomVoice removes the record and its stored sample.
func DeleteCustomVoice(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	voice, ok := ownedCustomVoice(c, db, uid, c.Param("id"))
	if !ok {
		return
	}

	if err := db.Delete(&models.CustomVoice{}, "id = ?", voice.ID).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not delete the voice"})
		return
	}

	if voice.AudioFileID != "" {
		loc := storage.Location{Backend: voice.StorageType, Key: voice.AudioFileID}
		_ = storage.Delete(c.Request.Context(), loc)
	}

	ws.BroadcastListChanged("voice")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Voice deleted"})
}
