package controllers

import (
	"math"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podgen/podcast-generator-backend/models"
	"github.com/podgen/podcast-generator-backend/services"
	"github.com/podgen/podcast-generator-backend/ws"
)

type CreateSummaryInput struct {
	DocumentID string `json:"documentId" binding:"required"`
}

type BulkGenerateInput struct {
	DocumentIDs []string `json:"documentIds" binding:"required,min=1"`
}

// compressionRatio is summary words over document words, rounded to two
// decimals. Zero when either count is missing.
func compressionRatio(summaryWords, docWords int) float64 {
	if summaryWords <= 0 || docWords <= 0 {
		return 0
	}
	return math.Round(float64(summaryWords)/float64(docWords)*100) / 100
}

func readingTimeMinutes(words int) int {
	return int(math.Ceil(float64(words) / 200))
}

// CreateSummary generates one summary per document; a second request for the
// same document is rejected rather than regenerated.
func CreateSummary(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var input CreateSummaryInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	doc, ok := ownedDocument(c, db, uid, input.DocumentID)
	if !ok {
		return
	}

	var existing models.Summary
	if err := db.First(&existing, "document_id = ? AND user_id = ?", doc.ID, uid).Error; err == nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "A summary already exists for this document"})
		return
	}

	summaryText := services.SummarizeText(c.Request.Context(), doc.ExtractedText)
	summaryWords := services.CountWords(summaryText)

	summary := models.Summary{
		UserID:           uid,
		DocumentID:       doc.ID,
		SummaryText:      summaryText,
		WordCount:        summaryWords,
		CompressionRatio: compressionRatio(summaryWords, doc.WordCount),
		ReadingTime:      readingTimeMinutes(summaryWords),
		Status:           models.StatusCompleted,
	}
	if err := db.Create(&summary).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not save the summary"})
		return
	}

	ws.BroadcastListChanged("summary")
	c.JSON(http.StatusCreated, gin.H{"success": true, "summary": summary})
}

// BulkGenerateSummaries processes documents sequentially and reports one
// result per requested id. A record is created in processing state before
// generation so clients following the status feed see progress.
func BulkGenerateSummaries(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var input BulkGenerateInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": err.Error()})
		return
	}

	type bulkResult struct {
		DocumentID string          `json:"documentId"`
		Success    bool            `json:"success"`
		Message    string          `json:"message,omitempty"`
		Summary    *models.Summary `json:"summary,omitempty"`
	}

	results := make([]bulkResult, 0, len(input.DocumentIDs))
	for _, docID := range input.DocumentIDs {
		var doc models.Document
		if err := db.First(&doc, "id = ? AND user_id = ?", docID, uid).Error; err != nil {
			results = append(results, bulkResult{DocumentID: docID, Message: "Document not found"})
			continue
		}

		var existing models.Summary
		if err := db.First(&existing, "document_id = ? AND user_id = ?", doc.ID, uid).Error; err == nil {
			results = append(results, bulkResult{DocumentID: docID, Message: "A summary already exists for this document"})
			continue
		}

		summary := models.Summary{
			UserID:     uid,
			DocumentID: doc.ID,
			Status:     models.StatusProcessing,
		}
		if err := db.Create(&summary).Error; err != nil {
			results = append(results, bulkResult{DocumentID: docID, Message: "Could not create the summary record"})
			continue
		}
		ws.SendStatusUpdate("summary", summary.ID.String(), models.StatusProcessing, 0, "")

		summaryText := services.SummarizeText(c.Request.Context(), doc.ExtractedText)
		summaryWords := services.CountWords(summaryText)

		updates := map[string]interface{}{
			"summary_text":      summaryText,
			"word_count":        summaryWords,
			"compression_ratio": compressionRatio(summaryWords, doc.WordCount),
			"reading_time":      readingTimeMinutes(summaryWords),
			"status":            models.StatusCompleted,
		}
		if err := db.Model(&summary).Updates(updates).Error; err != nil {
			db.Model(&summary).Update("status", models.StatusFailed)
			ws.SendStatusUpdate("summary", summary.ID.String(), models.StatusFailed, 1, err.Error())
			results = append(results, bulkResult{DocumentID: docID, Message: "Could not save the summary"})
			continue
		}

		db.First(&summary, "id = ?", summary.ID)
		ws.SendStatusUpdate("summary", summary.ID.String(), models.StatusCompleted, 1, "")
		results = append(results, bulkResult{DocumentID: docID, Success: true, Summary: &summary})
	}

	ws.BroadcastListChanged("summary")
	c.JSON(http.StatusOK, gin.H{"success": true, "results": results})
}

func GetSummaries(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	var summaries []models.Summary
	query := db.Where("user_id = ?", uid)
	if docID := c.Query("documentId"); docID != "" {
		query = query.Where("document_id = ?", docID)
	}
	if err := query.Order("created_at DESC").Find(&summaries).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not list summaries"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"success": true, "data": summaries})
}

func ownedSummary(c *gin.Context, db *gorm.DB, uid uuid.UUID, id string) (*models.Summary, bool) {
	var summary models.Summary
	if err := db.First(&summary, "id = ? AND user_id = ?", id, uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Summary not found"})
		return nil, false
	}
	return &summary, true
}

func GetSummaryDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, ok := ownedSummary(c, db, uid, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "summary": summary})
}

// DeleteSummary removes the summary and any podcasts generated from it. The
// document stays.
func DeleteSummary(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	summary, ok := ownedSummary(c, db, uid, c.Param("id"))
	if !ok {
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("summary_id = ?", summary.ID).Delete(&models.Podcast{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Summary{}, "id = ?", summary.ID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not delete the summary"})
		return
	}

	ws.BroadcastListChanged("summary")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Summary deleted"})
}
