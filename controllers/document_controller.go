package controllers

import (
	"errors"
	"io"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/podgen/podcast-generator-backend/models"
	"github.com/podgen/podcast-generator-backend/services"
	"github.com/podgen/podcast-generator-backend/storage"
	"github.com/podgen/podcast-generator-backend/ws"
)

const maxDocumentSize = 10 * 1024 * 1024

// currentUserID parses the authenticated user from context. AuthMiddleware
// guarantees it is set on protected routes.
func currentUserID(c *gin.Context) (uuid.UUID, bool) {
	uid, err := uuid.Parse(c.GetString("user_id"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Invalid user id"})
		return uuid.Nil, false
	}
	return uid, true
}

// UploadDocument accepts a multipart document, extracts its text and persists
// both the original bytes and the extracted content. Nothing is persisted
// when extraction rejects the file.
func UploadDocument(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "No file uploaded"})
		return
	}
	if fileHeader.Size > maxDocumentSize {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "File exceeds the 10MB limit"})
		return
	}

	fileType, err := services.FileTypeFromExt(filepath.Ext(fileHeader.Filename))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{
			"success": false,
			"message": "Unsupported file type. Supported types: " + strings.Join(services.SupportedFileTypes(), ", "),
		})
		return
	}

	f, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not read uploaded file"})
		return
	}
	data, err := io.ReadAll(f)
	f.Close()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not read uploaded file"})
		return
	}

	text, err := services.ExtractText(c.Request.Context(), data, fileType)
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "Could not extract text: " + err.Error()})
		return
	}

	wordCount := services.CountWords(text)
	if wordCount == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "The document contains no extractable text"})
		return
	}
	if wordCount < 10 {
		c.JSON(http.StatusBadRequest, gin.H{"success": false, "message": "The document is too short to process (minimum 10 words)"})
		return
	}

	store, err := storage.Default()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Storage backend unavailable"})
		return
	}
	key := "documents/" + uid.String() + "/" + uuid.New().String() + filepath.Ext(fileHeader.Filename)
	loc, err := store.Upload(c.Request.Context(), data, key, storage.UploadOptions{
		ContentType: fileHeader.Header.Get("Content-Type"),
		Filename:    fileHeader.Filename,
		OwnerID:     uid.String(),
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not store the file: " + err.Error()})
		return
	}

	title := strings.TrimSuffix(fileHeader.Filename, filepath.Ext(fileHeader.Filename))
	doc := models.Document{
		UserID:        uid,
		Title:         title,
		OriginalName:  fileHeader.Filename,
		FileType:      fileType,
		FileSize:      fileHeader.Size,
		FilePath:      loc.Key,
		FileURL:       loc.URL,
		StorageType:   loc.Backend,
		ExtractedText: text,
		WordCount:     wordCount,
		Status:        models.StatusCompleted,
	}
	if err := db.Create(&doc).Error; err != nil {
		// Keep storage consistent with the database.
		_ = store.Delete(c.Request.Context(), *loc)
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not save the document"})
		return
	}

	ws.BroadcastListChanged("document")

	c.JSON(http.StatusCreated, gin.H{
		"success":  true,
		"message":  "Document uploaded successfully",
		"document": doc,
	})
}

func GetDocuments(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	query := db.Model(&models.Document{}).Where("user_id = ?", uid)

	if search := c.Query("search"); search != "" {
		query = query.Where("title LIKE ?", "%"+search+"%")
	}

	page, _ := strconv.Atoi(c.DefaultQuery("page", "1"))
	limit, _ := strconv.Atoi(c.DefaultQuery("limit", "10"))
	if page < 1 {
		page = 1
	}
	if limit <= 0 {
		limit = 10
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not count documents"})
		return
	}

	var documents []models.Document
	if err := query.Order("created_at DESC").Limit(limit).Offset((page - 1) * limit).Find(&documents).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not list documents"})
		return
	}

	c.JSON(http.StatusOK, gin.H{
		"success": true,
		"data":    documents,
		"total":   total,
		"page":    page,
		"limit":   limit,
	})
}

// ownedDocument loads a document and enforces ownership. Both a missing row
// and someone else's row read as not found.
func ownedDocument(c *gin.Context, db *gorm.DB, uid uuid.UUID, id string) (*models.Document, bool) {
	var doc models.Document
	if err := db.First(&doc, "id = ? AND user_id = ?", id, uid).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "Document not found"})
		return nil, false
	}
	return &doc, true
}

func GetDocumentDetail(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	doc, ok := ownedDocument(c, db, uid, c.Param("id"))
	if !ok {
		return
	}
	c.JSON(http.StatusOK, gin.H{"success": true, "document": doc})
}

// DeleteDocument removes a document with its summaries and podcasts in one
// transaction, then deletes the stored blob. Blob deletion is idempotent so a
// retry after a partial failure converges.
func DeleteDocument(c *gin.Context) {
	db := c.MustGet("db").(*gorm.DB)
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	doc, ok := ownedDocument(c, db, uid, c.Param("id"))
	if !ok {
		return
	}

	err := db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.Podcast{}).Error; err != nil {
			return err
		}
		if err := tx.Where("document_id = ?", doc.ID).Delete(&models.Summary{}).Error; err != nil {
			return err
		}
		return tx.Delete(&models.Document{}, "id = ?", doc.ID).Error
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"success": false, "message": "Could not delete the document"})
		return
	}

	if doc.FilePath != "" {
		loc := storage.Location{Backend: doc.StorageType, Key: doc.FilePath, URL: doc.FileURL}
		if err := storage.Delete(c.Request.Context(), loc); err != nil && !errors.Is(err, storage.ErrNotFound) {
			// The record is gone; report success but keep a trace of the orphan.
			c.JSON(http.StatusOK, gin.H{
				"success": true,
				"message": "Document deleted; stored file cleanup failed",
			})
			return
		}
	}

	ws.BroadcastListChanged("document")
	c.JSON(http.StatusOK, gin.H{"success": true, "message": "Document deleted"})
}

// GetDocumentFile streams an original file stored on the database backend.
func GetDocumentFile(c *gin.Context) {
	uid, ok := currentUserID(c)
	if !ok {
		return
	}

	fileID := c.Param("fileId")
	meta, err := storage.FileMetadata(c.Request.Context(), fileID)
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "File not found"})
		return
	}
	if meta.OwnerID != "" && meta.OwnerID != uid.String() {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "File not found"})
		return
	}

	data, err := storage.Download(c.Request.Context(), storage.Location{Backend: storage.BackendGridFS, Key: fileID})
	if err != nil {
		c.JSON(http.StatusNotFound, gin.H{"success": false, "message": "File not found"})
		return
	}

	contentType := meta.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}
	c.Header("Content-Disposition", `inline; filename="`+meta.Filename+`"`)
	c.Data(http.StatusOK, contentType, data)
}
