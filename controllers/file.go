package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"conference-management-api/config"
	"conference-management-api/models"
	"conference-management-api/services"
)

// UploadFile streams a paper file to object storage and records its
// metadata. The returned URL is publicly resolvable.
func UploadFile(c *gin.Context) {
	if storage == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "File storage is not configured"})
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "file is required"})
		return
	}

	maxBytes := int64(20) * 1024 * 1024
	if appCfg != nil && appCfg.Storage.MaxUploadMB > 0 {
		maxBytes = appCfg.Storage.MaxUploadMB * 1024 * 1024
	}
	if fileHeader.Size > maxBytes {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File exceeds the upload size limit"})
		return
	}

	userID, _ := getCurrentUserID(c)
	contentType := fileHeader.Header.Get("Content-Type")

	record := models.FileUpload{
		OriginalName: fileHeader.Filename,
		FileSize:     fileHeader.Size,
		MimeType:     contentType,
		UploadedBy:   userID,
		UploadedAt:   time.Now(),
	}
	if !record.IsValidDocumentType() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only PDF and Word documents are accepted"})
		return
	}

	src, err := fileHeader.Open()
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to read upload"})
		return
	}
	defer src.Close()

	key := services.ObjectKey(fileHeader.Filename)
	url, err := storage.Upload(c.Request.Context(), key, src, fileHeader.Size, contentType)
	if err != nil {
		config.Logger.Error().Err(err).Str("key", key).Msg("object storage upload failed")
		c.JSON(http.StatusBadGateway, gin.H{"error": "File storage is unavailable"})
		return
	}

	record.StoredKey = key
	record.URL = url
	if err := config.DB.Create(&record).Error; err != nil {
		// Best effort: do not leave an orphan object behind.
		if delErr := storage.Delete(c.Request.Context(), key); delErr != nil {
			config.Logger.Error().Err(delErr).Str("key", key).Msg("failed to clean up orphan object")
		}
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record upload"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"file": record})
}

// DeleteFile removes an unattached upload owned by the caller.
func DeleteFile(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	var record models.FileUpload
	if err := config.DB.
		Where("file_id = ? AND uploaded_by = ? AND delete_at IS NULL", c.Param("id"), userID).
		First(&record).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "File not found"})
		return
	}

	var attached int64
	config.DB.Model(&models.Submission{}).
		Where("file_id = ? AND delete_at IS NULL", record.FileID).
		Count(&attached)
	if attached > 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File is attached to a submission"})
		return
	}

	if storage != nil {
		if err := storage.Delete(c.Request.Context(), record.StoredKey); err != nil {
			config.Logger.Error().Err(err).Str("key", record.StoredKey).Msg("object storage delete failed")
		}
	}

	now := time.Now()
	record.DeleteAt = &now
	if err := config.DB.Save(&record).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "File deleted"})
}
