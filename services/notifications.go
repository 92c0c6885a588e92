package services

import (
	"time"

	"gorm.io/gorm"

	"conference-management-api/config"
	"conference-management-api/models"
)

// NotifyUser writes an in-app notification row. Failures are returned to
// the caller for logging; they never block the triggering operation.
func NotifyUser(db *gorm.DB, userID uint, title, message, kind string, submissionID *uint) error {
	if db == nil {
		db = config.DB
	}
	n := models.Notification{
		UserID:              userID,
		Title:               title,
		Message:             message,
		Type:                kind,
		RelatedSubmissionID: submissionID,
		CreateAt:            time.Now(),
	}
	return db.Create(&n).Error
}
