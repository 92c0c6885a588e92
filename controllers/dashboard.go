package controllers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"conference-management-api/config"
	"conference-management-api/models"
	"conference-management-api/services"
)

// GetDashboardStats returns per-conference digests for organizers and a
// personal summary for everyone else.
func GetDashboardStats(c *gin.Context) {
	userID, _ := getCurrentUserID(c)
	role, _ := getCurrentRole(c)

	if role == models.RoleOrganizer {
		stats, err := organizerDashboard(userID)
		if err != nil {
			config.Logger.Error().Err(err).Uint("user_id", userID).Msg("failed to build organizer dashboard")
			c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"stats": stats})
		return
	}

	stats, err := userDashboard(userID)
	if err != nil {
		config.Logger.Error().Err(err).Uint("user_id", userID).Msg("failed to build user dashboard")
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load dashboard"})
		return
	}
	c.JSON(http.StatusOK, gin.H{"stats": stats})
}

type conferenceStats struct {
	Conference models.Conference         `json:"conference"`
	Digest     services.ConferenceDigest `json:"digest"`
}

// organizerDashboard reuses the weekly-digest computation per conference.
func organizerDashboard(userID uint) ([]conferenceStats, error) {
	var conferences []models.Conference
	if err := config.DB.
		Where("organizer_id = ? AND delete_at IS NULL", userID).
		Find(&conferences).Error; err != nil {
		return nil, err
	}

	stats := make([]conferenceStats, 0, len(conferences))
	for i := range conferences {
		conf := conferences[i]

		var submissions []models.Submission
		if err := config.DB.Preload("Assignments").
			Where("conference_id = ? AND delete_at IS NULL", conf.ConferenceID).
			Find(&submissions).Error; err != nil {
			return nil, err
		}

		var reviews []models.Review
		if len(submissions) > 0 {
			ids := make([]uint, 0, len(submissions))
			for j := range submissions {
				ids = append(ids, submissions[j].SubmissionID)
			}
			if err := config.DB.Where("submission_id IN ?", ids).Find(&reviews).Error; err != nil {
				return nil, err
			}
		}

		stats = append(stats, conferenceStats{
			Conference: conf,
			Digest:     services.ComputeConferenceDigest(submissions, reviews),
		})
	}
	return stats, nil
}

func userDashboard(userID uint) (gin.H, error) {
	var mySubmissions int64
	if err := config.DB.Model(&models.Submission{}).
		Where("author_id = ? AND delete_at IS NULL", userID).
		Count(&mySubmissions).Error; err != nil {
		return nil, err
	}

	var decided int64
	if err := config.DB.Model(&models.Submission{}).
		Where("author_id = ? AND delete_at IS NULL AND status IN ?", userID,
			[]string{
				models.SubmissionStatusAccepted,
				models.SubmissionStatusRejected,
				models.SubmissionStatusCameraReadyPending,
				models.SubmissionStatusFinalSubmitted,
			}).
		Count(&decided).Error; err != nil {
		return nil, err
	}

	var pendingReviews int64
	if err := config.DB.Model(&models.Review{}).
		Where("reviewer_id = ? AND status IN ?", userID,
			[]string{models.ReviewStatusDraft, models.ReviewStatusInProgress}).
		Count(&pendingReviews).Error; err != nil {
		return nil, err
	}

	return gin.H{
		"my_submissions":  mySubmissions,
		"decided":         decided,
		"pending_reviews": pendingReviews,
	}, nil
}

// GetMyNotifications lists the caller's notifications, newest first.
func GetMyNotifications(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	var notifications []models.Notification
	if err := config.DB.
		Where("user_id = ?", userID).
		Order("create_at DESC").
		Limit(100).
		Find(&notifications).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list notifications"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"notifications": notifications})
}

// MarkNotificationRead marks one notification as read.
func MarkNotificationRead(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	res := config.DB.Model(&models.Notification{}).
		Where("notification_id = ? AND user_id = ?", c.Param("id"), userID).
		Update("is_read", true)
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update notification"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Notification not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Notification marked as read"})
}
