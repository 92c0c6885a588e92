package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"conference-management-api/config"
	"conference-management-api/models"
	"conference-management-api/services"
)

// AssignReviewer assigns a reviewer to a submission and opens a draft
// review for them.
func AssignReviewer(c *gin.Context) {
	submission, ok := organizerSubmission(c)
	if !ok {
		return
	}
	if submission.IsDecided() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Submission already decided"})
		return
	}

	type AssignRequest struct {
		ReviewerID uint `json:"reviewer_id" binding:"required"`
	}
	var req AssignRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var reviewer models.User
	if err := config.DB.
		Where("user_id = ? AND role = ? AND delete_at IS NULL", req.ReviewerID, models.RoleReviewer).
		First(&reviewer).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Reviewer not found"})
		return
	}
	if reviewer.UserID == submission.AuthorID {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Authors cannot review their own paper"})
		return
	}

	var existing models.ReviewAssignment
	if err := config.DB.
		Where("submission_id = ? AND reviewer_id = ?", submission.SubmissionID, reviewer.UserID).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Reviewer already assigned"})
		return
	}

	userID, _ := getCurrentUserID(c)
	now := time.Now()
	assignment := models.ReviewAssignment{
		SubmissionID: submission.SubmissionID,
		ReviewerID:   reviewer.UserID,
		AssignedBy:   userID,
		CreateAt:     &now,
	}

	err := config.DB.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(&assignment).Error; err != nil {
			return err
		}
		review := models.Review{
			SubmissionID: submission.SubmissionID,
			ReviewerID:   reviewer.UserID,
			Status:       models.ReviewStatusDraft,
			CreateAt:     &now,
			UpdateAt:     &now,
		}
		if err := tx.Create(&review).Error; err != nil {
			return err
		}
		// First assignment moves the paper into review.
		if submission.Status == models.SubmissionStatusSubmitted {
			submission.Status = models.SubmissionStatusUnderReview
			submission.UpdateAt = &now
			if err := tx.Save(submission).Error; err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to assign reviewer"})
		return
	}

	conferenceName := ""
	if submission.Conference != nil {
		conferenceName = submission.Conference.Name
	}
	enqueueEmail(c.Request.Context(), services.OutboundEmail{
		To:       reviewer.Email,
		Template: services.TemplateReviewerAssigned,
		Data: map[string]string{
			"reviewer_name":    reviewer.FullName(),
			"submission_title": submission.Title,
			"conference_name":  conferenceName,
		},
	})

	id := submission.SubmissionID
	if err := services.NotifyUser(config.DB, reviewer.UserID,
		"New review assignment",
		"You have been assigned to review \""+submission.Title+"\".",
		"info", &id); err != nil {
		config.Logger.Error().Err(err).Uint("submission_id", id).Msg("failed to write assignment notification")
	}

	c.JSON(http.StatusCreated, gin.H{"assignment": assignment})
}

// ListMyReviews lists the calling reviewer's reviews.
func ListMyReviews(c *gin.Context) {
	userID, _ := getCurrentUserID(c)

	query := config.DB.Where("reviewer_id = ?", userID)
	if status := c.Query("status"); status != "" {
		query = query.Where("status = ?", status)
	}

	var reviews []models.Review
	if err := query.Order("create_at DESC").Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list reviews"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"reviews": reviews})
}

// SaveReview stores draft progress on an open review.
func SaveReview(c *gin.Context) {
	review, ok := ownReview(c)
	if !ok {
		return
	}
	if review.IsCompleted() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Review has already been submitted"})
		return
	}

	type SaveRequest struct {
		Score                *float64 `json:"score"`
		Recommendation       *string  `json:"recommendation"`
		Comments             *string  `json:"comments"`
		ConfidentialComments *string  `json:"confidential_comments"`
	}
	var req SaveRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	if req.Score != nil {
		if *req.Score < 0 || *req.Score > 10 {
			c.JSON(http.StatusBadRequest, gin.H{"error": "score must be between 0 and 10"})
			return
		}
		review.Score = *req.Score
	}
	if req.Recommendation != nil {
		if !models.ValidRecommendations[*req.Recommendation] {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recommendation"})
			return
		}
		review.Recommendation = *req.Recommendation
	}
	if req.Comments != nil {
		review.Comments = req.Comments
	}
	if req.ConfidentialComments != nil {
		review.ConfidentialComments = req.ConfidentialComments
	}
	review.Status = models.ReviewStatusInProgress
	review.UpdateAt = &now

	if err := config.DB.Save(review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save review"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

// SubmitReview finalizes a review with score and recommendation.
func SubmitReview(c *gin.Context) {
	review, ok := ownReview(c)
	if !ok {
		return
	}
	if review.Status == models.ReviewStatusSubmitted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Review has already been submitted"})
		return
	}

	type SubmitRequest struct {
		Score                *float64 `json:"score" binding:"required"`
		Recommendation       string   `json:"recommendation" binding:"required"`
		Comments             *string  `json:"comments"`
		ConfidentialComments *string  `json:"confidential_comments"`
	}
	var req SubmitRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if *req.Score < 0 || *req.Score > 10 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "score must be between 0 and 10"})
		return
	}
	if !models.ValidRecommendations[req.Recommendation] {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid recommendation"})
		return
	}

	now := time.Now()
	review.Score = *req.Score
	review.Recommendation = req.Recommendation
	if req.Comments != nil {
		review.Comments = req.Comments
	}
	if req.ConfidentialComments != nil {
		review.ConfidentialComments = req.ConfidentialComments
	}
	review.Status = models.ReviewStatusSubmitted
	review.SubmittedAt = &now
	review.UpdateAt = &now

	if err := config.DB.Save(review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit review"})
		return
	}

	markReviewCompletedIfDone(review.SubmissionID)

	c.JSON(http.StatusOK, gin.H{"review": review})
}

// RequestRevision sends a submitted review back to its reviewer. The review
// still counts as completed for progress purposes.
func RequestRevision(c *gin.Context) {
	var review models.Review
	if err := config.DB.Preload("Reviewer").
		Where("review_id = ?", c.Param("id")).
		First(&review).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return
	}

	// Only the organizer of the submission's conference may do this.
	var submission models.Submission
	if err := config.DB.Preload("Conference").
		Where("submission_id = ? AND delete_at IS NULL", review.SubmissionID).
		First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return
	}
	userID, _ := getCurrentUserID(c)
	if submission.Conference == nil || submission.Conference.OrganizerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the conference organizer"})
		return
	}

	if review.Status != models.ReviewStatusSubmitted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only submitted reviews can be sent back"})
		return
	}

	now := time.Now()
	review.Status = models.ReviewStatusPendingRevision
	review.UpdateAt = &now
	if err := config.DB.Save(&review).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to request revision"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"review": review})
}

// ownReview loads the review in :id owned by the calling reviewer.
func ownReview(c *gin.Context) (*models.Review, bool) {
	userID, _ := getCurrentUserID(c)

	var review models.Review
	if err := config.DB.
		Where("review_id = ? AND reviewer_id = ?", c.Param("id"), userID).
		First(&review).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Review not found"})
		return nil, false
	}
	return &review, true
}

// markReviewCompletedIfDone advances the submission to review_completed
// when every assigned review is in. Failures are logged; the status catches
// up on the next submit.
func markReviewCompletedIfDone(submissionID uint) {
	var submission models.Submission
	if err := config.DB.Preload("Assignments").
		Where("submission_id = ? AND delete_at IS NULL", submissionID).
		First(&submission).Error; err != nil {
		return
	}
	if !submission.InReview() || len(submission.Assignments) == 0 {
		return
	}

	var reviews []models.Review
	if err := config.DB.Where("submission_id = ?", submissionID).Find(&reviews).Error; err != nil {
		config.Logger.Error().Err(err).Uint("submission_id", submissionID).Msg("failed to load reviews")
		return
	}

	if len(services.PendingAssignments(submission.Assignments, reviews)) > 0 {
		return
	}

	now := time.Now()
	submission.Status = models.SubmissionStatusReviewCompleted
	submission.UpdateAt = &now
	if err := config.DB.Save(&submission).Error; err != nil {
		config.Logger.Error().Err(err).Uint("submission_id", submissionID).Msg("failed to mark review completed")
	}
}
