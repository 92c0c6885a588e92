package controllers

import (
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"conference-management-api/config"
	"conference-management-api/models"
	"conference-management-api/services"
	"conference-management-api/utils"
)

type SubmissionRequest struct {
	Title        string `json:"title" binding:"required"`
	Abstract     string `json:"abstract" binding:"required"`
	ConferenceID uint   `json:"conference_id" binding:"required"`
	TrackID      *uint  `json:"track_id"`
}

// CreateSubmission creates a paper submission for the calling author.
func CreateSubmission(c *gin.Context) {
	var req SubmissionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var conference models.Conference
	if err := config.DB.
		Where("conference_id = ? AND delete_at IS NULL", req.ConferenceID).
		First(&conference).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Conference not found"})
		return
	}

	if req.TrackID != nil {
		var track models.Track
		if err := config.DB.
			Where("track_id = ? AND conference_id = ? AND delete_at IS NULL", *req.TrackID, req.ConferenceID).
			First(&track).Error; err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Track not found in conference"})
			return
		}
	}

	userID, _ := getCurrentUserID(c)
	now := time.Now()
	submission := models.Submission{
		Title:        utils.SanitizeInput(req.Title),
		Abstract:     req.Abstract,
		ConferenceID: req.ConferenceID,
		TrackID:      req.TrackID,
		AuthorID:     userID,
		Status:       models.SubmissionStatusSubmitted,
		SubmittedAt:  &now,
		CreateAt:     &now,
		UpdateAt:     &now,
	}
	if err := config.DB.Create(&submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create submission"})
		return
	}

	var author models.User
	if err := config.DB.Where("user_id = ?", userID).First(&author).Error; err == nil {
		enqueueEmail(c.Request.Context(), services.OutboundEmail{
			To:       author.Email,
			Template: services.TemplateSubmissionReceived,
			Data: map[string]string{
				"author_name":      author.FullName(),
				"submission_title": submission.Title,
				"conference_name":  conference.Name,
			},
		})
	}

	c.JSON(http.StatusCreated, gin.H{"submission": submission})
}

// ListSubmissions lists the caller's own submissions; organizers get every
// submission of their conferences instead.
func ListSubmissions(c *gin.Context) {
	userID, _ := getCurrentUserID(c)
	role, _ := getCurrentRole(c)

	query := config.DB.Preload("Conference").Preload("Track").
		Where("submissions.delete_at IS NULL")

	if role == models.RoleOrganizer {
		query = query.
			Joins("JOIN conferences ON conferences.conference_id = submissions.conference_id").
			Where("conferences.organizer_id = ?", userID)
	} else {
		query = query.Where("submissions.author_id = ?", userID)
	}

	if status := c.Query("status"); status != "" {
		query = query.Where("submissions.status = ?", status)
	}
	if conferenceID := c.Query("conference_id"); conferenceID != "" {
		query = query.Where("submissions.conference_id = ?", conferenceID)
	}

	var submissions []models.Submission
	if err := query.Order("submissions.create_at DESC").Find(&submissions).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list submissions"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submissions": submissions})
}

// GetSubmission assembles the submission details with the review summary
// recomputed from the current review set.
func GetSubmission(c *gin.Context) {
	submission, ok := visibleSubmission(c)
	if !ok {
		return
	}

	var reviews []models.Review
	if err := config.DB.Preload("Reviewer").
		Where("submission_id = ?", submission.SubmissionID).
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reviews"})
		return
	}

	summary := services.SummarizeReviews(requiredReviews(submission), reviews)

	c.JSON(http.StatusOK, gin.H{
		"submission":        submission,
		"reviews":           reviews,
		"review_progress":   summary.Progress,
		"vote_breakdown":    summary.Votes,
		"average_score":     summary.AverageScore,
		"majority_decision": summary.MajorityDecision,
	})
}

// UpdateSubmission updates title/abstract/track while still editable.
func UpdateSubmission(c *gin.Context) {
	submission, ok := ownSubmission(c)
	if !ok {
		return
	}
	if !submission.IsEditable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Submission can no longer be modified"})
		return
	}

	type UpdateRequest struct {
		Title    *string `json:"title"`
		Abstract *string `json:"abstract"`
		TrackID  *uint   `json:"track_id"`
	}
	var req UpdateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	if req.Title != nil {
		submission.Title = utils.SanitizeInput(*req.Title)
	}
	if req.Abstract != nil {
		submission.Abstract = *req.Abstract
	}
	if req.TrackID != nil {
		submission.TrackID = req.TrackID
	}
	submission.UpdateAt = &now

	if err := config.DB.Save(submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// DeleteSubmission soft-deletes an editable submission.
func DeleteSubmission(c *gin.Context) {
	submission, ok := ownSubmission(c)
	if !ok {
		return
	}
	if !submission.IsEditable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Submission can no longer be deleted"})
		return
	}

	now := time.Now()
	submission.DeleteAt = &now
	if err := config.DB.Save(submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Submission deleted"})
}

// AddCoAuthor links a co-author entry; the email is matched against
// registered users when possible.
func AddCoAuthor(c *gin.Context) {
	submission, ok := ownSubmission(c)
	if !ok {
		return
	}
	if !submission.IsEditable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot modify a submission under review"})
		return
	}

	type CoAuthorRequest struct {
		Name  string `json:"name" binding:"required"`
		Email string `json:"email" binding:"required,email"`
	}
	var req CoAuthorRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	email := strings.ToLower(strings.TrimSpace(req.Email))

	var existing models.CoAuthor
	if err := config.DB.
		Where("submission_id = ? AND email = ?", submission.SubmissionID, email).
		First(&existing).Error; err == nil {
		c.JSON(http.StatusConflict, gin.H{"error": "Co-author already added"})
		return
	}

	now := time.Now()
	coAuthor := models.CoAuthor{
		SubmissionID: submission.SubmissionID,
		Name:         utils.SanitizeInput(req.Name),
		Email:        email,
		CreateAt:     &now,
	}

	var user models.User
	if err := config.DB.Where("email = ? AND delete_at IS NULL", email).First(&user).Error; err == nil {
		coAuthor.UserID = &user.UserID
	}

	if err := config.DB.Create(&coAuthor).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to add co-author"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"co_author": coAuthor})
}

// RemoveCoAuthor deletes a co-author entry from an editable submission.
func RemoveCoAuthor(c *gin.Context) {
	submission, ok := ownSubmission(c)
	if !ok {
		return
	}
	if !submission.IsEditable() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Cannot modify a submission under review"})
		return
	}

	res := config.DB.
		Where("co_author_id = ? AND submission_id = ?", c.Param("co_author_id"), submission.SubmissionID).
		Delete(&models.CoAuthor{})
	if res.Error != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to remove co-author"})
		return
	}
	if res.RowsAffected == 0 {
		c.JSON(http.StatusNotFound, gin.H{"error": "Co-author not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Co-author removed"})
}

// AttachFile associates an uploaded file with the submission.
func AttachFile(c *gin.Context) {
	submission, ok := ownSubmission(c)
	if !ok {
		return
	}

	type AttachRequest struct {
		FileID uint `json:"file_id" binding:"required"`
	}
	var req AttachRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := getCurrentUserID(c)
	var file models.FileUpload
	if err := config.DB.
		Where("file_id = ? AND uploaded_by = ? AND delete_at IS NULL", req.FileID, userID).
		First(&file).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File not found"})
		return
	}

	now := time.Now()
	submission.FileID = &file.FileID
	submission.UpdateAt = &now
	if err := config.DB.Save(submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to attach file"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission, "file_url": file.URL})
}

// DecideSubmission records the organizer decision once the review quota is
// satisfied, and notifies the author with co-authors in CC.
func DecideSubmission(c *gin.Context) {
	submission, ok := organizerSubmission(c)
	if !ok {
		return
	}
	if submission.IsDecided() {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Submission already decided"})
		return
	}

	type DecisionRequest struct {
		Decision string `json:"decision" binding:"required"` // accept|reject
	}
	var req DecisionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var status string
	switch req.Decision {
	case "accept":
		status = models.SubmissionStatusAccepted
	case "reject":
		status = models.SubmissionStatusRejected
	default:
		c.JSON(http.StatusBadRequest, gin.H{"error": "decision must be accept or reject"})
		return
	}

	var reviews []models.Review
	if err := config.DB.
		Where("submission_id = ?", submission.SubmissionID).
		Find(&reviews).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to load reviews"})
		return
	}

	required := requiredReviews(submission)
	summary := services.SummarizeReviews(required, reviews)
	if required == 0 || summary.Progress.Completed < required {
		c.JSON(http.StatusBadRequest, gin.H{"error": "All assigned reviews must be completed first"})
		return
	}

	now := time.Now()
	submission.Status = status
	submission.UpdateAt = &now
	if err := config.DB.Save(submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to record decision"})
		return
	}

	notifyDecision(c, submission, status, summary)

	c.JSON(http.StatusOK, gin.H{
		"submission":        submission,
		"majority_decision": summary.MajorityDecision,
	})
}

// SubmitCameraReady lets the author attach the camera-ready file of an
// accepted paper.
func SubmitCameraReady(c *gin.Context) {
	submission, ok := ownSubmission(c)
	if !ok {
		return
	}
	if submission.Status != models.SubmissionStatusAccepted {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Only accepted submissions take a camera-ready copy"})
		return
	}

	type CameraReadyRequest struct {
		FileID uint `json:"file_id" binding:"required"`
	}
	var req CameraReadyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	userID, _ := getCurrentUserID(c)
	var file models.FileUpload
	if err := config.DB.
		Where("file_id = ? AND uploaded_by = ? AND delete_at IS NULL", req.FileID, userID).
		First(&file).Error; err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "File not found"})
		return
	}

	now := time.Now()
	submission.FileID = &file.FileID
	submission.Status = models.SubmissionStatusCameraReadyPending
	submission.UpdateAt = &now
	if err := config.DB.Save(submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to submit camera-ready copy"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

// FinalizeSubmission is the organizer confirmation of a camera-ready copy.
func FinalizeSubmission(c *gin.Context) {
	submission, ok := organizerSubmission(c)
	if !ok {
		return
	}
	if submission.Status != models.SubmissionStatusCameraReadyPending {
		c.JSON(http.StatusBadRequest, gin.H{"error": "No camera-ready copy awaiting confirmation"})
		return
	}

	now := time.Now()
	submission.Status = models.SubmissionStatusFinalSubmitted
	submission.UpdateAt = &now
	if err := config.DB.Save(submission).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to finalize submission"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"submission": submission})
}

/* ==========================
   Helpers
   ========================== */

// requiredReviews is the review quota: assigned reviewer count, or the
// configured default when nothing is assigned yet.
func requiredReviews(submission *models.Submission) int {
	if len(submission.Assignments) > 0 {
		return len(submission.Assignments)
	}
	var count int64
	config.DB.Model(&models.ReviewAssignment{}).
		Where("submission_id = ?", submission.SubmissionID).
		Count(&count)
	if count > 0 {
		return int(count)
	}
	if appCfg != nil {
		return appCfg.Jobs.DefaultRequiredReviews
	}
	return 0
}

// ownSubmission loads :id and checks the caller authored it.
func ownSubmission(c *gin.Context) (*models.Submission, bool) {
	userID, _ := getCurrentUserID(c)

	var submission models.Submission
	if err := config.DB.
		Where("submission_id = ? AND author_id = ? AND delete_at IS NULL", c.Param("id"), userID).
		First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return nil, false
	}
	return &submission, true
}

// organizerSubmission loads :id and checks the caller organizes its
// conference.
func organizerSubmission(c *gin.Context) (*models.Submission, bool) {
	userID, _ := getCurrentUserID(c)

	var submission models.Submission
	if err := config.DB.Preload("Conference").Preload("Author").
		Where("submission_id = ? AND delete_at IS NULL", c.Param("id")).
		First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return nil, false
	}
	if submission.Conference == nil || submission.Conference.OrganizerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the conference organizer"})
		return nil, false
	}
	return &submission, true
}

// visibleSubmission loads :id for the author, an assigned reviewer, or the
// conference organizer.
func visibleSubmission(c *gin.Context) (*models.Submission, bool) {
	userID, _ := getCurrentUserID(c)

	var submission models.Submission
	if err := config.DB.
		Preload("Conference").Preload("Track").Preload("Author").
		Preload("CoAuthors").Preload("File").Preload("Assignments.Reviewer").
		Where("submission_id = ? AND delete_at IS NULL", c.Param("id")).
		First(&submission).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Submission not found"})
		return nil, false
	}

	if submission.AuthorID == userID {
		return &submission, true
	}
	if submission.Conference != nil && submission.Conference.OrganizerID == userID {
		return &submission, true
	}
	for _, a := range submission.Assignments {
		if a.ReviewerID == userID {
			return &submission, true
		}
	}

	c.JSON(http.StatusForbidden, gin.H{"error": "No access to this submission"})
	return nil, false
}

// notifyDecision emails the author (co-authors in CC, deduplicated) and
// writes the in-app notification. Failures are logged only.
func notifyDecision(c *gin.Context, submission *models.Submission, status string, summary services.ReviewSummary) {
	if submission.Author == nil {
		return
	}

	var coAuthors []models.CoAuthor
	if err := config.DB.Where("submission_id = ?", submission.SubmissionID).Find(&coAuthors).Error; err != nil {
		config.Logger.Error().Err(err).Uint("submission_id", submission.SubmissionID).Msg("failed to load co-authors")
	}
	cc := make([]string, 0, len(coAuthors))
	for _, ca := range coAuthors {
		cc = append(cc, ca.Email)
	}

	decisionLabel := services.DecisionRejected
	if status == models.SubmissionStatusAccepted {
		decisionLabel = services.DecisionAccepted
	}

	conferenceName := ""
	if submission.Conference != nil {
		conferenceName = submission.Conference.Name
	}

	enqueueEmail(c.Request.Context(), services.OutboundEmail{
		To:       submission.Author.Email,
		CC:       cc,
		Template: services.TemplateDecisionNotice,
		Data: map[string]string{
			"author_name":      submission.Author.FullName(),
			"submission_title": submission.Title,
			"conference_name":  conferenceName,
			"decision":         decisionLabel,
		},
	})

	id := submission.SubmissionID
	if err := services.NotifyUser(config.DB, submission.AuthorID,
		"Decision on your submission",
		"Your paper \""+submission.Title+"\" has been "+status+".",
		"info", &id); err != nil {
		config.Logger.Error().Err(err).Uint("submission_id", id).Msg("failed to write decision notification")
	}
}
