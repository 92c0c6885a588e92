package controllers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"conference-management-api/config"
	"conference-management-api/models"
)

type ConferenceRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description *string   `json:"description"`
	StartDate   time.Time `json:"start_date" binding:"required"`
	EndDate     time.Time `json:"end_date" binding:"required"`
}

// CreateConference creates a conference owned by the calling organizer.
func CreateConference(c *gin.Context) {
	var req ConferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.EndDate.After(req.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be after start_date"})
		return
	}

	userID, _ := getCurrentUserID(c)
	now := time.Now()
	conference := models.Conference{
		Name:        req.Name,
		Description: req.Description,
		OrganizerID: userID,
		StartDate:   req.StartDate,
		EndDate:     req.EndDate,
		CreateAt:    &now,
		UpdateAt:    &now,
	}
	if err := config.DB.Create(&conference).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create conference"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"conference": conference})
}

// ListConferences lists conferences; organizers see only their own when
// mine=1 is passed.
func ListConferences(c *gin.Context) {
	query := config.DB.Preload("Tracks").Where("delete_at IS NULL")

	if c.Query("mine") == "1" {
		userID, _ := getCurrentUserID(c)
		query = query.Where("organizer_id = ?", userID)
	}

	var conferences []models.Conference
	if err := query.Order("start_date ASC").Find(&conferences).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to list conferences"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conferences": conferences})
}

// GetConference returns one conference with its tracks.
func GetConference(c *gin.Context) {
	var conference models.Conference
	if err := config.DB.Preload("Tracks").Preload("Organizer").
		Where("conference_id = ? AND delete_at IS NULL", c.Param("id")).
		First(&conference).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conference not found"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conference": conference})
}

// UpdateConference updates name, description and dates.
func UpdateConference(c *gin.Context) {
	conference, ok := ownedConference(c)
	if !ok {
		return
	}

	var req ConferenceRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if !req.EndDate.After(req.StartDate) {
		c.JSON(http.StatusBadRequest, gin.H{"error": "end_date must be after start_date"})
		return
	}

	now := time.Now()
	conference.Name = req.Name
	conference.Description = req.Description
	conference.StartDate = req.StartDate
	conference.EndDate = req.EndDate
	conference.UpdateAt = &now

	if err := config.DB.Save(conference).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to update conference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"conference": conference})
}

// DeleteConference soft-deletes a conference.
func DeleteConference(c *gin.Context) {
	conference, ok := ownedConference(c)
	if !ok {
		return
	}

	now := time.Now()
	conference.DeleteAt = &now
	if err := config.DB.Save(conference).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to delete conference"})
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Conference deleted"})
}

// CreateTrack adds a track to an owned conference.
func CreateTrack(c *gin.Context) {
	conference, ok := ownedConference(c)
	if !ok {
		return
	}

	type TrackRequest struct {
		Name        string  `json:"name" binding:"required"`
		Description *string `json:"description"`
	}
	var req TrackRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	now := time.Now()
	track := models.Track{
		ConferenceID: conference.ConferenceID,
		Name:         req.Name,
		Description:  req.Description,
		CreateAt:     &now,
	}
	if err := config.DB.Create(&track).Error; err != nil {
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to create track"})
		return
	}

	c.JSON(http.StatusCreated, gin.H{"track": track})
}

// ownedConference loads the conference in :id and checks the caller is its
// organizer.
func ownedConference(c *gin.Context) (*models.Conference, bool) {
	userID, _ := getCurrentUserID(c)

	var conference models.Conference
	if err := config.DB.
		Where("conference_id = ? AND delete_at IS NULL", c.Param("id")).
		First(&conference).Error; err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": "Conference not found"})
		return nil, false
	}
	if conference.OrganizerID != userID {
		c.JSON(http.StatusForbidden, gin.H{"error": "Not the conference organizer"})
		return nil, false
	}
	return &conference, true
}
