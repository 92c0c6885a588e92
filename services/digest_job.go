package services

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"github.com/rs/zerolog"
	"gorm.io/gorm"

	"conference-management-api/config"
	"conference-management-api/models"
)

// ConferenceDigest is the weekly aggregate over one conference.
type ConferenceDigest struct {
	TotalSubmissions  int `json:"total_submissions"`
	InProgressReviews int `json:"in_progress_reviews"`
	CompletedReviews  int `json:"completed_reviews"`
	Accepted          int `json:"accepted"`
	Rejected          int `json:"rejected"`
	// AwaitingDecision counts undecided submissions whose full review
	// quota has been satisfied.
	AwaitingDecision int `json:"awaiting_decision"`
}

// ComputeConferenceDigest reduces a conference's submissions (with their
// assignments preloaded) and reviews into the digest counts.
func ComputeConferenceDigest(submissions []models.Submission, reviews []models.Review) ConferenceDigest {
	digest := ConferenceDigest{TotalSubmissions: len(submissions)}

	completedBySubmission := make(map[uint]int, len(submissions))
	for i := range reviews {
		r := &reviews[i]
		if r.IsCompleted() {
			digest.CompletedReviews++
			completedBySubmission[r.SubmissionID]++
		} else {
			digest.InProgressReviews++
		}
	}

	for i := range submissions {
		sub := &submissions[i]
		switch sub.Status {
		case models.SubmissionStatusAccepted,
			models.SubmissionStatusCameraReadyPending,
			models.SubmissionStatusFinalSubmitted:
			digest.Accepted++
			continue
		case models.SubmissionStatusRejected:
			digest.Rejected++
			continue
		}

		required := len(sub.Assignments)
		if required > 0 && completedBySubmission[sub.SubmissionID] >= required {
			digest.AwaitingDecision++
		}
	}
	return digest
}

// WeeklyDigestJob mails each organizer the digest for every conference of
// theirs that has not yet ended.
type WeeklyDigestJob struct {
	db     *gorm.DB
	outbox Outbox
	logger zerolog.Logger
}

func NewWeeklyDigestJob(db *gorm.DB, outbox Outbox, logger zerolog.Logger) *WeeklyDigestJob {
	if db == nil {
		db = config.DB
	}
	return &WeeklyDigestJob{db: db, outbox: outbox, logger: logger}
}

func (j *WeeklyDigestJob) Name() string { return "weekly-digest" }

func (j *WeeklyDigestJob) Run(ctx context.Context) error {
	var conferences []models.Conference
	if err := j.db.WithContext(ctx).
		Preload("Organizer").
		Where("end_date >= ? AND delete_at IS NULL", time.Now()).
		Find(&conferences).Error; err != nil {
		return fmt.Errorf("failed to load active conferences: %w", err)
	}

	for i := range conferences {
		conf := &conferences[i]
		if err := j.digestConference(ctx, conf); err != nil {
			// Stats failure for one conference must not block the rest.
			j.logger.Error().Err(err).
				Uint("conference_id", conf.ConferenceID).
				Msg("weekly digest failed for conference")
		}
	}
	return nil
}

func (j *WeeklyDigestJob) digestConference(ctx context.Context, conf *models.Conference) error {
	if conf.Organizer == nil || conf.Organizer.Email == "" {
		return fmt.Errorf("conference %d has no organizer email", conf.ConferenceID)
	}

	var submissions []models.Submission
	if err := j.db.WithContext(ctx).
		Preload("Assignments").
		Where("conference_id = ? AND delete_at IS NULL", conf.ConferenceID).
		Find(&submissions).Error; err != nil {
		return fmt.Errorf("failed to load submissions: %w", err)
	}

	var reviews []models.Review
	if len(submissions) > 0 {
		ids := make([]uint, 0, len(submissions))
		for i := range submissions {
			ids = append(ids, submissions[i].SubmissionID)
		}
		if err := j.db.WithContext(ctx).
			Where("submission_id IN ?", ids).
			Find(&reviews).Error; err != nil {
			return fmt.Errorf("failed to load reviews: %w", err)
		}
	}

	digest := ComputeConferenceDigest(submissions, reviews)

	return j.outbox.Enqueue(ctx, OutboundEmail{
		To:       conf.Organizer.Email,
		Template: TemplateWeeklyDigest,
		Data: map[string]string{
			"organizer_name":      conf.Organizer.FullName(),
			"conference_name":     conf.Name,
			"total_submissions":   strconv.Itoa(digest.TotalSubmissions),
			"in_progress_reviews": strconv.Itoa(digest.InProgressReviews),
			"completed_reviews":   strconv.Itoa(digest.CompletedReviews),
			"accepted":            strconv.Itoa(digest.Accepted),
			"rejected":            strconv.Itoa(digest.Rejected),
			"awaiting_decision":   strconv.Itoa(digest.AwaitingDecision),
		},
	})
}
