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

// ReviewReminderJob mails every reviewer who still owes a review for a
// submission of a conference starting in exactly leadDays days. The window
// is half-open [start, start+24h) so a daily cadence fires once per
// conference.
type ReviewReminderJob struct {
	db       *gorm.DB
	outbox   Outbox
	logger   zerolog.Logger
	leadDays int
}

func NewReviewReminderJob(db *gorm.DB, outbox Outbox, logger zerolog.Logger) *ReviewReminderJob {
	if db == nil {
		db = config.DB
	}
	return &ReviewReminderJob{db: db, outbox: outbox, logger: logger, leadDays: 7}
}

func (j *ReviewReminderJob) Name() string { return "review-reminder" }

func (j *ReviewReminderJob) Run(ctx context.Context) error {
	now := time.Now()
	from := now.AddDate(0, 0, j.leadDays)
	to := from.Add(24 * time.Hour)

	var conferences []models.Conference
	if err := j.db.WithContext(ctx).
		Where("start_date >= ? AND start_date < ? AND delete_at IS NULL", from, to).
		Find(&conferences).Error; err != nil {
		return fmt.Errorf("failed to load upcoming conferences: %w", err)
	}

	for i := range conferences {
		conf := &conferences[i]
		if err := j.remindConference(ctx, conf); err != nil {
			// One broken conference must not starve the others.
			j.logger.Error().Err(err).
				Uint("conference_id", conf.ConferenceID).
				Msg("review reminders failed for conference")
		}
	}
	return nil
}

func (j *ReviewReminderJob) remindConference(ctx context.Context, conf *models.Conference) error {
	var submissions []models.Submission
	if err := j.db.WithContext(ctx).
		Preload("Assignments.Reviewer").
		Where("conference_id = ? AND status IN ? AND delete_at IS NULL",
			conf.ConferenceID,
			[]string{models.SubmissionStatusSubmitted, models.SubmissionStatusUnderReview}).
		Find(&submissions).Error; err != nil {
		return fmt.Errorf("failed to load submissions: %w", err)
	}

	sent := 0
	for i := range submissions {
		sub := &submissions[i]

		var reviews []models.Review
		if err := j.db.WithContext(ctx).
			Where("submission_id = ?", sub.SubmissionID).
			Find(&reviews).Error; err != nil {
			j.logger.Error().Err(err).
				Uint("submission_id", sub.SubmissionID).
				Msg("failed to load reviews for reminder")
			continue
		}

		for _, assignment := range PendingAssignments(sub.Assignments, reviews) {
			if assignment.Reviewer == nil || assignment.Reviewer.Email == "" {
				continue
			}
			err := j.outbox.Enqueue(ctx, OutboundEmail{
				To:       assignment.Reviewer.Email,
				Template: TemplateReviewReminder,
				Data: map[string]string{
					"reviewer_name":    assignment.Reviewer.FullName(),
					"submission_title": sub.Title,
					"conference_name":  conf.Name,
					"start_date":       conf.StartDate.Format("2006-01-02"),
				},
			})
			if err != nil {
				// Per-recipient isolation: log and keep going.
				j.logger.Error().Err(err).
					Str("reviewer", assignment.Reviewer.Email).
					Uint("submission_id", sub.SubmissionID).
					Msg("failed to enqueue review reminder")
				continue
			}
			sent++
		}
	}

	j.logger.Info().
		Uint("conference_id", conf.ConferenceID).
		Str("reminders", strconv.Itoa(sent)).
		Msg("review reminders enqueued")
	return nil
}

// PendingAssignments returns the assignments whose reviewer has no
// completed review for the submission. A missing review row counts as
// pending, not as an error. Each assignment appears at most once, so a
// reviewer gets exactly one reminder per submission.
func PendingAssignments(assignments []models.ReviewAssignment, reviews []models.Review) []models.ReviewAssignment {
	completedBy := make(map[uint]bool, len(reviews))
	for i := range reviews {
		if reviews[i].IsCompleted() {
			completedBy[reviews[i].ReviewerID] = true
		}
	}

	seen := make(map[uint]bool, len(assignments))
	pending := make([]models.ReviewAssignment, 0, len(assignments))
	for _, a := range assignments {
		if completedBy[a.ReviewerID] || seen[a.ReviewerID] {
			continue
		}
		seen[a.ReviewerID] = true
		pending = append(pending, a)
	}
	return pending
}
