package services

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference-management-api/models"
)

func assignment(submissionID, reviewerID uint) models.ReviewAssignment {
	return models.ReviewAssignment{SubmissionID: submissionID, ReviewerID: reviewerID}
}

func TestPendingAssignments(t *testing.T) {
	assignments := []models.ReviewAssignment{
		assignment(1, 10),
		assignment(1, 11),
		assignment(1, 12),
	}
	reviews := []models.Review{
		{SubmissionID: 1, ReviewerID: 10, Status: models.ReviewStatusSubmitted},
		{SubmissionID: 1, ReviewerID: 11, Status: models.ReviewStatusDraft},
		// reviewer 12 never created a review row: pending, not an error
	}

	pending := PendingAssignments(assignments, reviews)
	require.Len(t, pending, 2)
	assert.Equal(t, uint(11), pending[0].ReviewerID)
	assert.Equal(t, uint(12), pending[1].ReviewerID)
}

func TestPendingAssignmentsOneReminderPerReviewerPerSubmission(t *testing.T) {
	// Duplicate assignment rows must still yield a single reminder.
	assignments := []models.ReviewAssignment{
		assignment(1, 10),
		assignment(1, 10),
	}

	pending := PendingAssignments(assignments, nil)
	assert.Len(t, pending, 1)
}

func TestComputeConferenceDigest(t *testing.T) {
	// 10 submissions: 3 accepted, 2 rejected, 5 under review with the full
	// review quota satisfied on each.
	var submissions []models.Submission
	var reviews []models.Review
	id := uint(1)

	for i := 0; i < 3; i++ {
		submissions = append(submissions, models.Submission{
			SubmissionID: id, Status: models.SubmissionStatusAccepted,
		})
		id++
	}
	for i := 0; i < 2; i++ {
		submissions = append(submissions, models.Submission{
			SubmissionID: id, Status: models.SubmissionStatusRejected,
		})
		id++
	}
	for i := 0; i < 5; i++ {
		submissions = append(submissions, models.Submission{
			SubmissionID: id,
			Status:       models.SubmissionStatusUnderReview,
			Assignments: []models.ReviewAssignment{
				assignment(id, 100),
				assignment(id, 101),
			},
		})
		reviews = append(reviews,
			models.Review{SubmissionID: id, ReviewerID: 100, Status: models.ReviewStatusSubmitted},
			models.Review{SubmissionID: id, ReviewerID: 101, Status: models.ReviewStatusSubmitted},
		)
		id++
	}

	digest := ComputeConferenceDigest(submissions, reviews)
	assert.Equal(t, 10, digest.TotalSubmissions)
	assert.Equal(t, 3, digest.Accepted)
	assert.Equal(t, 2, digest.Rejected)
	assert.Equal(t, 10, digest.CompletedReviews)
	assert.Equal(t, 0, digest.InProgressReviews)
	assert.Equal(t, 5, digest.AwaitingDecision)
}

func TestComputeConferenceDigestIncompleteQuota(t *testing.T) {
	submissions := []models.Submission{
		{
			SubmissionID: 1,
			Status:       models.SubmissionStatusUnderReview,
			Assignments:  []models.ReviewAssignment{assignment(1, 10), assignment(1, 11)},
		},
		{
			// No reviewers assigned: never counted as awaiting a decision.
			SubmissionID: 2,
			Status:       models.SubmissionStatusSubmitted,
		},
	}
	reviews := []models.Review{
		{SubmissionID: 1, ReviewerID: 10, Status: models.ReviewStatusSubmitted},
		{SubmissionID: 1, ReviewerID: 11, Status: models.ReviewStatusInProgress},
	}

	digest := ComputeConferenceDigest(submissions, reviews)
	assert.Equal(t, 2, digest.TotalSubmissions)
	assert.Equal(t, 1, digest.CompletedReviews)
	assert.Equal(t, 1, digest.InProgressReviews)
	assert.Equal(t, 0, digest.AwaitingDecision)
}

type countingJob struct {
	name string
	runs atomic.Int32
	err  error
}

func (j *countingJob) Name() string { return j.name }

func (j *countingJob) Run(context.Context) error {
	j.runs.Add(1)
	return j.err
}

func TestSchedulerRunsJobOnInterval(t *testing.T) {
	sched := NewScheduler(nil, zerolog.Nop())
	job := &countingJob{name: "tick"}
	sched.Every(10*time.Millisecond, "", job)

	ctx, cancel := context.WithCancel(context.Background())
	sched.Start(ctx)

	require.Eventually(t, func() bool { return job.runs.Load() >= 2 }, time.Second, 5*time.Millisecond)
	cancel()
	sched.Wait()
}

func TestSchedulerRunNow(t *testing.T) {
	sched := NewScheduler(nil, zerolog.Nop())
	job := &countingJob{name: "manual", err: errors.New("boom")}
	sched.Every(time.Hour, "", job)

	err := sched.RunNow(context.Background(), "manual")
	assert.EqualError(t, err, "boom")
	assert.Equal(t, int32(1), job.runs.Load())

	assert.Error(t, sched.RunNow(context.Background(), "missing"))
}
