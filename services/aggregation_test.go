package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"conference-management-api/models"
)

func completedReview(recommendation string, score float64) models.Review {
	now := time.Now()
	return models.Review{
		Status:         models.ReviewStatusSubmitted,
		Score:          score,
		Recommendation: recommendation,
		SubmittedAt:    &now,
	}
}

func TestSummarizeReviewsNoAssignedReviewers(t *testing.T) {
	summary := SummarizeReviews(0, []models.Review{
		completedReview(models.RecommendAccept, 8),
	})

	assert.Equal(t, 0, summary.Progress.Percentage)
	assert.Nil(t, summary.MajorityDecision)
}

func TestSummarizeReviewsProgress(t *testing.T) {
	reviews := []models.Review{
		completedReview(models.RecommendAccept, 8),
		{Status: models.ReviewStatusDraft},
		{Status: models.ReviewStatusInProgress},
	}

	summary := SummarizeReviews(3, reviews)

	assert.Equal(t, 1, summary.Progress.Completed)
	assert.Equal(t, 3, summary.Progress.Required)
	assert.Equal(t, 33, summary.Progress.Percentage) // floor(1/3*100)
	assert.Nil(t, summary.MajorityDecision, "decision requires the full quota")
}

func TestSummarizeReviewsPercentageBounds(t *testing.T) {
	// More completed reviews than assignments must still clamp at 100.
	reviews := []models.Review{
		completedReview(models.RecommendAccept, 7),
		completedReview(models.RecommendAccept, 9),
		completedReview(models.RecommendReject, 2),
	}

	summary := SummarizeReviews(2, reviews)
	assert.Equal(t, 100, summary.Progress.Percentage)
}

func TestSummarizeReviewsAverageScore(t *testing.T) {
	summary := SummarizeReviews(3, nil)
	assert.Nil(t, summary.AverageScore, "no completed reviews, no average")

	reviews := []models.Review{
		completedReview(models.RecommendAccept, 7),
		completedReview(models.RecommendAccept, 8),
		completedReview(models.RecommendReject, 4),
	}
	summary = SummarizeReviews(3, reviews)
	require.NotNil(t, summary.AverageScore)
	assert.InDelta(t, 6.3, *summary.AverageScore, 0.001) // 19/3 rounded to one decimal

	// Pending-revision reviews count as completed.
	reviews[0].Status = models.ReviewStatusPendingRevision
	summary = SummarizeReviews(3, reviews)
	assert.Equal(t, 3, summary.Progress.Completed)
}

func TestMajorityDecisionStrictWinner(t *testing.T) {
	reviews := []models.Review{
		completedReview(models.RecommendAccept, 8),
		completedReview(models.RecommendAccept, 7),
		completedReview(models.RecommendReject, 3),
	}

	summary := SummarizeReviews(3, reviews)
	require.NotNil(t, summary.MajorityDecision)
	assert.Equal(t, DecisionAccepted, *summary.MajorityDecision)
	assert.Equal(t, VoteBreakdown{Accept: 2, Reject: 1}, summary.Votes)
}

func TestMajorityDecisionTieIsConservative(t *testing.T) {
	reviews := []models.Review{
		completedReview(models.RecommendAccept, 8),
		completedReview(models.RecommendReject, 2),
	}

	summary := SummarizeReviews(2, reviews)
	require.NotNil(t, summary.MajorityDecision)
	assert.Equal(t, DecisionNeedsRevision, *summary.MajorityDecision)
}

func TestMajorityDecisionRevisionVariantsShareOneBucket(t *testing.T) {
	reviews := []models.Review{
		completedReview(models.RecommendMinorRevision, 5),
		completedReview(models.RecommendMajorRevision, 4),
		completedReview(models.RecommendAccept, 8),
	}

	summary := SummarizeReviews(3, reviews)
	require.NotNil(t, summary.MajorityDecision)
	assert.Equal(t, DecisionNeedsRevision, *summary.MajorityDecision)
	assert.Equal(t, VoteBreakdown{Accept: 1, MinorRevision: 1, MajorRevision: 1}, summary.Votes)
}

func TestMajorityDecisionRejectBeatsSplitRevisions(t *testing.T) {
	reviews := []models.Review{
		completedReview(models.RecommendReject, 2),
		completedReview(models.RecommendReject, 3),
		completedReview(models.RecommendMinorRevision, 5),
	}

	summary := SummarizeReviews(3, reviews)
	require.NotNil(t, summary.MajorityDecision)
	assert.Equal(t, DecisionRejected, *summary.MajorityDecision)
}

func TestSummarizeReviewsDecisionPresence(t *testing.T) {
	reviews := []models.Review{
		completedReview(models.RecommendAccept, 8),
		completedReview(models.RecommendAccept, 9),
	}

	// One review short of the quota: no decision yet.
	summary := SummarizeReviews(3, reviews)
	assert.Nil(t, summary.MajorityDecision)

	summary = SummarizeReviews(2, reviews)
	require.NotNil(t, summary.MajorityDecision)
	assert.Equal(t, DecisionAccepted, *summary.MajorityDecision)
}
