package services

import (
	"math"

	"conference-management-api/models"
)

// Majority decision labels.
const (
	DecisionAccepted      = "ACCEPTED"
	DecisionRejected      = "REJECTED"
	DecisionNeedsRevision = "NEEDS_REVISION"
)

type ReviewProgress struct {
	Completed  int `json:"completed"`
	Required   int `json:"required"`
	Percentage int `json:"percentage"`
}

type VoteBreakdown struct {
	Accept        int `json:"accept"`
	Reject        int `json:"reject"`
	MinorRevision int `json:"minor_revision"`
	MajorRevision int `json:"major_revision"`
}

// ReviewSummary is the read-only aggregation over a submission's reviews.
// It is recomputed from the current review set on every read and never
// stored.
type ReviewSummary struct {
	Progress         ReviewProgress `json:"review_progress"`
	Votes            VoteBreakdown  `json:"vote_breakdown"`
	AverageScore     *float64       `json:"average_score,omitempty"`
	MajorityDecision *string        `json:"majority_decision,omitempty"`
}

// SummarizeReviews computes the review summary for one submission.
// required is the number of assigned reviewers (the review quota); reviews
// is the full review set for the submission, in any order and any status.
// Reviewers without a review row simply do not contribute a completed
// review. A zero quota yields zero progress and no decision.
func SummarizeReviews(required int, reviews []models.Review) ReviewSummary {
	summary := ReviewSummary{
		Progress: ReviewProgress{Required: required},
	}

	var scoreSum float64
	for i := range reviews {
		r := &reviews[i]
		if !r.IsCompleted() {
			continue
		}
		summary.Progress.Completed++
		scoreSum += r.Score

		switch r.Recommendation {
		case models.RecommendAccept:
			summary.Votes.Accept++
		case models.RecommendReject:
			summary.Votes.Reject++
		case models.RecommendMinorRevision:
			summary.Votes.MinorRevision++
		case models.RecommendMajorRevision:
			summary.Votes.MajorRevision++
		}
	}

	if required > 0 {
		pct := summary.Progress.Completed * 100 / required
		if pct > 100 {
			pct = 100
		}
		summary.Progress.Percentage = pct
	}

	if summary.Progress.Completed > 0 {
		avg := math.Round(scoreSum/float64(summary.Progress.Completed)*10) / 10
		summary.AverageScore = &avg
	}

	// The decision exists only once the full review quota is satisfied.
	if required > 0 && summary.Progress.Completed >= required {
		decision := majorityDecision(summary.Votes)
		summary.MajorityDecision = &decision
	}

	return summary
}

// majorityDecision picks the verdict from the vote breakdown. The
// recommendation with the strictly highest count wins; both revision
// recommendations map to NEEDS_REVISION. Any tie for the top count resolves
// to NEEDS_REVISION: sending a tied paper back for revision is the
// conservative choice, preferred over REJECTED, preferred over ACCEPTED.
func majorityDecision(votes VoteBreakdown) string {
	counts := []struct {
		n        int
		decision string
	}{
		{votes.Accept, DecisionAccepted},
		{votes.Reject, DecisionRejected},
		{votes.MinorRevision, DecisionNeedsRevision},
		{votes.MajorRevision, DecisionNeedsRevision},
	}

	best := counts[0]
	tied := false
	for _, c := range counts[1:] {
		switch {
		case c.n > best.n:
			best = c
			tied = false
		case c.n == best.n && c.decision != best.decision:
			tied = true
		}
	}

	if tied {
		return DecisionNeedsRevision
	}
	return best.decision
}
