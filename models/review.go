package models

import "time"

// Review statuses. A review counts as completed once it is submitted or
// sent back for revision; drafts and in-progress reviews do not.
const (
	ReviewStatusDraft           = "draft"
	ReviewStatusInProgress      = "in_progress"
	ReviewStatusSubmitted       = "submitted"
	ReviewStatusPendingRevision = "pending_revision"
)

// Reviewer recommendations.
const (
	RecommendAccept        = "ACCEPT"
	RecommendReject        = "REJECT"
	RecommendMinorRevision = "MINOR_REVISION"
	RecommendMajorRevision = "MAJOR_REVISION"
)

// ValidRecommendations lists every recommendation accepted on review submit.
var ValidRecommendations = map[string]bool{
	RecommendAccept:        true,
	RecommendReject:        true,
	RecommendMinorRevision: true,
	RecommendMajorRevision: true,
}

type Review struct {
	ReviewID             uint       `gorm:"primaryKey;column:review_id" json:"review_id"`
	SubmissionID         uint       `gorm:"column:submission_id;index" json:"submission_id"`
	ReviewerID           uint       `gorm:"column:reviewer_id;index" json:"reviewer_id"`
	Status               string     `gorm:"column:status" json:"status"`
	Score                float64    `gorm:"column:score" json:"score"` // 0-10, meaningful once completed
	Recommendation       string     `gorm:"column:recommendation" json:"recommendation"`
	Comments             *string    `gorm:"column:comments" json:"comments,omitempty"`
	ConfidentialComments *string    `gorm:"column:confidential_comments" json:"-"`
	SubmittedAt          *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreateAt             *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt             *time.Time `gorm:"column:update_at" json:"update_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

func (Review) TableName() string {
	return "reviews"
}

// IsCompleted reports whether the review counts toward review progress.
func (r *Review) IsCompleted() bool {
	return r.Status == ReviewStatusSubmitted || r.Status == ReviewStatusPendingRevision
}
