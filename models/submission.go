package models

import "time"

// Submission statuses.
const (
	SubmissionStatusSubmitted          = "submitted"
	SubmissionStatusUnderReview        = "under_review"
	SubmissionStatusReviewCompleted    = "review_completed"
	SubmissionStatusAccepted           = "accepted"
	SubmissionStatusRejected           = "rejected"
	SubmissionStatusCameraReadyPending = "camera_ready_pending"
	SubmissionStatusFinalSubmitted     = "final_submitted"
)

type Submission struct {
	SubmissionID uint       `gorm:"primaryKey;column:submission_id" json:"submission_id"`
	Title        string     `gorm:"column:title" json:"title"`
	Abstract     string     `gorm:"column:abstract" json:"abstract"`
	ConferenceID uint       `gorm:"column:conference_id;index" json:"conference_id"`
	TrackID      *uint      `gorm:"column:track_id" json:"track_id,omitempty"`
	AuthorID     uint       `gorm:"column:author_id;index" json:"author_id"`
	Status       string     `gorm:"column:status" json:"status"`
	FileID       *uint      `gorm:"column:file_id" json:"file_id,omitempty"`
	SubmittedAt  *time.Time `gorm:"column:submitted_at" json:"submitted_at,omitempty"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`
	UpdateAt     *time.Time `gorm:"column:update_at" json:"update_at"`
	DeleteAt     *time.Time `gorm:"column:delete_at" json:"delete_at,omitempty"`

	// Relations
	Author      *User              `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
	Conference  *Conference        `gorm:"foreignKey:ConferenceID" json:"conference,omitempty"`
	Track       *Track             `gorm:"foreignKey:TrackID" json:"track,omitempty"`
	File        *FileUpload        `gorm:"foreignKey:FileID" json:"file,omitempty"`
	CoAuthors   []CoAuthor         `gorm:"foreignKey:SubmissionID" json:"co_authors,omitempty"`
	Assignments []ReviewAssignment `gorm:"foreignKey:SubmissionID" json:"assignments,omitempty"`
}

func (Submission) TableName() string {
	return "submissions"
}

// IsEditable reports whether the author may still modify the submission.
func (s *Submission) IsEditable() bool {
	return s.Status == SubmissionStatusSubmitted
}

// InReview reports whether the submission still participates in the review
// cycle (reminders, progress tracking).
func (s *Submission) InReview() bool {
	return s.Status == SubmissionStatusSubmitted || s.Status == SubmissionStatusUnderReview
}

// IsDecided reports whether an organizer decision has been recorded.
func (s *Submission) IsDecided() bool {
	switch s.Status {
	case SubmissionStatusAccepted, SubmissionStatusRejected,
		SubmissionStatusCameraReadyPending, SubmissionStatusFinalSubmitted:
		return true
	}
	return false
}

// CoAuthor is a co-author entry on a submission. Email is stored
// lower-cased; UserID is set when the address matches a registered user.
type CoAuthor struct {
	CoAuthorID   uint       `gorm:"primaryKey;column:co_author_id" json:"co_author_id"`
	SubmissionID uint       `gorm:"column:submission_id;index" json:"submission_id"`
	Name         string     `gorm:"column:name" json:"name"`
	Email        string     `gorm:"column:email" json:"email"`
	UserID       *uint      `gorm:"column:user_id" json:"user_id,omitempty"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`

	User *User `gorm:"foreignKey:UserID" json:"user,omitempty"`
}

func (CoAuthor) TableName() string {
	return "co_authors"
}

// ReviewAssignment records that a reviewer has been assigned to a
// submission. The number of assignment rows is the review quota the
// aggregation measures progress against.
type ReviewAssignment struct {
	AssignmentID uint       `gorm:"primaryKey;column:assignment_id" json:"assignment_id"`
	SubmissionID uint       `gorm:"column:submission_id;index" json:"submission_id"`
	ReviewerID   uint       `gorm:"column:reviewer_id;index" json:"reviewer_id"`
	AssignedBy   uint       `gorm:"column:assigned_by" json:"assigned_by"`
	CreateAt     *time.Time `gorm:"column:create_at" json:"create_at"`

	Reviewer *User `gorm:"foreignKey:ReviewerID" json:"reviewer,omitempty"`
}

func (ReviewAssignment) TableName() string {
	return "review_assignments"
}
