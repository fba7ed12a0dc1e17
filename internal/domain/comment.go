package domain

import "time"

// CommentAuthorType indicates who authored a comment.
type CommentAuthorType string

const (
	CommentAuthorUser       CommentAuthorType = "user"
	CommentAuthorTechnician CommentAuthorType = "technician"
)

// ValidCommentAuthorType reports whether t is a known author type.
func ValidCommentAuthorType(t CommentAuthorType) bool {
	return t == CommentAuthorUser || t == CommentAuthorTechnician
}

// Comment is an immutable entry in a ticket thread. Comments are owned by
// their ticket and cascade-deleted with it.
type Comment struct {
	ID          string
	TicketID    string
	Content     string
	AuthorName  string
	AuthorType  CommentAuthorType
	Attachments []string
	CreatedAt   time.Time
}
