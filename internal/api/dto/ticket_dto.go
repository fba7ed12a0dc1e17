package dto

import (
	"time"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Sector         string                `json:"sector"`
	ProblemType    string                `json:"problemType"`
	Priority       domain.TicketPriority `json:"priority"`
	RequesterName  string                `json:"requesterName"`
	RequesterEmail string                `json:"requesterEmail"`
	Attachments    []string              `json:"attachments"`
}

// UpdateStatusRequest payload.
type UpdateStatusRequest struct {
	Status domain.TicketStatus `json:"status"`
}

// UpdatePriorityRequest payload.
type UpdatePriorityRequest struct {
	Priority domain.TicketPriority `json:"priority"`
}

// AssignTicketRequest payload.
type AssignTicketRequest struct {
	TechnicianID string `json:"technicianId"`
}

// TicketResponse is the flat ticket representation.
type TicketResponse struct {
	ID             string                `json:"id"`
	TicketNumber   int64                 `json:"ticketNumber"`
	Title          string                `json:"title"`
	Description    string                `json:"description"`
	Sector         string                `json:"sector"`
	ProblemType    string                `json:"problemType"`
	Priority       domain.TicketPriority `json:"priority"`
	Status         domain.TicketStatus   `json:"status"`
	RequesterName  string                `json:"requesterName"`
	RequesterEmail string                `json:"requesterEmail"`
	AssignedToID   *string               `json:"assignedToId"`
	AcceptedAt     *time.Time            `json:"acceptedAt"`
	ResolvedAt     *time.Time            `json:"resolvedAt"`
	CreatedAt      time.Time             `json:"createdAt"`
	UpdatedAt      time.Time             `json:"updatedAt"`
	Attachments    []string              `json:"attachments"`
}

// TicketDetailResponse adds the comment thread and assignee.
type TicketDetailResponse struct {
	TicketResponse
	AssignedTo *UserResponse     `json:"assignedTo"`
	Comments   []CommentResponse `json:"comments"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID          string                   `json:"id"`
	TicketID    string                   `json:"ticketId"`
	Content     string                   `json:"content"`
	AuthorName  string                   `json:"authorName"`
	AuthorType  domain.CommentAuthorType `json:"authorType"`
	Attachments []string                 `json:"attachments"`
	CreatedAt   time.Time                `json:"createdAt"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	TicketID    string                   `json:"ticketId"`
	Content     string                   `json:"content"`
	AuthorName  string                   `json:"authorName"`
	AuthorType  domain.CommentAuthorType `json:"authorType"`
	Attachments []string                 `json:"attachments"`
}

// FromTicket maps a domain ticket.
func FromTicket(t *domain.Ticket) TicketResponse {
	attachments := t.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return TicketResponse{
		ID:             t.ID,
		TicketNumber:   t.TicketNumber,
		Title:          t.Title,
		Description:    t.Description,
		Sector:         t.Sector,
		ProblemType:    t.ProblemType,
		Priority:       t.Priority,
		Status:         t.Status,
		RequesterName:  t.RequesterName,
		RequesterEmail: t.RequesterEmail,
		AssignedToID:   t.AssignedToID,
		AcceptedAt:     t.AcceptedAt,
		ResolvedAt:     t.ResolvedAt,
		CreatedAt:      t.CreatedAt,
		UpdatedAt:      t.UpdatedAt,
		Attachments:    attachments,
	}
}

// FromTicketDetail maps a ticket with its thread and assignee.
func FromTicketDetail(t *domain.TicketWithDetails) TicketDetailResponse {
	detail := TicketDetailResponse{
		TicketResponse: FromTicket(&t.Ticket),
		Comments:       make([]CommentResponse, 0, len(t.Comments)),
	}
	if t.AssignedTo != nil {
		user := FromUser(t.AssignedTo)
		detail.AssignedTo = &user
	}
	for i := range t.Comments {
		detail.Comments = append(detail.Comments, FromComment(&t.Comments[i]))
	}
	return detail
}

// FromComment maps a domain comment.
func FromComment(c *domain.Comment) CommentResponse {
	attachments := c.Attachments
	if attachments == nil {
		attachments = []string{}
	}
	return CommentResponse{
		ID:          c.ID,
		TicketID:    c.TicketID,
		Content:     c.Content,
		AuthorName:  c.AuthorName,
		AuthorType:  c.AuthorType,
		Attachments: attachments,
		CreatedAt:   c.CreatedAt,
	}
}
