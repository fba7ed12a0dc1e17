package handlers

import (
	"strings"

	"github.com/gofiber/fiber/v2"

	"github.com/spec-kit/helpdesk-service/internal/api/dto"
	"github.com/spec-kit/helpdesk-service/internal/auth"
	"github.com/spec-kit/helpdesk-service/internal/domain"
	"github.com/spec-kit/helpdesk-service/internal/service"
	apperrors "github.com/spec-kit/helpdesk-service/pkg/util/errorutil"
)

// CommentsHandler serves the comment endpoint. The route is public: an
// unauthenticated caller comments as the requester, an authenticated staff
// member comments as a technician. Permission rules live in the service.
type CommentsHandler struct {
	service *service.TicketService
}

// NewCommentsHandler constructs handler.
func NewCommentsHandler(ticketService *service.TicketService) *CommentsHandler {
	return &CommentsHandler{service: ticketService}
}

// CreateComment POST /api/comments.
func (h *CommentsHandler) CreateComment(c *fiber.Ctx) error {
	var req dto.CreateCommentRequest
	if err := c.BodyParser(&req); err != nil {
		return apperrors.NewInvalidArgument("invalid payload", nil)
	}
	if req.TicketID == "" {
		return apperrors.NewInvalidArgument("ticketId is required", nil)
	}
	if strings.TrimSpace(req.Content) == "" {
		return apperrors.NewInvalidArgument("content is required", nil)
	}

	input := service.CommentInput{
		TicketID:    req.TicketID,
		Content:     req.Content,
		AuthorName:  req.AuthorName,
		AuthorType:  domain.CommentAuthorUser,
		Actor:       domain.ActorRoleUser,
		Attachments: req.Attachments,
	}
	if principal, ok := auth.PrincipalFromContext(c); ok && principal.User != nil {
		input.AuthorType = domain.CommentAuthorTechnician
		input.Actor = principal.Role
		if strings.TrimSpace(input.AuthorName) == "" {
			input.AuthorName = principal.User.Name
		}
	}

	comment, err := h.service.AddComment(c.UserContext(), input)
	if err != nil {
		return err
	}
	return c.Status(fiber.StatusCreated).JSON(dto.FromComment(comment))
}
