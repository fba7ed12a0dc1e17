package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// CommentRepository encapsulates comment persistence. Comments are immutable,
// so there is no update or delete: removal happens through the owning
// ticket's cascade.
type CommentRepository interface {
	Create(ctx context.Context, comment *domain.Comment) error
	ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error)
}

type commentRepository struct {
	pool *pgxpool.Pool
}

// NewCommentRepository instantiates repository.
func NewCommentRepository(pool *pgxpool.Pool) CommentRepository {
	return &commentRepository{pool: pool}
}

func (r *commentRepository) Create(ctx context.Context, comment *domain.Comment) error {
	const query = `
        INSERT INTO comments (ticket_id, content, author_name, author_type, attachments, created_at)
        VALUES ($1,$2,$3,$4,$5,$6)
        RETURNING id`
	attachments, err := encodeAttachments(comment.Attachments)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, query,
		comment.TicketID,
		comment.Content,
		comment.AuthorName,
		comment.AuthorType,
		attachments,
		comment.CreatedAt,
	).Scan(&comment.ID)
}

func (r *commentRepository) ListByTicket(ctx context.Context, ticketID string) ([]domain.Comment, error) {
	const query = `
        SELECT id, ticket_id, content, author_name, author_type, attachments, created_at
        FROM comments WHERE ticket_id=$1 ORDER BY created_at ASC`
	rows, err := r.pool.Query(ctx, query, ticketID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Comment
	for rows.Next() {
		var comment domain.Comment
		var attachments []byte
		if err := rows.Scan(
			&comment.ID,
			&comment.TicketID,
			&comment.Content,
			&comment.AuthorName,
			&comment.AuthorType,
			&attachments,
			&comment.CreatedAt,
		); err != nil {
			return nil, err
		}
		refs, err := decodeAttachments(attachments)
		if err != nil {
			return nil, err
		}
		comment.Attachments = refs
		result = append(result, comment)
	}
	return result, rows.Err()
}
