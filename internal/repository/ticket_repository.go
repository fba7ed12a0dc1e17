package repository

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// TicketFilter captures listing parameters. TechnicianID selects the
// technician's queue: tickets assigned to them plus the unassigned pool.
type TicketFilter struct {
	Status       *domain.TicketStatus
	TechnicianID *string
}

// TicketRepository encapsulates ticket persistence.
type TicketRepository interface {
	Create(ctx context.Context, ticket *domain.Ticket) error
	Update(ctx context.Context, ticket *domain.Ticket) error
	// UpdateAssignment writes the assignment fields only when the stored
	// assignee still matches expected; pgx.ErrNoRows signals the
	// compare-and-swap lost.
	UpdateAssignment(ctx context.Context, ticket *domain.Ticket, expected *string) error
	GetByID(ctx context.Context, id string) (*domain.Ticket, error)
	GetByNumber(ctx context.Context, number int64) (*domain.Ticket, error)
	List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error)
	Delete(ctx context.Context, id string) error
}

type ticketRepository struct {
	pool *pgxpool.Pool
}

// NewTicketRepository instantiates repository.
func NewTicketRepository(pool *pgxpool.Pool) TicketRepository {
	return &ticketRepository{pool: pool}
}

const ticketColumns = `id, ticket_number, title, description, sector, problem_type,
               priority, status, requester_name, requester_email, assigned_to_id,
               accepted_at, resolved_at, created_at, updated_at, attachments`

// Listing puts high priority first, then medium, then low, then unranked
// (the system "waiting" priority); ties break on newest created.
const ticketOrdering = `ORDER BY CASE
                 WHEN priority = 'high' THEN 1
                 WHEN priority = 'medium' THEN 2
                 WHEN priority = 'low' THEN 3
                 ELSE 4
             END, created_at DESC`

func (r *ticketRepository) Create(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        INSERT INTO tickets (title, description, sector, problem_type, priority, status,
            requester_name, requester_email, attachments, created_at, updated_at)
        VALUES ($1,$2,$3,$4,$5,$6,$7,$8,$9,$10,$11)
        RETURNING id, ticket_number`
	attachments, err := encodeAttachments(ticket.Attachments)
	if err != nil {
		return err
	}
	return r.pool.QueryRow(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Sector,
		ticket.ProblemType,
		ticket.Priority,
		ticket.Status,
		ticket.RequesterName,
		ticket.RequesterEmail,
		attachments,
		ticket.CreatedAt,
		ticket.UpdatedAt,
	).Scan(&ticket.ID, &ticket.TicketNumber)
}

func (r *ticketRepository) Update(ctx context.Context, ticket *domain.Ticket) error {
	const query = `
        UPDATE tickets SET title=$1, description=$2, sector=$3, problem_type=$4,
            priority=$5, status=$6, assigned_to_id=$7, accepted_at=$8, resolved_at=$9,
            attachments=$10, updated_at=$11
        WHERE id=$12`
	attachments, err := encodeAttachments(ticket.Attachments)
	if err != nil {
		return err
	}
	cmd, err := r.pool.Exec(ctx, query,
		ticket.Title,
		ticket.Description,
		ticket.Sector,
		ticket.ProblemType,
		ticket.Priority,
		ticket.Status,
		ticket.AssignedToID,
		ticket.AcceptedAt,
		ticket.ResolvedAt,
		attachments,
		ticket.UpdatedAt,
		ticket.ID,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) UpdateAssignment(ctx context.Context, ticket *domain.Ticket, expected *string) error {
	const query = `
        UPDATE tickets SET assigned_to_id=$1, status=$2, accepted_at=$3,
            resolved_at=$4, updated_at=$5
        WHERE id=$6 AND assigned_to_id IS NOT DISTINCT FROM $7`
	cmd, err := r.pool.Exec(ctx, query,
		ticket.AssignedToID,
		ticket.Status,
		ticket.AcceptedAt,
		ticket.ResolvedAt,
		ticket.UpdatedAt,
		ticket.ID,
		expected,
	)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func (r *ticketRepository) GetByID(ctx context.Context, id string) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE id=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, id)
}

func (r *ticketRepository) GetByNumber(ctx context.Context, number int64) (*domain.Ticket, error) {
	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE ticket_number=$1`, ticketColumns)
	return r.fetchSingle(ctx, query, number)
}

func (r *ticketRepository) fetchSingle(ctx context.Context, query string, arg any) (*domain.Ticket, error) {
	row := r.pool.QueryRow(ctx, query, arg)
	return scanTicket(row)
}

func (r *ticketRepository) List(ctx context.Context, filter TicketFilter) ([]domain.Ticket, error) {
	clauses := []string{"1=1"}
	args := []any{}

	if filter.Status != nil {
		args = append(args, *filter.Status)
		clauses = append(clauses, fmt.Sprintf("status=$%d", len(args)))
	}
	if filter.TechnicianID != nil {
		args = append(args, *filter.TechnicianID)
		clauses = append(clauses, fmt.Sprintf("(assigned_to_id=$%d OR assigned_to_id IS NULL)", len(args)))
	}

	query := fmt.Sprintf(`SELECT %s FROM tickets WHERE %s %s`,
		ticketColumns, strings.Join(clauses, " AND "), ticketOrdering)

	rows, err := r.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []domain.Ticket
	for rows.Next() {
		ticket, err := scanTicket(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *ticket)
	}
	return result, rows.Err()
}

func (r *ticketRepository) Delete(ctx context.Context, id string) error {
	cmd, err := r.pool.Exec(ctx, `DELETE FROM tickets WHERE id=$1`, id)
	if err != nil {
		return err
	}
	if cmd.RowsAffected() == 0 {
		return pgx.ErrNoRows
	}
	return nil
}

func scanTicket(row pgx.Row) (*domain.Ticket, error) {
	var ticket domain.Ticket
	var attachments []byte
	if err := row.Scan(
		&ticket.ID,
		&ticket.TicketNumber,
		&ticket.Title,
		&ticket.Description,
		&ticket.Sector,
		&ticket.ProblemType,
		&ticket.Priority,
		&ticket.Status,
		&ticket.RequesterName,
		&ticket.RequesterEmail,
		&ticket.AssignedToID,
		&ticket.AcceptedAt,
		&ticket.ResolvedAt,
		&ticket.CreatedAt,
		&ticket.UpdatedAt,
		&attachments,
	); err != nil {
		return nil, err
	}
	refs, err := decodeAttachments(attachments)
	if err != nil {
		return nil, err
	}
	ticket.Attachments = refs
	return &ticket, nil
}

// Attachment references live as an opaque ordered sequence in the domain and
// are JSON-encoded only at this boundary.
func encodeAttachments(refs []string) ([]byte, error) {
	if refs == nil {
		refs = []string{}
	}
	return json.Marshal(refs)
}

func decodeAttachments(raw []byte) ([]string, error) {
	if len(raw) == 0 {
		return []string{}, nil
	}
	var refs []string
	if err := json.Unmarshal(raw, &refs); err != nil {
		return nil, err
	}
	return refs, nil
}
