// Package notify implements the notification collaborator: given a ticket and
// an event, it sends an email to the requester or the staff list. Failures are
// returned to the caller but never cross the lifecycle boundary, so
// transitions commit regardless of mail outcome.
package notify

import (
	"fmt"
	"html"

	"go.uber.org/zap"
	"gopkg.in/gomail.v2"

	"github.com/spec-kit/helpdesk-service/internal/config"
	"github.com/spec-kit/helpdesk-service/internal/domain"
)

// Mailer is the outbound notification surface consumed by the notification
// service. Implementations must not panic past this boundary.
type Mailer interface {
	SendTicketCreated(ticket *domain.Ticket) error
	SendTicketCreatedToStaff(ticket *domain.Ticket, staff []domain.User) error
	SendTicketAssigned(ticket *domain.Ticket, technician *domain.User) error
	SendCommentAdded(ticket *domain.Ticket, authorName string) error
	SendPriorityChanged(ticket *domain.Ticket, newPriority domain.TicketPriority, updatedBy string) error
	SendTicketResolved(ticket *domain.Ticket, resolvedBy string) error
}

// SMTPMailer delivers notifications over SMTP via gomail. Without a
// configured host it logs the would-be delivery and reports success, which
// keeps development environments mail-free.
type SMTPMailer struct {
	dialer *gomail.Dialer
	from   string
	logger *zap.Logger
}

// NewSMTPMailer builds the mailer from SMTP settings.
func NewSMTPMailer(cfg config.SMTPConfig, logger *zap.Logger) *SMTPMailer {
	m := &SMTPMailer{from: cfg.FromEmail, logger: logger}
	if cfg.Host != "" {
		m.dialer = gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password)
	} else {
		logger.Warn("SMTP host not configured; notifications will be logged only")
	}
	return m
}

func (m *SMTPMailer) send(to, subject, htmlBody string) error {
	if to == "" {
		return nil
	}
	if m.dialer == nil {
		m.logger.Info("email skipped (no SMTP transport)",
			zap.String("to", to),
			zap.String("subject", subject))
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", htmlBody)

	if err := m.dialer.DialAndSend(msg); err != nil {
		return fmt.Errorf("send email to %s: %w", to, err)
	}
	return nil
}

func esc(s string) string {
	return html.EscapeString(s)
}

func priorityLabel(p domain.TicketPriority) string {
	switch p {
	case domain.TicketPriorityHigh:
		return "Alta"
	case domain.TicketPriorityMedium:
		return "Média"
	case domain.TicketPriorityLow:
		return "Baixa"
	default:
		return "Aguardando"
	}
}

func ticketSummaryHTML(t *domain.Ticket) string {
	return fmt.Sprintf(`
        <div style="background-color: #f3f4f6; padding: 20px; border-radius: 8px; margin: 20px 0;">
          <h3>Detalhes do Chamado</h3>
          <p><strong>Número:</strong> #%d</p>
          <p><strong>Título:</strong> %s</p>
          <p><strong>Setor:</strong> %s</p>
          <p><strong>Tipo de Problema:</strong> %s</p>
          <p><strong>Prioridade:</strong> %s</p>
        </div>`,
		t.TicketNumber, esc(t.Title), esc(t.Sector), esc(t.ProblemType), priorityLabel(t.Priority))
}

func (m *SMTPMailer) SendTicketCreated(t *domain.Ticket) error {
	subject := fmt.Sprintf("Chamado #%d criado com sucesso", t.TicketNumber)
	body := fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
        <h2 style="color: #2563eb;">Chamado Criado com Sucesso</h2>
        <p>Olá <strong>%s</strong>,</p>
        <p>Seu chamado foi criado com sucesso! Aqui estão os detalhes:</p>
        %s
        <p>Você receberá atualizações por email conforme o andamento.</p>
      </div>`, esc(t.RequesterName), ticketSummaryHTML(t))
	return m.send(t.RequesterEmail, subject, body)
}

func (m *SMTPMailer) SendTicketCreatedToStaff(t *domain.Ticket, staff []domain.User) error {
	subject := fmt.Sprintf("Novo Chamado #%d - %s", t.TicketNumber, esc(t.Sector))
	body := fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
        <h2 style="color: #2563eb;">Novo Chamado Aberto</h2>
        <p>Um novo chamado foi aberto por <strong>%s</strong>.</p>
        %s
      </div>`, esc(t.RequesterName), ticketSummaryHTML(t))

	var firstErr error
	for i := range staff {
		if staff[i].Email == nil || *staff[i].Email == "" {
			continue
		}
		if err := m.send(*staff[i].Email, subject, body); err != nil && firstErr == nil {
			firstErr = err
		}
	}
	return firstErr
}

func (m *SMTPMailer) SendTicketAssigned(t *domain.Ticket, technician *domain.User) error {
	subject := fmt.Sprintf("Chamado #%d foi aceito por um técnico", t.TicketNumber)
	body := fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
        <h2 style="color: #16a34a;">Chamado Aceito!</h2>
        <p>Olá <strong>%s</strong>,</p>
        <p>Seu chamado foi aceito pelo técnico <strong>%s</strong> e está em atendimento.</p>
        %s
      </div>`, esc(t.RequesterName), esc(technician.Name), ticketSummaryHTML(t))
	return m.send(t.RequesterEmail, subject, body)
}

func (m *SMTPMailer) SendCommentAdded(t *domain.Ticket, authorName string) error {
	subject := fmt.Sprintf("Nova atualização no chamado #%d", t.TicketNumber)
	body := fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
        <h2 style="color: #2563eb;">Nova Atualização no Seu Chamado</h2>
        <p>Olá <strong>%s</strong>,</p>
        <p><strong>%s</strong> adicionou um comentário ao seu chamado.</p>
        %s
      </div>`, esc(t.RequesterName), esc(authorName), ticketSummaryHTML(t))
	return m.send(t.RequesterEmail, subject, body)
}

func (m *SMTPMailer) SendPriorityChanged(t *domain.Ticket, newPriority domain.TicketPriority, updatedBy string) error {
	subject := fmt.Sprintf("Prioridade do chamado #%d foi alterada", t.TicketNumber)
	body := fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
        <h2 style="color: #d97706;">Prioridade Alterada</h2>
        <p>Olá <strong>%s</strong>,</p>
        <p>A prioridade do seu chamado foi alterada para <strong>%s</strong> por %s.</p>
        %s
      </div>`, esc(t.RequesterName), priorityLabel(newPriority), esc(updatedBy), ticketSummaryHTML(t))
	return m.send(t.RequesterEmail, subject, body)
}

func (m *SMTPMailer) SendTicketResolved(t *domain.Ticket, resolvedBy string) error {
	subject := fmt.Sprintf("Chamado #%d foi finalizado", t.TicketNumber)
	body := fmt.Sprintf(`
      <div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
        <h2 style="color: #16a34a;">Chamado Finalizado!</h2>
        <p>Olá <strong>%s</strong>,</p>
        <p>Seu chamado foi finalizado por <strong>%s</strong>.</p>
        %s
      </div>`, esc(t.RequesterName), esc(resolvedBy), ticketSummaryHTML(t))
	return m.send(t.RequesterEmail, subject, body)
}
