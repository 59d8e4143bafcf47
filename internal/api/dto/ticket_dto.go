package dto

import (
	"time"

	"github.com/spec-kit/support-desk/internal/domain"
)

// CreateTicketRequest payload.
type CreateTicketRequest struct {
	Title       string                `json:"title"`
	Description string                `json:"description"`
	Category    string                `json:"category"`
	Tags        []string              `json:"tags"`
	Priority    domain.TicketPriority `json:"priority"`
	Impact      domain.TicketLevel    `json:"impact"`
	Urgency     domain.TicketLevel    `json:"urgency"`
	Attachments []AttachmentRequest   `json:"attachments"`
}

// AttachmentRequest declares metadata for an already-uploaded file.
type AttachmentRequest struct {
	StorageKey string `json:"storage_key"`
	FileName   string `json:"file_name"`
	MimeType   string `json:"mime_type"`
	SizeBytes  int64  `json:"size_bytes"`
}

// UpdateTicketRequest payload. Absent fields stay unchanged.
type UpdateTicketRequest struct {
	Title       *string                `json:"title"`
	Description *string                `json:"description"`
	Category    *string                `json:"category"`
	Tags        []string               `json:"tags"`
	Priority    *domain.TicketPriority `json:"priority"`
	Impact      *domain.TicketLevel    `json:"impact"`
	Urgency     *domain.TicketLevel    `json:"urgency"`
	Status      *domain.TicketStatus   `json:"status"`
}

// CreateCommentRequest payload.
type CreateCommentRequest struct {
	Body     string `json:"body"`
	Internal bool   `json:"internal"`
}

// AssignTicketRequest payload. A null assignee clears the assignment.
type AssignTicketRequest struct {
	AssigneeID *string `json:"assignee_id"`
}

// TicketSummary response.
type TicketSummary struct {
	ID           string                `json:"id"`
	TicketNumber string                `json:"ticket_number"`
	Title        string                `json:"title"`
	Category     string                `json:"category"`
	Status       domain.TicketStatus   `json:"status"`
	Priority     domain.TicketPriority `json:"priority"`
	AssignedTo   *string               `json:"assigned_to"`
	Tags         []string              `json:"tags"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
}

// TicketDetailResponse provides full ticket info.
type TicketDetailResponse struct {
	ID           string                `json:"id"`
	TicketNumber string                `json:"ticket_number"`
	CreatedBy    string                `json:"created_by"`
	AssignedTo   *string               `json:"assigned_to"`
	Title        string                `json:"title"`
	Description  string                `json:"description"`
	Category     string                `json:"category"`
	Tags         []string              `json:"tags"`
	Priority     domain.TicketPriority `json:"priority"`
	Impact       domain.TicketLevel    `json:"impact"`
	Urgency      domain.TicketLevel    `json:"urgency"`
	Status       domain.TicketStatus   `json:"status"`
	ResolvedAt   *time.Time            `json:"resolved_at"`
	ClosedAt     *time.Time            `json:"closed_at"`
	CreatedAt    time.Time             `json:"created_at"`
	UpdatedAt    time.Time             `json:"updated_at"`
	Comments     []CommentResponse     `json:"comments"`
	Attachments  []AttachmentResponse  `json:"attachments"`
}

// CommentResponse represents a thread entry.
type CommentResponse struct {
	ID        string    `json:"id"`
	AuthorID  string    `json:"author_id"`
	Body      string    `json:"body"`
	Internal  bool      `json:"internal"`
	CreatedAt time.Time `json:"created_at"`
}

// AttachmentResponse metadata.
type AttachmentResponse struct {
	ID         string    `json:"id"`
	StorageKey string    `json:"storage_key"`
	FileName   string    `json:"file_name"`
	MimeType   string    `json:"mime_type"`
	SizeBytes  int64     `json:"size_bytes"`
	CreatedAt  time.Time `json:"created_at"`
}

// TicketListResponse wraps a listing page.
type TicketListResponse struct {
	Tickets []TicketSummary `json:"tickets"`
	Limit   int             `json:"limit"`
	Offset  int             `json:"offset"`
}

// NewTicketSummary maps a ticket to its summary view.
func NewTicketSummary(t *domain.Ticket) TicketSummary {
	return TicketSummary{
		ID:           t.ID,
		TicketNumber: t.TicketNumber,
		Title:        t.Title,
		Category:     t.Category,
		Status:       t.Status,
		Priority:     t.Priority,
		AssignedTo:   t.AssignedTo,
		Tags:         t.Tags,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// NewTicketDetail maps a ticket aggregate to its detail view.
func NewTicketDetail(t *domain.Ticket) TicketDetailResponse {
	comments := make([]CommentResponse, 0, len(t.Comments))
	for _, c := range t.Comments {
		comments = append(comments, NewCommentResponse(&c))
	}
	attachments := make([]AttachmentResponse, 0, len(t.Attachments))
	for _, a := range t.Attachments {
		attachments = append(attachments, AttachmentResponse{
			ID:         a.ID,
			StorageKey: a.StorageKey,
			FileName:   a.FileName,
			MimeType:   a.MimeType,
			SizeBytes:  a.SizeBytes,
			CreatedAt:  a.CreatedAt,
		})
	}
	return TicketDetailResponse{
		ID:           t.ID,
		TicketNumber: t.TicketNumber,
		CreatedBy:    t.CreatedBy,
		AssignedTo:   t.AssignedTo,
		Title:        t.Title,
		Description:  t.Description,
		Category:     t.Category,
		Tags:         t.Tags,
		Priority:     t.Priority,
		Impact:       t.Impact,
		Urgency:      t.Urgency,
		Status:       t.Status,
		ResolvedAt:   t.ResolvedAt,
		ClosedAt:     t.ClosedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
		Comments:     comments,
		Attachments:  attachments,
	}
}

// NewCommentResponse maps a comment to its response view.
func NewCommentResponse(c *domain.Comment) CommentResponse {
	return CommentResponse{
		ID:        c.ID,
		AuthorID:  c.AuthorID,
		Body:      c.Body,
		Internal:  c.Internal,
		CreatedAt: c.CreatedAt,
	}
}
