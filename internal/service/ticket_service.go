package service

import (
	"context"
	"errors"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/support-desk/internal/domain"
	"github.com/spec-kit/support-desk/internal/events"
	"github.com/spec-kit/support-desk/internal/numbering"
	"github.com/spec-kit/support-desk/internal/repository"
	apperrors "github.com/spec-kit/support-desk/pkg/util"
)

// maxAllocateAttempts bounds the create retry loop when ticket numbers
// collide with concurrent allocations.
const maxAllocateAttempts = 5

// TicketService coordinates ticket workflows. Every operation consults the
// access policy before touching the aggregate.
type TicketService struct {
	tickets     repository.TicketRepository
	comments    repository.CommentRepository
	attachments repository.AttachmentRepository
	users       repository.UserRepository
	allocator   *numbering.Allocator
	dispatcher  events.Dispatcher
}

// TicketDependencies bundles collaborators for the ticket service.
type TicketDependencies struct {
	TicketRepo     repository.TicketRepository
	CommentRepo    repository.CommentRepository
	AttachmentRepo repository.AttachmentRepository
	UserRepo       repository.UserRepository
	Allocator      *numbering.Allocator
	Dispatcher     events.Dispatcher
}

// NewTicketService constructs the service.
func NewTicketService(deps TicketDependencies) *TicketService {
	return &TicketService{
		tickets:     deps.TicketRepo,
		comments:    deps.CommentRepo,
		attachments: deps.AttachmentRepo,
		users:       deps.UserRepo,
		allocator:   deps.Allocator,
		dispatcher:  deps.Dispatcher,
	}
}

// TicketDraft describes the ticket creation payload.
type TicketDraft struct {
	Title       string
	Description string
	Category    string
	Tags        []string
	Priority    domain.TicketPriority
	Impact      domain.TicketLevel
	Urgency     domain.TicketLevel
}

// AttachmentInput defines attachment metadata accepted at creation.
type AttachmentInput struct {
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
}

// TicketPatch is a partial field update. Nil pointers mean "not present";
// fields outside the actor's capability set are silently dropped.
type TicketPatch struct {
	Title       *string
	Description *string
	Category    *string
	Tags        []string
	Priority    *domain.TicketPriority
	Impact      *domain.TicketLevel
	Urgency     *domain.TicketLevel
	Status      *domain.TicketStatus
}

// TicketListFilter describes listing parameters.
type TicketListFilter struct {
	Statuses    []domain.TicketStatus
	Priorities  []domain.TicketPriority
	Categories  []string
	SearchTerm  *string
	CreatedFrom *time.Time
	CreatedTo   *time.Time
	Limit       int
	Offset      int
}

// Create validates the draft, mints a ticket number and persists the ticket.
// Number collisions with concurrent creations retry with a fresh number up to
// maxAllocateAttempts before surfacing a conflict.
func (s *TicketService) Create(ctx context.Context, actor domain.Actor, draft TicketDraft, attachments []AttachmentInput) (*domain.Ticket, error) {
	if err := validateDraft(&draft); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	ticket := &domain.Ticket{
		CreatedBy:   actor.ID,
		Title:       draft.Title,
		Description: draft.Description,
		Category:    draft.Category,
		Tags:        draft.Tags,
		Priority:    draft.Priority,
		Impact:      draft.Impact,
		Urgency:     draft.Urgency,
		Status:      domain.TicketStatusOpen,
	}

	created := false
	for attempt := 0; attempt < maxAllocateAttempts && !created; attempt++ {
		number, err := s.allocator.Next(ctx, now)
		if err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket.TicketNumber = number

		switch err := s.tickets.Create(ctx, ticket); {
		case err == nil:
			created = true
		case errors.Is(err, repository.ErrDuplicateTicketNumber):
			// racing allocation; mint a fresh number
		default:
			return nil, apperrors.MapError(err)
		}
	}
	if !created {
		return nil, apperrors.NewConflict("ticket number allocation exhausted",
			map[string]any{"attempts": maxAllocateAttempts})
	}

	for _, att := range attachments {
		record := &domain.AttachmentMeta{
			TicketID:   ticket.ID,
			StorageKey: att.StorageKey,
			FileName:   att.FileName,
			MimeType:   att.MimeType,
			SizeBytes:  att.SizeBytes,
		}
		if err := s.attachments.Create(ctx, record); err != nil {
			return nil, apperrors.MapError(err)
		}
		ticket.Attachments = append(ticket.Attachments, *record)
	}

	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketCreated,
		TicketID: ticket.ID,
		Payload: events.TicketCreatedPayload{
			TicketNumber: ticket.TicketNumber,
			Category:     ticket.Category,
			Priority:     ticket.Priority,
			Title:        ticket.Title,
		},
	})
	return ticket, nil
}

// List returns tickets visible to the actor. Non-admin results are restricted
// to tickets the actor created or is assigned to; admins see everything.
func (s *TicketService) List(ctx context.Context, actor domain.Actor, filter TicketListFilter) ([]domain.Ticket, error) {
	repoFilter := repository.TicketFilter{
		Statuses:    filter.Statuses,
		Priorities:  filter.Priorities,
		Categories:  filter.Categories,
		SearchTerm:  filter.SearchTerm,
		CreatedFrom: filter.CreatedFrom,
		CreatedTo:   filter.CreatedTo,
		Limit:       filter.Limit,
		Offset:      filter.Offset,
	}
	if actor.Role != domain.RoleAdmin {
		participant := actor.ID
		repoFilter.ParticipantID = &participant
	}
	tickets, err := s.tickets.ListWithFilter(ctx, repoFilter)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	return tickets, nil
}

// Get loads a ticket with its attachments and the comments visible to the
// actor. Denied access is indistinguishable from a missing ticket.
func (s *TicketService) Get(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
	ticket, err := s.loadAuthorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}

	comments, err := s.comments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Comments = domain.VisibleComments(actor, comments)

	attachments, err := s.attachments.ListByTicket(ctx, ticket.ID)
	if err != nil {
		return nil, apperrors.MapError(err)
	}
	ticket.Attachments = attachments
	return ticket, nil
}

// Update applies the patch narrowed to the actor's permitted field set.
// Disallowed fields are dropped, not rejected, to keep partial updates
// ergonomic for non-admin callers.
func (s *TicketService) Update(ctx context.Context, actor domain.Actor, id string, patch TicketPatch) (*domain.Ticket, error) {
	ticket, err := s.loadAuthorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	caps := domain.Authorize(actor, ticket).Capabilities()

	// Narrow before validating: a disallowed field must be discarded, not
	// fail the whole patch, so the permitted changes still land.
	patch = narrowPatch(patch, caps.Fields)
	if err := validatePatch(&patch); err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	oldStatus := ticket.Status
	changed := applyPatch(ticket, caps.Fields, patch, now)
	ticket.UpdatedAt = now

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	if len(changed) > 0 {
		s.publish(ctx, actor, events.Event{
			Type:     events.EventTicketUpdated,
			TicketID: ticket.ID,
			Payload:  events.TicketUpdatedPayload{ChangedFields: changed},
		})
	}
	if ticket.Status != oldStatus {
		s.publish(ctx, actor, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	return ticket, nil
}

// AddComment appends to the ticket thread. Requests for internal visibility
// by non-admin authors are silently downgraded to public.
func (s *TicketService) AddComment(ctx context.Context, actor domain.Actor, id, body string, wantsInternal bool) (*domain.Comment, error) {
	ticket, err := s.loadAuthorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	caps := domain.Authorize(actor, ticket).Capabilities()
	if !caps.Comment {
		return nil, apperrors.NewForbidden("commenting not permitted")
	}

	body = strings.TrimSpace(body)
	if body == "" || utf8.RuneCountInString(body) > domain.CommentMaxLen {
		return nil, apperrors.NewValidationError("comment body out of range", map[string]any{
			"body": "must be between 1 and 1000 characters",
		})
	}

	now := time.Now().UTC()
	comment := ticket.AppendComment(actor, body, wantsInternal, now)
	if err := s.comments.Create(ctx, &comment); err != nil {
		return nil, apperrors.MapError(err)
	}
	if err := s.tickets.Touch(ctx, ticket.ID, now); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketCommentAdded,
		TicketID: ticket.ID,
		Payload: events.TicketCommentAddedPayload{
			CommentID:   comment.ID,
			AuthorID:    comment.AuthorID,
			Internal:    comment.Internal,
			BodyPreview: bodyPreview(comment.Body, 120),
		},
	})
	return &comment, nil
}

// Assign sets or clears the assignee. Admin-only; the target must resolve to
// an active user, though it is not required to hold the admin role.
func (s *TicketService) Assign(ctx context.Context, actor domain.Actor, id string, assigneeID *string) (*domain.Ticket, error) {
	ticket, err := s.loadAuthorized(ctx, actor, id)
	if err != nil {
		return nil, err
	}
	if !domain.Authorize(actor, ticket).Capabilities().Assign {
		return nil, apperrors.NewForbidden("assignment requires administrator role")
	}

	if assigneeID != nil {
		assignee, err := s.users.GetByID(ctx, *assigneeID)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return nil, apperrors.NewInvalidAssignee(*assigneeID)
			}
			return nil, apperrors.MapError(err)
		}
		if !assignee.Active {
			return nil, apperrors.NewInvalidAssignee(*assigneeID)
		}
	}

	now := time.Now().UTC()
	oldStatus := ticket.Status
	ticket.ApplyAssignee(assigneeID, now)

	if err := s.tickets.Update(ctx, ticket); err != nil {
		return nil, apperrors.MapError(err)
	}

	s.publish(ctx, actor, events.Event{
		Type:     events.EventTicketAssigned,
		TicketID: ticket.ID,
		Payload:  events.TicketAssignedPayload{AssigneeID: assigneeID},
	})
	if ticket.Status != oldStatus {
		s.publish(ctx, actor, events.Event{
			Type:     events.EventTicketStatusChanged,
			TicketID: ticket.ID,
			Payload: events.TicketStatusChangedPayload{
				OldStatus: oldStatus,
				NewStatus: ticket.Status,
			},
		})
	}
	return ticket, nil
}

// loadAuthorized fetches the ticket and applies the read gate. A denied
// actor receives the same NOT_FOUND as a missing id so existence never leaks.
func (s *TicketService) loadAuthorized(ctx context.Context, actor domain.Actor, id string) (*domain.Ticket, error) {
	ticket, err := s.tickets.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
		}
		return nil, apperrors.MapError(err)
	}
	if !domain.Authorize(actor, ticket).Allowed() {
		return nil, apperrors.NewNotFound("ticket", map[string]any{"ticket_id": id})
	}
	return ticket, nil
}

func validateDraft(draft *TicketDraft) error {
	details := map[string]any{}

	draft.Title = strings.TrimSpace(draft.Title)
	if titleLen := utf8.RuneCountInString(draft.Title); titleLen < domain.TitleMinLen || titleLen > domain.TitleMaxLen {
		details["title"] = "must be between 5 and 200 characters"
	}
	draft.Description = strings.TrimSpace(draft.Description)
	if descLen := utf8.RuneCountInString(draft.Description); descLen < domain.DescriptionMinLen || descLen > domain.DescriptionMaxLen {
		details["description"] = "must be between 10 and 2000 characters"
	}
	if !domain.ValidCategory(draft.Category) {
		details["category"] = "unknown category"
	}

	if draft.Priority == "" {
		draft.Priority = domain.TicketPriorityMedium
	} else if !draft.Priority.Valid() {
		details["priority"] = "unknown priority"
	}
	if draft.Impact == "" {
		draft.Impact = domain.LevelMedium
	} else if !draft.Impact.Valid() {
		details["impact"] = "unknown impact"
	}
	if draft.Urgency == "" {
		draft.Urgency = domain.LevelMedium
	} else if !draft.Urgency.Valid() {
		details["urgency"] = "unknown urgency"
	}
	draft.Tags = domain.NormalizeTags(draft.Tags)

	if len(details) > 0 {
		return apperrors.NewValidationError("invalid ticket draft", details)
	}
	return nil
}

func validatePatch(patch *TicketPatch) error {
	details := map[string]any{}

	if patch.Title != nil {
		trimmed := strings.TrimSpace(*patch.Title)
		if titleLen := utf8.RuneCountInString(trimmed); titleLen < domain.TitleMinLen || titleLen > domain.TitleMaxLen {
			details["title"] = "must be between 5 and 200 characters"
		}
		patch.Title = &trimmed
	}
	if patch.Description != nil {
		trimmed := strings.TrimSpace(*patch.Description)
		if descLen := utf8.RuneCountInString(trimmed); descLen < domain.DescriptionMinLen || descLen > domain.DescriptionMaxLen {
			details["description"] = "must be between 10 and 2000 characters"
		}
		patch.Description = &trimmed
	}
	if patch.Category != nil && !domain.ValidCategory(*patch.Category) {
		details["category"] = "unknown category"
	}
	if patch.Priority != nil && !patch.Priority.Valid() {
		details["priority"] = "unknown priority"
	}
	if patch.Impact != nil && !patch.Impact.Valid() {
		details["impact"] = "unknown impact"
	}
	if patch.Urgency != nil && !patch.Urgency.Valid() {
		details["urgency"] = "unknown urgency"
	}
	if patch.Status != nil && !patch.Status.Valid() {
		details["status"] = "unknown status"
	}

	if len(details) > 0 {
		return apperrors.NewValidationError("invalid ticket patch", details)
	}
	return nil
}

// narrowPatch clears fields outside the actor's permitted set so they are
// silently dropped rather than rejected.
func narrowPatch(patch TicketPatch, allowed domain.FieldSet) TicketPatch {
	if !allowed.Has(domain.FieldTitle) {
		patch.Title = nil
	}
	if !allowed.Has(domain.FieldDescription) {
		patch.Description = nil
	}
	if !allowed.Has(domain.FieldCategory) {
		patch.Category = nil
	}
	if !allowed.Has(domain.FieldTags) {
		patch.Tags = nil
	}
	if !allowed.Has(domain.FieldPriority) {
		patch.Priority = nil
	}
	if !allowed.Has(domain.FieldImpact) {
		patch.Impact = nil
	}
	if !allowed.Has(domain.FieldUrgency) {
		patch.Urgency = nil
	}
	if !allowed.Has(domain.FieldStatus) {
		patch.Status = nil
	}
	return patch
}

// applyPatch mutates the ticket with the fields present in the patch and
// allowed for the actor, returning the names of the fields that changed.
func applyPatch(ticket *domain.Ticket, allowed domain.FieldSet, patch TicketPatch, now time.Time) []string {
	changed := []string{}

	if patch.Title != nil && allowed.Has(domain.FieldTitle) {
		ticket.Title = *patch.Title
		changed = append(changed, string(domain.FieldTitle))
	}
	if patch.Description != nil && allowed.Has(domain.FieldDescription) {
		ticket.Description = *patch.Description
		changed = append(changed, string(domain.FieldDescription))
	}
	if patch.Category != nil && allowed.Has(domain.FieldCategory) {
		ticket.Category = *patch.Category
		changed = append(changed, string(domain.FieldCategory))
	}
	if patch.Tags != nil && allowed.Has(domain.FieldTags) {
		ticket.Tags = domain.NormalizeTags(patch.Tags)
		changed = append(changed, string(domain.FieldTags))
	}
	if patch.Priority != nil && allowed.Has(domain.FieldPriority) {
		ticket.Priority = *patch.Priority
		changed = append(changed, string(domain.FieldPriority))
	}
	if patch.Impact != nil && allowed.Has(domain.FieldImpact) {
		ticket.Impact = *patch.Impact
		changed = append(changed, string(domain.FieldImpact))
	}
	if patch.Urgency != nil && allowed.Has(domain.FieldUrgency) {
		ticket.Urgency = *patch.Urgency
		changed = append(changed, string(domain.FieldUrgency))
	}
	if patch.Status != nil && allowed.Has(domain.FieldStatus) && *patch.Status != ticket.Status {
		ticket.ApplyStatus(*patch.Status, now)
		changed = append(changed, string(domain.FieldStatus))
	}
	return changed
}

func (s *TicketService) publish(ctx context.Context, actor domain.Actor, event events.Event) {
	if s.dispatcher == nil {
		return
	}
	if event.ID == "" {
		event.ID = uuid.NewString()
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	event.Actor = events.Actor{UserID: actor.ID, Role: actor.Role}
	_ = s.dispatcher.Publish(ctx, event)
}

func bodyPreview(body string, max int) string {
	body = strings.TrimSpace(body)
	runes := []rune(body)
	if len(runes) <= max {
		return body
	}
	if max <= 3 {
		return string(runes[:max])
	}
	return string(runes[:max-3]) + "..."
}
