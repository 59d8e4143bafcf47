package domain

import (
	"sort"
	"strings"
	"time"
)

// TicketStatus enumerates lifecycle states for tickets.
type TicketStatus string

const (
	TicketStatusOpen               TicketStatus = "OPEN"
	TicketStatusInProgress         TicketStatus = "IN_PROGRESS"
	TicketStatusWaitingForResponse TicketStatus = "WAITING_FOR_RESPONSE"
	TicketStatusResolved           TicketStatus = "RESOLVED"
	TicketStatusClosed             TicketStatus = "CLOSED"
)

// Valid reports whether the status is a known lifecycle state.
func (s TicketStatus) Valid() bool {
	switch s {
	case TicketStatusOpen, TicketStatusInProgress, TicketStatusWaitingForResponse,
		TicketStatusResolved, TicketStatusClosed:
		return true
	}
	return false
}

// TicketPriority enumerates handling urgency.
type TicketPriority string

const (
	TicketPriorityLow      TicketPriority = "LOW"
	TicketPriorityMedium   TicketPriority = "MEDIUM"
	TicketPriorityHigh     TicketPriority = "HIGH"
	TicketPriorityCritical TicketPriority = "CRITICAL"
)

// Valid reports whether the priority is a known value.
func (p TicketPriority) Valid() bool {
	switch p {
	case TicketPriorityLow, TicketPriorityMedium, TicketPriorityHigh, TicketPriorityCritical:
		return true
	}
	return false
}

// TicketLevel grades impact and urgency classifications.
type TicketLevel string

const (
	LevelLow    TicketLevel = "LOW"
	LevelMedium TicketLevel = "MEDIUM"
	LevelHigh   TicketLevel = "HIGH"
)

// Valid reports whether the level is a known value.
func (l TicketLevel) Valid() bool {
	switch l {
	case LevelLow, LevelMedium, LevelHigh:
		return true
	}
	return false
}

// Content length bounds enforced at creation and update.
const (
	TitleMinLen       = 5
	TitleMaxLen       = 200
	DescriptionMinLen = 10
	DescriptionMaxLen = 2000
	CommentMaxLen     = 1000
)

// ticketCategories is the fixed classification vocabulary.
var ticketCategories = map[string]struct{}{
	"Hardware":       {},
	"Software":       {},
	"Network Issue":  {},
	"Account Access": {},
	"Email":          {},
	"Security":       {},
	"Printing":       {},
	"Performance":    {},
	"Data Request":   {},
	"Maintenance":    {},
	"Onboarding":     {},
	"Other":          {},
}

// ValidCategory reports whether the category belongs to the fixed vocabulary.
func ValidCategory(category string) bool {
	_, ok := ticketCategories[category]
	return ok
}

// Categories lists the classification vocabulary in sorted order.
func Categories() []string {
	out := make([]string, 0, len(ticketCategories))
	for c := range ticketCategories {
		out = append(out, c)
	}
	sort.Strings(out)
	return out
}

// Ticket is the aggregate for support requests. TicketNumber and CreatedBy
// are set exactly once at creation; ResolvedAt and ClosedAt are derived from
// status transitions and never cleared once stamped.
type Ticket struct {
	ID           string
	TicketNumber string
	CreatedBy    string
	AssignedTo   *string
	Title        string
	Description  string
	Category     string
	Tags         []string
	Priority     TicketPriority
	Impact       TicketLevel
	Urgency      TicketLevel
	Status       TicketStatus
	ResolvedAt   *time.Time
	ClosedAt     *time.Time
	CreatedAt    time.Time
	UpdatedAt    time.Time
	Attachments  []AttachmentMeta
	Comments     []Comment
}

// Comment is an append-only thread entry. Internal comments are visible to
// administrators only.
type Comment struct {
	ID        string
	TicketID  string
	AuthorID  string
	Body      string
	Internal  bool
	CreatedAt time.Time
}

// AttachmentMeta records uploaded file metadata; content lives in external
// file storage under StorageKey.
type AttachmentMeta struct {
	ID         string
	TicketID   string
	StorageKey string
	FileName   string
	MimeType   string
	SizeBytes  int64
	CreatedAt  time.Time
}

// NormalizeTags lowercases, trims and deduplicates tags, returning them in
// sorted order.
func NormalizeTags(tags []string) []string {
	seen := make(map[string]struct{}, len(tags))
	out := make([]string, 0, len(tags))
	for _, tag := range tags {
		tag = strings.ToLower(strings.TrimSpace(tag))
		if tag == "" {
			continue
		}
		if _, dup := seen[tag]; dup {
			continue
		}
		seen[tag] = struct{}{}
		out = append(out, tag)
	}
	sort.Strings(out)
	return out
}
