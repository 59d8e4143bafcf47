package domain

import "time"

// ApplyStatus moves the ticket to next and stamps derived timestamps. There
// is no transition table: any state is reachable from any state, and callers
// gate transitions through the access policy instead. ResolvedAt and ClosedAt
// are stamped on first entry only and survive later regressions.
func (t *Ticket) ApplyStatus(next TicketStatus, now time.Time) {
	t.Status = next
	if next == TicketStatusResolved && t.ResolvedAt == nil {
		resolved := now
		t.ResolvedAt = &resolved
	}
	if next == TicketStatusClosed && t.ClosedAt == nil {
		closed := now
		t.ClosedAt = &closed
	}
	t.UpdatedAt = now
}

// ApplyAssignee sets or clears the assignee. Assigning while the ticket is
// still Open auto-advances it to InProgress; clearing the assignee never
// reverts the status.
func (t *Ticket) ApplyAssignee(assigneeID *string, now time.Time) {
	t.AssignedTo = assigneeID
	if assigneeID != nil && t.Status == TicketStatusOpen {
		t.ApplyStatus(TicketStatusInProgress, now)
	}
	t.UpdatedAt = now
}

// AppendComment appends a thread entry, deriving the effective internal flag
// from the author's role: non-admin requests for internal visibility are
// silently downgraded rather than rejected.
func (t *Ticket) AppendComment(author Actor, body string, wantsInternal bool, now time.Time) Comment {
	comment := Comment{
		TicketID:  t.ID,
		AuthorID:  author.ID,
		Body:      body,
		Internal:  wantsInternal && author.Role == RoleAdmin,
		CreatedAt: now,
	}
	t.Comments = append(t.Comments, comment)
	t.UpdatedAt = now
	return comment
}
