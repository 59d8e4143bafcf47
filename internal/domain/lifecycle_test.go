package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplyStatusStampsResolvedOnce(t *testing.T) {
	ticket := &Ticket{Status: TicketStatusInProgress}

	first := time.Date(2025, 3, 10, 9, 0, 0, 0, time.UTC)
	ticket.ApplyStatus(TicketStatusResolved, first)
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, first, *ticket.ResolvedAt)

	// reopen and resolve again; the original stamp survives
	ticket.ApplyStatus(TicketStatusInProgress, first.Add(time.Hour))
	require.NotNil(t, ticket.ResolvedAt)
	assert.Equal(t, first, *ticket.ResolvedAt)

	ticket.ApplyStatus(TicketStatusResolved, first.Add(2*time.Hour))
	assert.Equal(t, first, *ticket.ResolvedAt)
}

func TestApplyStatusStampsClosedOnce(t *testing.T) {
	ticket := &Ticket{Status: TicketStatusResolved}

	closedAt := time.Date(2025, 3, 11, 17, 30, 0, 0, time.UTC)
	ticket.ApplyStatus(TicketStatusClosed, closedAt)
	require.NotNil(t, ticket.ClosedAt)
	assert.Equal(t, closedAt, *ticket.ClosedAt)

	ticket.ApplyStatus(TicketStatusOpen, closedAt.Add(time.Hour))
	assert.Equal(t, TicketStatusOpen, ticket.Status)
	require.NotNil(t, ticket.ClosedAt)
	assert.Equal(t, closedAt, *ticket.ClosedAt)
}

func TestApplyStatusRegressionKeepsTimestamps(t *testing.T) {
	ticket := &Ticket{Status: TicketStatusOpen}
	now := time.Now().UTC()

	ticket.ApplyStatus(TicketStatusResolved, now)
	ticket.ApplyStatus(TicketStatusClosed, now.Add(time.Minute))
	ticket.ApplyStatus(TicketStatusWaitingForResponse, now.Add(2*time.Minute))

	assert.Equal(t, TicketStatusWaitingForResponse, ticket.Status)
	assert.NotNil(t, ticket.ResolvedAt)
	assert.NotNil(t, ticket.ClosedAt)
}

func TestApplyAssigneeAutoAdvancesOpenTicket(t *testing.T) {
	assignee := "agent-1"
	now := time.Now().UTC()

	ticket := &Ticket{Status: TicketStatusOpen}
	ticket.ApplyAssignee(&assignee, now)

	require.NotNil(t, ticket.AssignedTo)
	assert.Equal(t, assignee, *ticket.AssignedTo)
	assert.Equal(t, TicketStatusInProgress, ticket.Status)
}

func TestApplyAssigneeDoesNotAdvanceNonOpen(t *testing.T) {
	assignee := "agent-1"
	now := time.Now().UTC()

	for _, status := range []TicketStatus{
		TicketStatusInProgress,
		TicketStatusWaitingForResponse,
		TicketStatusResolved,
		TicketStatusClosed,
	} {
		ticket := &Ticket{Status: status}
		ticket.ApplyAssignee(&assignee, now)
		assert.Equal(t, status, ticket.Status, "status %s must not change on assign", status)
	}
}

func TestApplyAssigneeClearDoesNotRevertStatus(t *testing.T) {
	assignee := "agent-1"
	now := time.Now().UTC()

	ticket := &Ticket{Status: TicketStatusOpen}
	ticket.ApplyAssignee(&assignee, now)
	require.Equal(t, TicketStatusInProgress, ticket.Status)

	ticket.ApplyAssignee(nil, now.Add(time.Minute))
	assert.Nil(t, ticket.AssignedTo)
	assert.Equal(t, TicketStatusInProgress, ticket.Status)
}

func TestAppendCommentDowngradesInternalForNonAdmin(t *testing.T) {
	ticket := &Ticket{ID: "t-1"}
	now := time.Now().UTC()

	user := Actor{ID: "u-1", Role: RoleUser}
	comment := ticket.AppendComment(user, "please escalate", true, now)
	assert.False(t, comment.Internal)

	admin := Actor{ID: "a-1", Role: RoleAdmin}
	comment = ticket.AppendComment(admin, "checking backend logs", true, now)
	assert.True(t, comment.Internal)

	comment = ticket.AppendComment(admin, "public reply", false, now)
	assert.False(t, comment.Internal)

	assert.Len(t, ticket.Comments, 3)
}
