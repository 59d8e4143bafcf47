package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAuthorizeAdminGetsEverything(t *testing.T) {
	ticket := &Ticket{CreatedBy: "someone-else"}
	decision := Authorize(Actor{ID: "admin-1", Role: RoleAdmin}, ticket)

	require.True(t, decision.Allowed())
	caps := decision.Capabilities()
	assert.True(t, caps.Read)
	assert.True(t, caps.Comment)
	assert.True(t, caps.InternalComment)
	assert.True(t, caps.Assign)
	assert.True(t, caps.Delete)
	for _, f := range []TicketField{
		FieldTitle, FieldDescription, FieldCategory, FieldTags,
		FieldPriority, FieldImpact, FieldUrgency, FieldStatus,
	} {
		assert.True(t, caps.Fields.Has(f), "admin must control field %s", f)
	}
}

func TestAuthorizeCreatorGetsParticipantAccess(t *testing.T) {
	ticket := &Ticket{CreatedBy: "u-1"}
	decision := Authorize(Actor{ID: "u-1", Role: RoleUser}, ticket)

	require.True(t, decision.Allowed())
	caps := decision.Capabilities()
	assert.True(t, caps.Read)
	assert.True(t, caps.Comment)
	assert.False(t, caps.InternalComment)
	assert.False(t, caps.Assign)
	assert.False(t, caps.Delete)

	assert.True(t, caps.Fields.Has(FieldTitle))
	assert.True(t, caps.Fields.Has(FieldDescription))
	assert.True(t, caps.Fields.Has(FieldPriority))
	assert.False(t, caps.Fields.Has(FieldStatus))
	assert.False(t, caps.Fields.Has(FieldCategory))
	assert.False(t, caps.Fields.Has(FieldTags))
}

func TestAuthorizeAssigneeGetsParticipantAccess(t *testing.T) {
	assignee := "agent-7"
	ticket := &Ticket{CreatedBy: "u-1", AssignedTo: &assignee}
	decision := Authorize(Actor{ID: assignee, Role: RoleUser}, ticket)

	require.True(t, decision.Allowed())
	assert.True(t, decision.Capabilities().Read)
}

func TestAuthorizeStrangerGetsNothing(t *testing.T) {
	assignee := "agent-7"
	ticket := &Ticket{CreatedBy: "u-1", AssignedTo: &assignee}
	decision := Authorize(Actor{ID: "stranger", Role: RoleUser}, ticket)

	assert.False(t, decision.Allowed())
	caps := decision.Capabilities()
	assert.False(t, caps.Read)
	assert.False(t, caps.Comment)
	assert.Empty(t, caps.Fields)
}

func TestIsParticipant(t *testing.T) {
	assignee := "agent-7"
	ticket := &Ticket{CreatedBy: "u-1", AssignedTo: &assignee}

	assert.True(t, IsParticipant(Actor{ID: "u-1"}, ticket))
	assert.True(t, IsParticipant(Actor{ID: "agent-7"}, ticket))
	assert.False(t, IsParticipant(Actor{ID: "u-2"}, ticket))

	unassigned := &Ticket{CreatedBy: "u-1"}
	assert.False(t, IsParticipant(Actor{ID: "agent-7"}, unassigned))
}

func TestVisibleCommentsFiltersInternalForNonAdmins(t *testing.T) {
	comments := []Comment{
		{ID: "c-1", Body: "public question"},
		{ID: "c-2", Body: "internal note", Internal: true},
		{ID: "c-3", Body: "public answer"},
	}

	visible := VisibleComments(Actor{ID: "u-1", Role: RoleUser}, comments)
	require.Len(t, visible, 2)
	assert.Equal(t, "c-1", visible[0].ID)
	assert.Equal(t, "c-3", visible[1].ID)

	all := VisibleComments(Actor{ID: "a-1", Role: RoleAdmin}, comments)
	assert.Len(t, all, 3)
}
