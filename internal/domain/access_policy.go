package domain

// TicketField identifies a mutable ticket attribute for capability checks.
type TicketField string

const (
	FieldTitle       TicketField = "title"
	FieldDescription TicketField = "description"
	FieldCategory    TicketField = "category"
	FieldTags        TicketField = "tags"
	FieldPriority    TicketField = "priority"
	FieldImpact      TicketField = "impact"
	FieldUrgency     TicketField = "urgency"
	FieldStatus      TicketField = "status"
)

// FieldSet is the set of ticket fields an actor may modify.
type FieldSet map[TicketField]struct{}

// NewFieldSet builds a set from the given fields.
func NewFieldSet(fields ...TicketField) FieldSet {
	set := make(FieldSet, len(fields))
	for _, f := range fields {
		set[f] = struct{}{}
	}
	return set
}

// Has reports whether the field is in the set.
func (s FieldSet) Has(f TicketField) bool {
	_, ok := s[f]
	return ok
}

// CapabilitySet enumerates the actions an actor may exercise on a ticket.
type CapabilitySet struct {
	Read            bool
	Comment         bool
	InternalComment bool
	Assign          bool
	Delete          bool
	Fields          FieldSet
}

// Decision is the outcome of an authorization check: either a granted
// capability set or a blanket denial.
type Decision struct {
	granted bool
	caps    CapabilitySet
}

// Granted wraps a capability set in an allowing decision.
func Granted(caps CapabilitySet) Decision {
	return Decision{granted: true, caps: caps}
}

// Denied is the zero-capability decision.
func Denied() Decision {
	return Decision{}
}

// Allowed reports whether any access was granted.
func (d Decision) Allowed() bool {
	return d.granted
}

// Capabilities returns the granted capability set; zero-valued when denied.
func (d Decision) Capabilities() CapabilitySet {
	return d.caps
}

var (
	participantFields = NewFieldSet(FieldTitle, FieldDescription, FieldPriority)
	adminFields       = NewFieldSet(FieldTitle, FieldDescription, FieldCategory, FieldTags,
		FieldPriority, FieldImpact, FieldUrgency, FieldStatus)
)

// Authorize computes the actor's capabilities on the ticket. Precedence:
// administrators get everything; actors who are neither creator nor assignee
// get nothing, not even Read; creator or assignee get Read, Comment and a
// restricted field set.
func Authorize(actor Actor, ticket *Ticket) Decision {
	if actor.Role == RoleAdmin {
		return Granted(CapabilitySet{
			Read:            true,
			Comment:         true,
			InternalComment: true,
			Assign:          true,
			Delete:          true,
			Fields:          adminFields,
		})
	}
	if !IsParticipant(actor, ticket) {
		return Denied()
	}
	return Granted(CapabilitySet{
		Read:    true,
		Comment: true,
		Fields:  participantFields,
	})
}

// IsParticipant reports whether the actor created the ticket or is its
// current assignee. Listing endpoints filter by this same predicate so that
// denial is only ever reached through direct-access attempts.
func IsParticipant(actor Actor, ticket *Ticket) bool {
	if ticket.CreatedBy == actor.ID {
		return true
	}
	return ticket.AssignedTo != nil && *ticket.AssignedTo == actor.ID
}

// VisibleComments filters internal entries for non-admin viewers.
func VisibleComments(viewer Actor, comments []Comment) []Comment {
	if viewer.Role == RoleAdmin {
		return comments
	}
	visible := make([]Comment, 0, len(comments))
	for _, c := range comments {
		if c.Internal {
			continue
		}
		visible = append(visible, c)
	}
	return visible
}
