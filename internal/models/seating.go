package models

// RSVPStatus tracks a guest's attendance confirmation.
type RSVPStatus string

const (
	RSVPPending   RSVPStatus = "pending"
	RSVPConfirmed RSVPStatus = "confirmed"
	RSVPDeclined  RSVPStatus = "declined"
)

// ValidRSVPStatuses is the set of all valid RSVP statuses.
var ValidRSVPStatuses = []RSVPStatus{
	RSVPPending,
	RSVPConfirmed,
	RSVPDeclined,
}

// IsValid returns true if the RSVP status is recognized.
func (rs RSVPStatus) IsValid() bool {
	for _, v := range ValidRSVPStatuses {
		if rs == v {
			return true
		}
	}
	return false
}

// RelationshipType classifies how one guest relates to another.
// Every type except "avoid" is a preference; its Strength is added to
// the table score when the target guest is already seated there.
type RelationshipType string

const (
	RelationshipPartner   RelationshipType = "partner"
	RelationshipFamily    RelationshipType = "family"
	RelationshipFriend    RelationshipType = "friend"
	RelationshipColleague RelationshipType = "colleague"
	RelationshipAvoid     RelationshipType = "avoid"
)

// ValidRelationshipTypes is the set of all valid relationship types.
var ValidRelationshipTypes = []RelationshipType{
	RelationshipPartner,
	RelationshipFamily,
	RelationshipFriend,
	RelationshipColleague,
	RelationshipAvoid,
}

// IsValid returns true if the relationship type is recognized.
func (rt RelationshipType) IsValid() bool {
	for _, v := range ValidRelationshipTypes {
		if rt == v {
			return true
		}
	}
	return false
}

// Relationship is a directional preference one guest declares toward another.
// "A avoids B" does not imply "B avoids A"; only the declaring guest's list
// is consulted when that guest is being placed.
type Relationship struct {
	GuestID  string           `json:"guest_id"`
	Type     RelationshipType `json:"type"`
	Strength float64          `json:"strength"`
}

// Guest is a person to be seated.
type Guest struct {
	ID            string         `json:"id"`
	Name          string         `json:"name"`
	Group         string         `json:"group,omitempty"`
	Industry      string         `json:"industry,omitempty"`
	Interests     []string       `json:"interests,omitempty"`
	Relationships []Relationship `json:"relationships,omitempty"`
	RSVPStatus    RSVPStatus     `json:"rsvp_status"`
	TableID       string         `json:"table_id,omitempty"` // persisted assignment, empty = unseated
}

// Table is a seating unit. Position and shape belong to the canvas layer
// and are deliberately absent.
type Table struct {
	ID       string `json:"id"`
	Name     string `json:"name,omitempty"`
	Capacity int    `json:"capacity"`
}

// ConstraintType classifies a planner-authored seating rule.
// Only same_table and different_table influence the current algorithm;
// the remaining types are accepted as valid data but not enforced.
type ConstraintType string

const (
	ConstraintSameTable          ConstraintType = "same_table"
	ConstraintDifferentTable     ConstraintType = "different_table"
	ConstraintMustSitTogether    ConstraintType = "must_sit_together"
	ConstraintMustNotSitTogether ConstraintType = "must_not_sit_together"
	ConstraintNearFront          ConstraintType = "near_front"
	ConstraintAccessibility      ConstraintType = "accessibility"
)

// ValidConstraintTypes is the set of all valid constraint types.
var ValidConstraintTypes = []ConstraintType{
	ConstraintSameTable,
	ConstraintDifferentTable,
	ConstraintMustSitTogether,
	ConstraintMustNotSitTogether,
	ConstraintNearFront,
	ConstraintAccessibility,
}

// IsValid returns true if the constraint type is recognized.
func (ct ConstraintType) IsValid() bool {
	for _, v := range ValidConstraintTypes {
		if ct == v {
			return true
		}
	}
	return false
}

// ConstraintPriority ranks how binding a constraint is. Only required
// same_table constraints are actively enforced during assignment.
type ConstraintPriority string

const (
	PriorityRequired  ConstraintPriority = "required"
	PriorityPreferred ConstraintPriority = "preferred"
	PriorityOptional  ConstraintPriority = "optional"
)

// ValidConstraintPriorities is the set of all valid constraint priorities.
var ValidConstraintPriorities = []ConstraintPriority{
	PriorityRequired,
	PriorityPreferred,
	PriorityOptional,
}

// IsValid returns true if the constraint priority is recognized.
func (cp ConstraintPriority) IsValid() bool {
	for _, v := range ValidConstraintPriorities {
		if cp == v {
			return true
		}
	}
	return false
}

// Constraint is a planner-authored seating rule over two or more guests.
type Constraint struct {
	ID       string             `json:"id"`
	GuestIDs []string           `json:"guest_ids"`
	Type     ConstraintType     `json:"type"`
	Priority ConstraintPriority `json:"priority"`
}

// ViolationKind tags a diagnostic record from the optimizer.
type ViolationKind string

const (
	ViolationNoTables             ViolationKind = "no_tables"
	ViolationGroupSplit           ViolationKind = "group_split"
	ViolationSameTableBroken      ViolationKind = "same_table_broken"
	ViolationDifferentTableBroken ViolationKind = "different_table_broken"
	ViolationUnseated             ViolationKind = "unseated"
)

// Violation is a structured diagnostic describing a seating shortfall.
// Message is display-ready; the remaining fields identify what was
// affected so callers and tests don't have to parse strings.
type Violation struct {
	Kind         ViolationKind `json:"kind"`
	Message      string        `json:"message"`
	GroupName    string        `json:"group_name,omitempty"`
	ConstraintID string        `json:"constraint_id,omitempty"`
	GuestIDs     []string      `json:"guest_ids,omitempty"`
	Count        int           `json:"count,omitempty"`
}

// OptimizationResult is the optimizer's output: a guest-to-table mapping
// for every guest it placed, a 0-100 quality score, and diagnostics. The
// caller is responsible for persisting Assignments.
type OptimizationResult struct {
	Assignments map[string]string `json:"assignments"`
	Score       float64           `json:"score"`
	Violations  []Violation       `json:"violations"`
}

// ViolationMessages returns the display strings of all violations, in order.
func (r OptimizationResult) ViolationMessages() []string {
	msgs := make([]string, 0, len(r.Violations))
	for _, v := range r.Violations {
		msgs = append(msgs, v.Message)
	}
	return msgs
}

// EventStats holds summary statistics about the stored event.
type EventStats struct {
	TotalGuests      int64            `json:"total_guests"`
	TotalTables      int64            `json:"total_tables"`
	TotalConstraints int64            `json:"total_constraints"`
	TotalCapacity    int64            `json:"total_capacity"`
	SeatedGuests     int64            `json:"seated_guests"`
	ByRSVP           map[string]int64 `json:"by_rsvp"`
}
