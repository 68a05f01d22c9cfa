package models

import "time"

// Advisor is a staff member whose cohort is described by an assignment encoding.
type Advisor struct {
	ID         string    `db:"id" json:"id"`
	Name       string    `db:"name" json:"name"`
	Email      string    `db:"email" json:"email"`
	Department string    `db:"department" json:"department"`
	Assignment string    `db:"batch" json:"assignment"`
	Active     bool      `db:"is_active" json:"is_active"`
	CreatedAt  time.Time `db:"created_at" json:"created_at"`
}

// AssignmentKind tags the AssignmentSpec variant.
type AssignmentKind int

const (
	// AssignmentNone resolves to an empty cohort.
	AssignmentNone AssignmentKind = iota
	// AssignmentRange covers an inclusive registration-number interval plus explicit extras.
	AssignmentRange
)

// String implements fmt.Stringer.
func (k AssignmentKind) String() string {
	if k == AssignmentRange {
		return "range"
	}
	return "none"
}

// MarshalText renders the kind for JSON payloads.
func (k AssignmentKind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// AssignmentSpec is the decoded form of an advisor assignment encoding.
type AssignmentSpec struct {
	Kind   AssignmentKind `json:"kind"`
	Start  string         `json:"start,omitempty"`
	End    string         `json:"end,omitempty"`
	Extras []string       `json:"extras,omitempty"`
}

// AdvisorAssignment is an advisor listed with its decoded assignment.
type AdvisorAssignment struct {
	Advisor
	Spec    AssignmentSpec `json:"spec"`
	Summary string         `json:"summary"`
}
