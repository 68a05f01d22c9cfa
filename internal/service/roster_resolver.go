package service

import (
	"strconv"
	"strings"

	"github.com/noah-isme/placement-portal-api/internal/models"
)

const (
	assignmentPrefix    = "RANGE:"
	assignmentExtrasSep = "|"
	assignmentListSep   = ","
)

// RegNoComparator orders registration numbers. It returns <0, 0 or >0 like strings.Compare.
type RegNoComparator func(a, b string) int

// LexicographicOrder compares registration numbers byte by byte.
// Numbers of different widths compare by prefix, so "9" sorts after "10"; stored assignments rely on it.
func LexicographicOrder(a, b string) int {
	return strings.Compare(a, b)
}

// NumericAwareOrder compares the numeric suffix numerically when both values share the same prefix,
// falling back to plain string order otherwise.
func NumericAwareOrder(a, b string) int {
	a = strings.TrimSpace(a)
	b = strings.TrimSpace(b)
	prefixA, digitsA := splitNumericSuffix(a)
	prefixB, digitsB := splitNumericSuffix(b)
	if digitsA != "" && digitsB != "" && prefixA == prefixB {
		return compareDigits(digitsA, digitsB)
	}
	return strings.Compare(a, b)
}

func splitNumericSuffix(value string) (string, string) {
	i := len(value)
	for i > 0 && value[i-1] >= '0' && value[i-1] <= '9' {
		i--
	}
	return value[:i], value[i:]
}

// compareDigits orders decimal strings of any length without overflow.
func compareDigits(a, b string) int {
	a = strings.TrimLeft(a, "0")
	b = strings.TrimLeft(b, "0")
	if len(a) != len(b) {
		if len(a) < len(b) {
			return -1
		}
		return 1
	}
	return strings.Compare(a, b)
}

// ParseAssignment decodes an assignment encoding. It never fails: anything that is not a well-formed
// RANGE encoding yields an AssignmentNone spec.
func ParseAssignment(encoding string) models.AssignmentSpec {
	encoding = strings.TrimSpace(encoding)
	if !strings.HasPrefix(encoding, assignmentPrefix) {
		return models.AssignmentSpec{Kind: models.AssignmentNone}
	}

	rangePart, extrasPart, _ := strings.Cut(encoding, assignmentExtrasSep)
	bounds := strings.Split(rangePart, ":")
	if len(bounds) != 3 {
		return models.AssignmentSpec{Kind: models.AssignmentNone}
	}

	spec := models.AssignmentSpec{
		Kind:   models.AssignmentRange,
		Start:  strings.TrimSpace(bounds[1]),
		End:    strings.TrimSpace(bounds[2]),
		Extras: splitExtras(extrasPart),
	}
	if spec.Start == "" && spec.End == "" && len(spec.Extras) == 0 {
		return models.AssignmentSpec{Kind: models.AssignmentNone}
	}
	return spec
}

// FormatAssignment encodes a spec. An AssignmentNone spec, or a range with nothing in it, encodes to "".
func FormatAssignment(spec models.AssignmentSpec) string {
	if spec.Kind != models.AssignmentRange {
		return ""
	}
	if spec.Start == "" && spec.End == "" && len(spec.Extras) == 0 {
		return ""
	}
	var builder strings.Builder
	builder.WriteString(assignmentPrefix)
	builder.WriteString(spec.Start)
	builder.WriteByte(':')
	builder.WriteString(spec.End)
	if len(spec.Extras) > 0 {
		builder.WriteString(assignmentExtrasSep)
		builder.WriteString(strings.Join(spec.Extras, assignmentListSep))
	}
	return builder.String()
}

// SummarizeAssignment renders a spec for listings, e.g. "A01 - A30 (+2 others)".
func SummarizeAssignment(spec models.AssignmentSpec) string {
	if spec.Kind != models.AssignmentRange {
		return "Unassigned"
	}
	var parts []string
	if spec.Start != "" && spec.End != "" {
		parts = append(parts, spec.Start+" - "+spec.End)
	}
	if n := len(spec.Extras); n > 0 {
		label := "others"
		if n == 1 {
			label = "other"
		}
		parts = append(parts, "(+"+strconv.Itoa(n)+" "+label+")")
	}
	return strings.Join(parts, " ")
}

func splitExtras(raw string) []string {
	if strings.TrimSpace(raw) == "" {
		return nil
	}
	parts := strings.Split(raw, assignmentListSep)
	extras := make([]string, 0, len(parts))
	seen := make(map[string]struct{}, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed == "" {
			continue
		}
		if _, dup := seen[trimmed]; dup {
			continue
		}
		seen[trimmed] = struct{}{}
		extras = append(extras, trimmed)
	}
	if len(extras) == 0 {
		return nil
	}
	return extras
}

// RosterResolver turns assignment specs into cohorts.
type RosterResolver struct {
	compare RegNoComparator
}

// NewRosterResolver constructs a resolver. A nil comparator selects LexicographicOrder.
func NewRosterResolver(compare RegNoComparator) *RosterResolver {
	if compare == nil {
		compare = LexicographicOrder
	}
	return &RosterResolver{compare: compare}
}

// Contains reports whether a registration number belongs to the spec's cohort.
func (r *RosterResolver) Contains(spec models.AssignmentSpec, regNo string) bool {
	if spec.Kind != models.AssignmentRange {
		return false
	}
	regNo = strings.TrimSpace(regNo)
	if regNo == "" {
		return false
	}
	if r.inInterval(spec, regNo) {
		return true
	}
	for _, extra := range spec.Extras {
		if extra == regNo {
			return true
		}
	}
	return false
}

func (r *RosterResolver) inInterval(spec models.AssignmentSpec, regNo string) bool {
	if spec.Start == "" || spec.End == "" {
		return false
	}
	// an inverted interval matches nothing
	if r.compare(spec.Start, spec.End) > 0 {
		return false
	}
	return r.compare(regNo, spec.Start) >= 0 && r.compare(regNo, spec.End) <= 0
}

// Resolve returns the students in the spec's cohort, deduplicated by id, in input order.
func (r *RosterResolver) Resolve(spec models.AssignmentSpec, students []models.Student) []models.Student {
	cohort := make([]models.Student, 0)
	if spec.Kind != models.AssignmentRange {
		return cohort
	}
	seen := make(map[string]struct{}, len(students))
	for _, student := range students {
		if _, dup := seen[student.ID]; dup {
			continue
		}
		if !r.Contains(spec, student.RegistrationNumber) {
			continue
		}
		seen[student.ID] = struct{}{}
		cohort = append(cohort, student)
	}
	return cohort
}
