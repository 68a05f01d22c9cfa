package service

import (
	"context"
	"database/sql"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type fakeAdvisorStore struct {
	advisors  []models.Advisor
	listErr   error
	updated   map[string]string
	updateErr error
}

func (f *fakeAdvisorStore) FindStaffByID(_ context.Context, id string) (*models.Advisor, error) {
	for _, advisor := range f.advisors {
		if advisor.ID == id {
			cp := advisor
			return &cp, nil
		}
	}
	return nil, sql.ErrNoRows
}

func (f *fakeAdvisorStore) ListStaff(_ context.Context, department string) ([]models.Advisor, error) {
	if f.listErr != nil {
		return nil, f.listErr
	}
	var result []models.Advisor
	for _, advisor := range f.advisors {
		if department == "" || advisor.Department == department {
			result = append(result, advisor)
		}
	}
	return result, nil
}

func (f *fakeAdvisorStore) UpdateAssignment(_ context.Context, staffID, encoding string) error {
	if f.updateErr != nil {
		return f.updateErr
	}
	if f.updated == nil {
		f.updated = make(map[string]string)
	}
	f.updated[staffID] = encoding
	return nil
}

func newAssignmentFixture() *fakeAdvisorStore {
	return &fakeAdvisorStore{advisors: []models.Advisor{
		{ID: "a1", Name: "Meena", Department: "CSE", Assignment: "RANGE:CS001:CS030|CS099"},
		{ID: "a2", Name: "Ravi", Department: "CSE", Assignment: "RANGE::|CS150,CS151"},
		{ID: "a3", Name: "Kiran", Department: "ECE", Assignment: "legacy batch"},
		{ID: "a4", Name: "Latha", Department: "ECE"},
	}}
}

func TestAssignmentServiceAssignStoresEncoding(t *testing.T) {
	store := newAssignmentFixture()
	svc := NewAssignmentService(store, nil, zap.NewNop())

	result, err := svc.Assign(context.Background(), AssignAdvisorRequest{AdvisorID: "a4", Start: " CS031 ", End: "CS060", Extras: "CS200, ,CS201,CS200"})
	require.NoError(t, err)
	assert.Equal(t, "RANGE:CS031:CS060|CS200,CS201", store.updated["a4"])
	assert.Equal(t, "RANGE:CS031:CS060|CS200,CS201", result.Assignment)
	assert.Equal(t, "CS031 - CS060 (+2 others)", result.Summary)
}

func TestAssignmentServiceReassignSelfSkipsOwnRange(t *testing.T) {
	store := newAssignmentFixture()
	svc := NewAssignmentService(store, nil, zap.NewNop())

	_, err := svc.Assign(context.Background(), AssignAdvisorRequest{AdvisorID: "a1", Start: "CS001", End: "CS040"})
	require.NoError(t, err)
	assert.Equal(t, "RANGE:CS001:CS040", store.updated["a1"])
}

func TestAssignmentServiceExtrasOnly(t *testing.T) {
	store := newAssignmentFixture()
	svc := NewAssignmentService(store, nil, zap.NewNop())

	_, err := svc.Assign(context.Background(), AssignAdvisorRequest{AdvisorID: "a4", Start: "CS500", Extras: "CS300"})
	require.NoError(t, err)
	assert.Equal(t, "RANGE:CS500:|CS300", store.updated["a4"])
}

func TestAssignmentServiceValidation(t *testing.T) {
	svc := NewAssignmentService(newAssignmentFixture(), nil, zap.NewNop())

	cases := []struct {
		name string
		req  AssignAdvisorRequest
	}{
		{name: "missing advisor", req: AssignAdvisorRequest{Start: "CS001", End: "CS002"}},
		{name: "nothing assigned", req: AssignAdvisorRequest{AdvisorID: "a4", Start: "CS001", Extras: " , "}},
		{name: "inverted range", req: AssignAdvisorRequest{AdvisorID: "a4", Start: "CS10", End: "CS9"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.Assign(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
		})
	}
}

func TestAssignmentServiceNumericOrderAcceptsWidthMismatch(t *testing.T) {
	store := newAssignmentFixture()
	svc := NewAssignmentService(store, nil, zap.NewNop())

	_, err := svc.Assign(context.Background(), AssignAdvisorRequest{AdvisorID: "a4", Start: "CS9", End: "CS10"})
	require.Error(t, err)
	// CS9..CS10 numerically lies inside Meena's CS001..CS030
	assert.Equal(t, appErrors.ErrConflict.Code, appErrors.FromError(err).Code)
	assert.Contains(t, err.Error(), "Meena")
}

func TestAssignmentServiceOverlaps(t *testing.T) {
	cases := []struct {
		name     string
		req      AssignAdvisorRequest
		contains string
	}{
		{name: "range overlaps range", req: AssignAdvisorRequest{AdvisorID: "a4", Start: "CS020", End: "CS040"}, contains: "overlaps with Meena's range CS001-CS030"},
		{name: "extra inside existing range", req: AssignAdvisorRequest{AdvisorID: "a4", Extras: "CS015"}, contains: "student CS015 falls in Meena's range"},
		{name: "range covers existing extra", req: AssignAdvisorRequest{AdvisorID: "a4", Start: "CS140", End: "CS160"}, contains: "range includes student CS150 who is already assigned to Ravi"},
		{name: "extra already taken", req: AssignAdvisorRequest{AdvisorID: "a4", Extras: "CS151"}, contains: "student CS151 is already assigned to Ravi"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			store := newAssignmentFixture()
			svc := NewAssignmentService(store, nil, zap.NewNop())

			_, err := svc.Assign(context.Background(), tc.req)
			require.Error(t, err)
			assert.Equal(t, appErrors.ErrConflict.Status, appErrors.FromError(err).Status)
			assert.Contains(t, err.Error(), tc.contains)
			assert.Empty(t, store.updated)
		})
	}
}

func TestAssignmentServiceUnknownAdvisor(t *testing.T) {
	svc := NewAssignmentService(newAssignmentFixture(), nil, zap.NewNop())

	_, err := svc.Assign(context.Background(), AssignAdvisorRequest{AdvisorID: "ghost", Extras: "CS400"})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestAssignmentServiceList(t *testing.T) {
	svc := NewAssignmentService(newAssignmentFixture(), nil, zap.NewNop())

	advisors, err := svc.List(context.Background(), "ECE")
	require.NoError(t, err)
	require.Len(t, advisors, 2)
	assert.Equal(t, models.AssignmentNone, advisors[0].Spec.Kind)
	assert.Equal(t, "Unassigned", advisors[0].Summary)

	all, err := svc.List(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, "CS001 - CS030 (+1 other)", all[0].Summary)
	assert.Equal(t, "(+2 others)", all[1].Summary)
}

func TestAssignmentServiceListError(t *testing.T) {
	svc := NewAssignmentService(&fakeAdvisorStore{listErr: assert.AnError}, nil, zap.NewNop())

	_, err := svc.List(context.Background(), "")
	require.Error(t, err)
	assert.ErrorIs(t, err, assert.AnError)
}
