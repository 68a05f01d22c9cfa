package service

import (
	"bytes"
	"context"
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
)

type classAnalyzerStub struct {
	err error
}

func (s classAnalyzerStub) ClassAnalysis(_ context.Context, _, advisorID string) (*models.ClassAnalysis, error) {
	if s.err != nil {
		return nil, s.err
	}
	return &models.ClassAnalysis{
		AdvisorID:   advisorID,
		AdvisorName: "Meena K",
		Summary: models.CohortMetrics{MetricSnapshot: models.MetricSnapshot{
			CohortSize: 2, AverageScore: 72.5, Participation: 100, AssessmentCount: 3, WeakestTopic: "Graphs",
		}},
		Students: []models.StudentPerformance{
			{RegistrationNumber: "CS01", Name: "Asha", AverageScore: 80, Participation: 100, LastAssessment: "Arrays", SubmissionCount: 2, Status: models.StudentStatusGood},
			{RegistrationNumber: "CS02", Name: "Bala", AverageScore: 65, Participation: 50, LastAssessment: "Graphs", SubmissionCount: 1, Status: models.StudentStatusNeedsFocus},
		},
	}, nil
}

func TestExportServiceClassReportCSV(t *testing.T) {
	svc := NewExportService(classAnalyzerStub{}, true, zap.NewNop(), nil, nil)

	report, err := svc.ClassReport(context.Background(), "hod", "adv-a", "")
	require.NoError(t, err)
	assert.Equal(t, "text/csv", report.ContentType)
	assert.True(t, strings.HasPrefix(report.Filename, "class_meena_k_"))
	assert.True(t, strings.HasSuffix(report.Filename, ".csv"))

	lines := strings.Split(strings.TrimSpace(string(report.Payload)), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "Reg No,Name,Average,Participation,Last Assessment,Submissions,Status", lines[0])
	assert.Equal(t, "CS01,Asha,80.0,100.0%,Arrays,2,Good", lines[1])
}

func TestExportServiceClassReportPDF(t *testing.T) {
	svc := NewExportService(classAnalyzerStub{}, true, zap.NewNop(), nil, nil)

	report, err := svc.ClassReport(context.Background(), "hod", "adv-a", " PDF ")
	require.NoError(t, err)
	assert.Equal(t, "application/pdf", report.ContentType)
	assert.True(t, bytes.HasPrefix(report.Payload, []byte("%PDF-")))
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	svc := NewExportService(classAnalyzerStub{}, true, zap.NewNop(), nil, nil)

	_, err := svc.ClassReport(context.Background(), "hod", "adv-a", "xlsx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestExportServiceDisabled(t *testing.T) {
	svc := NewExportService(classAnalyzerStub{}, false, zap.NewNop(), nil, nil)

	_, err := svc.ClassReport(context.Background(), "hod", "adv-a", ReportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServicePropagatesAnalysisError(t *testing.T) {
	forbidden := appErrors.Clone(appErrors.ErrForbidden, "advisor belongs to another department")
	svc := NewExportService(classAnalyzerStub{err: forbidden}, true, zap.NewNop(), nil, nil)

	_, err := svc.ClassReport(context.Background(), "hod", "adv-x", ReportFormatCSV)
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrForbidden.Status, appErrors.FromError(err).Status)
}

func TestSanitizeFilename(t *testing.T) {
	long := sanitizeFilename("a" + strings.Repeat("é", 40))
	assert.True(t, utf8.ValidString(long))
	assert.LessOrEqual(t, len(long), maxFilenameBytes)
	assert.Equal(t, "a"+strings.Repeat("é", 29), long)

	assert.Equal(t, "obrien", sanitizeFilename(`O"Brien`))
	assert.Equal(t, "dr._meena_k", sanitizeFilename(" Dr. Meena K "))
	assert.Equal(t, "a-b", sanitizeFilename("a/b"))
	assert.Equal(t, "advisor", sanitizeFilename(`""`))
	assert.Equal(t, "advisor", sanitizeFilename("  "))
}
