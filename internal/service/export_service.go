package service

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/noah-isme/placement-portal-api/internal/models"
	appErrors "github.com/noah-isme/placement-portal-api/pkg/errors"
	"github.com/noah-isme/placement-portal-api/pkg/export"
)

// ReportFormat selects the rendering of a class report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

type classAnalyzer interface {
	ClassAnalysis(ctx context.Context, hodID, advisorID string) (*models.ClassAnalysis, error)
}

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

// Report is a rendered file ready to download.
type Report struct {
	Filename    string
	ContentType string
	Payload     []byte
}

// ExportService renders class analyses as downloadable reports.
type ExportService struct {
	analytics classAnalyzer
	csv       csvRenderer
	pdf       pdfRenderer
	enabled   bool
	logger    *zap.Logger
}

// NewExportService constructs an ExportService. Nil renderers select the pkg/export defaults.
func NewExportService(analytics classAnalyzer, enabled bool, logger *zap.Logger, csv csvRenderer, pdf pdfRenderer) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{analytics: analytics, csv: csv, pdf: pdf, enabled: enabled, logger: logger}
}

// ClassReport renders the class analysis of an advisor in the requested format.
func (s *ExportService) ClassReport(ctx context.Context, hodID, advisorID string, format ReportFormat) (*Report, error) {
	if !s.enabled {
		return nil, appErrors.Clone(appErrors.ErrNotFound, "class reports are disabled")
	}
	format = ReportFormat(strings.ToLower(strings.TrimSpace(string(format))))
	if format == "" {
		format = ReportFormatCSV
	}
	if format != ReportFormatCSV && format != ReportFormatPDF {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported report format %q", format))
	}

	analysis, err := s.analytics.ClassAnalysis(ctx, hodID, advisorID)
	if err != nil {
		return nil, err
	}
	dataset := classDataset(analysis)

	var (
		payload     []byte
		contentType string
	)
	switch format {
	case ReportFormatPDF:
		payload, err = s.pdf.Render(dataset)
		contentType = "application/pdf"
	default:
		payload, err = s.csv.Render(dataset)
		contentType = "text/csv"
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render class report")
	}

	filename := reportFilename(analysis.AdvisorName, format)
	s.logger.Info("class report rendered", zap.String("advisor_id", analysis.AdvisorID), zap.String("file", filename), zap.Int("bytes", len(payload)))
	return &Report{Filename: filename, ContentType: contentType, Payload: payload}, nil
}

func classDataset(analysis *models.ClassAnalysis) export.Dataset {
	summary := analysis.Summary
	rows := make([][]string, 0, len(analysis.Students))
	for _, student := range analysis.Students {
		rows = append(rows, []string{
			student.RegistrationNumber,
			student.Name,
			formatScore(student.AverageScore),
			formatScore(student.Participation) + "%",
			student.LastAssessment,
			strconv.Itoa(student.SubmissionCount),
			student.Status,
		})
	}
	return export.Dataset{
		Title: "Class Report: " + analysis.AdvisorName,
		Summary: []export.Field{
			{Label: "Students", Value: strconv.Itoa(summary.CohortSize)},
			{Label: "Average score", Value: formatScore(summary.AverageScore)},
			{Label: "Participation", Value: strconv.Itoa(summary.Participation) + "%"},
			{Label: "Assessments", Value: strconv.Itoa(summary.AssessmentCount)},
			{Label: "Weakest topic", Value: summary.WeakestTopic},
		},
		Headers: []string{"Reg No", "Name", "Average", "Participation", "Last Assessment", "Submissions", "Status"},
		Rows:    rows,
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 1, 64)
}

// maxFilenameBytes bounds the advisor part of a report file name.
const maxFilenameBytes = 60

func reportFilename(advisorName string, format ReportFormat) string {
	timestamp := time.Now().UTC().Format("20060102_150405")
	return fmt.Sprintf("class_%s_%s_%s.%s", sanitizeFilename(advisorName), timestamp, uuid.NewString()[:8], format)
}

func sanitizeFilename(raw string) string {
	replacer := strings.NewReplacer(" ", "_", "/", "-", "\\", "-", ":", "-", "..", ".", "\"", "", ";", "")
	result := replacer.Replace(strings.ToLower(strings.TrimSpace(raw)))
	if len(result) > maxFilenameBytes {
		cut := maxFilenameBytes
		for cut > 0 && !utf8.RuneStart(result[cut]) {
			cut--
		}
		result = result[:cut]
	}
	if result == "" {
		return "advisor"
	}
	return result
}
