package service

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/studyhub-labs/librarypro-api/internal/billing"
	"github.com/studyhub-labs/librarypro-api/internal/models"
	appErrors "github.com/studyhub-labs/librarypro-api/pkg/errors"
	"github.com/studyhub-labs/librarypro-api/pkg/export"
)

// Export formats accepted by the export endpoints.
const (
	FormatCSV  = "csv"
	FormatXLSX = "xlsx"
	FormatPDF  = "pdf"
)

type exportPaymentRepository interface {
	FindByID(ctx context.Context, id string) (*models.Payment, error)
	ListBetween(ctx context.Context, from, to time.Time) ([]models.Payment, error)
}

// ExportFile is a rendered export ready to stream to the client.
type ExportFile struct {
	Content     []byte
	Filename    string
	ContentType string
}

// ExportService renders member and payment data as CSV, XLSX or PDF, and
// produces payment receipts.
type ExportService struct {
	students dashboardStudentRepository
	payments exportPaymentRepository
	settings settingsReader
	csv      *export.CSVExporter
	xlsx     *export.XLSXExporter
	pdf      *export.PDFExporter
	maxRows  int
	logger   *zap.Logger
}

// NewExportService constructs the export service.
func NewExportService(students dashboardStudentRepository, payments exportPaymentRepository, settings settingsReader, maxRows int, logger *zap.Logger) *ExportService {
	if maxRows <= 0 {
		maxRows = 10000
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ExportService{
		students: students,
		payments: payments,
		settings: settings,
		csv:      export.NewCSVExporter(),
		xlsx:     export.NewXLSXExporter(),
		pdf:      export.NewPDFExporter(),
		maxRows:  maxRows,
		logger:   logger,
	}
}

// Students exports the member list with computed billing states.
func (s *ExportService) Students(ctx context.Context, format string) (*ExportFile, error) {
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}

	now := time.Now().UTC()
	data := export.Dataset{
		Headers: []string{"ID", "Name", "Phone", "Email", "Join Date", "Due Date", "Amount", "Status", "Days Overdue"},
	}
	for i, student := range students {
		if i >= s.maxRows {
			break
		}
		c := billing.Classify(student, now)
		days := ""
		if c.DaysOverdue > 0 {
			days = fmt.Sprintf("%d", c.DaysOverdue)
		}
		data.Rows = append(data.Rows, map[string]string{
			"ID":           student.ID,
			"Name":         student.Name,
			"Phone":        student.Phone,
			"Email":        student.Email,
			"Join Date":    student.JoinDate.Format("2006-01-02"),
			"Due Date":     student.DueDate.Format("2006-01-02"),
			"Amount":       student.Amount.String(),
			"Status":       c.Label(),
			"Days Overdue": days,
		})
	}
	return s.render(data, format, "students", "Students")
}

// Payments exports payment history, optionally restricted to one month.
// Rows keep their student id even when the member was deleted.
func (s *ExportService) Payments(ctx context.Context, format string, year int, month time.Month) (*ExportFile, error) {
	from := time.Date(2000, time.January, 1, 0, 0, 0, 0, time.UTC)
	to := time.Now().UTC().AddDate(0, 1, 0)
	name := "payments"
	if year != 0 && month != 0 {
		from = time.Date(year, month, 1, 0, 0, 0, 0, time.UTC)
		to = from.AddDate(0, 1, 0)
		name = fmt.Sprintf("payments-%04d-%02d", year, month)
	}

	payments, err := s.payments.ListBetween(ctx, from, to)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payments")
	}
	students, err := s.students.ListAll(ctx)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load students")
	}
	names := make(map[string]string, len(students))
	for _, student := range students {
		names[student.ID] = student.Name
	}

	data := export.Dataset{
		Headers: []string{"Receipt", "Student ID", "Student", "Amount", "Date", "Period", "Method", "Next Due"},
	}
	for i, payment := range payments {
		if i >= s.maxRows {
			break
		}
		data.Rows = append(data.Rows, map[string]string{
			"Receipt":    payment.ID,
			"Student ID": payment.StudentID,
			"Student":    names[payment.StudentID],
			"Amount":     payment.Amount.String(),
			"Date":       payment.Date.Format("2006-01-02"),
			"Period":     payment.Period,
			"Method":     payment.Method,
			"Next Due":   payment.NextDue.Format("2006-01-02"),
		})
	}
	return s.render(data, format, name, "Payments")
}

// Receipt renders a PDF receipt for a recorded payment.
func (s *ExportService) Receipt(ctx context.Context, paymentID string) (*ExportFile, error) {
	payment, err := s.payments.FindByID(ctx, paymentID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, appErrors.Clone(appErrors.ErrNotFound, "payment not found")
		}
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load payment")
	}

	settings, err := s.settings.Get(ctx)
	if err != nil {
		return nil, err
	}

	studentName := "(deleted member)"
	if students, err := s.students.ListAll(ctx); err == nil {
		for _, student := range students {
			if student.ID == payment.StudentID {
				studentName = student.Name
				break
			}
		}
	}

	content, err := s.pdf.RenderReceipt(export.Receipt{
		LibraryName: settings.LibraryName,
		ReceiptNo:   payment.ID,
		StudentName: studentName,
		StudentID:   payment.StudentID,
		Amount:      payment.Amount.String(),
		Date:        payment.Date.Format("2006-01-02"),
		Period:      payment.Period,
		Method:      payment.Method,
		NextDue:     payment.NextDue.Format("2006-01-02"),
	})
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render receipt")
	}
	return &ExportFile{
		Content:     content,
		Filename:    fmt.Sprintf("receipt-%s.pdf", payment.ID),
		ContentType: "application/pdf",
	}, nil
}

func (s *ExportService) render(data export.Dataset, format, name, title string) (*ExportFile, error) {
	switch format {
	case FormatCSV:
		content, err := s.csv.Render(data)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportFile{Content: content, Filename: name + ".csv", ContentType: "text/csv"}, nil
	case FormatXLSX:
		content, err := s.xlsx.Render(data, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render xlsx")
		}
		return &ExportFile{
			Content:     content,
			Filename:    name + ".xlsx",
			ContentType: "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet",
		}, nil
	case FormatPDF:
		content, err := s.pdf.Render(data, title)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportFile{Content: content, Filename: name + ".pdf", ContentType: "application/pdf"}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}
