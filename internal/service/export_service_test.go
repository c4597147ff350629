package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	appErrors "github.com/studyhub-labs/librarypro-api/pkg/errors"
)

func TestExportServiceStudentsCSV(t *testing.T) {
	now := time.Now().UTC()
	students, payments := dashboardFixture(now)
	svc := NewExportService(students, payments, &stubSettings{}, 0, zap.NewNop())

	file, err := svc.Students(context.Background(), FormatCSV)
	require.NoError(t, err)
	assert.Equal(t, "students.csv", file.Filename)
	assert.Equal(t, "text/csv", file.ContentType)

	content := string(file.Content)
	assert.Contains(t, content, "Rahul Sharma")
	assert.Contains(t, content, "Due Today")
	assert.Contains(t, content, "Overdue")
	assert.Equal(t, 5, strings.Count(content, "\n"), "header plus four members")
}

func TestExportServicePaymentsKeepDanglingStudentIDs(t *testing.T) {
	now := time.Now().UTC()
	students, payments := dashboardFixture(now)
	delete(students.students, "LIB003")
	svc := NewExportService(students, payments, &stubSettings{}, 0, zap.NewNop())

	file, err := svc.Payments(context.Background(), FormatCSV, 0, 0)
	require.NoError(t, err)
	assert.Contains(t, string(file.Content), "LIB003", "payments of deleted members keep their student id")
}

func TestExportServiceReceipt(t *testing.T) {
	now := time.Now().UTC()
	students, payments := dashboardFixture(now)
	svc := NewExportService(students, payments, &stubSettings{}, 0, zap.NewNop())

	file, err := svc.Receipt(context.Background(), "PAY001")
	require.NoError(t, err)
	assert.Equal(t, "receipt-PAY001.pdf", file.Filename)
	assert.Equal(t, "application/pdf", file.ContentType)
	assert.True(t, len(file.Content) > 0)

	_, err = svc.Receipt(context.Background(), "missing")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrNotFound.Code, appErrors.FromError(err).Code)
}

func TestExportServiceRejectsUnknownFormat(t *testing.T) {
	now := time.Now().UTC()
	students, payments := dashboardFixture(now)
	svc := NewExportService(students, payments, &stubSettings{}, 0, zap.NewNop())

	_, err := svc.Students(context.Background(), "docx")
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}
