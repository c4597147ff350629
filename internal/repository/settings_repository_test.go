package repository

import (
	"context"
	"testing"
	"time"

	sqlmock "github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/studyhub-labs/librarypro-api/internal/models"
)

func TestSettingsRepositoryAll(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	now := time.Now().UTC()
	rows := sqlmock.NewRows([]string{"key", "value", "updated_at"}).
		AddRow(models.SettingDueDay, "5", now).
		AddRow(models.SettingLibraryName, "LibraryPro", now)
	mock.ExpectQuery("SELECT key, value, updated_at FROM settings ORDER BY key").
		WillReturnRows(rows)

	settings, err := repo.All(context.Background())
	require.NoError(t, err)
	require.Len(t, settings, 2)
	assert.Equal(t, models.SettingDueDay, settings[0].Key)
	assert.Equal(t, "5", settings[0].Value)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestSettingsRepositoryUpsert(t *testing.T) {
	db, mock, cleanup := newMockDB(t)
	defer cleanup()
	repo := NewSettingsRepository(db)

	mock.ExpectExec("ON CONFLICT \\(key\\) DO UPDATE SET value = EXCLUDED.value").
		WithArgs(models.SettingMembershipFee, "600", sqlmock.AnyArg()).
		WillReturnResult(sqlmock.NewResult(0, 1))

	err := repo.Upsert(context.Background(), models.SettingMembershipFee, "600")
	require.NoError(t, err)
	assert.NoError(t, mock.ExpectationsWereMet())
}
