package service

import (
	"context"
	"testing"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/studyhub-labs/librarypro-api/internal/models"
	appErrors "github.com/studyhub-labs/librarypro-api/pkg/errors"
)

type mockSettingsRepo struct {
	values map[string]string
}

func (m *mockSettingsRepo) All(ctx context.Context) ([]models.Setting, error) {
	out := make([]models.Setting, 0, len(m.values))
	for k, v := range m.values {
		out = append(out, models.Setting{Key: k, Value: v, UpdatedAt: time.Now().UTC()})
	}
	return out, nil
}

func (m *mockSettingsRepo) Upsert(ctx context.Context, key, value string) error {
	if m.values == nil {
		m.values = make(map[string]string)
	}
	m.values[key] = value
	return nil
}

func TestSettingsServiceGetFallsBackOnCorruptValues(t *testing.T) {
	repo := &mockSettingsRepo{values: map[string]string{
		models.SettingDueDay:        "not-a-number",
		models.SettingMembershipFee: "-100",
		models.SettingLibraryName:   "City Library",
	}}
	svc := NewSettingsService(repo, validator.New(), zap.NewNop())

	settings, err := svc.Get(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "City Library", settings.LibraryName)
	assert.Equal(t, 5, settings.DueDay, "corrupt due day falls back to default")
	assert.True(t, settings.MembershipFee.Equal(decimal.NewFromInt(500)), "negative fee falls back to default")
	assert.Equal(t, 3, settings.NotificationDays)
}

func TestSettingsServiceUpdate(t *testing.T) {
	repo := &mockSettingsRepo{values: map[string]string{}}
	svc := NewSettingsService(repo, validator.New(), zap.NewNop())

	dueDay := 15
	fee := decimal.NewFromInt(650)
	settings, err := svc.Update(context.Background(), UpdateSettingsRequest{
		DueDay:        &dueDay,
		MembershipFee: &fee,
	})
	require.NoError(t, err)
	assert.Equal(t, 15, settings.DueDay)
	assert.True(t, settings.MembershipFee.Equal(fee))
	assert.Equal(t, "15", repo.values[models.SettingDueDay])
}

func TestSettingsServiceUpdateRejectsOutOfRangeDueDay(t *testing.T) {
	svc := NewSettingsService(&mockSettingsRepo{}, validator.New(), zap.NewNop())

	dueDay := 32
	_, err := svc.Update(context.Background(), UpdateSettingsRequest{DueDay: &dueDay})
	require.Error(t, err)
	assert.Equal(t, appErrors.ErrValidation.Code, appErrors.FromError(err).Code)
}

func TestSettingsServiceEnsureDefaultsOnlyFillsGaps(t *testing.T) {
	repo := &mockSettingsRepo{values: map[string]string{
		models.SettingLibraryName: "City Library",
	}}
	svc := NewSettingsService(repo, validator.New(), zap.NewNop())

	require.NoError(t, svc.EnsureDefaults(context.Background()))
	assert.Equal(t, "City Library", repo.values[models.SettingLibraryName], "existing values are untouched")
	assert.Equal(t, "5", repo.values[models.SettingDueDay])
	assert.Equal(t, "3", repo.values[models.SettingNotificationDays])
	assert.Equal(t, "online", repo.values[models.SettingAIMode])
	assert.Equal(t, "500", repo.values[models.SettingMembershipFee])
}
