package service

import (
	"context"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/studyhub-labs/librarypro-api/internal/models"
	appErrors "github.com/studyhub-labs/librarypro-api/pkg/errors"
)

type settingsRepository interface {
	All(ctx context.Context) ([]models.Setting, error)
	Upsert(ctx context.Context, key, value string) error
}

// UpdateSettingsRequest holds the payload for updating configuration.
// Pointer fields distinguish "leave unchanged" from an explicit value.
type UpdateSettingsRequest struct {
	LibraryName      *string          `json:"library_name" validate:"omitempty,min=1,max=120"`
	MembershipFee    *decimal.Decimal `json:"membership_fee"`
	DueDay           *int             `json:"due_day" validate:"omitempty,min=1,max=31"`
	NotificationDays *int             `json:"notification_days" validate:"omitempty,min=0,max=60"`
	AIMode           *string          `json:"ai_mode" validate:"omitempty,oneof=online offline"`
}

// SettingsService reads and writes library configuration. Reads are
// self-healing: a missing or unparsable value falls back to its default
// instead of failing the request.
type SettingsService struct {
	repo      settingsRepository
	validator *validator.Validate
	logger    *zap.Logger
}

// NewSettingsService constructs the settings service.
func NewSettingsService(repo settingsRepository, validate *validator.Validate, logger *zap.Logger) *SettingsService {
	if validate == nil {
		validate = validator.New()
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SettingsService{repo: repo, validator: validate, logger: logger}
}

// Get returns the typed configuration view.
func (s *SettingsService) Get(ctx context.Context) (models.Settings, error) {
	stored, err := s.repo.All(ctx)
	if err != nil {
		return models.Settings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}

	settings := models.DefaultSettings()
	for _, entry := range stored {
		switch entry.Key {
		case models.SettingLibraryName:
			if entry.Value != "" {
				settings.LibraryName = entry.Value
			}
		case models.SettingMembershipFee:
			if fee, err := decimal.NewFromString(entry.Value); err == nil && !fee.IsNegative() {
				settings.MembershipFee = fee
			} else {
				s.logger.Warn("ignoring invalid membership fee setting", zap.String("value", entry.Value))
			}
		case models.SettingDueDay:
			if day, err := strconv.Atoi(entry.Value); err == nil && day >= 1 && day <= 31 {
				settings.DueDay = day
			} else {
				s.logger.Warn("ignoring invalid due day setting", zap.String("value", entry.Value))
			}
		case models.SettingNotificationDays:
			if days, err := strconv.Atoi(entry.Value); err == nil && days >= 0 {
				settings.NotificationDays = days
			} else {
				s.logger.Warn("ignoring invalid notification days setting", zap.String("value", entry.Value))
			}
		case models.SettingAIMode:
			if entry.Value == "online" || entry.Value == "offline" {
				settings.AIMode = entry.Value
			}
		}
	}
	return settings, nil
}

// Update applies the provided changes and returns the resulting view.
func (s *SettingsService) Update(ctx context.Context, req UpdateSettingsRequest) (models.Settings, error) {
	if err := s.validator.Struct(req); err != nil {
		return models.Settings{}, appErrors.Wrap(err, appErrors.ErrValidation.Code, appErrors.ErrValidation.Status, "invalid settings payload")
	}
	if req.MembershipFee != nil && req.MembershipFee.IsNegative() {
		return models.Settings{}, appErrors.Clone(appErrors.ErrValidation, "membership fee cannot be negative")
	}

	changes := map[string]string{}
	if req.LibraryName != nil {
		changes[models.SettingLibraryName] = *req.LibraryName
	}
	if req.MembershipFee != nil {
		changes[models.SettingMembershipFee] = req.MembershipFee.String()
	}
	if req.DueDay != nil {
		changes[models.SettingDueDay] = strconv.Itoa(*req.DueDay)
	}
	if req.NotificationDays != nil {
		changes[models.SettingNotificationDays] = strconv.Itoa(*req.NotificationDays)
	}
	if req.AIMode != nil {
		changes[models.SettingAIMode] = *req.AIMode
	}

	for key, value := range changes {
		if err := s.repo.Upsert(ctx, key, value); err != nil {
			return models.Settings{}, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to save settings")
		}
	}
	return s.Get(ctx)
}

// EnsureDefaults persists any missing configuration keys on startup so the
// admin panel always shows a complete set.
func (s *SettingsService) EnsureDefaults(ctx context.Context) error {
	stored, err := s.repo.All(ctx)
	if err != nil {
		return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to load settings")
	}
	present := map[string]bool{}
	for _, entry := range stored {
		present[entry.Key] = true
	}

	defaults := models.DefaultSettings()
	wanted := map[string]string{
		models.SettingLibraryName:      defaults.LibraryName,
		models.SettingMembershipFee:    defaults.MembershipFee.String(),
		models.SettingDueDay:           strconv.Itoa(defaults.DueDay),
		models.SettingNotificationDays: strconv.Itoa(defaults.NotificationDays),
		models.SettingAIMode:           defaults.AIMode,
	}
	for key, value := range wanted {
		if present[key] {
			continue
		}
		if err := s.repo.Upsert(ctx, key, value); err != nil {
			return appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to seed settings")
		}
	}
	return nil
}
