package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sort"
	"strconv"

	"github.com/chachabrian/tourhub-backend/internal/models"
	"github.com/google/uuid"
)

type SettingRepository interface {
	List(ctx context.Context) ([]models.Setting, error)
	Upsert(ctx context.Context, settings []models.Setting) error
}

// SettingDefinition describes one known settings key.
type SettingDefinition struct {
	Key         string
	Type        models.SettingType
	Category    string
	Description string
	IsPublic    bool
	Default     interface{}
}

var settingCatalog = []SettingDefinition{
	{"siteName", models.SettingString, "general", "Site name", true, "TourHub Travel"},
	{"siteDescription", models.SettingString, "general", "Site description", true, "Discover guided tours around the world"},
	{"supportEmail", models.SettingString, "general", "Support contact address", true, "support@tourhub.example"},
	{"timeZone", models.SettingString, "general", "Default time zone", true, "UTC"},
	{"emailNotifications", models.SettingBoolean, "email", "Send transactional emails", false, true},
	{"marketingEmails", models.SettingBoolean, "email", "Send marketing emails", false, false},
	{"smtpHost", models.SettingString, "email", "SMTP host", false, ""},
	{"smtpPort", models.SettingNumber, "email", "SMTP port", false, float64(587)},
	{"smtpUsername", models.SettingString, "email", "SMTP username", false, ""},
	{"newBookingAlerts", models.SettingBoolean, "notifications", "Notify admins of new bookings", false, true},
	{"paymentFailureAlerts", models.SettingBoolean, "notifications", "Notify admins of failed payments", false, true},
	{"systemErrorAlerts", models.SettingBoolean, "notifications", "Notify admins of system errors", false, true},
	{"stripePublishableKey", models.SettingString, "payment", "Stripe publishable key", true, ""},
	{"googleAnalyticsId", models.SettingString, "integrations", "Google Analytics id", true, ""},
	{"apiRateLimit", models.SettingBoolean, "security", "Enable API rate limiting", false, false},
	{"maxRequestsPerMinute", models.SettingNumber, "security", "Requests per minute per client", false, float64(100)},
	{"allowGuestBooking", models.SettingBoolean, "booking", "Allow bookings without an account", true, false},
	{"requireEmailVerification", models.SettingBoolean, "booking", "Require verified email to book", false, false},
	{"autoApproveBookings", models.SettingBoolean, "booking", "Confirm bookings without admin review", false, true},
	{"maintenanceMode", models.SettingBoolean, "general", "Show maintenance page", true, false},
}

var settingsByKey = func() map[string]SettingDefinition {
	m := make(map[string]SettingDefinition, len(settingCatalog))
	for _, d := range settingCatalog {
		m[d.Key] = d
	}
	return m
}()

// SettingCatalog returns the known settings definitions ordered by key.
func SettingCatalog() []SettingDefinition {
	out := append([]SettingDefinition(nil), settingCatalog...)
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out
}

type SettingsService struct {
	repo SettingRepository
}

func NewSettingsService(repo SettingRepository) *SettingsService {
	return &SettingsService{repo: repo}
}

// GetAll returns every catalog key with its stored value or default.
func (s *SettingsService) GetAll(ctx context.Context) (map[string]interface{}, error) {
	return s.load(ctx, false)
}

// GetPublic returns only the keys flagged public.
func (s *SettingsService) GetPublic(ctx context.Context) (map[string]interface{}, error) {
	return s.load(ctx, true)
}

func (s *SettingsService) load(ctx context.Context, publicOnly bool) (map[string]interface{}, error) {
	stored, err := s.repo.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list settings: %w", err)
	}

	out := make(map[string]interface{}, len(settingCatalog))
	for _, d := range settingCatalog {
		if publicOnly && !d.IsPublic {
			continue
		}
		out[d.Key] = d.Default
	}
	for _, st := range stored {
		d, ok := settingsByKey[st.Key]
		if !ok || (publicOnly && !d.IsPublic) {
			continue
		}
		out[st.Key] = decodeSetting(d.Type, st.Value)
	}
	return out, nil
}

// Bool reads a boolean setting, returning def when unset or unreadable.
func (s *SettingsService) Bool(ctx context.Context, key string, def bool) bool {
	all, err := s.GetAll(ctx)
	if err != nil {
		return def
	}
	if v, ok := all[key].(bool); ok {
		return v
	}
	return def
}

// Update upserts the catalog keys present in values; unknown keys are ignored.
func (s *SettingsService) Update(ctx context.Context, adminID uuid.UUID, values map[string]interface{}) (map[string]interface{}, error) {
	rows := make([]models.Setting, 0, len(values))
	for key, raw := range values {
		d, ok := settingsByKey[key]
		if !ok {
			continue
		}
		encoded, err := encodeSetting(d.Type, raw)
		if err != nil {
			return nil, invalid(key, "invalid value for %s: %v", key, err)
		}
		updatedBy := adminID
		rows = append(rows, models.Setting{
			Key:         key,
			Value:       encoded,
			Description: d.Description,
			Type:        d.Type,
			Category:    d.Category,
			IsPublic:    d.IsPublic,
			UpdatedBy:   &updatedBy,
		})
	}

	if len(rows) > 0 {
		sort.Slice(rows, func(i, j int) bool { return rows[i].Key < rows[j].Key })
		if err := s.repo.Upsert(ctx, rows); err != nil {
			return nil, fmt.Errorf("upsert settings: %w", err)
		}
	}
	return s.GetAll(ctx)
}

func encodeSetting(t models.SettingType, v interface{}) (string, error) {
	switch t {
	case models.SettingBoolean:
		switch b := v.(type) {
		case bool:
			return strconv.FormatBool(b), nil
		case string:
			parsed, err := strconv.ParseBool(b)
			if err != nil {
				return "", fmt.Errorf("expected boolean")
			}
			return strconv.FormatBool(parsed), nil
		}
		return "", fmt.Errorf("expected boolean")
	case models.SettingNumber:
		switch n := v.(type) {
		case float64:
			return strconv.FormatFloat(n, 'f', -1, 64), nil
		case int:
			return strconv.Itoa(n), nil
		case string:
			parsed, err := strconv.ParseFloat(n, 64)
			if err != nil {
				return "", fmt.Errorf("expected number")
			}
			return strconv.FormatFloat(parsed, 'f', -1, 64), nil
		}
		return "", fmt.Errorf("expected number")
	case models.SettingJSON:
		b, err := json.Marshal(v)
		if err != nil {
			return "", err
		}
		return string(b), nil
	default:
		if str, ok := v.(string); ok {
			return str, nil
		}
		return fmt.Sprint(v), nil
	}
}

func decodeSetting(t models.SettingType, value string) interface{} {
	switch t {
	case models.SettingBoolean:
		return value == "true"
	case models.SettingNumber:
		n, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return value
		}
		return n
	case models.SettingJSON:
		var out interface{}
		if err := json.Unmarshal([]byte(value), &out); err != nil {
			return value
		}
		return out
	default:
		return value
	}
}
