// Package i18n renders the messages the console shows for failed operations.
package i18n

import (
	"embed"
	"errors"
	"log/slog"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"github.com/pelletier/go-toml/v2"
	"golang.org/x/text/language"

	"labbooking/internal/adapters/api"
	"labbooking/internal/domain"
)

//go:embed active.*.toml
var localeFS embed.FS

// Translator is a thin wrapper around go-i18n's Bundle/Localizer.
type Translator struct {
	bundle          *i18n.Bundle
	defaultLanguage language.Tag
	logger          *slog.Logger
}

// NewTranslator builds a Translator using the given default locale (e.g. "en").
// Translations are loaded from the embedded active.*.toml files.
func NewTranslator(defaultLocale string, logger *slog.Logger) *Translator {
	if logger == nil {
		logger = slog.Default()
	}
	tag, err := language.Parse(defaultLocale)
	if err != nil {
		tag = language.English
	}
	bundle := i18n.NewBundle(tag)
	bundle.RegisterUnmarshalFunc("toml", toml.Unmarshal)

	for _, file := range []string{"active.en.toml", "active.vi.toml"} {
		if _, err := bundle.LoadMessageFileFS(localeFS, file); err != nil {
			logger.Error("i18n: failed to load message file", "file", file, "error", err)
		}
	}

	return &Translator{bundle: bundle, defaultLanguage: tag, logger: logger}
}

// T renders the message identified by key for the given locale.
// If the key/locale is not found, it falls back to the default locale,
// then finally to the key itself.
func (t *Translator) T(locale, key string, data map[string]any) string {
	return t.localize(locale, &i18n.LocalizeConfig{MessageID: key, TemplateData: data})
}

// RoomsBanner renders the "N rooms" label shown above grouped pending bookings.
func (t *Translator) RoomsBanner(locale string, count int) string {
	return t.localize(locale, &i18n.LocalizeConfig{
		MessageID:    "approval_rooms_banner",
		PluralCount:  count,
		TemplateData: map[string]any{"Count": count},
	})
}

func (t *Translator) localize(locale string, cfg *i18n.LocalizeConfig) string {
	if cfg.MessageID == "" {
		return ""
	}
	languages := []string{}
	if locale != "" {
		languages = append(languages, locale)
	}
	languages = append(languages, t.defaultLanguage.String())

	localizer := i18n.NewLocalizer(t.bundle, languages...)
	msg, err := localizer.Localize(cfg)
	if err != nil {
		t.logger.Warn("i18n: localize failed", "key", cfg.MessageID, "locales", languages, "error", err)
		return cfg.MessageID
	}
	return msg
}

var errorKeys = []struct {
	err error
	key string
}{
	{domain.ErrAuthenticationRequired, "error_authentication_required"},
	{domain.ErrAccessDenied, "error_access_denied"},
	{domain.ErrUnreachable, "error_unreachable"},
	{domain.ErrNotConfigured, "error_not_configured"},
	{domain.ErrCapacityExceeded, "error_capacity_exceeded"},
	{domain.ErrAlreadyRegistered, "error_already_registered"},
	{domain.ErrRoomSelectionRequired, "error_room_selection_required"},
	{domain.ErrUnknownRoom, "error_unknown_room"},
	{domain.ErrDependencyConflict, "error_dependency_conflict"},
	{domain.ErrNotFound, "error_not_found"},
	{domain.ErrInvalidInput, "error_invalid_input"},
	{domain.ErrInvalidState, "error_invalid_state"},
}

// Describe returns the message the UI shows for err.
// Backend validation messages are passed through verbatim; everything else is localized by kind.
func (t *Translator) Describe(locale string, err error) string {
	if err == nil {
		return ""
	}

	var apiErr *api.Error
	if errors.As(err, &apiErr) && errors.Is(err, domain.ErrValidationRejected) {
		if apiErr.Message != "" && apiErr.Message != api.GenericMessage {
			return apiErr.Message
		}
		return t.T(locale, "error_validation_rejected", nil)
	}

	var notActive *domain.NotActiveError
	if errors.As(err, &notActive) {
		return t.T(locale, "error_event_not_active", map[string]any{"Status": notActive.Status.String()})
	}
	if errors.Is(err, domain.ErrEventNotActive) {
		return t.T(locale, "error_event_not_active_generic", nil)
	}

	for _, ek := range errorKeys {
		if errors.Is(err, ek.err) {
			return t.T(locale, ek.key, nil)
		}
	}
	return t.T(locale, "error_generic", nil)
}
