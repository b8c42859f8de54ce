package annotation

import (
	"context"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"

	"github.com/nicksnyder/go-i18n/v2/i18n"
	"golang.org/x/text/language"

	"github.com/lewtec/parelha/internal/domain"
)

//go:embed locales/*.json
var localesFS embed.FS

// Languages shipped with the web front
var Languages = []string{"en", "fr", "pt-BR"}

var bundle *i18n.Bundle

type localizerKey struct{}

func init() {
	bundle = i18n.NewBundle(language.English)
	bundle.RegisterUnmarshalFunc("json", json.Unmarshal)
	for _, locale := range Languages {
		data, err := localesFS.ReadFile("locales/" + locale + ".json")
		if err != nil {
			log.Printf("i18n: failed to read locale %s: %v", locale, err)
			continue
		}
		if _, err := bundle.ParseMessageFileBytes(data, locale+".json"); err != nil {
			log.Printf("i18n: failed to parse locale %s: %v", locale, err)
		}
	}
}

// NewLocalizer picks the first of langs the bundle knows, then fallback
func NewLocalizer(fallback string, langs ...string) *i18n.Localizer {
	return i18n.NewLocalizer(bundle, append(langs, fallback)...)
}

// LocalizerFromRequest honours Accept-Language, falling back to fallback
func LocalizerFromRequest(r *http.Request, fallback string) *i18n.Localizer {
	tags, _, err := language.ParseAcceptLanguage(r.Header.Get("Accept-Language"))
	if err != nil {
		return NewLocalizer(fallback)
	}
	langs := make([]string, 0, len(tags))
	for _, tag := range tags {
		langs = append(langs, tag.String())
	}
	return NewLocalizer(fallback, langs...)
}

func WithLocalizer(ctx context.Context, localizer *i18n.Localizer) context.Context {
	return context.WithValue(ctx, localizerKey{}, localizer)
}

// GetLocalizerFromContext returns the request localizer, or English
func GetLocalizerFromContext(ctx context.Context) *i18n.Localizer {
	if localizer, ok := ctx.Value(localizerKey{}).(*i18n.Localizer); ok {
		return localizer
	}
	return NewLocalizer(DefaultLanguage)
}

// Localize translates messageID, returning the id itself when missing.
// pairs are alternating template keys and values.
func Localize(localizer *i18n.Localizer, messageID string, pairs ...any) string {
	var data map[string]any
	if len(pairs) > 0 {
		data = make(map[string]any, len(pairs)/2)
		for i := 0; i+1 < len(pairs); i += 2 {
			data[fmt.Sprint(pairs[i])] = pairs[i+1]
		}
	}
	msg, err := localizer.Localize(&i18n.LocalizeConfig{
		MessageID:    messageID,
		TemplateData: data,
	})
	if err != nil {
		return messageID
	}
	return msg
}

// LocalizeWithContext translates using the localizer of ctx
func LocalizeWithContext(ctx context.Context, messageID string, pairs ...any) string {
	return Localize(GetLocalizerFromContext(ctx), messageID, pairs...)
}

// errorMessageID maps an error to the message shown to the user
func errorMessageID(err error) string {
	switch {
	case errors.Is(err, domain.ErrUnauthenticated):
		return "error.unauthenticated"
	case errors.Is(err, domain.ErrNotAuthorized):
		return "error.not_authorized"
	case errors.Is(err, domain.ErrNotFound):
		return "error.not_found"
	case errors.Is(err, domain.ErrInvalidSelection):
		return "error.invalid_selection"
	case errors.Is(err, domain.ErrMissingSelection):
		return "error.missing_selection"
	case errors.Is(err, domain.ErrBusy):
		return "error.busy"
	case errors.Is(err, domain.ErrCompleted):
		return "error.completed"
	case errors.Is(err, domain.ErrNotReady):
		return "error.not_ready"
	case errors.Is(err, domain.ErrNetwork):
		return "error.network"
	}
	return "error.generic"
}

// localizeError renders err for the user, keeping the server's own message
func localizeError(ctx context.Context, err error) string {
	msg := LocalizeWithContext(ctx, errorMessageID(err))
	var apiErr *domain.APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return msg + " (" + apiErr.Message + ")"
	}
	return msg
}
