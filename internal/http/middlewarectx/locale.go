// Package middlewarectx содержит HTTP middleware, обогащающие контекст запроса.
package middlewarectx

import (
	"context"
	"net/http"

	"golang.org/x/text/language"

	"github.com/antonovmk/signup-service/internal/lib/i18n"
)

type contextKey string

const localeKey contextKey = "locale"

// LocaleMiddleware выбирает локаль по заголовку Accept-Language
// и сохраняет её в контексте запроса.
func LocaleMiddleware(catalog *i18n.Catalog) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			locale := catalog.Negotiate(r.Header.Get("Accept-Language"))
			ctx := context.WithValue(r.Context(), localeKey, locale)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// WithLocale возвращает контекст с установленной локалью.
func WithLocale(ctx context.Context, locale language.Tag) context.Context {
	return context.WithValue(ctx, localeKey, locale)
}

// LocaleFromContext возвращает локаль запроса;
// если локаль не установлена — английскую по умолчанию.
func LocaleFromContext(ctx context.Context) language.Tag {
	if locale, ok := ctx.Value(localeKey).(language.Tag); ok {
		return locale
	}
	return language.English
}
