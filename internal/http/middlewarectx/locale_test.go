package middlewarectx

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"golang.org/x/text/language"

	"github.com/antonovmk/signup-service/internal/lib/i18n"
)

func TestLocaleMiddleware(t *testing.T) {
	tests := []struct {
		name           string
		acceptLanguage string
		want           language.Tag
	}{
		{
			name:           "russian header",
			acceptLanguage: "ru-RU,ru;q=0.9",
			want:           language.Russian,
		},
		{
			name:           "english header",
			acceptLanguage: "en-US",
			want:           language.English,
		},
		{
			name:           "missing header falls back to default",
			acceptLanguage: "",
			want:           language.English,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got language.Tag
			next := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				got = LocaleFromContext(r.Context())
			})

			req := httptest.NewRequest(http.MethodGet, "/", nil)
			if tt.acceptLanguage != "" {
				req.Header.Set("Accept-Language", tt.acceptLanguage)
			}
			rec := httptest.NewRecorder()

			LocaleMiddleware(i18n.NewCatalog())(next).ServeHTTP(rec, req)

			assert.Equal(t, tt.want, got)
		})
	}
}

func TestLocaleFromContext_Unset(t *testing.T) {
	assert.Equal(t, language.English, LocaleFromContext(context.Background()))
}
