package i18n

import (
	"net/http"
	"strings"
	"time"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

const (
	// LangParam is the query parameter used to select a language.
	LangParam = "lang"

	// LangCookieName stores the user's language preference.
	LangCookieName = "devicedash_lang"

	langCookieMaxAge = 365 * 24 * time.Hour
)

var (
	// Chinese is the default catalog language.
	Chinese = language.MustParse("zh-CN")

	// English is the secondary catalog language.
	English = language.English

	supported = []language.Tag{Chinese, English}
	matcher   = language.NewMatcher(supported)
)

// Supported returns the catalog languages, default first.
func Supported() []language.Tag {
	return append([]language.Tag(nil), supported...)
}

// Match returns the supported tag closest to tag. Anything without a
// reasonable match resolves to Chinese.
func Match(tag language.Tag) language.Tag {
	_, idx, conf := matcher.Match(tag)
	if conf == language.No {
		return supported[0]
	}
	return supported[idx]
}

// Parse matches a BCP 47 string against the catalog. The bool is false when
// value does not parse; the returned tag is then the default.
func Parse(value string) (language.Tag, bool) {
	tag, err := language.Parse(strings.TrimSpace(value))
	if err != nil {
		return supported[0], false
	}
	return Match(tag), true
}

// Printer returns a message printer for the closest supported language.
func Printer(tag language.Tag) *message.Printer {
	return message.NewPrinter(Match(tag))
}

// T translates key for tag, formatting any arguments.
func T(tag language.Tag, key string, args ...any) string {
	return Printer(tag).Sprintf(key, args...)
}

// ResolveTag determines the language for a request: the lang query
// parameter first, then the preference cookie, then Accept-Language, then
// fallback. The bool reports whether the query parameter selected it and
// should be persisted with SetLanguageCookie.
func ResolveTag(r *http.Request, fallback language.Tag) (language.Tag, bool) {
	if r == nil {
		return Match(fallback), false
	}

	if v := r.URL.Query().Get(LangParam); v != "" {
		if tag, ok := Parse(v); ok {
			return tag, true
		}
	}

	if cookie, err := r.Cookie(LangCookieName); err == nil {
		if tag, ok := Parse(cookie.Value); ok {
			return tag, false
		}
	}

	if accept := strings.TrimSpace(r.Header.Get("Accept-Language")); accept != "" {
		if tags, _, err := language.ParseAcceptLanguage(accept); err == nil && len(tags) > 0 {
			if _, idx, conf := matcher.Match(tags...); conf != language.No {
				return supported[idx], false
			}
		}
	}

	return Match(fallback), false
}

// SetLanguageCookie persists the selected language on the response.
func SetLanguageCookie(w http.ResponseWriter, tag language.Tag) {
	http.SetCookie(w, &http.Cookie{
		Name:     LangCookieName,
		Value:    tag.String(),
		Path:     "/",
		MaxAge:   int(langCookieMaxAge.Seconds()),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}
