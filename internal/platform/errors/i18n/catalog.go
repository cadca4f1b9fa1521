// Package i18n renders user-facing text for domain error codes.
package i18n

import (
	"strings"
	"sync"
	"text/template"

	apperrors "github.com/louisbranch/atlas/internal/platform/errors"
	i18ncatalog "github.com/louisbranch/atlas/internal/platform/i18n/catalog"
)

const namespace = "errors"

// Catalog holds the error message templates for one locale.
type Catalog struct {
	locale    string
	templates map[apperrors.Code]*template.Template
	raw       map[apperrors.Code]string
}

// catalogs caches one Catalog per resolved locale.
var catalogs sync.Map

// GetCatalog returns the catalog for locale, or the base locale catalog when
// the bundle has no errors namespace for it.
func GetCatalog(locale string) *Catalog {
	requested := strings.TrimSpace(locale)
	if requested == "" {
		requested = i18ncatalog.BaseLocale
	}
	if c, ok := catalogs.Load(requested); ok {
		return c.(*Catalog)
	}

	resolved, messages := i18ncatalog.Default().NamespaceMessagesWithFallback(requested, namespace)
	if c, ok := catalogs.Load(resolved); ok {
		return c.(*Catalog)
	}
	codes := make(map[apperrors.Code]string, len(messages))
	for key, value := range messages {
		codes[apperrors.Code(strings.TrimPrefix(key, namespace+"."))] = value
	}
	c, _ := catalogs.LoadOrStore(resolved, NewCatalog(resolved, codes))
	return c.(*Catalog)
}

// RegisterCatalog installs cat for locale, replacing any cached one.
func RegisterCatalog(locale string, cat *Catalog) {
	catalogs.Store(locale, cat)
}

// NewCatalog parses messages as text/template sources. A message that does not
// parse is kept as literal text.
func NewCatalog(locale string, messages map[apperrors.Code]string) *Catalog {
	c := &Catalog{
		locale:    locale,
		templates: make(map[apperrors.Code]*template.Template, len(messages)),
		raw:       make(map[apperrors.Code]string, len(messages)),
	}
	for code, text := range messages {
		c.raw[code] = text
		if tmpl, err := template.New(string(code)).Parse(text); err == nil {
			c.templates[code] = tmpl
		}
	}
	return c
}

// Locale returns the locale of this catalog.
func (c *Catalog) Locale() string {
	return c.locale
}

// Format renders the message for code with metadata. Unknown codes render as
// the code itself.
func (c *Catalog) Format(code apperrors.Code, metadata map[string]string) string {
	text, ok := c.raw[code]
	if !ok {
		return string(code)
	}
	tmpl := c.templates[code]
	if tmpl == nil {
		return text
	}
	if metadata == nil {
		metadata = map[string]string{}
	}
	var b strings.Builder
	if err := tmpl.Execute(&b, metadata); err != nil {
		return text
	}
	return b.String()
}

// Localize renders err for a player. Errors outside the domain taxonomy fall
// back to their own message.
func Localize(locale string, err error) string {
	if err == nil {
		return ""
	}
	code := apperrors.CodeOf(err)
	if code == apperrors.CodeUnknown {
		return err.Error()
	}
	return GetCatalog(locale).Format(code, apperrors.MetadataOf(err))
}
