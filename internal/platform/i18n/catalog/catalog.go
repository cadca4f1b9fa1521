// Package catalog loads the embedded message catalogs used for player-facing text.
//
// Catalog files live under locales/<locale>/<namespace>.yaml. Loaded messages
// are registered with golang.org/x/text/message so printers can format them
// with fmt verbs.
package catalog

import (
	"embed"
	"fmt"
	"io/fs"
	"maps"
	"path"
	"slices"
	"strings"

	"golang.org/x/text/language"
	"golang.org/x/text/message"
	"gopkg.in/yaml.v3"
)

// BaseLocale is the source locale every other catalog translates from.
const BaseLocale = "en-US"

const catalogGlob = "locales/*/*.yaml"

// file is the on-disk shape of one catalog.
type file struct {
	Locale    string            `yaml:"locale"`
	Namespace string            `yaml:"namespace"`
	Messages  map[string]string `yaml:"messages"`
}

type localeMessages struct {
	namespaces map[string]map[string]string
	all        map[string]string
}

// Bundle holds every loaded locale.
type Bundle struct {
	locales map[string]*localeMessages
}

//go:embed locales/*/*.yaml
var embedded embed.FS

var defaultBundle = mustLoadEmbedded()

// Default returns the embedded bundle. Its messages are already registered.
func Default() *Bundle {
	return defaultBundle
}

// LoadEmbedded parses the catalogs compiled into the binary.
func LoadEmbedded() (*Bundle, error) {
	return LoadFromFS(embedded)
}

// LoadFromFS parses every locales/<locale>/<namespace>.yaml file in fsys.
func LoadFromFS(fsys fs.FS) (*Bundle, error) {
	paths, err := fs.Glob(fsys, catalogGlob)
	if err != nil {
		return nil, fmt.Errorf("glob locale catalogs: %w", err)
	}
	if len(paths) == 0 {
		return nil, fmt.Errorf("no catalog files found")
	}
	slices.Sort(paths)

	b := &Bundle{locales: map[string]*localeMessages{}}
	for _, p := range paths {
		data, err := fs.ReadFile(fsys, p)
		if err != nil {
			return nil, fmt.Errorf("read catalog %s: %w", p, err)
		}
		var f file
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse catalog %s: %w", p, err)
		}
		if err := b.add(p, f); err != nil {
			return nil, fmt.Errorf("catalog %s: %w", p, err)
		}
	}
	if !b.HasLocale(BaseLocale) {
		return nil, fmt.Errorf("base locale %s is not defined in catalogs", BaseLocale)
	}
	return b, nil
}

func (b *Bundle) add(p string, f file) error {
	wantLocale := path.Base(path.Dir(p))
	wantNamespace := strings.TrimSuffix(path.Base(p), path.Ext(p))

	locale := strings.TrimSpace(f.Locale)
	namespace := strings.TrimSpace(f.Namespace)
	switch {
	case locale == "":
		return fmt.Errorf("locale is required")
	case locale != wantLocale:
		return fmt.Errorf("locale %q must match path locale %q", locale, wantLocale)
	case namespace == "":
		return fmt.Errorf("namespace is required")
	case namespace != wantNamespace:
		return fmt.Errorf("namespace %q must match file name %q", namespace, wantNamespace)
	case len(f.Messages) == 0:
		return fmt.Errorf("no messages")
	}

	lm := b.locales[locale]
	if lm == nil {
		lm = &localeMessages{namespaces: map[string]map[string]string{}, all: map[string]string{}}
		b.locales[locale] = lm
	}
	if _, ok := lm.namespaces[namespace]; ok {
		return fmt.Errorf("namespace %q already defined for %s", namespace, locale)
	}

	prefix := namespace + "."
	ns := make(map[string]string, len(f.Messages))
	for key, value := range f.Messages {
		key = strings.TrimSpace(key)
		if !strings.HasPrefix(key, prefix) || key == prefix {
			return fmt.Errorf("key %q must start with %q", key, prefix)
		}
		if _, ok := lm.all[key]; ok {
			return fmt.Errorf("duplicate key %q", key)
		}
		lm.all[key] = value
		ns[key] = value
	}
	lm.namespaces[namespace] = ns
	return nil
}

// Register adds every message to the x/text/message default catalog. A
// regional locale is also registered under its base language so "pt" finds
// the "pt-BR" strings.
func (b *Bundle) Register() error {
	if b == nil {
		return nil
	}
	for _, locale := range b.Locales() {
		tag, err := language.Parse(locale)
		if err != nil {
			return fmt.Errorf("parse locale tag %q: %w", locale, err)
		}
		tags := []language.Tag{tag}
		if base, conf := tag.Base(); conf != language.No {
			if baseTag := language.Make(base.String()); baseTag != tag {
				tags = append(tags, baseTag)
			}
		}
		all := b.locales[locale].all
		for _, key := range slices.Sorted(maps.Keys(all)) {
			for _, t := range tags {
				if err := message.SetString(t, key, all[key]); err != nil {
					return fmt.Errorf("register %s/%s: %w", locale, key, err)
				}
			}
		}
	}
	return nil
}

// Printer returns a message printer for locale, falling back to the base
// locale when the bundle has no catalog for it.
func (b *Bundle) Printer(locale string) *message.Printer {
	locale = strings.TrimSpace(locale)
	if !b.HasLocale(locale) {
		locale = BaseLocale
	}
	tag, err := language.Parse(locale)
	if err != nil {
		tag = language.MustParse(BaseLocale)
	}
	return message.NewPrinter(tag)
}

// HasLocale reports whether the locale exists in this bundle.
func (b *Bundle) HasLocale(locale string) bool {
	return b.lookup(locale) != nil
}

// Locales returns the loaded locale identifiers, sorted.
func (b *Bundle) Locales() []string {
	if b == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(b.locales))
}

// Namespaces returns the namespaces defined for a locale, sorted.
func (b *Bundle) Namespaces(locale string) []string {
	lm := b.lookup(locale)
	if lm == nil {
		return nil
	}
	return slices.Sorted(maps.Keys(lm.namespaces))
}

// LocaleMessages returns a copy of every message in locale.
func (b *Bundle) LocaleMessages(locale string) map[string]string {
	lm := b.lookup(locale)
	if lm == nil {
		return map[string]string{}
	}
	return maps.Clone(lm.all)
}

// NamespaceMessages returns a copy of one namespace's messages in locale.
func (b *Bundle) NamespaceMessages(locale, namespace string) map[string]string {
	lm := b.lookup(locale)
	if lm == nil {
		return map[string]string{}
	}
	ns, ok := lm.namespaces[strings.TrimSpace(namespace)]
	if !ok {
		return map[string]string{}
	}
	return maps.Clone(ns)
}

// NamespaceMessagesWithFallback is NamespaceMessages with a base locale
// fallback. It also returns the locale that answered.
func (b *Bundle) NamespaceMessagesWithFallback(locale, namespace string) (string, map[string]string) {
	locale = strings.TrimSpace(locale)
	if messages := b.NamespaceMessages(locale, namespace); len(messages) > 0 {
		return locale, messages
	}
	return BaseLocale, b.NamespaceMessages(BaseLocale, namespace)
}

func (b *Bundle) lookup(locale string) *localeMessages {
	if b == nil {
		return nil
	}
	return b.locales[strings.TrimSpace(locale)]
}

func mustLoadEmbedded() *Bundle {
	b, err := LoadEmbedded()
	if err != nil {
		panic(err)
	}
	if err := b.Register(); err != nil {
		panic(err)
	}
	return b
}
