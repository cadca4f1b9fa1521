package catalog

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestLoadEmbeddedHasExpectedLocales(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	if !bundle.HasLocale(BaseLocale) {
		t.Fatalf("expected base locale %s", BaseLocale)
	}
	if !bundle.HasLocale("pt-BR") {
		t.Fatalf("expected locale pt-BR")
	}
	if got := len(bundle.NamespaceMessages("en-US", "game")); got == 0 {
		t.Fatalf("expected en-US game namespace messages")
	}
}

func TestEmbeddedLocalesDefineSameKeys(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	base := bundle.LocaleMessages(BaseLocale)
	for _, locale := range bundle.Locales() {
		messages := bundle.LocaleMessages(locale)
		for key := range base {
			if _, ok := messages[key]; !ok {
				t.Fatalf("locale %s is missing key %q", locale, key)
			}
		}
	}
}

func TestLoadFromFSRejectsKeyOutsideNamespace(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/game.yaml"), `locale: "en-US"
namespace: "game"
messages:
  "errors.bad": "nope"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected error")
	}
}

func TestLoadFromFSRejectsMissingBaseLocale(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/pt-BR/game.yaml"), `locale: "pt-BR"
namespace: "game"
messages:
  "game.hello": "olá"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected missing base locale error")
	}
}

func TestLoadFromFSRejectsLocaleMismatch(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/game.yaml"), `locale: "pt-BR"
namespace: "game"
messages:
  "game.hello": "hello"
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected locale mismatch error")
	}
}

func TestNamespaceMessagesWithFallback(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	resolved, messages := bundle.NamespaceMessagesWithFallback("fr-FR", "errors")
	if resolved != BaseLocale {
		t.Fatalf("resolved locale = %q, want %s", resolved, BaseLocale)
	}
	if len(messages) == 0 {
		t.Fatal("expected fallback errors namespace messages")
	}
}

func TestPrinterFormatsRegisteredMessages(t *testing.T) {
	printer := Default().Printer("pt-BR")
	if got, want := printer.Sprintf("game.elimination.out", "Bo"), "Eliminado: Bo"; got != want {
		t.Fatalf("pt-BR message = %q, want %q", got, want)
	}
	fallback := Default().Printer("fr-FR")
	if got, want := fallback.Sprintf("game.elimination.out", "Bo"), "Eliminated: Bo"; got != want {
		t.Fatalf("fallback message = %q, want %q", got, want)
	}
}

func mustWriteFile(t *testing.T, path string, content string) {
	t.Helper()
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		t.Fatalf("mkdir %s: %v", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write %s: %v", path, err)
	}
}

func TestNamespacesAreSorted(t *testing.T) {
	bundle, err := LoadEmbedded()
	if err != nil {
		t.Fatalf("load embedded catalogs: %v", err)
	}
	got := bundle.Namespaces(BaseLocale)
	if len(got) != 2 || got[0] != "errors" || got[1] != "game" {
		t.Fatalf("namespaces = %v, want [errors game]", got)
	}
	if got := bundle.Namespaces("xx-XX"); got != nil {
		t.Fatalf("namespaces for unknown locale = %v, want nil", got)
	}
}

func TestLoadFromFSRejectsMalformedYAML(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/game.yaml"), `locale: "en-US"
namespace: "game"
messages:
  "game.hello": "unterminated
`)

	_, err := LoadFromFS(os.DirFS(tempDir))
	if err == nil || !strings.Contains(err.Error(), "parse catalog") {
		t.Fatalf("error = %v, want parse catalog error", err)
	}
}

func TestLoadFromFSRejectsEmptyNamespace(t *testing.T) {
	tempDir := t.TempDir()
	mustWriteFile(t, filepath.Join(tempDir, "locales/en-US/game.yaml"), `locale: "en-US"
namespace: "game"
messages: {}
`)

	if _, err := LoadFromFS(os.DirFS(tempDir)); err == nil {
		t.Fatal("expected error for catalog without messages")
	}
}
