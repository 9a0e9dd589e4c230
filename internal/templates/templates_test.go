package templates

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type page struct {
	Title      string
	User       *struct{ DisplayName string }
	Configured bool
	Error      string
	Email      string
}

func TestLoadEmbedded(t *testing.T) {
	tmpl, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	for _, name := range []string{"home.tmpl", "login.tmpl", "forbidden.tmpl", "practice.tmpl", "summary.tmpl"} {
		if tmpl.Lookup(name) == nil {
			t.Errorf("template %s not loaded", name)
		}
	}
}

func TestLoginRendersError(t *testing.T) {
	tmpl, err := Load("")
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}

	var buf bytes.Buffer
	data := page{Title: "Sign in", Configured: true, Error: "Invalid <state>"}
	if err := tmpl.ExecuteTemplate(&buf, "login.tmpl", data); err != nil {
		t.Fatalf("ExecuteTemplate() error = %v", err)
	}

	out := buf.String()
	if !strings.Contains(out, "Invalid &lt;state&gt;") {
		t.Errorf("expected escaped error message, got %s", out)
	}
	if !strings.Contains(out, "/auth/google/start") {
		t.Errorf("expected sign-in link, got %s", out)
	}
}

func TestLoadFromDirectory(t *testing.T) {
	dir := t.TempDir()
	if err := os.WriteFile(filepath.Join(dir, "only.tmpl"), []byte(`hello {{.}}`), 0o644); err != nil {
		t.Fatal(err)
	}

	tmpl, err := Load(dir)
	if err != nil {
		t.Fatalf("Load(%s) error = %v", dir, err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteTemplate(&buf, "only.tmpl", "world"); err != nil {
		t.Fatalf("ExecuteTemplate() error = %v", err)
	}
	if buf.String() != "hello world" {
		t.Errorf("got %q, want %q", buf.String(), "hello world")
	}
}

func TestLoadEmptyDirectoryFails(t *testing.T) {
	if _, err := Load(t.TempDir()); err == nil {
		t.Error("expected an error for a directory without templates")
	}
}

func TestDict(t *testing.T) {
	dict := funcMap["dict"].(func(...interface{}) (map[string]interface{}, error))

	m, err := dict("a", 1, "b", "two")
	if err != nil {
		t.Fatalf("dict() error = %v", err)
	}
	if m["a"] != 1 || m["b"] != "two" {
		t.Errorf("dict() = %v", m)
	}
	if _, err := dict("odd"); err == nil {
		t.Error("expected error for odd arguments")
	}
	if _, err := dict(1, 2); err == nil {
		t.Error("expected error for non-string key")
	}
}
