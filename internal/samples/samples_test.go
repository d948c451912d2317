package samples

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func touch(t *testing.T, dir, name string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, name), []byte("a\n1\n"), 0o644); err != nil {
		t.Fatalf("write %s: %v", name, err)
	}
}

func TestCatalogListAndPath(t *testing.T) {
	dir := t.TempDir()
	touch(t, dir, "telco.csv")
	touch(t, dir, "bank.csv")
	touch(t, dir, "notes.txt")
	if err := os.Mkdir(filepath.Join(dir, "nested.csv"), 0o755); err != nil {
		t.Fatal(err)
	}
	c := Catalog{Dir: dir}
	names, err := c.List()
	if err != nil {
		t.Fatalf("List: %v", err)
	}
	if strings.Join(names, ",") != "bank,telco" {
		t.Fatalf("names = %v", names)
	}
	p, err := c.Path("telco")
	if err != nil || filepath.Base(p) != "telco.csv" {
		t.Fatalf("Path = %q, %v", p, err)
	}
	for _, bad := range []string{"", "..", "../etc/passwd", "missing"} {
		if _, err := c.Path(bad); !errors.Is(err, ErrUnknown) {
			t.Fatalf("Path(%q) err = %v", bad, err)
		}
	}
}

func TestCatalogDefault(t *testing.T) {
	dir := t.TempDir()
	c := Catalog{Dir: dir}
	if _, _, err := c.Default(); !errors.Is(err, ErrNone) {
		t.Fatalf("empty catalog err = %v", err)
	}
	touch(t, dir, "telco.csv")
	p, notice, err := c.Default()
	if err != nil || filepath.Base(p) != "telco.csv" || notice != "loaded the default dataset: telco" {
		t.Fatalf("Default = %q %q %v", p, notice, err)
	}
	touch(t, dir, "bank.csv")
	_, notice, _ = c.Default()
	if notice != "loaded the default dataset: bank" {
		t.Fatalf("notice = %q", notice)
	}
	if names, err := (Catalog{Dir: filepath.Join(dir, "nope")}).List(); err != nil || len(names) != 0 {
		t.Fatalf("missing dir = %v, %v", names, err)
	}
}
