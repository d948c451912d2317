// Package samples exposes the bundled example datasets by name.
package samples

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

var (
	// ErrUnknown is returned for a name that is not in the catalog.
	ErrUnknown = errors.New("unknown sample dataset")
	// ErrNone is returned when no sample is available to fall back to.
	ErrNone = errors.New("no sample datasets available")
)

// DefaultName is the sample loaded when nothing else is requested.
const DefaultName = "bank"

var extensions = []string{".csv", ".tsv", ".xlsx"}

// Catalog lists dataset files in Dir. A sample's name is its file name without extension.
type Catalog struct {
	Dir string
}

// List returns sample names in lexical order. A missing directory is an empty catalog.
func (c Catalog) List() ([]string, error) {
	if c.Dir == "" {
		return nil, nil
	}
	entries, err := os.ReadDir(c.Dir)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("read samples dir: %w", err)
	}
	seen := map[string]bool{}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if !supported(ext) {
			continue
		}
		name := strings.TrimSuffix(e.Name(), filepath.Ext(e.Name()))
		if !seen[name] {
			seen[name] = true
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}

// Path resolves a sample name to its file.
func (c Catalog) Path(name string) (string, error) {
	if name == "" || strings.ContainsAny(name, `/\`) || name == "." || name == ".." {
		return "", fmt.Errorf("%w: %q", ErrUnknown, name)
	}
	for _, ext := range extensions {
		p := filepath.Join(c.Dir, name+ext)
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknown, name)
}

// Default resolves the fallback dataset: DefaultName when present, else the first sample.
// The returned notice tells the user which dataset was substituted.
func (c Catalog) Default() (path, notice string, err error) {
	if p, err := c.Path(DefaultName); err == nil {
		return p, "loaded the default dataset: " + DefaultName, nil
	}
	names, err := c.List()
	if err != nil {
		return "", "", err
	}
	if len(names) == 0 {
		return "", "", ErrNone
	}
	p, err := c.Path(names[0])
	if err != nil {
		return "", "", err
	}
	return p, "loaded the default dataset: " + names[0], nil
}

func supported(ext string) bool {
	for _, e := range extensions {
		if e == ext {
			return true
		}
	}
	return false
}
