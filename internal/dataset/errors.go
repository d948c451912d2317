package dataset

import "fmt"

// LoadError reports an unreadable or malformed dataset source.
type LoadError struct {
	Source string
	Err    error
}

func (e *LoadError) Error() string {
	if e == nil {
		return "load failed"
	}
	if e.Source != "" {
		return fmt.Sprintf("load %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("load: %v", e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func loadErr(source string, err error) error {
	return &LoadError{Source: source, Err: err}
}
