// Package artifact turns rendered figures into transport-safe image payloads.
package artifact

import (
	"bytes"
	"encoding/base64"
	"errors"
	"fmt"

	"github.com/KaramelBytes/churnscope/internal/charts"
)

const (
	MediaTypePNG   = "image/png"
	EncodingBase64 = "base64"
)

// Artifact is an immutable, named, base64-encoded PNG.
type Artifact struct {
	Name      string   `json:"name"`
	MediaType string   `json:"media_type"`
	Encoding  string   `json:"encoding"`
	Data      string   `json:"data"`
	Panels    []string `json:"panels,omitempty"`

	// Skipped maps panels drawn as placeholders to the reason.
	Skipped map[string]string `json:"skipped,omitempty"`
}

// EncodeError reports a figure that could not be serialized.
type EncodeError struct {
	Artifact string
	Err      error
}

func (e *EncodeError) Error() string {
	return fmt.Sprintf("encode %s: %v", e.Artifact, e.Err)
}

func (e *EncodeError) Unwrap() error { return e.Err }

// Encode writes the figure as PNG and base64-encodes it (standard alphabet, padded).
// The same figure always produces the same Data.
func Encode(fig *charts.Figure) (Artifact, error) {
	if fig == nil {
		return Artifact{}, &EncodeError{Artifact: "(nil)", Err: errors.New("nil figure")}
	}
	var buf bytes.Buffer
	if err := fig.WritePNG(&buf); err != nil {
		return Artifact{}, &EncodeError{Artifact: fig.Name, Err: err}
	}
	if buf.Len() == 0 {
		return Artifact{}, &EncodeError{Artifact: fig.Name, Err: errors.New("empty image")}
	}
	var skipped map[string]string
	if len(fig.Skipped) > 0 {
		skipped = make(map[string]string, len(fig.Skipped))
		for k, v := range fig.Skipped {
			skipped[k] = v
		}
	}
	return Artifact{
		Name:      fig.Name,
		MediaType: MediaTypePNG,
		Encoding:  EncodingBase64,
		Data:      base64.StdEncoding.EncodeToString(buf.Bytes()),
		Panels:    append([]string(nil), fig.Panels...),
		Skipped:   skipped,
	}, nil
}

// Decode returns the raw PNG bytes of an artifact.
func (a Artifact) Decode() ([]byte, error) {
	if a.Encoding != EncodingBase64 {
		return nil, fmt.Errorf("unsupported encoding %q", a.Encoding)
	}
	return base64.StdEncoding.DecodeString(a.Data)
}

// DataURI returns the artifact as an inline data: URI for HTML embedding.
func (a Artifact) DataURI() string {
	return "data:" + a.MediaType + ";" + a.Encoding + "," + a.Data
}
