package report

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"slices"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
	"github.com/zclconf/go-cty/cty/gocty"
	ctyjson "github.com/zclconf/go-cty/cty/json"
	"gopkg.in/yaml.v3"
)

// Format selects a renderer.
type Format string

const (
	Text    Format = "text"
	JSON    Format = "json"
	YAML    Format = "yaml"
	Msgpack Format = "msgpack"
)

// Formats lists the supported formats.
var Formats = []Format{Text, JSON, YAML, Msgpack}

// ParseFormat validates a format name.
func ParseFormat(s string) (Format, error) {
	f := Format(strings.ToLower(s))
	if !slices.Contains(Formats, f) {
		return "", fmt.Errorf("unknown report format %q, expected one of %v", s, Formats)
	}
	return f, nil
}

// Options tune rendering.
type Options struct {
	// Color enables ANSI styling in the text format.
	Color bool
}

// Render writes r to w in format f.
func (r *Report) Render(w io.Writer, f Format, opts Options) error {
	switch f {
	case Text:
		_, err := io.WriteString(w, r.text(opts))
		return err
	case JSON:
		return r.encodeJSON(w)
	case YAML:
		enc := yaml.NewEncoder(w)
		enc.SetIndent(2)
		if err := enc.Encode(r); err != nil {
			return fmt.Errorf("failed to encode report as YAML: %w", err)
		}
		return enc.Close()
	case Msgpack:
		if err := msgpack.NewEncoder(w).Encode(r); err != nil {
			return fmt.Errorf("failed to encode report as msgpack: %w", err)
		}
		return nil
	default:
		return fmt.Errorf("unknown report format %q", f)
	}
}

// encodeJSON goes through cty so the JSON shape follows the cty tags.
func (r *Report) encodeJSON(w io.Writer) error {
	ty, err := gocty.ImpliedType(*r)
	if err != nil {
		return fmt.Errorf("unable to infer cty.Type of report: %w", err)
	}
	val, err := gocty.ToCtyValue(*r, ty)
	if err != nil {
		return fmt.Errorf("failed to convert report: %w", err)
	}
	raw, err := ctyjson.Marshal(val, ty)
	if err != nil {
		return fmt.Errorf("failed to encode report as JSON: %w", err)
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return err
	}
	buf.WriteByte('\n')
	_, err = buf.WriteTo(w)
	return err
}
