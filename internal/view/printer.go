// Package view renders backend results for the terminal, either as colored
// text or as JSON/YAML documents for scripts.
package view

import (
	"encoding/json"
	"fmt"
	"io"

	"gopkg.in/yaml.v3"

	"github.com/CodexForgeBR/testmate/internal/config"
)

// Printer writes values in one output format.
type Printer struct {
	w      io.Writer
	format string
}

// NewPrinter returns a printer for format ("text", "json" or "yaml"). An
// empty format means text.
func NewPrinter(w io.Writer, format string) *Printer {
	if format == "" {
		format = config.OutputText
	}
	return &Printer{w: w, format: format}
}

// Writer is the destination of the printer.
func (p *Printer) Writer() io.Writer {
	return p.w
}

// Structured reports whether the printer emits JSON or YAML.
func (p *Printer) Structured() bool {
	return p.format == config.OutputJSON || p.format == config.OutputYAML
}

// Print encodes v in the structured formats and calls text otherwise.
func (p *Printer) Print(v any, text func(io.Writer)) error {
	switch p.format {
	case config.OutputJSON:
		enc := json.NewEncoder(p.w)
		enc.SetIndent("", "  ")
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode json: %w", err)
		}
		return nil
	case config.OutputYAML:
		enc := yaml.NewEncoder(p.w)
		enc.SetIndent(2)
		if err := enc.Encode(v); err != nil {
			return fmt.Errorf("encode yaml: %w", err)
		}
		return enc.Close()
	default:
		text(p.w)
		return nil
	}
}
