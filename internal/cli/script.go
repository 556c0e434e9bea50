package cli

import (
	"bytes"
	"context"
	"fmt"
	"os"

	"github.com/go-playground/validator/v10"
	"github.com/zoobzio/mend"
	"gopkg.in/yaml.v3"
)

var validate = validator.New()

// Script is a sequence of edits replayed against a document.
//
// Example:
//
//	steps:
//	  - op: insert
//	    offset: 0
//	    text: "// "
//	  - op: flush
type Script struct {
	Steps []Step `yaml:"steps" validate:"required,min=1,dive"`
}

// Step is one scripted action.
type Step struct {
	Op     string `yaml:"op" validate:"required,oneof=insert remove replace flush enable-autosave disable-autosave"`
	Offset int    `yaml:"offset" validate:"gte=0"`
	Length int    `yaml:"length" validate:"gte=0"`
	Text   string `yaml:"text"`
}

func (s Step) String() string {
	switch s.Op {
	case "insert":
		return fmt.Sprintf("> insert %d %q", s.Offset, s.Text)
	case "remove":
		return fmt.Sprintf("> remove %d %d", s.Offset, s.Length)
	case "replace":
		return fmt.Sprintf("> replace %d %d %q", s.Offset, s.Length, s.Text)
	default:
		return "> " + s.Op
	}
}

// LoadScript reads and validates a YAML script.
func LoadScript(path string) (Script, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Script{}, fmt.Errorf("failed to read script %s: %w", path, err)
	}

	var script Script
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&script); err != nil {
		return Script{}, fmt.Errorf("failed to decode script %s: %w", path, err)
	}
	if err := validate.Struct(script); err != nil {
		return Script{}, fmt.Errorf("invalid script %s: %w", path, err)
	}
	return script, nil
}

// apply performs s against doc and r.
func (s Step) apply(ctx context.Context, r *mend.Reconciler, doc *mend.TextDocument) error {
	switch s.Op {
	case "insert":
		return doc.Insert(ctx, s.Offset, s.Text)
	case "remove":
		return doc.Remove(ctx, s.Offset, s.Length)
	case "replace":
		return doc.Replace(ctx, s.Offset, s.Length, s.Text)
	case "flush":
		return r.Flush(ctx)
	case "enable-autosave":
		r.EnableAutoSave()
	case "disable-autosave":
		r.DisableAutoSave()
	}
	return nil
}
