// Package diff compares two diagnostic records field by field.
package diff

import (
	"encoding/json"
	"fmt"
	"os"
	"reflect"
	"strings"

	"github.com/dmitriimaksimovdevelop/clientctx/internal/model"
)

// Result contains the comparison between two records.
type Result struct {
	Changes []FieldChange `json:"changes"`
}

// FieldChange represents a single field difference between records.
type FieldChange struct {
	Field    string `json:"field"`
	OldValue string `json:"old_value"`
	NewValue string `json:"new_value"`
}

// Changed reports whether any field differs.
func (r *Result) Changed() bool {
	return len(r.Changes) > 0
}

// Fields returns the names of the changed fields.
func (r *Result) Fields() []string {
	names := make([]string, 0, len(r.Changes))
	for _, c := range r.Changes {
		names = append(names, c.Field)
	}
	return names
}

// LoadRecord reads and parses a JSON record file.
func LoadRecord(path string) (*model.Record, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var rec model.Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return &rec, nil
}

// Compare lists every field whose value differs, in record field order.
func Compare(baseline, current model.Record) *Result {
	res := &Result{Changes: []FieldChange{}}

	oldV := reflect.ValueOf(baseline)
	newV := reflect.ValueOf(current)
	typ := oldV.Type()

	for i := 0; i < typ.NumField(); i++ {
		field := typ.Field(i)
		name := strings.Split(field.Tag.Get("json"), ",")[0]
		if name == "" || name == "-" {
			continue
		}

		oldS := render(oldV.Field(i))
		newS := render(newV.Field(i))
		if oldS != newS {
			res.Changes = append(res.Changes, FieldChange{Field: name, OldValue: oldS, NewValue: newS})
		}
	}
	return res
}

// render formats a field value; nil pointers render as "null".
func render(v reflect.Value) string {
	if v.Kind() == reflect.Ptr {
		if v.IsNil() {
			return "null"
		}
		v = v.Elem()
	}
	if s, ok := v.Interface().(fmt.Stringer); ok {
		return s.String()
	}
	return fmt.Sprint(v.Interface())
}

// Format produces a human-readable diff summary.
func Format(r *Result) string {
	var sb strings.Builder
	if !r.Changed() {
		sb.WriteString("No changes.\n")
		return sb.String()
	}

	fmt.Fprintf(&sb, "%d field(s) changed:\n", len(r.Changes))
	for _, c := range r.Changes {
		fmt.Fprintf(&sb, "  %-22s %s -> %s\n", c.Field, c.OldValue, c.NewValue)
	}
	return sb.String()
}
