package db

import (
	"fmt"
	"regexp"
	"time"
)

// Field is one column assignment in a Patch. Column always comes from a
// fixed per-entity list, never from request input.
type Field struct {
	Column string
	Value  any
}

// Patch is an ordered set of column assignments for ConditionalUpdate.
type Patch []Field

// Set appends column = value when value is present.
func Set[T any](p Patch, column string, value *T) Patch {
	if value == nil {
		return p
	}
	return append(p, Field{Column: column, Value: *value})
}

// Filtered drops fields whose value is not a scalar the store accepts as a column value.
func (p Patch) Filtered() Patch {
	out := make(Patch, 0, len(p))
	for _, f := range p {
		if f.Column == "" || !isScalar(f.Value) {
			continue
		}
		out = append(out, f)
	}
	return out
}

func isScalar(v any) bool {
	switch v.(type) {
	case string, bool,
		int, int8, int16, int32, int64,
		uint, uint8, uint16, uint32, uint64,
		float32, float64,
		time.Time:
		return true
	}
	return false
}

var identifierPattern = regexp.MustCompile(`^[a-z_][a-z0-9_]*$`)

func checkIdentifier(name string) error {
	if !identifierPattern.MatchString(name) {
		return fmt.Errorf("invalid sql identifier %q", name)
	}
	return nil
}
