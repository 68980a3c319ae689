package blocks

import (
	"errors"
	"fmt"
)

// Validate checks the structural invariants of a document: column counts,
// one column slice per declared column, non-nil known blocks and unique ids.
func Validate(doc Document) error {
	seen := make(map[string]struct{})
	var errs []error

	claim := func(kind, id string) {
		if id == "" {
			errs = append(errs, fmt.Errorf("%s without id", kind))
			return
		}
		if _, dup := seen[id]; dup {
			errs = append(errs, fmt.Errorf("duplicate id %s", id))
			return
		}
		seen[id] = struct{}{}
	}

	for i, section := range doc {
		claim("section", section.ID)
		if section.Columns < 1 || section.Columns > MaxColumns {
			errs = append(errs, fmt.Errorf("section %d: columns must be between 1 and %d, got %d", i, MaxColumns, section.Columns))
		}
		if len(section.Blocks) != section.Columns {
			errs = append(errs, fmt.Errorf("section %d: declares %d columns but has %d", i, section.Columns, len(section.Blocks)))
		}
		for c, col := range section.Blocks {
			for b, block := range col {
				if block == nil {
					errs = append(errs, fmt.Errorf("section %d column %d: nil block at %d", i, c, b))
					continue
				}
				if !IsKnownType(block.GetType()) {
					errs = append(errs, fmt.Errorf("section %d column %d: unknown block type %q", i, c, block.GetType()))
				}
				claim("block", block.GetID())
			}
		}
	}

	return errors.Join(errs...)
}
