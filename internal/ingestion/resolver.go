package ingestion

import "strings"

// Resolver finds the value of a logical field in a row whose headers may drift
// from the configured aliases.
type Resolver struct {
	aliases map[LogicalField][]string
}

// NewResolver snapshots the alias table of cfg.
func NewResolver(cfg Config) *Resolver {
	return &Resolver{aliases: cfg.clone().Aliases}
}

// Resolve returns the first non-blank value for field. Exact header matches are
// tried in alias order first; only if none hits does it fall back to a
// case-insensitive containment match in either direction.
func (r *Resolver) Resolve(row RawRow, field LogicalField) (any, bool) {
	aliases := r.aliases[field]

	for _, alias := range aliases {
		if value, ok := row.Lookup(alias); ok && !isBlank(value) {
			return value, true
		}
	}

	cells := row.cells
	for _, alias := range aliases {
		needle := strings.ToLower(strings.TrimSpace(alias))
		if needle == "" {
			continue
		}
		for _, cell := range cells {
			key := strings.ToLower(strings.TrimSpace(cell.Header))
			if key == "" {
				continue
			}
			if !strings.Contains(key, needle) && !strings.Contains(needle, key) {
				continue
			}
			if !isBlank(cell.Value) {
				return cell.Value, true
			}
		}
	}

	return nil, false
}

// ResolveString is Resolve with the value rendered and trimmed.
func (r *Resolver) ResolveString(row RawRow, field LogicalField) (string, bool) {
	value, ok := r.Resolve(row, field)
	if !ok {
		return "", false
	}
	return strings.TrimSpace(stringify(value)), true
}
