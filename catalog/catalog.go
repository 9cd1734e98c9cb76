package catalog

// Context selects which permission vocabulary applies: the single bitmask
// attached to a subject (role), or the allow/deny overwrite pair attached
// to a bounded scope (channel).
type Context uint8

const (
	// ContextSubject is the role-level vocabulary.
	ContextSubject Context = iota
	// ContextScope is the channel-overwrite-level vocabulary.
	ContextScope
)

// String returns the context name used in audit events and store records.
func (c Context) String() string {
	switch c {
	case ContextSubject:
		return "subject"
	case ContextScope:
		return "scope"
	default:
		return "unknown"
	}
}

// Bit is one entry of a permission vocabulary. Flag is zero for cosmetic
// placeholder entries; such entries never contribute to a computed mask.
type Bit struct {
	Key   string
	Label string
	Flag  Mask128
}

// DefaultPageSize is the hard cap of the front end's multi-select control.
const DefaultPageSize = 25

var (
	subjectByKey map[string]Bit
	scopeByKey   map[string]Bit
	subjectAll   Mask128
	scopeAll     Mask128
)

func init() {
	subjectByKey = make(map[string]Bit, len(subjectBits))
	for _, b := range subjectBits {
		subjectByKey[b.Key] = b
		subjectAll = subjectAll.Or(b.Flag)
	}
	scopeByKey = make(map[string]Bit, len(scopeBits))
	for _, b := range scopeBits {
		scopeByKey[b.Key] = b
		scopeAll = scopeAll.Or(b.Flag)
	}
}

// ForContext returns the ordered vocabulary for the context. The returned
// slice is the catalog itself; callers must not modify it.
func ForContext(c Context) []Bit {
	if c == ContextScope {
		return scopeBits
	}
	return subjectBits
}

// AllFlags returns the union of every flag in the context's vocabulary.
// Zero-flag placeholder entries contribute nothing.
func AllFlags(c Context) Mask128 {
	if c == ContextScope {
		return scopeAll
	}
	return subjectAll
}

// FlagFor returns the flag for the named permission, or the zero mask when
// the key is unknown. Unknown keys are tolerated, not errors, so the
// vocabulary can grow without breaking persisted selections.
func FlagFor(key string, c Context) Mask128 {
	b, ok := Lookup(key, c)
	if !ok {
		return Mask128{}
	}
	return b.Flag
}

// Lookup returns the vocabulary entry for the key, if registered.
func Lookup(key string, c Context) (Bit, bool) {
	if c == ContextScope {
		b, ok := scopeByKey[key]
		return b, ok
	}
	b, ok := subjectByKey[key]
	return b, ok
}

// Partition splits the ordered vocabulary into pages of at most pageSize
// entries, preserving order. A pageSize below one falls back to
// [DefaultPageSize]. Pagination is deterministic: the same context and page
// size always produce the same pages.
func Partition(c Context, pageSize int) [][]Bit {
	if pageSize < 1 {
		pageSize = DefaultPageSize
	}
	bits := ForContext(c)
	pages := make([][]Bit, 0, (len(bits)+pageSize-1)/pageSize)
	for start := 0; start < len(bits); start += pageSize {
		end := start + pageSize
		if end > len(bits) {
			end = len(bits)
		}
		pages = append(pages, bits[start:end])
	}
	return pages
}

// LabelsFor returns, in vocabulary order, the label of every entry whose
// flag overlaps the mask. Zero-flag entries are never reported as enabled.
func LabelsFor(mask Mask128, c Context) []string {
	bits := ForContext(c)
	var labels []string
	for _, b := range bits {
		if !b.Flag.IsZero() && mask.Overlaps(b.Flag) {
			labels = append(labels, b.Label)
		}
	}
	return labels
}
