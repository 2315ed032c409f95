package routeros

import "strings"

// Reply markers distinguishing row data from control signals
const (
	markerRe    = "!re"
	markerDone  = "!done"
	markerTrap  = "!trap"
	markerFatal = "!fatal"
)

// Row is one parsed !re block: attribute name to value, preserving the
// insertion order seen on the wire. Row order across a reply is wire order
// and carries no semantic sorting guarantee.
type Row struct {
	keys  []string
	attrs map[string]string
}

func newRow() *Row {
	return &Row{attrs: make(map[string]string)}
}

// NewRow builds a row from alternating key, value pairs. Intended for tests
// and fakes; real rows come off the wire.
func NewRow(kv ...string) *Row {
	r := newRow()
	for i := 0; i+1 < len(kv); i += 2 {
		r.set(kv[i], kv[i+1])
	}
	return r
}

func (r *Row) set(key, value string) {
	if _, seen := r.attrs[key]; !seen {
		r.keys = append(r.keys, key)
	}
	r.attrs[key] = value
}

// Get returns the attribute value, or "" when absent
func (r *Row) Get(key string) string {
	return r.attrs[key]
}

// Lookup returns the attribute value and whether it was present
func (r *Row) Lookup(key string) (string, bool) {
	v, ok := r.attrs[key]
	return v, ok
}

// GetOr returns the attribute value, or def when absent
func (r *Row) GetOr(key, def string) string {
	if v, ok := r.attrs[key]; ok {
		return v
	}
	return def
}

// ID returns the device-internal row identifier
func (r *Row) ID() string {
	return r.attrs[".id"]
}

// Keys returns attribute names in wire order
func (r *Row) Keys() []string {
	return r.keys
}

// Len returns the number of attributes
func (r *Row) Len() int {
	return len(r.keys)
}

// Attr formats an attribute word (=key=value)
func Attr(key, value string) string {
	return "=" + key + "=" + value
}

// Query formats a query filter word (?key=value)
func Query(key, value string) string {
	return "?" + key + "=" + value
}

// reply is the accumulated result of one command exchange
type reply struct {
	rows  []*Row
	done  *Row // attributes trailing the !done marker (e.g. =ret=)
	traps []*TrapError
	fatal string
}

// parseReply folds a word stream into rows. A !re marker opens a new row,
// flushing any pending one; =key=value words populate whatever the current
// marker owns (row, trap or the !done tail); !fatal's payload is a bare
// reason word.
func parseReply(words []string) *reply {
	rep := &reply{done: newRow()}

	var current *Row
	mode := ""
	flush := func() {
		if current != nil {
			rep.rows = append(rep.rows, current)
			current = nil
		}
	}

	for _, w := range words {
		switch {
		case w == markerRe:
			flush()
			current = newRow()
			mode = markerRe
		case w == markerDone:
			flush()
			mode = markerDone
		case w == markerTrap:
			flush()
			rep.traps = append(rep.traps, &TrapError{})
			mode = markerTrap
		case w == markerFatal:
			flush()
			mode = markerFatal
		case strings.HasPrefix(w, "="):
			key, value := splitAttr(w)
			switch mode {
			case markerRe:
				current.set(key, value)
			case markerDone:
				rep.done.set(key, value)
			case markerTrap:
				rep.traps[len(rep.traps)-1].setAttr(key, value)
			}
		default:
			if mode == markerFatal {
				rep.fatal = w
			}
		}
	}
	flush()

	return rep
}

// splitAttr splits "=key=value" into key and value. The value may itself
// contain '=' characters.
func splitAttr(word string) (string, string) {
	rest := strings.TrimPrefix(word, "=")
	if i := strings.IndexByte(rest, '='); i >= 0 {
		return rest[:i], rest[i+1:]
	}
	return rest, ""
}
