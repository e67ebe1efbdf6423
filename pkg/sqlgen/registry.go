package sqlgen

import (
	"bytes"
	"fmt"
	"sort"

	"github.com/goccy/go-json"
)

// SectionMain is the entry-point section of a structured registry entry,
// and the section a simple string entry compiles under.
const SectionMain = "main"

// Section is one named sub-template of a registry entry: a template string
// plus optional default parameters. In JSON a section is either a bare
// template string or an object of the form {"sql": "...", "params": {...}}.
type Section struct {
	SQL string

	// Params holds the default parameter values as decoded JSON, with
	// numbers kept as json.Number. A default applies when the caller did
	// not supply the key.
	Params map[string]any
}

// UnmarshalJSON accepts both section spellings.
func (s *Section) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '"' {
		return decodeNumbers(data, &s.SQL)
	}
	var obj struct {
		SQL    string         `json:"sql"`
		Params map[string]any `json:"params"`
	}
	if err := decodeNumbers(data, &obj); err != nil {
		return err
	}
	s.SQL = obj.SQL
	s.Params = obj.Params
	return nil
}

// Entry is a registry entry: either a simple template string, compiled as
// section "main", or a set of named sections with "main" as the entry
// point.
type Entry struct {
	Simple   string
	IsSimple bool
	Sections map[string]*Section
}

// UnmarshalJSON accepts both entry spellings.
func (e *Entry) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimLeft(data, " \t\r\n")
	if len(trimmed) > 0 && trimmed[0] == '"' {
		e.IsSimple = true
		return decodeNumbers(data, &e.Simple)
	}
	e.IsSimple = false
	return decodeNumbers(data, &e.Sections)
}

// Section resolves a section name within the entry. A simple entry has
// exactly the "main" section.
func (e *Entry) Section(name string) (*Section, bool) {
	if e.IsSimple {
		if name != SectionMain {
			return nil, false
		}
		return &Section{SQL: e.Simple}, true
	}
	sec, ok := e.Sections[name]
	return sec, ok
}

// SectionNames returns the entry's section names in sorted order.
func (e *Entry) SectionNames() []string {
	if e.IsSimple {
		return []string{SectionMain}
	}
	names := make([]string, 0, len(e.Sections))
	for name := range e.Sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Registry owns the map from template names to entries: the "sqls"
// document of the engine configuration.
type Registry struct {
	entries map[string]*Entry
}

// ParseConfig decodes an engine configuration document. The document must
// be a JSON object with an object-valued "sqls" member; everything else in
// it is ignored.
func ParseConfig(data []byte) (*Registry, error) {
	var cfg struct {
		Sqls json.RawMessage `json:"sqls"`
	}
	if err := decodeNumbers(data, &cfg); err != nil {
		return nil, fmt.Errorf("invalid engine config: %w", err)
	}
	if len(cfg.Sqls) == 0 || bytes.Equal(bytes.TrimSpace(cfg.Sqls), []byte("null")) {
		return nil, fmt.Errorf("invalid engine config: missing \"sqls\" member")
	}
	return ParseRegistry(cfg.Sqls)
}

// ParseRegistry decodes a bare registry document: a JSON object mapping
// template names to entries.
func ParseRegistry(data []byte) (*Registry, error) {
	var entries map[string]*Entry
	if err := decodeNumbers(data, &entries); err != nil {
		return nil, fmt.Errorf("invalid template registry: %w", err)
	}
	if entries == nil {
		entries = map[string]*Entry{}
	}
	return &Registry{entries: entries}, nil
}

// Lookup returns the entry registered under name.
func (r *Registry) Lookup(name string) (*Entry, bool) {
	e, ok := r.entries[name]
	return e, ok
}

// Names returns all registered template names in sorted order.
func (r *Registry) Names() []string {
	names := make([]string, 0, len(r.entries))
	for name := range r.entries {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Count returns the number of registered templates.
func (r *Registry) Count() int {
	return len(r.entries)
}

// decodeNumbers unmarshals with numbers kept as json.Number, so integer
// defaults survive without float rounding.
func decodeNumbers(data []byte, v any) error {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	return dec.Decode(v)
}
