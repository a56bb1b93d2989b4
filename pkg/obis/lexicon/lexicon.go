package lexicon

import (
	"os"
	"strings"

	"github.com/cockroachdb/errors"
	"gopkg.in/yaml.v3"

	"github.com/cognicore/obisquery/pkg/obis/internalerr"
)

// Kind is the reference set an alias group belongs to.
type Kind string

const (
	Institute Kind = "institute"
	Area      Kind = "area"
)

// Lexicon maps informal names (acronyms, local spellings, translations) to
// the canonical OBIS name they stand for, per reference kind:
//
//	VLIZ -> Flanders Marine Institute
//	AWI  -> Alfred Wegener Institute
//	Nordsee -> North Sea
//
// Matching is on the whole query, case- and whitespace-insensitive. An empty
// lexicon rewrites nothing.
type Lexicon struct {
	// kind -> canonical -> aliases (canonical first)
	groups map[Kind]map[string][]string

	// kind -> folded alias -> canonical
	reverseIndex map[Kind]map[string]string
}

// New creates an empty lexicon.
func New() *Lexicon {
	return &Lexicon{
		groups:       make(map[Kind]map[string][]string),
		reverseIndex: make(map[Kind]map[string]string),
	}
}

type aliasGroup struct {
	Canonical string   `yaml:"canonical"`
	Aliases   []string `yaml:"aliases"`
}

// LoadFromYAML loads alias groups from a YAML file.
//
// Expected format:
//
//	institutes:
//	  - canonical: Flanders Marine Institute
//	    aliases: [VLIZ, Vlaams Instituut voor de Zee]
//	areas:
//	  - canonical: North Sea
//	    aliases: [Nordsee, Mer du Nord]
func LoadFromYAML(path string) (*Lexicon, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "read aliases %s", path)
	}
	return Parse(data)
}

// Parse decodes alias groups from YAML bytes.
func Parse(data []byte) (*Lexicon, error) {
	var doc struct {
		Institutes []aliasGroup `yaml:"institutes"`
		Areas      []aliasGroup `yaml:"areas"`
	}
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(internalerr.ErrInvalidConfig, err.Error())
	}

	lex := New()
	for _, g := range doc.Institutes {
		if err := lex.AddGroup(Institute, g.Canonical, g.Aliases); err != nil {
			return nil, err
		}
	}
	for _, g := range doc.Areas {
		if err := lex.AddGroup(Area, g.Canonical, g.Aliases); err != nil {
			return nil, err
		}
	}
	return lex, nil
}

// AddGroup registers aliases for a canonical name. The canonical name keeps
// its original casing; it is also registered as an alias of itself. An alias
// already claimed by another canonical name is an error.
func (l *Lexicon) AddGroup(kind Kind, canonical string, aliases []string) error {
	canonical = strings.Join(strings.Fields(canonical), " ")
	if canonical == "" {
		return errors.Wrapf(internalerr.ErrInvalidConfig, "%s alias group without canonical name", kind)
	}
	if l.groups[kind] == nil {
		l.groups[kind] = make(map[string][]string)
		l.reverseIndex[kind] = make(map[string]string)
	}

	// Clean up old reverse index entries if this canonical already exists
	for _, old := range l.groups[kind][canonical] {
		delete(l.reverseIndex[kind], fold(old))
	}

	list := []string{canonical}
	seen := map[string]bool{fold(canonical): true}
	for _, a := range aliases {
		a = strings.Join(strings.Fields(a), " ")
		key := fold(a)
		if key == "" || seen[key] {
			continue
		}
		if owner, ok := l.reverseIndex[kind][key]; ok && owner != canonical {
			return errors.Wrapf(internalerr.ErrInvalidConfig, "%s alias %q maps to both %q and %q", kind, a, owner, canonical)
		}
		seen[key] = true
		list = append(list, a)
	}

	l.groups[kind][canonical] = list
	for _, a := range list {
		l.reverseIndex[kind][fold(a)] = canonical
	}
	return nil
}

// Rewrite returns the canonical name for query, or query unchanged when it
// is not a known alias.
func (l *Lexicon) Rewrite(kind Kind, query string) string {
	if l == nil {
		return query
	}
	if canonical, ok := l.reverseIndex[kind][fold(query)]; ok {
		return canonical
	}
	return query
}

// Aliases returns every known spelling of name's group, canonical first.
func (l *Lexicon) Aliases(kind Kind, name string) []string {
	if l == nil {
		return []string{name}
	}
	canonical := l.Rewrite(kind, name)
	if list, ok := l.groups[kind][canonical]; ok {
		return list
	}
	return []string{name}
}

// Stats returns statistics about the lexicon contents.
func (l *Lexicon) Stats() Stats {
	var s Stats
	if l == nil {
		return s
	}
	for kind, groups := range l.groups {
		for _, list := range groups {
			s.Groups++
			s.Aliases += len(list) - 1
			if kind == Institute {
				s.InstituteGroups++
			}
		}
	}
	return s
}

// Stats holds counts of lexicon contents.
type Stats struct {
	Groups          int
	InstituteGroups int
	Aliases         int // excluding canonical names
}

func fold(s string) string {
	return strings.ToLower(strings.Join(strings.Fields(s), " "))
}
