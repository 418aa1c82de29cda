// Package structdb reads a structure database. A database is a YAML file
// with the formal charge of each species and a table of primitive cells keyed
// by "<name> <space group>":
//
//	Charges:
//	  Na: 1
//	  Cl: -1
//	Structures:
//	  NaCl 225: Na 0 0 0, Cl 0.5 0.5 0.5
//	  NaCl-W 225: Na a 0 0 0, Cl b 0 0 0
//
// A cell is either a list of atoms (species x y z) or a list of Wyckoff
// positions (species letter x y z). Wyckoff positions are expanded by an
// Expander.
package structdb

import (
	"errors"
	"fmt"
	"io"
	"os"
	"sort"
	"strconv"
	"strings"
	"unicode"

	"github.com/kpotier/supercell/pkg/cell"
	"github.com/kpotier/supercell/pkg/cleave"

	"gopkg.in/yaml.v3"
)

var (
	// ErrUnknownStructure is returned when a structure isn't in the database.
	ErrUnknownStructure = errors.New("structdb: unknown structure")

	// ErrMalformedStructure is returned when a key or a cell can't be parsed.
	ErrMalformedStructure = errors.New("structdb: malformed structure")

	// ErrNoExpander is returned when a cell is given as Wyckoff positions and
	// no Expander is available.
	ErrNoExpander = errors.New("structdb: wyckoff positions need an expander")
)

// WyckoffSite is a Wyckoff position of a species.
type WyckoffSite struct {
	Species string
	Letter  string
	X, Y, Z float64
}

// Expander expands Wyckoff positions into the atoms of the primitive cell.
type Expander interface {
	Expand(spaceGroup int, sites []WyckoffSite) (cell.Cell, error)
}

// Structure is a primitive cell of the database.
type Structure struct {
	Name       string
	SpaceGroup int
	Atoms      cell.Cell

	// Wyckoff is true if Atoms has been expanded from Wyckoff positions.
	Wyckoff bool
}

// DB is a structure database.
type DB struct {
	Charges    cleave.Charges    `yaml:"Charges"`
	Structures map[string]string `yaml:"Structures"`
}

// Open reads the database stored at path.
func Open(path string) (*DB, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	db, err := Decode(f)
	if err != nil {
		return nil, fmt.Errorf("Decode: %w", err)
	}
	return db, nil
}

// Decode reads a database from r. The keys of the structures are normalized
// so that the name and the space group are separated by a single space.
func Decode(r io.Reader) (*DB, error) {
	var raw DB
	dec := yaml.NewDecoder(r)
	err := dec.Decode(&raw)
	if err != nil && !errors.Is(err, io.EOF) {
		return nil, err
	}

	db := DB{
		Charges:    raw.Charges,
		Structures: make(map[string]string, len(raw.Structures)),
	}
	if db.Charges == nil {
		db.Charges = make(cleave.Charges)
	}
	for k, v := range raw.Structures {
		db.Structures[normalize(k)] = v
	}
	return &db, nil
}

// Names returns the keys of the structures in alphabetical order.
func (db *DB) Names() []string {
	names := make([]string, 0, len(db.Structures))
	for k := range db.Structures {
		names = append(names, k)
	}
	sort.Strings(names)
	return names
}

// Structure returns the primitive cell stored under key. exp may be nil if
// the cell doesn't use Wyckoff positions.
func (db *DB) Structure(key string, exp Expander) (Structure, error) {
	key = normalize(key)
	table, ok := db.Structures[key]
	if !ok {
		return Structure{}, fmt.Errorf("%w: %q", ErrUnknownStructure, key)
	}

	name, spg, err := ParseKey(key)
	if err != nil {
		return Structure{}, err
	}

	atoms, sites, err := ParseCell(table)
	if err != nil {
		return Structure{}, fmt.Errorf("%s: %w", key, err)
	}

	s := Structure{Name: name, SpaceGroup: spg, Atoms: atoms}
	if sites != nil {
		if exp == nil {
			return Structure{}, fmt.Errorf("%s: %w", key, ErrNoExpander)
		}
		s.Atoms, err = exp.Expand(spg, sites)
		if err != nil {
			return Structure{}, fmt.Errorf("%s: Expand: %w", key, err)
		}
		s.Wyckoff = true
	}
	return s, nil
}

// ParseKey splits a key such as "NaCl 225" into a name and a space group.
func ParseKey(key string) (name string, spaceGroup int, err error) {
	fields := split(key)
	if len(fields) < 2 {
		return "", 0, fmt.Errorf("%w: key %q has no space group", ErrMalformedStructure, key)
	}

	spaceGroup, err = strconv.Atoi(fields[1])
	if err != nil || spaceGroup < 1 || spaceGroup > 230 {
		return "", 0, fmt.Errorf("%w: invalid space group %q", ErrMalformedStructure, fields[1])
	}
	return fields[0], spaceGroup, nil
}

// ParseCell parses a table of atoms or of Wyckoff positions. Tokens are
// separated by spaces or commas. The table holds Wyckoff positions if its
// second token contains a letter; in this case atoms is nil.
func ParseCell(table string) (atoms cell.Cell, sites []WyckoffSite, err error) {
	fields := split(table)
	if len(fields) < 2 {
		return nil, nil, fmt.Errorf("%w: empty cell", ErrMalformedStructure)
	}

	wyckoff := strings.IndexFunc(fields[1], unicode.IsLetter) >= 0
	width := 4
	if wyckoff {
		width = 5
	}
	if len(fields)%width != 0 {
		return nil, nil, fmt.Errorf("%w: %d tokens isn't a multiple of %d",
			ErrMalformedStructure, len(fields), width)
	}

	for i := 0; i < len(fields); i += width {
		row := fields[i : i+width]

		var xyz [3]float64
		for k, v := range row[width-3:] {
			xyz[k], err = strconv.ParseFloat(v, 64)
			if err != nil {
				return nil, nil, fmt.Errorf("%w: atom %d: %v", ErrMalformedStructure, i/width+1, err)
			}
		}

		if wyckoff {
			sites = append(sites, WyckoffSite{Species: row[0], Letter: row[1], X: xyz[0], Y: xyz[1], Z: xyz[2]})
		} else {
			atoms = append(atoms, cell.Atom{Species: row[0], X: xyz[0], Y: xyz[1], Z: xyz[2]})
		}
	}
	return atoms, sites, nil
}

func split(s string) []string {
	return strings.FieldsFunc(s, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}

func normalize(key string) string {
	return strings.Join(split(key), " ")
}
