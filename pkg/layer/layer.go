// Package layer orders a supercell along a stacking axis and looks for
// inversion centers and an atom at the origin.
//
// The symmetry checks are heuristics: they compare coordinates rounded to
// cell.Prec digits for exact equality. Noisy coordinates may lead to false
// positives or negatives; this isn't a space-group analysis.
package layer

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kpotier/supercell/pkg/cell"
)

// ErrUnresolvedSortAxis is returned when a sort priority token isn't x, y or
// z.
var ErrUnresolvedSortAxis = errors.New("layer: sort axis must be x, y or z")

// SortKeys is the sort priority of the three coordinates. SortKeys{cell.Z,
// cell.X, cell.Y} sorts by z, then x, then y. An axis may be repeated.
type SortKeys [3]cell.Axis

// ParseSortKeys parses a sort priority such as "z x y". The tokens may be
// separated by spaces or commas and are case insensitive.
func ParseSortKeys(s string) (SortKeys, error) {
	fields := strings.FieldsFunc(s, func(r rune) bool {
		return r == ' ' || r == ',' || r == '\t'
	})
	if len(fields) != 3 {
		return SortKeys{}, fmt.Errorf("%w (expected 3 axes, got %d in %q)",
			ErrUnresolvedSortAxis, len(fields), s)
	}

	var keys SortKeys
	for k, v := range fields {
		switch strings.ToLower(v) {
		case "x":
			keys[k] = cell.X
		case "y":
			keys[k] = cell.Y
		case "z":
			keys[k] = cell.Z
		default:
			return SortKeys{}, fmt.Errorf("%w (got %q)", ErrUnresolvedSortAxis, v)
		}
	}
	return keys, nil
}

// Validate returns ErrUnresolvedSortAxis if one of the keys isn't an axis.
func (s SortKeys) Validate() error {
	for _, v := range s {
		if v < cell.X || v > cell.Z {
			return fmt.Errorf("%w (got %d)", ErrUnresolvedSortAxis, int(v))
		}
	}
	return nil
}

// String returns the sort priority in the form accepted by ParseSortKeys.
func (s SortKeys) String() string {
	return fmt.Sprintf("%s %s %s", s[0], s[1], s[2])
}

// Less reports whether a comes before b according to the sort priority.
func (s SortKeys) Less(a, b cell.Atom) bool {
	for _, k := range s {
		ca, cb := a.Coord(k), b.Coord(k)
		if ca != cb {
			return ca < cb
		}
	}
	return false
}

// Sort returns a copy of c sorted according to the sort priority. Equal atoms
// keep their order.
func (s SortKeys) Sort(c cell.Cell) cell.Cell {
	out := c.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		return s.Less(out[i], out[j])
	})
	return out
}

// Layered is a cell sorted along its stacking axis. Invert and Origin are
// 1-based indices into Atoms, or 0 if nothing was found.
type Layered struct {
	Atoms cell.Cell
	Keys  SortKeys

	// Invert is the index of the first atom of the consecutive pair
	// (Invert, Invert+1) where a possible inversion center was found.
	Invert int
	// Origin is the index of an atom located at (0, 0, 0).
	Origin int
}

// HasInversion reports whether a possible inversion center was found.
func (l Layered) HasInversion() bool { return l.Invert > 0 }

// Pair returns the 1-based indices of the two consecutive atoms between which
// a possible inversion center was found, or (0, 0) if there is none.
func (l Layered) Pair() (int, int) {
	if !l.HasInversion() {
		return 0, 0
	}
	return l.Invert, l.Invert + 1
}

// HasOrigin reports whether an atom is located at the origin.
func (l Layered) HasOrigin() bool { return l.Origin > 0 }

// Layer sorts the cell according to keys and checks every pair of consecutive
// atoms for an inversion center. A pair (pos, next) is flagged when the
// leading coordinate of next is 1-pos or -pos, or when next is pos inverted
// through the origin. Every atom is checked for being at the origin.
//
// The scan never stops early: when several pairs or atoms match, the last
// one is reported.
func Layer(c cell.Cell, keys SortKeys) (Layered, error) {
	err := keys.Validate()
	if err != nil {
		return Layered{}, err
	}

	l := Layered{Atoms: keys.Sort(c), Keys: keys}
	lead := keys[0]
	for idx, pos := range l.Atoms {
		if idx < len(l.Atoms)-1 {
			next := l.Atoms[idx+1]
			if next.Coord(lead) == 1-pos.Coord(lead) || next == inverted(pos) {
				l.Invert = idx + 1
			} else if next.Coord(lead) == -pos.Coord(lead) {
				l.Invert = idx + 1
			}
		}

		if pos.X == 0 && pos.Y == 0 && pos.Z == 0 {
			l.Origin = idx + 1
		}
	}

	return l, nil
}

func inverted(at cell.Atom) cell.Atom {
	return cell.Atom{Species: at.Species, X: -at.X, Y: -at.Y, Z: -at.Z}
}
