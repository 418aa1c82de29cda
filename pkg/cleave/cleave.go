// Package cleave extracts a slab from a layered supercell and computes its net
// formal charge.
package cleave

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/kpotier/supercell/pkg/cell"
	"github.com/kpotier/supercell/pkg/layer"

	"gonum.org/v1/gonum/floats"
)

var (
	// ErrInvalidRange is returned when a cleave range is reversed or out of
	// the layered cell.
	ErrInvalidRange = errors.New("cleave: invalid range")

	// ErrChargeUnavailable is returned when the charge of a species of the
	// slab is missing.
	ErrChargeUnavailable = errors.New("cleave: charge unavailable")
)

// Range is an inclusive 1-based range of atoms of a layered cell. The zero
// value selects the whole cell.
type Range struct {
	A, B int
}

// IsZero reports whether r selects the whole cell.
func (r Range) IsZero() bool { return r.A == 0 && r.B == 0 }

// resolve returns the half-open 0-based bounds of r for a cell of n atoms.
func (r Range) resolve(n int) (lo, hi int, err error) {
	if r.IsZero() {
		return 0, n, nil
	}
	if r.A > n || r.B > n {
		return 0, 0, fmt.Errorf("%w (%d-%d, cell has %d atoms)", ErrInvalidRange, r.A, r.B, n)
	}
	if r.A < 1 || r.A > r.B {
		return 0, 0, fmt.Errorf("%w (%d-%d)", ErrInvalidRange, r.A, r.B)
	}
	return r.A - 1, r.B, nil
}

// Charges maps a species to its formal charge.
type Charges map[string]float64

// Lookup returns the charge of a species.
func (c Charges) Lookup(species string) (float64, bool) {
	v, ok := c[species]
	return v, ok
}

// ChargeError lists the species of a slab that have no charge. It unwraps to
// ErrChargeUnavailable.
type ChargeError struct {
	Missing []string
}

func (e *ChargeError) Error() string {
	return fmt.Sprintf("%s for %s", ErrChargeUnavailable, strings.Join(e.Missing, ", "))
}

func (e *ChargeError) Unwrap() error { return ErrChargeUnavailable }

// NetCharge sums the charges of every atom of c. A single missing species
// voids the whole sum and a *ChargeError is returned.
func NetCharge(c cell.Cell, charges Charges) (float64, error) {
	var (
		values  = make([]float64, 0, len(c))
		missing []string
		seen    = make(map[string]bool)
	)
	for _, at := range c {
		v, ok := charges.Lookup(at.Species)
		if !ok {
			if !seen[at.Species] {
				seen[at.Species] = true
				missing = append(missing, at.Species)
			}
			continue
		}
		values = append(values, v)
	}

	if len(missing) != 0 {
		return 0, &ChargeError{Missing: missing}
	}
	return floats.Sum(values), nil
}

// Slab is a cleaved part of a layered cell.
type Slab struct {
	Range Range

	// Atoms are in the order of the layered cell.
	Atoms cell.Cell
	// Primary is sorted by the sort priority of the layered cell.
	Primary cell.Cell
	// Alt is sorted by species, then by the leading sort coordinate.
	Alt cell.Cell

	Charge    float64
	ChargeErr error
}

// ChargeAvailable reports whether the net charge of the slab is known.
func (s Slab) ChargeAvailable() bool { return s.ChargeErr == nil }

// Cleave extracts the atoms r.A to r.B of the layered cell and sorts them for
// both output conventions. The net charge is computed over the extracted
// atoms; a missing charge doesn't fail the cleave and is reported through
// Slab.ChargeErr.
func Cleave(l layer.Layered, r Range, charges Charges) (Slab, error) {
	err := l.Keys.Validate()
	if err != nil {
		return Slab{}, err
	}

	lo, hi, err := r.resolve(len(l.Atoms))
	if err != nil {
		return Slab{}, err
	}
	if r.IsZero() {
		r = Range{A: 1, B: len(l.Atoms)}
	}

	atoms := l.Atoms[lo:hi].Clone()
	s := Slab{
		Range:   r,
		Atoms:   atoms,
		Primary: l.Keys.Sort(atoms),
		Alt:     sortAlt(atoms, l.Keys[0]),
	}
	s.Charge, s.ChargeErr = NetCharge(atoms, charges)
	return s, nil
}

func sortAlt(c cell.Cell, lead cell.Axis) cell.Cell {
	out := c.Clone()
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Species != out[j].Species {
			return out[i].Species < out[j].Species
		}
		return out[i].Coord(lead) < out[j].Coord(lead)
	})
	return out
}
