// Package cell contains the atom and cell types shared by every other package
// and expands a primitive cell into a supercell.
package cell

import (
	"errors"
	"fmt"
	"math"
	"strconv"
)

// Prec is the number of decimal digits kept for every replicated coordinate.
// The inversion and origin checks compare coordinates for exact equality and
// rely on it.
const Prec = 7

// ErrInvalidDimension is returned when a multiplicity is lower than 1.
var ErrInvalidDimension = errors.New("cell: multiplicity must be a positive integer")

// Axis is a coordinate slot of an atom. X is 1, Y is 2 and Z is 3, the slot
// 0 being the species.
type Axis int

// Axes of an atom.
const (
	X Axis = iota + 1
	Y
	Z
)

// String returns the lowercase name of the axis.
func (a Axis) String() string {
	switch a {
	case X:
		return "x"
	case Y:
		return "y"
	case Z:
		return "z"
	}
	return fmt.Sprintf("Axis(%d)", int(a))
}

// Atom is an atom of a cell. The coordinates are fractional coordinates in the
// reduced basis of the cell it belongs to.
type Atom struct {
	Species string
	X, Y, Z float64
}

// Coord returns the coordinate of the atom along the axis a. It panics if a
// isn't X, Y or Z.
func (at Atom) Coord(a Axis) float64 {
	switch a {
	case X:
		return at.X
	case Y:
		return at.Y
	case Z:
		return at.Z
	}
	panic(fmt.Sprintf("cell: invalid axis %d", int(a)))
}

// XYZ returns the three coordinates of the atom.
func (at Atom) XYZ() [3]float64 {
	return [3]float64{at.X, at.Y, at.Z}
}

// Cell is an ordered list of atoms.
type Cell []Atom

// Clone returns a copy of the cell.
func (c Cell) Clone() Cell {
	if c == nil {
		return nil
	}
	out := make(Cell, len(c))
	copy(out, c)
	return out
}

// Species returns the distinct species of the cell in order of appearance.
func (c Cell) Species() []string {
	var (
		out  []string
		seen = make(map[string]bool)
	)
	for _, at := range c {
		if !seen[at.Species] {
			seen[at.Species] = true
			out = append(out, at.Species)
		}
	}
	return out
}

// Dims are the multiplicities of a supercell along x, y and z.
type Dims [3]int

// Validate returns ErrInvalidDimension if one of the multiplicities is lower
// than 1 or if the number of replicas doesn't fit in an int.
func (d Dims) Validate() error {
	for k, v := range d {
		if v < 1 {
			return fmt.Errorf("%w (%s = %d)", ErrInvalidDimension, Axis(k+1), v)
		}
	}
	_, ok := mulInt(d[0], d[1], d[2])
	if !ok {
		return fmt.Errorf("%w (%d x %d x %d overflows)", ErrInvalidDimension, d[0], d[1], d[2])
	}
	return nil
}

// Unit reports whether the supercell is the primitive cell itself.
func (d Dims) Unit() bool {
	return d[0] == 1 && d[1] == 1 && d[2] == 1
}

// Size returns the number of replicas of the primitive cell. The result is
// only meaningful if Validate returns nil.
func (d Dims) Size() int {
	return d[0] * d[1] * d[2]
}

// mulInt multiplies non-negative integers and reports false on overflow.
func mulInt(v ...int) (int, bool) {
	out := 1
	for _, n := range v {
		if n != 0 && out > math.MaxInt/n {
			return 0, false
		}
		out *= n
	}
	return out, true
}

// Round rounds v to Prec decimal digits, ties to even. The decimal expansion
// of v itself is rounded, so 0.66666665000000002728 gives 0.6666667.
func Round(v float64) float64 {
	r, _ := strconv.ParseFloat(strconv.FormatFloat(v, 'f', Prec, 64), 64)
	return r
}

// Replicate expands the primitive cell into a dims[0] x dims[1] x dims[2]
// supercell. The coordinate of an atom along an axis of size n is
// basis/n + i/n + shift, rounded to Prec digits. Atoms are emitted for each
// primitive atom, then for each i, j and k.
//
// The primitive cell isn't modified.
func Replicate(primitive Cell, dims Dims, shift [3]float64) (Cell, error) {
	err := dims.Validate()
	if err != nil {
		return nil, err
	}

	n, ok := mulInt(len(primitive), dims.Size())
	if !ok {
		return nil, fmt.Errorf("%w (%d atoms x %d replicas overflows)",
			ErrInvalidDimension, len(primitive), dims.Size())
	}

	nx, ny, nz := float64(dims[0]), float64(dims[1]), float64(dims[2])
	out := make(Cell, 0, n)
	for _, prim := range primitive {
		basis := [3]float64{prim.X / nx, prim.Y / ny, prim.Z / nz}
		for i := 0; i < dims[0]; i++ {
			x := basis[0] + float64(i)/nx
			for j := 0; j < dims[1]; j++ {
				y := basis[1] + float64(j)/ny
				for k := 0; k < dims[2]; k++ {
					z := basis[2] + float64(k)/nz
					out = append(out, Atom{
						Species: prim.Species,
						X:       Round(x+shift[0]),
						Y:       Round(y+shift[1]),
						Z:       Round(z+shift[2]),
					})
				}
			}
		}
	}

	return out, nil
}
