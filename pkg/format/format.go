// Package format renders cells and slabs as text lines.
//
// Two dialects are available for slabs. Dialect A prints the coordinates
// followed by the species as a comment and is sorted by species. Dialect B
// prints the species first and follows the sort priority of the layered cell.
// Coordinates are always printed with 9 decimal places.
package format

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/kpotier/supercell/pkg/cell"
	"github.com/kpotier/supercell/pkg/cleave"
	"github.com/kpotier/supercell/pkg/layer"
)

// ErrUnknownDialect is returned by ParseDialect.
var ErrUnknownDialect = errors.New("format: unknown output dialect")

// Dialect is an output line format for slabs.
type Dialect int

// Dialects.
const (
	// A is the species-coordinate-charge style (ABINIT).
	A Dialect = iota + 1
	// B is the species-first style (Quantum ESPRESSO).
	B
)

func (d Dialect) String() string {
	switch d {
	case A:
		return "A"
	case B:
		return "B"
	}
	return fmt.Sprintf("Dialect(%d)", int(d))
}

// ParseDialect parses a dialect name. "a" and "abinit" select A; "b", "q",
// "quantum" and "quantum espresso" select B. It is case insensitive.
func ParseDialect(s string) (Dialect, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "a", "abinit":
		return A, nil
	case "b", "q", "quantum", "quantum espresso", "quantum esp.":
		return B, nil
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownDialect, s)
}

// LineA formats an atom in dialect A.
func LineA(at cell.Atom) string {
	return fmt.Sprintf("  %12.9f  %12.9f  %12.9f  #%3s", at.X, at.Y, at.Z, at.Species)
}

// LineB formats an atom in dialect B.
func LineB(at cell.Atom) string {
	return fmt.Sprintf("%-2s     %12.9f  %12.9f  %12.9f", at.Species, at.X, at.Y, at.Z)
}

// Lines returns the lines of the slab in the dialect d. Dialect A uses the
// species order of the slab and dialect B its primary order.
func Lines(s cleave.Slab, d Dialect) ([]string, error) {
	var (
		atoms cell.Cell
		line  func(cell.Atom) string
	)
	switch d {
	case A:
		atoms, line = s.Alt, LineA
	case B:
		atoms, line = s.Primary, LineB
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDialect, d)
	}

	out := make([]string, 0, len(atoms))
	for _, at := range atoms {
		out = append(out, line(at))
	}
	return out, nil
}

// NotAvailable is printed instead of the net charge when a charge is
// missing.
const NotAvailable = "Surface charge not available. Update atomic charges in the structure database."

// Charge returns the summary line of the net charge of the slab. A positive
// charge carries an explicit sign.
func Charge(s cleave.Slab) string {
	if !s.ChargeAvailable() {
		return NotAvailable
	}

	q := s.Charge
	if q == 0 {
		q = 0 // -0
	}
	str := strconv.FormatFloat(q, 'f', -1, 64)
	if q > 0 {
		str = "+" + str
	}
	return "Net charge of surface: " + str
}

// WriteSlab writes the lines of the slab in the dialect d followed by its net
// charge.
func WriteSlab(w io.Writer, s cleave.Slab, d Dialect) error {
	lines, err := Lines(s, d)
	if err != nil {
		return err
	}

	bw := bufio.NewWriter(w)
	for _, l := range lines {
		bw.WriteString(l)
		bw.WriteByte('\n')
	}
	fmt.Fprintf(bw, "\n%s\n", Charge(s))
	return bw.Flush()
}

// Title returns the name of a cell, e.g. "2 x 2 x 1 NaCl #225 supercell", or
// "NaCl #225 cell" when dims is 1 x 1 x 1.
func Title(name string, spaceGroup int, dims cell.Dims) string {
	if dims.Unit() {
		return fmt.Sprintf("%s #%d cell", name, spaceGroup)
	}
	return fmt.Sprintf("%d x %d x %d %s #%d supercell", dims[0], dims[1], dims[2], name, spaceGroup)
}

// ITALink returns the address of the list of Wyckoff positions of a space
// group in its standard ITA setting.
func ITALink(spaceGroup int) string {
	return "https://www.cryst.ehu.es/cgi-bin/cryst/programs/nph-wp-list?gnum=" + strconv.Itoa(spaceGroup)
}

// InversionNotice returns the advisory line of a possible inversion center
// between the atoms a and a+1.
func InversionNotice(a int) string {
	return fmt.Sprintf("***Possible inversion center found at %d-%d***", a, a+1)
}

// OriginNotice returns the advisory line of an atom at the origin.
func OriginNotice(i int) string {
	return fmt.Sprintf("***Atom at origin found at %d***", i)
}

// ListingHeader is the column header of Listing.
var ListingHeader = fmt.Sprintf("%-11s%s   %s   %s", "", center("X", 12), center("Y", 12), center("Z", 12))

// ListingLine formats the atom at the 1-based index idx of a layered cell.
// Highlighted lines are marked with a trailing '<'.
func ListingLine(idx int, at cell.Atom, highlight bool) string {
	l := fmt.Sprintf("%s:  %-2s  | %12.9f | %12.9f | %12.9f",
		center(strconv.Itoa(idx), 4), at.Species, at.X, at.Y, at.Z)
	if highlight {
		l += "  <"
	}
	return l
}

// WriteListing writes every atom of the layered cell with its index. The
// atoms of a possible inversion center are highlighted and the advisory
// notices are written at the end.
func WriteListing(w io.Writer, l layer.Layered) error {
	bw := bufio.NewWriter(w)
	bw.WriteString(ListingHeader)
	bw.WriteByte('\n')
	first, second := l.Pair()
	for k, at := range l.Atoms {
		idx := k + 1
		hl := idx == first || idx == second
		bw.WriteString(ListingLine(idx, at, hl))
		bw.WriteByte('\n')
	}

	if l.HasInversion() {
		fmt.Fprintf(bw, "\n%s\n", InversionNotice(l.Invert))
	}
	if l.HasOrigin() {
		fmt.Fprintf(bw, "\n%s\n", OriginNotice(l.Origin))
	}
	return bw.Flush()
}

// center centers s in a field of width w. The extra space goes to the right.
func center(s string, w int) string {
	if len(s) >= w {
		return s
	}
	left := (w - len(s)) / 2
	return strings.Repeat(" ", left) + s + strings.Repeat(" ", w-len(s)-left)
}
