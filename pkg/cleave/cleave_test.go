package cleave_test

import (
	"errors"
	"testing"

	"github.com/kpotier/supercell/pkg/cell"
	"github.com/kpotier/supercell/pkg/cleave"
	"github.com/kpotier/supercell/pkg/layer"
	"github.com/stretchr/testify/require"
)

var zxy = layer.SortKeys{cell.Z, cell.X, cell.Y}

func layered(t *testing.T, prim cell.Cell, dims cell.Dims) layer.Layered {
	t.Helper()
	bulk, err := cell.Replicate(prim, dims, [3]float64{})
	require.NoError(t, err)
	l, err := layer.Layer(bulk, zxy)
	require.NoError(t, err)
	return l
}

var nacl = cell.Cell{
	{Species: "Na", X: 0, Y: 0, Z: 0},
	{Species: "Cl", X: 0.5, Y: 0.5, Z: 0.5},
}

func TestCleave_FullRange(t *testing.T) {
	l := layered(t, nacl, cell.Dims{2, 2, 2})

	for _, r := range []cleave.Range{{}, {A: 1, B: len(l.Atoms)}} {
		s, err := cleave.Cleave(l, r, cleave.Charges{"Na": 1, "Cl": -1})
		require.NoError(t, err)
		require.Equal(t, cleave.Range{A: 1, B: len(l.Atoms)}, s.Range)
		require.Equal(t, l.Atoms, s.Atoms)
		require.ElementsMatch(t, l.Atoms, s.Primary)
		require.ElementsMatch(t, l.Atoms, s.Alt)
		require.True(t, s.ChargeAvailable())
		require.Equal(t, 0., s.Charge)
	}
}

func TestCleave_OutOfRange(t *testing.T) {
	l := layered(t, nacl, cell.Dims{1, 1, 1})
	n := len(l.Atoms)

	for _, r := range []cleave.Range{{A: 1, B: n + 1}, {A: n + 1, B: n + 1}, {A: 0, B: 1}, {A: 2, B: 1}, {A: -1, B: 2}} {
		s, err := cleave.Cleave(l, r, nil)
		require.True(t, errors.Is(err, cleave.ErrInvalidRange), "range %v", r)
		require.Nil(t, s.Atoms)
	}
}

func TestCleave_SubRange(t *testing.T) {
	l := layered(t, nacl, cell.Dims{1, 1, 2})
	// z: Na 0, Cl 0.25, Na 0.5, Cl 0.75
	s, err := cleave.Cleave(l, cleave.Range{A: 2, B: 3}, cleave.Charges{"Na": 1, "Cl": -1})
	require.NoError(t, err)
	require.Len(t, s.Atoms, 2)
	require.Equal(t, "Cl", s.Atoms[0].Species)
	require.Equal(t, "Na", s.Atoms[1].Species)
	require.Equal(t, 0., s.Charge)

	s, err = cleave.Cleave(l, cleave.Range{A: 1, B: 3}, cleave.Charges{"Na": 1, "Cl": -1})
	require.NoError(t, err)
	require.Equal(t, 1., s.Charge)

	s, err = cleave.Cleave(l, cleave.Range{A: 4, B: 4}, cleave.Charges{"Na": 1, "Cl": -1})
	require.NoError(t, err)
	require.Equal(t, cell.Cell{{Species: "Cl", X: 0.5, Y: 0.5, Z: 0.75}}, s.Atoms)
	require.Equal(t, -1., s.Charge)
}

func TestCleave_Sorts(t *testing.T) {
	l := layer.Layered{
		Keys: zxy,
		Atoms: cell.Cell{
			{Species: "O", X: 0.5, Y: 0, Z: 0.1},
			{Species: "Ti", X: 0, Y: 0, Z: 0.2},
			{Species: "O", X: 0, Y: 0.5, Z: 0.3},
			{Species: "Ba", X: 0, Y: 0, Z: 0.4},
		},
	}
	s, err := cleave.Cleave(l, cleave.Range{}, cleave.Charges{"O": -2, "Ti": 4, "Ba": 2})
	require.NoError(t, err)
	require.Equal(t, l.Atoms, s.Primary)
	require.Equal(t, cell.Cell{l.Atoms[3], l.Atoms[0], l.Atoms[2], l.Atoms[1]}, s.Alt)
	require.Equal(t, 2., s.Charge)
}

func TestCleave_ChargeUnavailable(t *testing.T) {
	l := layered(t, nacl, cell.Dims{1, 1, 1})

	s, err := cleave.Cleave(l, cleave.Range{}, cleave.Charges{"Na": 1})
	require.NoError(t, err)
	require.False(t, s.ChargeAvailable())
	require.True(t, errors.Is(s.ChargeErr, cleave.ErrChargeUnavailable))

	var cerr *cleave.ChargeError
	require.True(t, errors.As(s.ChargeErr, &cerr))
	require.Equal(t, []string{"Cl"}, cerr.Missing)
	require.Contains(t, cerr.Error(), "Cl")

	// The slab without Cl is fine.
	s, err = cleave.Cleave(l, cleave.Range{A: 1, B: 1}, cleave.Charges{"Na": 1})
	require.NoError(t, err)
	require.True(t, s.ChargeAvailable())
	require.Equal(t, 1., s.Charge)
}

func TestNetCharge(t *testing.T) {
	c := cell.Cell{{Species: "Fe"}, {Species: "Fe"}, {Species: "O"}, {Species: "O"}, {Species: "O"}}

	q, err := cleave.NetCharge(c, cleave.Charges{"Fe": 3, "O": -2})
	require.NoError(t, err)
	require.Equal(t, 0., q)

	q, err = cleave.NetCharge(c[:3], cleave.Charges{"Fe": 3, "O": -2})
	require.NoError(t, err)
	require.Equal(t, 4., q)

	q, err = cleave.NetCharge(nil, nil)
	require.NoError(t, err)
	require.Equal(t, 0., q)

	_, err = cleave.NetCharge(append(c, cell.Atom{Species: "H"}, cell.Atom{Species: "H"}), nil)
	var cerr *cleave.ChargeError
	require.True(t, errors.As(err, &cerr))
	require.Equal(t, []string{"Fe", "O", "H"}, cerr.Missing)
}

func TestCleave_InvalidKeys(t *testing.T) {
	_, err := cleave.Cleave(layer.Layered{Atoms: nacl}, cleave.Range{}, nil)
	require.True(t, errors.Is(err, layer.ErrUnresolvedSortAxis))
}
