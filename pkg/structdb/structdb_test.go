package structdb_test

import (
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/kpotier/supercell/pkg/cell"
	"github.com/kpotier/supercell/pkg/cleave"
	"github.com/kpotier/supercell/pkg/structdb"
	"github.com/stretchr/testify/require"
)

const database = `
Charges:
  Na: 1
  Cl: -1
  O: -2
  Ti: 4
  Sr: 2
Structures:
  NaCl 225: Na 0 0 0, Cl 0.5 0.5 0.5
  "SrTiO3  221": "Sr 0 0 0, Ti 0.5 0.5 0.5, O 0.5 0.5 0 O 0.5,0 0.5, O 0 0.5 0.5"
  NaCl-W 225: Na a 0 0 0, Cl b 0 0 0
  Broken 1: Na 0 0
  NoGroup: Na 0 0 0
`

func decode(t *testing.T) *structdb.DB {
	t.Helper()
	db, err := structdb.Decode(strings.NewReader(database))
	require.NoError(t, err)
	return db
}

func TestDecode(t *testing.T) {
	db := decode(t)
	require.Equal(t, cleave.Charges{"Na": 1, "Cl": -1, "O": -2, "Ti": 4, "Sr": 2}, db.Charges)
	require.Equal(t, []string{"Broken 1", "NaCl 225", "NaCl-W 225", "NoGroup", "SrTiO3 221"}, db.Names())
}

func TestDecode_Empty(t *testing.T) {
	db, err := structdb.Decode(strings.NewReader(""))
	require.NoError(t, err)
	require.Empty(t, db.Names())
	require.NotNil(t, db.Charges)

	_, err = structdb.Decode(strings.NewReader("Charges: [1, 2"))
	require.Error(t, err)
}

func TestStructure(t *testing.T) {
	db := decode(t)

	s, err := db.Structure("NaCl 225", nil)
	require.NoError(t, err)
	require.Equal(t, structdb.Structure{
		Name:       "NaCl",
		SpaceGroup: 225,
		Atoms: cell.Cell{
			{Species: "Na", X: 0, Y: 0, Z: 0},
			{Species: "Cl", X: 0.5, Y: 0.5, Z: 0.5},
		},
	}, s)

	s, err = db.Structure(" SrTiO3,221 ", nil)
	require.NoError(t, err)
	require.Equal(t, "SrTiO3", s.Name)
	require.Equal(t, 221, s.SpaceGroup)
	require.Len(t, s.Atoms, 5)
	require.Equal(t, cell.Atom{Species: "O", X: 0.5, Y: 0, Z: 0.5}, s.Atoms[3])
	require.False(t, s.Wyckoff)
}

func TestStructure_Errors(t *testing.T) {
	db := decode(t)

	_, err := db.Structure("KCl 225", nil)
	require.True(t, errors.Is(err, structdb.ErrUnknownStructure))

	_, err = db.Structure("Broken 1", nil)
	require.True(t, errors.Is(err, structdb.ErrMalformedStructure))

	_, err = db.Structure("NoGroup", nil)
	require.True(t, errors.Is(err, structdb.ErrMalformedStructure))

	_, err = db.Structure("NaCl-W 225", nil)
	require.True(t, errors.Is(err, structdb.ErrNoExpander))
}

type fakeExpander struct {
	spg   int
	sites []structdb.WyckoffSite
	err   error
}

func (f *fakeExpander) Expand(spg int, sites []structdb.WyckoffSite) (cell.Cell, error) {
	f.spg, f.sites = spg, sites
	if f.err != nil {
		return nil, f.err
	}
	var out cell.Cell
	for _, s := range sites {
		out = append(out, cell.Atom{Species: s.Species, X: s.X, Y: s.Y, Z: s.Z})
		out = append(out, cell.Atom{Species: s.Species, X: s.X + 0.5, Y: s.Y + 0.5, Z: s.Z})
	}
	return out, nil
}

func TestStructure_Wyckoff(t *testing.T) {
	db := decode(t)

	exp := &fakeExpander{}
	s, err := db.Structure("NaCl-W 225", exp)
	require.NoError(t, err)
	require.True(t, s.Wyckoff)
	require.Equal(t, 225, exp.spg)
	require.Equal(t, []structdb.WyckoffSite{
		{Species: "Na", Letter: "a"},
		{Species: "Cl", Letter: "b"},
	}, exp.sites)
	require.Len(t, s.Atoms, 4)

	boom := errors.New("boom")
	_, err = db.Structure("NaCl-W 225", &fakeExpander{err: boom})
	require.True(t, errors.Is(err, boom))
}

func TestParseCell(t *testing.T) {
	atoms, sites, err := structdb.ParseCell("O 0.1 0.2 0.3")
	require.NoError(t, err)
	require.Nil(t, sites)
	require.Equal(t, cell.Cell{{Species: "O", X: 0.1, Y: 0.2, Z: 0.3}}, atoms)

	atoms, sites, err = structdb.ParseCell("O 4e 0.1 0.2 0.3, H 8f 0 0 0.25")
	require.NoError(t, err)
	require.Nil(t, atoms)
	require.Len(t, sites, 2)
	require.Equal(t, "4e", sites[0].Letter)
	require.Equal(t, 0.25, sites[1].Z)

	for _, in := range []string{"", "O", "O 0 0 x", "O 0 0 0 H", "O a 0 0"} {
		_, _, err := structdb.ParseCell(in)
		require.True(t, errors.Is(err, structdb.ErrMalformedStructure), in)
	}
}

func TestParseKey(t *testing.T) {
	name, spg, err := structdb.ParseKey("Rutile 136")
	require.NoError(t, err)
	require.Equal(t, "Rutile", name)
	require.Equal(t, 136, spg)

	for _, in := range []string{"Rutile", "Rutile x", "Rutile 0", "Rutile 231"} {
		_, _, err := structdb.ParseKey(in)
		require.True(t, errors.Is(err, structdb.ErrMalformedStructure), in)
	}
}

func TestOpen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "cells.yaml")
	require.NoError(t, os.WriteFile(path, []byte(database), 0644))

	db, err := structdb.Open(path)
	require.NoError(t, err)
	require.Len(t, db.Names(), 5)

	_, err = structdb.Open(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}
