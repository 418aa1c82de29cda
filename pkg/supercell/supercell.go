// Package supercell builds supercells from a structure database. It provides
// two calculations: Supercell lists the layered supercell and Cleave extracts
// a slab from it in the format of a simulation package.
package supercell

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/kpotier/supercell/pkg/cell"
	"github.com/kpotier/supercell/pkg/format"
	"github.com/kpotier/supercell/pkg/structdb"
	"github.com/kpotier/supercell/pkg/util"

	"github.com/pelletier/go-toml"
	"go.uber.org/zap"
)

// Type is name of the calculation.
var Type = "supercell"

// Supercell is a structure containing the parameters that can be parsed from
// a TOML configuration file. This structure can be instanced through the New
// method. Dims must contain 3 positive integers. Shifts may be omitted,
// otherwise it must contain 3 values. Sort is the sort priority, e.g. "z x y".
type Supercell struct {
	Database  string `toml:"supercell.database"`
	Structure string `toml:"supercell.structure"`
	FileOut   string `toml:"supercell.file_out"`

	Dims   []int     `toml:"supercell.dims"`
	Shifts []float64 `toml:"supercell.shifts,omitempty"`
	Sort   string    `toml:"supercell.sort"`

	p   params
	exp structdb.Expander
	log *zap.Logger
}

// New returns an instance of the Supercell structure. It reads and parses
// the configuration file given in argument. The file must be a TOML file. exp
// expands Wyckoff positions and may be nil.
func New(path string, exp structdb.Expander, log *zap.Logger) (*Supercell, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var s Supercell
	dec := toml.NewDecoder(f)
	err = dec.Decode(&s)
	if err != nil {
		return nil, err
	}

	if s.FileOut == "" {
		return nil, errors.New("no output file given")
	}

	s.p, err = newParams(s.Database, s.Structure, s.Dims, s.Shifts, s.Sort)
	if err != nil {
		return nil, err
	}

	s.exp = exp
	s.log = log
	if s.log == nil {
		s.log = zap.NewNop()
	}
	return &s, nil
}

// Start performs the calculation. It is a thread blocking method. It writes
// the title of the cell and every atom of the layered supercell with its
// index, followed by the inversion and origin notices.
func (s *Supercell) Start() error {
	b, err := s.p.build(s.exp, s.log)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	out, err := util.Write(s.FileOut, s)
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	writeTitle(w, b, s.p.dims)
	w.WriteByte('\n')
	err = format.WriteListing(w, b.layered)
	if err != nil {
		return fmt.Errorf("WriteListing: %w", err)
	}

	err = w.Flush()
	if err != nil {
		return err
	}

	s.log.Info("supercell written",
		zap.String("structure", s.Structure),
		zap.Int("atoms", len(b.layered.Atoms)),
		zap.String("file", s.FileOut))
	return nil
}

func writeTitle(w *bufio.Writer, b built, dims cell.Dims) {
	fmt.Fprintln(w, format.Title(b.structure.Name, b.structure.SpaceGroup, dims))
	if b.structure.Wyckoff {
		fmt.Fprintf(w, "Cell constructed from Wyckoff positions using standard ITA settings:\n%s\n",
			format.ITALink(b.structure.SpaceGroup))
	}
}
