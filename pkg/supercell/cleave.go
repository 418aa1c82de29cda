package supercell

import (
	"bufio"
	"errors"
	"fmt"
	"os"

	"github.com/kpotier/supercell/pkg/cleave"
	"github.com/kpotier/supercell/pkg/format"
	"github.com/kpotier/supercell/pkg/structdb"
	"github.com/kpotier/supercell/pkg/util"

	"github.com/pelletier/go-toml"
	"go.uber.org/zap"
)

// CleaveType is name of the calculation.
var CleaveType = "cleave"

// Cleave is a structure containing the parameters that can be parsed from a
// TOML configuration file. This structure can be instanced through the
// NewCleave method. The parameters of the supercell are the same as the ones
// of Supercell. Range is the inclusive 1-based range of atoms of the layered
// supercell to keep; the whole supercell is kept if it is omitted. Dialect is
// the output format ("abinit" or "quantum").
type Cleave struct {
	Database  string `toml:"cleave.database"`
	Structure string `toml:"cleave.structure"`
	FileOut   string `toml:"cleave.file_out"`

	Dims   []int     `toml:"cleave.dims"`
	Shifts []float64 `toml:"cleave.shifts,omitempty"`
	Sort   string    `toml:"cleave.sort"`

	Range   []int  `toml:"cleave.range,omitempty"`
	Dialect string `toml:"cleave.dialect"`

	p       params
	rng     cleave.Range
	dialect format.Dialect
	exp     structdb.Expander
	log     *zap.Logger
}

// NewCleave returns an instance of the Cleave structure. It reads and parses
// the configuration file given in argument. The file must be a TOML file. exp
// expands Wyckoff positions and may be nil.
func NewCleave(path string, exp structdb.Expander, log *zap.Logger) (*Cleave, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var c Cleave
	dec := toml.NewDecoder(f)
	err = dec.Decode(&c)
	if err != nil {
		return nil, err
	}

	if c.FileOut == "" {
		return nil, errors.New("no output file given")
	}

	c.p, err = newParams(c.Database, c.Structure, c.Dims, c.Shifts, c.Sort)
	if err != nil {
		return nil, err
	}

	switch len(c.Range) {
	case 0:
	case 2:
		c.rng = cleave.Range{A: c.Range[0], B: c.Range[1]}
		if c.rng.IsZero() || c.rng.A > c.rng.B {
			return nil, fmt.Errorf("%w (%d-%d)", cleave.ErrInvalidRange, c.rng.A, c.rng.B)
		}
	default:
		return nil, fmt.Errorf("%w (length of range isn't equal to 2 but %d)",
			cleave.ErrInvalidRange, len(c.Range))
	}

	c.dialect, err = format.ParseDialect(c.Dialect)
	if err != nil {
		return nil, err
	}

	c.exp = exp
	c.log = log
	if c.log == nil {
		c.log = zap.NewNop()
	}
	return &c, nil
}

// Start performs the calculation. It is a thread blocking method. It writes
// the atoms of the slab in the chosen dialect followed by the net charge of
// the slab. A missing charge isn't an error: the net charge is reported as not
// available.
func (c *Cleave) Start() error {
	b, err := c.p.build(c.exp, c.log)
	if err != nil {
		return fmt.Errorf("build: %w", err)
	}

	s, err := cleave.Cleave(b.layered, c.rng, b.db.Charges)
	if err != nil {
		return fmt.Errorf("Cleave: %w", err)
	}
	if !s.ChargeAvailable() {
		c.log.Warn("net charge not available",
			zap.String("structure", c.Structure),
			zap.Error(s.ChargeErr))
	}

	out, err := util.Write(c.FileOut, c)
	if err != nil {
		return fmt.Errorf("Write: %w", err)
	}
	defer out.Close()

	w := bufio.NewWriter(out)
	writeTitle(w, b, c.p.dims)
	fmt.Fprintf(w, "Atoms %d-%d of %d, dialect %s\n\n", s.Range.A, s.Range.B, len(b.layered.Atoms), c.dialect)
	err = format.WriteSlab(w, s, c.dialect)
	if err != nil {
		return fmt.Errorf("WriteSlab: %w", err)
	}

	err = w.Flush()
	if err != nil {
		return err
	}

	c.log.Info("slab written",
		zap.String("structure", c.Structure),
		zap.Int("first", s.Range.A),
		zap.Int("last", s.Range.B),
		zap.String("file", c.FileOut))
	return nil
}
