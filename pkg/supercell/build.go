package supercell

import (
	"errors"
	"fmt"

	"github.com/kpotier/supercell/pkg/cell"
	"github.com/kpotier/supercell/pkg/layer"
	"github.com/kpotier/supercell/pkg/structdb"
	"github.com/kpotier/supercell/pkg/util"

	"go.uber.org/zap"
)

// params are the parameters shared by every calculation of this package once
// validated.
type params struct {
	database  string
	structure string
	dims      cell.Dims
	shift     [3]float64
	keys      layer.SortKeys
}

func newParams(database, structure string, dims []int, shifts []float64, sort string) (params, error) {
	p := params{database: database, structure: structure}
	if database == "" {
		return p, errors.New("no structure database given")
	}
	if structure == "" {
		return p, errors.New("no structure given")
	}

	var err error
	p.dims, err = util.Triple("dims", dims)
	if err != nil {
		return p, err
	}
	err = p.dims.Validate()
	if err != nil {
		return p, err
	}

	p.shift, err = util.Triple("shifts", shifts)
	if err != nil {
		return p, err
	}

	p.keys, err = layer.ParseSortKeys(sort)
	if err != nil {
		return p, err
	}
	return p, nil
}

// built is a layered supercell and the database it comes from.
type built struct {
	db        *structdb.DB
	structure structdb.Structure
	layered   layer.Layered
}

// build reads the primitive cell from the database, replicates it and layers
// it. Possible inversion centers and atoms at the origin are logged.
func (p params) build(exp structdb.Expander, log *zap.Logger) (built, error) {
	db, err := structdb.Open(p.database)
	if err != nil {
		return built{}, fmt.Errorf("Open: %w", err)
	}

	s, err := db.Structure(p.structure, exp)
	if err != nil {
		return built{}, fmt.Errorf("Structure: %w", err)
	}

	bulk, err := cell.Replicate(s.Atoms, p.dims, p.shift)
	if err != nil {
		return built{}, fmt.Errorf("Replicate: %w", err)
	}

	l, err := layer.Layer(bulk, p.keys)
	if err != nil {
		return built{}, fmt.Errorf("Layer: %w", err)
	}

	log.Debug("supercell built",
		zap.String("structure", p.structure),
		zap.Ints("dims", p.dims[:]),
		zap.Int("atoms", len(l.Atoms)),
		zap.Strings("species", s.Atoms.Species()),
		zap.Stringer("sort", p.keys))
	if l.HasInversion() {
		first, second := l.Pair()
		log.Info("possible inversion center",
			zap.String("structure", p.structure),
			zap.Int("first", first),
			zap.Int("second", second))
	}
	if l.HasOrigin() {
		log.Info("atom at origin",
			zap.String("structure", p.structure),
			zap.Int("index", l.Origin))
	}

	return built{db: db, structure: s, layered: l}, nil
}
