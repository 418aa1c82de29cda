// Package cfg dispatches several calculations. It avoids to start a
// specific program for each calculation.
package cfg

import (
	"errors"
	"fmt"
	"os"
	"sync"

	"github.com/kpotier/supercell/pkg/structdb"

	"github.com/pelletier/go-toml"
	"go.uber.org/zap"
)

// Cfg is a structure where the types of calculations are stored. It can be
// instanced through the New method. The length of the Files slice must be equal
// to the length of the Types files. Each calculation requires a configuration
// file where the parameters required to run the calculation are stored.
//
// Expander expands the Wyckoff positions of the structure databases. It may
// be nil if every structure is given as a list of atoms.
type Cfg struct {
	Types [][]string `toml:"types"`
	Files [][]string `toml:"files"`

	Expander structdb.Expander `toml:"-"`
}

// New returns an instance of the Cfg structure. It opens and reads the
// configuration file where Types and Files are stored. The configuration file
// must use the TOML format.
func New(path string) (Cfg, error) {
	f, err := os.Open(path)
	if err != nil {
		return Cfg{}, err
	}
	defer f.Close()

	var cfg Cfg
	dec := toml.NewDecoder(f)
	err = dec.Decode(&cfg)
	if err != nil {
		return Cfg{}, err
	}

	if len(cfg.Files) != len(cfg.Types) {
		return Cfg{}, fmt.Errorf("length of Files isn't equal to Types (%d vs %d)",
			len(cfg.Files), len(cfg.Types))
	}

	for k, v := range cfg.Files {
		if len(v) != len(cfg.Types[k]) {
			return Cfg{}, fmt.Errorf("length of Files isn't equal to Types (%d vs %d, step %d)",
				len(v), len(cfg.Types[k]), k)
		}
	}

	return cfg, nil
}

// Start dispatches and performs the calculations. If several calculations are
// in the same array (e.g Types: ["supercell", "cleave"]), they will be
// performed in parallel. The calculations of a step only start once the
// previous step is over.
//
// It is a thread blocking method. If an error occurs for a specific
// calculation, the error is logged and the other calculations go on. The
// returned error joins the errors of every failed calculation.
func (c Cfg) Start(log *zap.Logger) error {
	if log == nil {
		log = zap.NewNop()
	}

	var (
		wg   sync.WaitGroup
		mux  sync.Mutex
		errs []error
	)

	launch := func(step, rtn int) {
		name, path := c.Types[step][rtn], c.Files[step][rtn]
		err := Launch(name, path, c.Expander, log)
		if err != nil {
			err = fmt.Errorf("Launch (step %d, routine %d): %w", step, rtn, err)
			log.Error("calculation failed",
				zap.Int("step", step),
				zap.Int("routine", rtn),
				zap.String("type", name),
				zap.String("file", path),
				zap.Error(err))

			mux.Lock()
			errs = append(errs, err)
			mux.Unlock()
			return
		}
		log.Debug("calculation done",
			zap.Int("step", step),
			zap.Int("routine", rtn),
			zap.String("type", name))
	}

	for step, types := range c.Types {
		if len(types) == 0 {
			continue
		}

		for rtn := 1; rtn < len(types); rtn++ {
			wg.Add(1)
			go func(step, rtn int) {
				defer wg.Done()
				launch(step, rtn)
			}(step, rtn)
		}

		launch(step, 0)
		wg.Wait()
	}

	return errors.Join(errs...)
}
