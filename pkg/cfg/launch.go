package cfg

import (
	"fmt"

	"github.com/kpotier/supercell/pkg/structdb"
	"github.com/kpotier/supercell/pkg/supercell"

	"go.uber.org/zap"
)

// Calculation is an interface that only contains one method: Start. Every
// calculation must have a Start method that will launch the calculation. It
// must be a thread blocking method.
type Calculation interface {
	Start() error
}

// Launch launchs a specific calculation. It is a thread blocking method. The
// parameters required to launch the calculation must be in a file. exp expands
// Wyckoff positions and may be nil.
func Launch(name string, path string, exp structdb.Expander, log *zap.Logger) error {
	var (
		err error
		cal Calculation
	)

	switch name {
	case supercell.Type:
		cal, err = supercell.New(path, exp, log)
	case supercell.CleaveType:
		cal, err = supercell.NewCleave(path, exp, log)
	default:
		return fmt.Errorf("calculation `%s` doesn't exist", name)
	}

	if err != nil {
		return fmt.Errorf("%s: New: %w", name, err)
	}

	err = cal.Start()
	if err != nil {
		return fmt.Errorf("%s: Start: %w", name, err)
	}

	return nil
}
