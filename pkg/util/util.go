// Package util contains some methods that can be used by every other package.
package util

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml"
)

// DateLayout is the layout of the date written at the top of every output
// file.
const DateLayout = "2006-01-02 15:04:05 -0700 MST"

// Write creates the output file according to a specific scheme. It writes the
// date, parses the parameters of the calculation in a TOML format and writes
// them. This method returns the file for further writing. It must be closed
// at the end of the calculation.
func Write(path string, params interface{}) (*os.File, error) {
	f, err := os.Create(path)
	if err != nil {
		return nil, err
	}

	fmt.Fprintf(f, "Date: %v\n", time.Now().Format(DateLayout))

	enc := toml.NewEncoder(f)
	err = enc.Encode(params)
	if err != nil {
		f.Close()
		return nil, err
	}

	f.Write([]byte{'\n'})
	return f, nil
}

// Triple converts a slice of length 3 into an array. An empty slice gives the
// zero array.
func Triple[T int | float64](name string, v []T) ([3]T, error) {
	var out [3]T
	if len(v) == 0 {
		return out, nil
	}
	if len(v) != 3 {
		return out, fmt.Errorf("length of %s isn't equal to 3 but %d", name, len(v))
	}
	copy(out[:], v)
	return out, nil
}
