package util

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestTriple(t *testing.T) {
	d, err := Triple("dims", []int{1, 2, 3})
	require.NoError(t, err)
	require.Equal(t, [3]int{1, 2, 3}, d)

	s, err := Triple[float64]("shifts", nil)
	require.NoError(t, err)
	require.Equal(t, [3]float64{}, s)

	_, err = Triple("dims", []int{1, 2})
	require.EqualError(t, err, "length of dims isn't equal to 3 but 2")
}

func TestWrite(t *testing.T) {
	path := filepath.Join(t.TempDir(), "out.txt")
	params := struct {
		FileOut string `toml:"file_out"`
		Dims    []int  `toml:"dims"`
	}{FileOut: path, Dims: []int{2, 2, 1}}

	f, err := Write(path, params)
	require.NoError(t, err)
	f.WriteString("body\n")
	require.NoError(t, f.Close())

	b, err := os.ReadFile(path)
	require.NoError(t, err)
	got := string(b)
	require.True(t, strings.HasPrefix(got, "Date: "))
	require.Contains(t, got, "file_out")
	require.True(t, strings.HasSuffix(got, "\nbody\n"))
}
