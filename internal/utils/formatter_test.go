package utils

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFormatGoCode(t *testing.T) {
	src := []byte("package demo\nfunc   Now() time.Time {return time.Now()}\n")

	out, err := FormatGoCode("demo.go", src)
	require.NoError(t, err)
	assert.Contains(t, string(out), "import \"time\"")
	assert.Contains(t, string(out), "func Now() time.Time { return time.Now() }")
}

func TestFormatGoCodeInvalid(t *testing.T) {
	src := []byte("package demo\nfunc {")
	out, err := FormatGoCode("demo.go", src)
	assert.ErrorContains(t, err, "invalid Go syntax")
	assert.Equal(t, src, out)
}

func TestWriteGoFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "gen", "demo.go")
	require.NoError(t, WriteGoFile(path, []byte("package demo\nvar  X = 1\n")))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "package demo\n\nvar X = 1\n", string(data))
}
