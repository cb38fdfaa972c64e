package project

import (
	"errors"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"signcheck/internal/diag"
	"signcheck/internal/source"
)

func TestConfigDiagnosticPointsAtParseError(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, "[check]\njobs = = 2\n")

	_, err := LoadConfig(path)
	require.Error(t, err)

	fs := source.NewFileSet()
	d := ConfigDiagnostic(fs, diag.ProjInvalidManifest, path, err)
	assert.Equal(t, diag.ProjInvalidManifest, d.Code)
	assert.Equal(t, diag.SevError, d.Severity)
	require.Equal(t, 1, fs.Len())

	start, _ := fs.Resolve(d.Primary)
	assert.Equal(t, uint32(2), start.Line)
	assert.NotContains(t, d.Message, path, "the location already names the file")
}

func TestConfigDiagnosticWithoutPosition(t *testing.T) {
	path := filepath.Join(t.TempDir(), ManifestName)
	writeFile(t, path, "[check]\njobs = -1\n")

	_, err := LoadConfig(path)
	require.Error(t, err)

	fs := source.NewFileSet()
	d := ConfigDiagnostic(fs, diag.ProjInvalidManifest, path, err)
	assert.Contains(t, d.Message, "must not be negative")
	assert.Equal(t, uint32(0), d.Primary.Start)

	missing := ConfigDiagnostic(fs, diag.ProjInvalidStub, filepath.Join(t.TempDir(), "gone.toml"), errors.New("boom"))
	assert.Equal(t, "boom", missing.Message)
	assert.Equal(t, 2, fs.Len())
}
