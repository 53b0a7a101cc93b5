package file_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/benmeehan/gps-ingestor/pkg/file"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string `yaml:"name"`
	Count int    `yaml:"count"`
}

func TestFileService_IsFileExists(t *testing.T) {
	fs := file.NewFileService()
	path := filepath.Join(t.TempDir(), "present.txt")
	require.NoError(t, os.WriteFile(path, []byte("x"), 0600))

	exists, err := fs.IsFileExists(path)
	assert.NoError(t, err)
	assert.True(t, exists)

	exists, err = fs.IsFileExists(filepath.Join(t.TempDir(), "missing.txt"))
	assert.NoError(t, err)
	assert.False(t, exists)
}

func TestFileService_ReadFileRaw(t *testing.T) {
	fs := file.NewFileService()
	path := filepath.Join(t.TempDir(), "raw.bin")
	require.NoError(t, os.WriteFile(path, []byte{0x01, 0x02}, 0600))

	data, err := fs.ReadFileRaw(path)
	assert.NoError(t, err)
	assert.Equal(t, []byte{0x01, 0x02}, data)

	_, err = fs.ReadFileRaw(filepath.Join(t.TempDir(), "missing.bin"))
	assert.Error(t, err)
}

func TestFileService_ReadYamlFile(t *testing.T) {
	fs := file.NewFileService()
	path := filepath.Join(t.TempDir(), "sample.yaml")
	require.NoError(t, os.WriteFile(path, []byte("name: tracker\n"), 0600))

	out := sample{Count: 7}
	require.NoError(t, fs.ReadYamlFile(path, &out))

	assert.Equal(t, "tracker", out.Name)
	assert.Equal(t, 7, out.Count, "keys absent from the file keep their previous value")
}

func TestFileService_ReadYamlFile_Empty(t *testing.T) {
	fs := file.NewFileService()
	path := filepath.Join(t.TempDir(), "empty.yaml")
	require.NoError(t, os.WriteFile(path, nil, 0600))

	out := sample{Name: "default"}
	assert.NoError(t, fs.ReadYamlFile(path, &out))
	assert.Equal(t, "default", out.Name)
}

func TestFileService_ReadYamlFile_UnknownField(t *testing.T) {
	fs := file.NewFileService()
	path := filepath.Join(t.TempDir(), "typo.yaml")
	require.NoError(t, os.WriteFile(path, []byte("nmae: tracker\n"), 0600))

	var out sample
	assert.Error(t, fs.ReadYamlFile(path, &out))
}
