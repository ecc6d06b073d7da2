package persist

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"risk-engine-go/risk"
)

func TestFileStoreRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "risk_state.json")
	fs := NewFileStore(path)

	_, err := fs.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	st := risk.State{TotalExposure: 0.42, ActivePositions: 3, VaR: 12.5, CVaR: 16.25, Drawdown: 7, LastUpdate: "1700000000"}
	require.NoError(t, fs.Save(st))

	loaded, err := fs.Load()
	require.NoError(t, err)
	assert.Equal(t, st, loaded)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "\n  \"total_exposure\": 0.42")

	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temp files must not be left behind")
}

func TestFileStoreCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "risk_state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o644))

	_, err := NewFileStore(path).Load()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}

func TestFileStoreSaveFailure(t *testing.T) {
	dir := t.TempDir()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0o644))

	// 父路径是普通文件，无法创建目录
	err := NewFileStore(filepath.Join(blocker, "risk_state.json")).Save(risk.State{})
	assert.Error(t, err)
}

func TestNewFileStoreDefaultPath(t *testing.T) {
	assert.Equal(t, DefaultStatePath, NewFileStore("").Path)
}
