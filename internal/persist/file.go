// Package persist 提供风险状态的持久化实现（本地 JSON 文件 / PostgreSQL）。
package persist

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	jsoniter "github.com/json-iterator/go"

	"risk-engine-go/risk"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary

// DefaultStatePath 默认状态文件位置。
const DefaultStatePath = "state/risk_state.json"

// FileStore 将状态写为带缩进的 JSON 文件。
type FileStore struct {
	Path string
}

func NewFileStore(path string) *FileStore {
	if path == "" {
		path = DefaultStatePath
	}
	return &FileStore{Path: path}
}

// Load 读取状态文件；文件不存在时返回 ErrNotFound。
func (f *FileStore) Load() (risk.State, error) {
	data, err := os.ReadFile(f.Path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return risk.State{}, fmt.Errorf("%w: %s", ErrNotFound, f.Path)
		}
		return risk.State{}, fmt.Errorf("read state file: %w", err)
	}
	var st risk.State
	if err := json.Unmarshal(data, &st); err != nil {
		return risk.State{}, fmt.Errorf("decode state file %s: %w", f.Path, err)
	}
	return st, nil
}

// Save 先写临时文件再 rename，避免留下半截文件。
func (f *FileStore) Save(st risk.State) error {
	dir := filepath.Dir(f.Path)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("create state dir: %w", err)
	}
	data, err := json.MarshalIndent(st, "", "  ")
	if err != nil {
		return fmt.Errorf("encode state: %w", err)
	}

	tmp, err := os.CreateTemp(dir, ".risk_state-*.tmp")
	if err != nil {
		return fmt.Errorf("create temp state file: %w", err)
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		return fmt.Errorf("write state: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("close temp state file: %w", err)
	}
	if err := os.Rename(tmpName, f.Path); err != nil {
		os.Remove(tmpName)
		return fmt.Errorf("replace state file: %w", err)
	}
	return nil
}
