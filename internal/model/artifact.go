package model

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/wonny/salescast/internal/contracts"
)

// ArtifactStore 모델/메타 파일 저장소
// ⭐ SSOT: tmp 파일에 쓰고 rename 으로 공개 (읽는 쪽은 절대 반쯤 쓰인 파일을 보지 않음)
type ArtifactStore struct {
	dir string
}

// NewArtifactStore creates a store rooted at dir
func NewArtifactStore(dir string) *ArtifactStore {
	return &ArtifactStore{dir: dir}
}

// Dir returns the artifact directory
func (s *ArtifactStore) Dir() string {
	return s.dir
}

// ModelPath returns the model artifact path for mode
func (s *ArtifactStore) ModelPath(mode contracts.ModelMode) string {
	switch mode {
	case contracts.ModeSeed:
		return filepath.Join(s.dir, "history_seed.json")
	default:
		return filepath.Join(s.dir, "model_live.json")
	}
}

// MetaPath returns the metadata path that sits next to the model artifact
func (s *ArtifactStore) MetaPath(mode contracts.ModelMode) string {
	return strings.TrimSuffix(s.ModelPath(mode), ".json") + ".meta.json"
}

// Save publishes the model then its metadata, each atomically
func (s *ArtifactStore) Save(mode contracts.ModelMode, m *ProfileModel, meta *Metadata) error {
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return fmt.Errorf("create artifact dir: %w", err)
	}
	if err := writeJSONAtomic(s.ModelPath(mode), m); err != nil {
		return fmt.Errorf("write model: %w", err)
	}
	if err := writeJSONAtomic(s.MetaPath(mode), meta); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// Load reads the model artifact and its optional metadata.
// A missing model is ErrModelUnavailable; a missing or unreadable meta file yields nil metadata.
func (s *ArtifactStore) Load(mode contracts.ModelMode) (*ProfileModel, *Metadata, error) {
	path := s.ModelPath(mode)
	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil, fmt.Errorf("%w: %s model not found at %s", contracts.ErrModelUnavailable, mode, path)
	}
	if err != nil {
		return nil, nil, fmt.Errorf("read model: %w", err)
	}

	var m ProfileModel
	if err := json.Unmarshal(data, &m); err != nil {
		return nil, nil, fmt.Errorf("decode model %s: %w", path, err)
	}
	if err := m.Check(); err != nil {
		return nil, nil, err
	}

	return &m, s.LoadMeta(mode), nil
}

// LoadMeta reads metadata for mode, nil when absent or corrupt
func (s *ArtifactStore) LoadMeta(mode contracts.ModelMode) *Metadata {
	data, err := os.ReadFile(s.MetaPath(mode))
	if err != nil {
		return nil
	}
	var meta Metadata
	if err := json.Unmarshal(data, &meta); err != nil {
		return nil
	}
	return &meta
}

// writeJSONAtomic writes v to a temp file in the target directory, syncs, then renames over path
func writeJSONAtomic(path string, v any) error {
	data, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}

	tmp, err := os.CreateTemp(filepath.Dir(path), filepath.Base(path)+".tmp-*")
	if err != nil {
		return err
	}
	tmpName := tmp.Name()
	defer func() {
		// no-op after a successful rename
		_ = os.Remove(tmpName)
	}()

	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Sync(); err != nil {
		tmp.Close()
		return err
	}
	if err := tmp.Close(); err != nil {
		return err
	}
	return os.Rename(tmpName, path)
}
