package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/infocampus/campus/models"
)

// ErrCorrupt is returned by Load when the persisted principal cannot be decoded
var ErrCorrupt = errors.New("persisted session is corrupt")

// Storage persists the single principal record between runs
type Storage interface {
	// Load returns nil, nil when nothing is persisted
	Load() (*models.Principal, error)
	Save(p *models.Principal) error
	Clear() error
}

// FileStorage keeps the principal as a JSON file readable only by the owner
type FileStorage struct {
	path string
}

// NewFileStorage returns a storage backed by path
func NewFileStorage(path string) *FileStorage {
	return &FileStorage{path: path}
}

// Path returns the backing file
func (s *FileStorage) Path() string {
	return s.path
}

// Load reads the persisted principal
func (s *FileStorage) Load() (*models.Principal, error) {
	data, err := os.ReadFile(s.path)
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read session file: %w", err)
	}

	var p models.Principal
	if err := json.Unmarshal(data, &p); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCorrupt, err)
	}
	if !p.HasToken() {
		return nil, fmt.Errorf("%w: missing token", ErrCorrupt)
	}
	return &p, nil
}

// Save writes the principal atomically
func (s *FileStorage) Save(p *models.Principal) error {
	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o700); err != nil {
		return fmt.Errorf("create session dir: %w", err)
	}

	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write session file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		_ = os.Remove(tmp)
		return fmt.Errorf("replace session file: %w", err)
	}
	return nil
}

// Clear removes the persisted principal; clearing an absent file is not an error
func (s *FileStorage) Clear() error {
	if err := os.Remove(s.path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("remove session file: %w", err)
	}
	return nil
}

// MemoryStorage keeps the principal in memory; used by tests and one-shot commands
type MemoryStorage struct {
	principal *models.Principal
}

// NewMemoryStorage returns an empty in-memory storage
func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (m *MemoryStorage) Load() (*models.Principal, error) {
	if m.principal == nil {
		return nil, nil
	}
	cp := *m.principal
	return &cp, nil
}

func (m *MemoryStorage) Save(p *models.Principal) error {
	cp := *p
	m.principal = &cp
	return nil
}

func (m *MemoryStorage) Clear() error {
	m.principal = nil
	return nil
}
