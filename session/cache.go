package session

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"promoshow/models"
)

// FileCache stores the identity as JSON in a single file readable only by
// the owner.
type FileCache struct {
	Path string
}

func (c FileCache) Load() (*models.User, error) {
	data, err := os.ReadFile(c.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	var u models.User
	if err := json.Unmarshal(data, &u); err != nil {
		return nil, fmt.Errorf("corrupt session cache %s: %w", c.Path, err)
	}
	if u.ID == "" && u.Username == "" {
		return nil, errNoIdentity
	}
	return &u, nil
}

func (c FileCache) Save(u models.User) error {
	data, err := json.Marshal(u)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(c.Path), 0o700); err != nil {
		return err
	}
	return os.WriteFile(c.Path, data, 0o600)
}

func (c FileCache) Clear() error {
	err := os.Remove(c.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}
