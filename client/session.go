package client

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"sync"

	"eventease/location"
	"eventease/model"
)

// Session is what the client remembers between runs.
type Session struct {
	Token            string          `json:"token,omitempty"`
	User             *model.UserData `json:"user,omitempty"`
	SelectedLocation *location.City  `json:"selectedLocation,omitempty"`
}

func (s Session) LoggedIn() bool { return s.Token != "" }

type SessionStore interface {
	Load() (Session, error)
	Save(Session) error
	Clear() error
}

// FileSessionStore keeps the session as a JSON file. A missing file is an
// empty session.
type FileSessionStore struct {
	Path string
}

func (f FileSessionStore) Load() (Session, error) {
	var s Session

	fileBytes, err := os.ReadFile(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return s, nil
	} else if err != nil {
		return s, err
	}

	if err := json.Unmarshal(fileBytes, &s); err != nil {
		return Session{}, err
	}
	return s, nil
}

func (f FileSessionStore) Save(s Session) error {
	sessionBytes, err := json.MarshalIndent(s, "", "	")
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(f.Path), 0o700); err != nil {
		return err
	}

	tmp := f.Path + ".tmp"
	if err := os.WriteFile(tmp, sessionBytes, 0o600); err != nil {
		return err
	}
	return os.Rename(tmp, f.Path)
}

func (f FileSessionStore) Clear() error {
	err := os.Remove(f.Path)
	if errors.Is(err, os.ErrNotExist) {
		return nil
	}
	return err
}

type MemorySessionStore struct {
	mu      sync.Mutex
	session Session
}

func (m *MemorySessionStore) Load() (Session, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.session, nil
}

func (m *MemorySessionStore) Save(s Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.session = s
	return nil
}

func (m *MemorySessionStore) Clear() error {
	return m.Save(Session{})
}
