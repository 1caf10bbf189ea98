package secrets

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"sync"

	"filippo.io/age"
)

// Store holds named secrets in a JSON file mapping name to ENC[age:...]
// blob. Decryption happens on read; the plaintext is never cached.
type Store struct {
	path     string
	identity *age.X25519Identity

	mu    sync.Mutex
	blobs map[string]string
}

// OpenStore loads the secrets file at path, creating an empty store when
// the file does not exist. The identity decrypts values on demand.
func OpenStore(path string, identity *age.X25519Identity) (*Store, error) {
	s := &Store{path: path, identity: identity, blobs: make(map[string]string)}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return s, nil
		}
		return nil, fmt.Errorf("read secrets %s: %w", path, err)
	}
	if err := json.Unmarshal(data, &s.blobs); err != nil {
		return nil, fmt.Errorf("parse secrets %s: %w", path, err)
	}
	return s, nil
}

// Get decrypts and returns the named secret.
func (s *Store) Get(name string) (string, error) {
	s.mu.Lock()
	blob, ok := s.blobs[name]
	s.mu.Unlock()

	if !ok {
		return "", fmt.Errorf("secret %q not found", name)
	}
	return Decrypt(blob, s.identity)
}

// Set encrypts and stores a secret, then persists the file.
func (s *Store) Set(name, value string) error {
	blob, err := Encrypt(value, s.identity.Recipient())
	if err != nil {
		return fmt.Errorf("encrypt secret %q: %w", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	s.blobs[name] = blob
	return s.save()
}

// Delete removes a secret and persists the file. Removing an absent name
// is not an error.
func (s *Store) Delete(name string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.blobs[name]; !ok {
		return nil
	}
	delete(s.blobs, name)
	return s.save()
}

// Names returns the stored secret names, sorted. Values are never listed.
func (s *Store) Names() []string {
	s.mu.Lock()
	defer s.mu.Unlock()

	names := make([]string, 0, len(s.blobs))
	for name := range s.blobs {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// save writes the blob map with 0o600. Caller holds s.mu.
func (s *Store) save() error {
	data, err := json.MarshalIndent(s.blobs, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal secrets: %w", err)
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("create secrets directory: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0o600); err != nil {
		return fmt.Errorf("write secrets %s: %w", s.path, err)
	}
	return nil
}
