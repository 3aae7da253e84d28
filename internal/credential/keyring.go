// Package credential keeps the API tokens of the terminal client in the OS keyring.
package credential

import (
	"errors"
	"fmt"

	"github.com/99designs/keyring"
)

const (
	serviceName = "taskboard"

	keyAccessToken  = "access_token"
	keyRefreshToken = "refresh_token"
)

// ErrNotFound is returned when no tokens were stored yet.
var ErrNotFound = errors.New("credential not found")

type Tokens struct {
	AccessToken  string
	RefreshToken string
}

type Store struct {
	ring keyring.Keyring
}

// Open returns a store backed by the first keyring backend available on this machine.
func Open(fileDir string) (*Store, error) {
	ring, err := keyring.Open(keyring.Config{
		ServiceName: serviceName,
		AllowedBackends: []keyring.BackendType{
			keyring.KeychainBackend,
			keyring.SecretServiceBackend,
			keyring.WinCredBackend,
			keyring.PassBackend,
			keyring.FileBackend,
		},
		FileDir:                  fileDir,
		FilePasswordFunc:         keyring.FixedStringPrompt("taskboard-file-key"),
		KeychainTrustApplication: true,
	})
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}

	return New(ring), nil
}

func New(ring keyring.Keyring) *Store {
	return &Store{ring: ring}
}

func (s *Store) Save(tokens Tokens) error {
	if err := s.set(keyAccessToken, tokens.AccessToken); err != nil {
		return err
	}

	return s.set(keyRefreshToken, tokens.RefreshToken)
}

func (s *Store) Load() (Tokens, error) {
	access, err := s.get(keyAccessToken)
	if err != nil {
		return Tokens{}, err
	}

	refresh, err := s.get(keyRefreshToken)
	if err != nil {
		return Tokens{}, err
	}

	return Tokens{AccessToken: access, RefreshToken: refresh}, nil
}

// Clear removes both tokens. Missing entries are not an error.
func (s *Store) Clear() error {
	for _, key := range []string{keyAccessToken, keyRefreshToken} {
		if err := s.ring.Remove(key); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
			return fmt.Errorf("deleting credential %q: %w", key, err)
		}
	}

	return nil
}

func (s *Store) get(key string) (string, error) {
	item, err := s.ring.Get(key)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", ErrNotFound
	}

	if err != nil {
		return "", fmt.Errorf("getting credential %q: %w", key, err)
	}

	return string(item.Data), nil
}

func (s *Store) set(key, value string) error {
	err := s.ring.Set(keyring.Item{
		Key:  key,
		Data: []byte(value),
	})
	if err != nil {
		return fmt.Errorf("setting credential %q: %w", key, err)
	}

	return nil
}
