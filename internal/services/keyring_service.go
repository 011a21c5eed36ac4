package services

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/99designs/keyring"
)

const (
	serviceName     = "clickhelper"
	apiKeyPrefix    = "apikey:"
	chatTokenKey    = "chat:token"
	fileBackendPass = "clickhelper"
)

// KeyringConfig picks the secret store backend. An empty Backend lets keyring choose.
type KeyringConfig struct {
	Backend string
	FileDir string
}

// OpenKeyring opens the OS keychain or the file backend under FileDir.
func OpenKeyring(cfg KeyringConfig) (keyring.Keyring, error) {
	kc := keyring.Config{
		ServiceName:      serviceName,
		FileDir:          cfg.FileDir,
		FilePasswordFunc: keyring.FixedStringPrompt(fileBackendPass),
	}
	if b := strings.TrimSpace(cfg.Backend); b != "" {
		kc.AllowedBackends = []keyring.BackendType{keyring.BackendType(b)}
	}
	ring, err := keyring.Open(kc)
	if err != nil {
		return nil, fmt.Errorf("opening keyring: %w", err)
	}
	return ring, nil
}

// KeyringService keeps provider API keys and the chat token.
type KeyringService struct {
	ring keyring.Keyring
}

func NewKeyringService(ring keyring.Keyring) *KeyringService {
	return &KeyringService{ring: ring}
}

func (s *KeyringService) StoreApiKey(provider string, apiKey []byte) error {
	if len(apiKey) == 0 {
		return errors.New("API key is empty")
	}
	if provider == "" {
		return errors.New("provider is required")
	}
	return s.ring.Set(keyring.Item{
		Key:         apiKeyPrefix + provider,
		Data:        apiKey,
		Label:       provider + " API key",
		Description: "API key for " + provider + " used by clickhelper",
	})
}

// GetApiKey returns ErrMissingCredential when no key is stored for provider.
func (s *KeyringService) GetApiKey(provider string) (string, error) {
	if provider == "" {
		return "", errors.New("provider is required")
	}
	item, err := s.ring.Get(apiKeyPrefix + provider)
	if errors.Is(err, keyring.ErrKeyNotFound) {
		return "", fmt.Errorf("%s: %w", provider, ErrMissingCredential)
	}
	if err != nil {
		return "", fmt.Errorf("reading %s api key: %w", provider, err)
	}
	if len(item.Data) == 0 {
		return "", fmt.Errorf("%s: %w", provider, ErrMissingCredential)
	}
	return string(item.Data), nil
}

func (s *KeyringService) DeleteApiKey(provider string) error {
	if provider == "" {
		return errors.New("provider is required")
	}
	if err := s.ring.Remove(apiKeyPrefix + provider); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting %s api key: %w", provider, err)
	}
	return nil
}

func (s *KeyringService) ListApiKeys() ([]map[string]string, error) {
	keys, err := s.ring.Keys()
	if err != nil {
		return nil, fmt.Errorf("listing keyring: %w", err)
	}
	sort.Strings(keys)

	var results []map[string]string
	for _, key := range keys {
		provider, ok := strings.CutPrefix(key, apiKeyPrefix)
		if !ok {
			continue
		}
		results = append(results, map[string]string{
			"provider":    provider,
			"label":       provider + " API key",
			"description": "API key for " + provider + " used by clickhelper",
		})
	}
	return results, nil
}

func (s *KeyringService) StoreChatToken(token string) error {
	token = strings.TrimSpace(token)
	if token == "" {
		return errors.New("chat token is empty")
	}
	return s.ring.Set(keyring.Item{
		Key:   chatTokenKey,
		Data:  []byte(token),
		Label: "chat access token",
	})
}

// GetChatToken returns ErrAuthMissing when no token is stored.
func (s *KeyringService) GetChatToken() (string, error) {
	item, err := s.ring.Get(chatTokenKey)
	if errors.Is(err, keyring.ErrKeyNotFound) || (err == nil && len(item.Data) == 0) {
		return "", ErrAuthMissing
	}
	if err != nil {
		return "", fmt.Errorf("reading chat token: %w", err)
	}
	return string(item.Data), nil
}

func (s *KeyringService) DeleteChatToken() error {
	if err := s.ring.Remove(chatTokenKey); err != nil && !errors.Is(err, keyring.ErrKeyNotFound) {
		return fmt.Errorf("deleting chat token: %w", err)
	}
	return nil
}
