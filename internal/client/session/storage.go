package session

import (
	"context"
	"errors"
	"fmt"

	"github.com/dmitrijs2005/learnportal/internal/client/repositories/metadata"
	"github.com/dmitrijs2005/learnportal/internal/common"
	"github.com/zalando/go-keyring"
)

// TokenStorage is the durable home of the bearer token. Load returns ""
// when no token is stored.
type TokenStorage interface {
	Load(ctx context.Context) (string, error)
	Save(ctx context.Context, token string) error
	Clear(ctx context.Context) error
}

// MetadataStorage keeps the token in the client database metadata table.
type MetadataStorage struct {
	repo metadata.Repository
}

func NewMetadataStorage(repo metadata.Repository) *MetadataStorage {
	return &MetadataStorage{repo: repo}
}

func (s *MetadataStorage) Load(ctx context.Context) (string, error) {
	token, _, err := s.repo.Get(ctx, common.TokenStorageKey)
	return token, err
}

func (s *MetadataStorage) Save(ctx context.Context, token string) error {
	return s.repo.Set(ctx, common.TokenStorageKey, token)
}

func (s *MetadataStorage) Clear(ctx context.Context) error {
	return s.repo.Delete(ctx, common.TokenStorageKey)
}

// KeyringStorage keeps the token in the OS keychain under service.
type KeyringStorage struct {
	service string
}

func NewKeyringStorage(service string) *KeyringStorage {
	return &KeyringStorage{service: service}
}

func (s *KeyringStorage) Load(_ context.Context) (string, error) {
	token, err := keyring.Get(s.service, common.TokenStorageKey)
	if errors.Is(err, keyring.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("keyring get: %w", err)
	}
	return token, nil
}

func (s *KeyringStorage) Save(_ context.Context, token string) error {
	if err := keyring.Set(s.service, common.TokenStorageKey, token); err != nil {
		return fmt.Errorf("keyring set: %w", err)
	}
	return nil
}

func (s *KeyringStorage) Clear(_ context.Context) error {
	err := keyring.Delete(s.service, common.TokenStorageKey)
	if err != nil && !errors.Is(err, keyring.ErrNotFound) {
		return fmt.Errorf("keyring delete: %w", err)
	}
	return nil
}
