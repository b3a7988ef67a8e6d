// Package session reads and writes the persisted sign-in entries.
package session

import (
	"errors"
	"fmt"

	"github.com/studx/homefeed/internal/database"
	"github.com/studx/homefeed/internal/model"
)

// KV is the subset of the backing store holding session entries.
type KV interface {
	GetSetting(key string) (string, error)
	SetSetting(key, value string) error
	DeleteSetting(key string) error
}

// Load builds Credentials from the stored entries. Missing entries leave the
// corresponding field empty; that is the signed-out state, not an error.
func Load(kv KV) (model.Credentials, error) {
	token, err := get(kv, model.SessionToken)
	if err != nil {
		return model.Credentials{}, err
	}
	email, err := get(kv, model.SessionEmail)
	if err != nil {
		return model.Credentials{}, err
	}
	return model.Credentials{Token: token, Identifier: email}, nil
}

// Save persists both entries.
func Save(kv KV, creds model.Credentials) error {
	if !creds.Complete() {
		return errors.New("token and email are both required")
	}
	if err := kv.SetSetting(model.SessionToken, creds.Token); err != nil {
		return fmt.Errorf("save %s: %w", model.SessionToken, err)
	}
	if err := kv.SetSetting(model.SessionEmail, creds.Identifier); err != nil {
		return fmt.Errorf("save %s: %w", model.SessionEmail, err)
	}
	return nil
}

// Clear removes both entries.
func Clear(kv KV) error {
	for _, key := range []string{model.SessionToken, model.SessionEmail} {
		if err := kv.DeleteSetting(key); err != nil {
			return fmt.Errorf("delete %s: %w", key, err)
		}
	}
	return nil
}

func get(kv KV, key string) (string, error) {
	val, err := kv.GetSetting(key)
	if errors.Is(err, database.ErrNotFound) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("read %s: %w", key, err)
	}
	return val, nil
}
