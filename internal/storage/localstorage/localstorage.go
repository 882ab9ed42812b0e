//go:build js && wasm

// Package localstorage backs the store with the browser's window.localStorage.
package localstorage

import (
	"errors"
	"fmt"
	"syscall/js"
)

var errUnavailable = errors.New("localStorage is unavailable")

type Store struct {
	storage js.Value
}

// New returns a store over window.localStorage. Accessing localStorage can
// throw (opaque origins, disabled storage); that yields an error here and the
// caller falls back to a degraded store.
func New() (s *Store, err error) {
	defer func() {
		if r := recover(); r != nil {
			s, err = nil, fmt.Errorf("%w: %v", errUnavailable, r)
		}
	}()

	ls := js.Global().Get("localStorage")
	if ls.IsUndefined() || ls.IsNull() {
		return nil, errUnavailable
	}
	return &Store{storage: ls}, nil
}

// call invokes a localStorage method, converting a thrown JS exception
// (QuotaExceededError, SecurityError) into an error.
func (s *Store) call(method string, args ...any) (v js.Value, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("localStorage.%s: %v", method, r)
		}
	}()
	return s.storage.Call(method, args...), nil
}

func (s *Store) GetItem(key string) (string, bool, error) {
	v, err := s.call("getItem", key)
	if err != nil {
		return "", false, err
	}
	if v.IsNull() || v.IsUndefined() {
		return "", false, nil
	}
	return v.String(), true, nil
}

func (s *Store) SetItem(key, value string) error {
	_, err := s.call("setItem", key, value)
	return err
}

func (s *Store) RemoveItem(key string) error {
	_, err := s.call("removeItem", key)
	return err
}
