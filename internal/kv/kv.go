package kv

import "errors"

// ErrCorruptState is returned when the persisted document cannot be decoded.
var ErrCorruptState = errors.New("corrupt state file")

// Store is an opaque durable key-value store. Values are plain strings, the
// same shape a browser's local storage would hold.
type Store interface {
	Get(key string) (string, bool, error)
	Set(key, value string) error
	Delete(keys ...string) error
	Keys() ([]string, error)
}
