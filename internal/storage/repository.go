// Package storage is the durable key/value surface of the account core. It
// plays the role browser local storage plays for the web dashboard: the
// credential collection and the session record are each stored whole under
// a single key.
package storage

import "context"

// UpdateFunc receives the current value of a key (nil when absent) and
// returns the value to store. A nil result deletes the key. Returning an
// error aborts the update and leaves the stored value untouched.
type UpdateFunc func(current []byte) ([]byte, error)

// Repository is implemented by every storage driver.
//
// Get returns (nil, nil) for an absent key. Delete is idempotent. Update is
// an atomic read-modify-write of a single key.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string][]byte, error)
	Clear(ctx context.Context) error
	Update(ctx context.Context, key string, fn UpdateFunc) error
}
