package repofakes

import (
	"context"
	"sync"
	"time"

	"github.com/jrsteele09/go-storefront/storage"
)

// FakeRepo is an in-memory storage.Repo for tests.
//
// Err, when set, is returned by every operation. GetDelay makes Get block for
// the given duration (or until the context is cancelled), which lets tests
// exercise bounded-restore behaviour without a real slow backend.
type FakeRepo struct {
	mu       sync.Mutex
	values   map[string]string
	Err      error
	GetDelay time.Duration
}

func NewFakeRepo() *FakeRepo {
	return &FakeRepo{values: make(map[string]string)}
}

func (f *FakeRepo) Get(ctx context.Context, key string) (string, error) {
	if f.GetDelay > 0 {
		select {
		case <-time.After(f.GetDelay):
		case <-ctx.Done():
			return "", ctx.Err()
		}
	}
	if f.Err != nil {
		return "", f.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	value, ok := f.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

func (f *FakeRepo) Set(ctx context.Context, key, value string) error {
	if f.Err != nil {
		return f.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	f.values[key] = value
	return nil
}

func (f *FakeRepo) Delete(ctx context.Context, key string) error {
	if f.Err != nil {
		return f.Err
	}

	f.mu.Lock()
	defer f.mu.Unlock()

	delete(f.values, key)
	return nil
}

// Contents returns a copy of the stored values for assertions.
func (f *FakeRepo) Contents() map[string]string {
	f.mu.Lock()
	defer f.mu.Unlock()

	out := make(map[string]string, len(f.values))
	for k, v := range f.values {
		out[k] = v
	}
	return out
}

var _ storage.Repo = (*FakeRepo)(nil)
