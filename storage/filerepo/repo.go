package filerepo

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"github.com/jrsteele09/go-storefront/storage"
	"github.com/pkg/errors"
)

const storeFilename = "storefront.json"

// Repo is a file-backed storage.Repo. All keys live in a single JSON object
// file under the data folder, rewritten in full on every mutation so the
// on-disk state never trails the in-memory state within a process.
type Repo struct {
	mu     sync.Mutex
	path   string
	values map[string]string
}

// New creates the data folder if needed and loads any existing store file.
// An unreadable or malformed store file starts the repo empty rather than
// failing: stale local state is never worth refusing to start over.
func New(dataFolder string) (*Repo, error) {
	if dataFolder == "" {
		return nil, errors.New("[filerepo.New] dataFolder is required")
	}
	if err := os.MkdirAll(dataFolder, 0o700); err != nil {
		return nil, errors.Wrap(err, "[filerepo.New] os.MkdirAll")
	}

	r := &Repo{
		path:   filepath.Join(dataFolder, storeFilename),
		values: make(map[string]string),
	}

	data, err := os.ReadFile(r.path)
	if err != nil {
		if os.IsNotExist(err) {
			return r, nil
		}
		return nil, errors.Wrap(err, "[filerepo.New] os.ReadFile")
	}
	if err := json.Unmarshal(data, &r.values); err != nil {
		r.values = make(map[string]string)
	}
	return r, nil
}

func (r *Repo) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", errors.New("[filerepo.Get] key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	value, ok := r.values[key]
	if !ok {
		return "", storage.ErrNotFound
	}
	return value, nil
}

func (r *Repo) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return errors.New("[filerepo.Set] key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	r.values[key] = value
	return r.flush()
}

func (r *Repo) Delete(ctx context.Context, key string) error {
	if key == "" {
		return errors.New("[filerepo.Delete] key is required")
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.values[key]; !ok {
		return nil
	}
	delete(r.values, key)
	return r.flush()
}

// flush rewrites the store file. Callers must hold the mutex.
func (r *Repo) flush() error {
	data, err := json.MarshalIndent(r.values, "", "  ")
	if err != nil {
		return errors.Wrap(err, "[filerepo.flush] json.MarshalIndent")
	}
	if err := os.WriteFile(r.path, data, 0o600); err != nil {
		return errors.Wrap(err, "[filerepo.flush] os.WriteFile")
	}
	return nil
}

var _ storage.Repo = (*Repo)(nil)
