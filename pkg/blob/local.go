package blob

import (
	"context"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
)

// localStore keeps blobs on the local filesystem. Development only.
type localStore struct {
	root    string // absolute root directory
	baseURL string
}

func newLocalStore(root, baseURL string) *localStore {
	if !filepath.IsAbs(root) {
		cwd, _ := os.Getwd()
		root = filepath.Join(cwd, root)
	}
	return &localStore{
		root:    root,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

func (s *localStore) Store(_ context.Context, data []byte, filename, _ string) (string, error) {
	ref := uuid.NewString() + path.Ext(filename)

	full := filepath.Join(s.root, ref)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("blob/local: mkdir: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("blob/local: write %s: %w", ref, err)
	}
	return ref, nil
}

func (s *localStore) Delete(_ context.Context, ref string) error {
	err := os.Remove(filepath.Join(s.root, filepath.FromSlash(ref)))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("blob/local: delete %s: %w", ref, err)
	}
	return nil
}

func (s *localStore) URL(ref string) string {
	return s.baseURL + "/" + strings.TrimLeft(filepath.ToSlash(ref), "/")
}
