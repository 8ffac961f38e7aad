// Package filestore persists donation photos on the local filesystem. It is
// intended for development and test environments where an object storage
// service is not available.
package filestore

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
)

// Store writes objects under a root directory and resolves them to URLs
// under a public base URL.
type Store struct {
	root    string
	baseURL string
}

// New initializes a Store rooted at root.
func New(root, publicBaseURL string) (*Store, error) {
	root = strings.TrimSpace(root)
	if root == "" {
		return nil, errors.New("filestore: root directory is required")
	}
	if err := os.MkdirAll(root, 0o755); err != nil {
		return nil, fmt.Errorf("filestore: ensure root: %w", err)
	}
	return &Store{root: root, baseURL: strings.TrimRight(publicBaseURL, "/")}, nil
}

// Upload writes data at key and returns its URL. The content type is implied
// by the file extension when served.
func (s *Store) Upload(ctx context.Context, key string, data []byte, _ string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	clean, err := sanitizeKey(key)
	if err != nil {
		return "", err
	}
	full := filepath.Join(s.root, filepath.FromSlash(clean))
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return "", fmt.Errorf("filestore: ensure directory: %w", err)
	}
	if err := os.WriteFile(full, data, 0o644); err != nil {
		return "", fmt.Errorf("filestore: write file: %w", err)
	}
	return s.url(clean), nil
}

// ListAndResolve returns the URLs of every file under prefix, sorted by name.
// A missing prefix directory yields an empty list.
func (s *Store) ListAndResolve(ctx context.Context, prefix string) ([]string, error) {
	clean, err := sanitizeKey(prefix)
	if err != nil {
		return nil, err
	}
	dir := filepath.Join(s.root, filepath.FromSlash(clean))

	var keys []string
	err = filepath.WalkDir(dir, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if err := ctx.Err(); err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(s.root, path)
		if err != nil {
			return err
		}
		keys = append(keys, filepath.ToSlash(rel))
		return nil
	})
	if errors.Is(err, fs.ErrNotExist) {
		return []string{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("filestore: list %s: %w", clean, err)
	}

	sort.Strings(keys)
	urls := make([]string, len(keys))
	for i, k := range keys {
		urls[i] = s.url(k)
	}
	return urls, nil
}

func (s *Store) url(key string) string {
	return s.baseURL + "/" + key
}

// sanitizeKey normalizes a key and prevents escaping the storage root.
func sanitizeKey(key string) (string, error) {
	key = strings.TrimSpace(key)
	if key == "" {
		return "", errors.New("filestore: key is required")
	}
	key = strings.ReplaceAll(key, "\\", "/")
	key = strings.TrimPrefix(key, "./")
	key = strings.TrimLeft(key, "/")
	cleaned := filepath.ToSlash(filepath.Clean(key))
	if cleaned == "." || cleaned == ".." || strings.HasPrefix(cleaned, "../") {
		return "", errors.New("filestore: invalid key")
	}
	return cleaned, nil
}
