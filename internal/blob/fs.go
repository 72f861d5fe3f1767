package blob

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

const metaSuffix = ".meta.json"

// FilesystemStore persists blobs under a root directory. Each blob is a data
// file plus a JSON sidecar carrying content type and user metadata.
type FilesystemStore struct {
	root string
}

// NewFilesystemStore creates (if needed) the root directory and returns a
// store over it.
func NewFilesystemStore(root string) (*FilesystemStore, error) {
	if root == "" {
		root = "compath-artifacts"
	}
	if err := os.MkdirAll(root, 0o750); err != nil {
		return nil, fmt.Errorf("create blob root: %w", err)
	}
	return &FilesystemStore{root: root}, nil
}

// Driver reports the backend identity.
func (s *FilesystemStore) Driver() Driver { return DriverFilesystem }

// Root returns the configured root directory.
func (s *FilesystemStore) Root() string { return s.root }

func (s *FilesystemStore) pathFor(key string) (string, error) {
	clean := filepath.Clean(filepath.FromSlash(key))
	if clean == "." || strings.HasPrefix(clean, "..") || filepath.IsAbs(clean) {
		return "", fmt.Errorf("invalid blob key %q", key)
	}
	return filepath.Join(s.root, clean), nil
}

// Put stores a new blob; the key must not exist yet.
func (s *FilesystemStore) Put(_ context.Context, key string, r io.Reader, opts PutOptions) (Info, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return Info{}, err
	}
	if _, err := os.Stat(path); err == nil {
		return Info{}, fmt.Errorf("%w: %s", ErrExists, key)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o750); err != nil {
		return Info{}, fmt.Errorf("create blob dirs: %w", err)
	}
	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o640)
	if err != nil {
		return Info{}, fmt.Errorf("create blob: %w", err)
	}
	size, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		_ = os.Remove(path)
		return Info{}, fmt.Errorf("write blob: %w", err)
	}
	info := Info{
		Key:          key,
		Size:         size,
		ContentType:  opts.ContentType,
		Metadata:     cloneMetadata(opts.Metadata),
		LastModified: time.Now().UTC(),
	}
	meta, err := json.Marshal(info)
	if err != nil {
		_ = os.Remove(path)
		return Info{}, fmt.Errorf("encode blob meta: %w", err)
	}
	if err := os.WriteFile(path+metaSuffix, meta, 0o640); err != nil {
		_ = os.Remove(path)
		return Info{}, fmt.Errorf("write blob meta: %w", err)
	}
	return info, nil
}

// Get returns the blob info and an open payload reader.
func (s *FilesystemStore) Get(ctx context.Context, key string) (Info, io.ReadCloser, error) {
	info, err := s.Head(ctx, key)
	if err != nil {
		return Info{}, nil, err
	}
	path, err := s.pathFor(key)
	if err != nil {
		return Info{}, nil, err
	}
	f, err := os.Open(path)
	if err != nil {
		return Info{}, nil, fmt.Errorf("open blob: %w", err)
	}
	return info, f, nil
}

// Head returns the blob info without the payload.
func (s *FilesystemStore) Head(_ context.Context, key string) (Info, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return Info{}, err
	}
	meta, err := os.ReadFile(path + metaSuffix)
	if err != nil {
		if os.IsNotExist(err) {
			return Info{}, fmt.Errorf("%w: %s", ErrNotFound, key)
		}
		return Info{}, fmt.Errorf("read blob meta: %w", err)
	}
	var info Info
	if err := json.Unmarshal(meta, &info); err != nil {
		return Info{}, fmt.Errorf("decode blob meta: %w", err)
	}
	return info, nil
}

// Delete removes the blob and its sidecar, reporting whether it existed.
func (s *FilesystemStore) Delete(_ context.Context, key string) (bool, error) {
	path, err := s.pathFor(key)
	if err != nil {
		return false, err
	}
	if err := os.Remove(path); err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, fmt.Errorf("remove blob: %w", err)
	}
	_ = os.Remove(path + metaSuffix)
	return true, nil
}

// List walks the root and returns infos for keys with the given prefix, in
// key order.
func (s *FilesystemStore) List(_ context.Context, prefix string) ([]Info, error) {
	var out []Info
	err := filepath.WalkDir(s.root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() || !strings.HasSuffix(path, metaSuffix) {
			return nil
		}
		meta, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("read blob meta: %w", err)
		}
		var info Info
		if err := json.Unmarshal(meta, &info); err != nil {
			return fmt.Errorf("decode blob meta: %w", err)
		}
		if strings.HasPrefix(info.Key, prefix) {
			out = append(out, info)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Key < out[j].Key })
	return out, nil
}
