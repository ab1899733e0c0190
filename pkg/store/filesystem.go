package store

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/pkg/media"
)

const recordExt = ".json"

// fsStore keeps each asset as two files: <id> with the bytes and
// <id>.json with the record.
type fsStore struct {
	basePath string
}

// NewFilesystem returns a store rooted at basePath, creating it if needed.
func NewFilesystem(basePath string) (AssetStore, error) {
	if basePath == "" {
		return nil, fmt.Errorf("filesystem storage needs a base path")
	}
	if err := os.MkdirAll(basePath, 0755); err != nil {
		return nil, fmt.Errorf("failed to create base directory: %w", err)
	}
	return &fsStore{basePath: basePath}, nil
}

// path returns the blob path for id. Ids are ULIDs; anything else is
// rejected so a request cannot name a file outside basePath.
func (s *fsStore) path(id string) (string, error) {
	if _, err := ulid.ParseStrict(id); err != nil {
		return "", notFound(id)
	}
	return filepath.Join(s.basePath, id), nil
}

func (s *fsStore) Put(ctx context.Context, name string, r io.Reader) (media.Asset, error) {
	a := newRecord(name, 0)
	blob := filepath.Join(s.basePath, a.ID)
	log := logrus.WithFields(logrus.Fields{
		"asset_id":  a.ID,
		"file_path": blob,
	})

	f, err := os.Create(blob)
	if err != nil {
		log.WithError(err).Error("Failed to create asset file")
		return media.Asset{}, err
	}
	n, err := io.Copy(f, r)
	if cerr := f.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		os.Remove(blob)
		log.WithError(err).Error("Failed to write asset file")
		return media.Asset{}, err
	}
	a.Size = n

	if err := s.writeRecord(a); err != nil {
		os.Remove(blob)
		log.WithError(err).Error("Failed to write asset record")
		return media.Asset{}, err
	}
	log.WithField("data_length", n).Info("Asset stored successfully")
	return a, nil
}

func (s *fsStore) writeRecord(a media.Asset) error {
	data, err := json.Marshal(a)
	if err != nil {
		return err
	}
	return os.WriteFile(filepath.Join(s.basePath, a.ID+recordExt), data, 0644)
}

func (s *fsStore) Get(ctx context.Context, id string) (media.Asset, error) {
	p, err := s.path(id)
	if err != nil {
		return media.Asset{}, err
	}
	data, err := os.ReadFile(p + recordExt)
	if err != nil {
		if os.IsNotExist(err) {
			return media.Asset{}, notFound(id)
		}
		return media.Asset{}, err
	}
	var a media.Asset
	if err := json.Unmarshal(data, &a); err != nil {
		return media.Asset{}, fmt.Errorf("corrupt record %s: %w", id, err)
	}
	return a, nil
}

func (s *fsStore) List(ctx context.Context) ([]media.Asset, error) {
	files, err := os.ReadDir(s.basePath)
	if err != nil {
		return nil, err
	}

	out := make([]media.Asset, 0, len(files)/2)
	for _, file := range files {
		name := file.Name()
		if file.IsDir() || !strings.HasSuffix(name, recordExt) {
			continue
		}
		a, err := s.Get(ctx, strings.TrimSuffix(name, recordExt))
		if err != nil {
			logrus.WithError(err).Warnf("Failed to read asset record %s, skipping", name)
			continue
		}
		out = append(out, a)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (s *fsStore) Open(ctx context.Context, id string) (io.ReadCloser, error) {
	p, err := s.path(id)
	if err != nil {
		return nil, err
	}
	f, err := os.Open(p)
	if err != nil {
		if os.IsNotExist(err) {
			logrus.WithField("asset_id", id).Warn("Asset with specified ID not found")
			return nil, notFound(id)
		}
		return nil, err
	}
	return f, nil
}

func (s *fsStore) Delete(ctx context.Context, id string) error {
	p, err := s.path(id)
	if err != nil {
		return err
	}
	if err := os.Remove(p + recordExt); err != nil {
		if os.IsNotExist(err) {
			return notFound(id)
		}
		return err
	}
	if err := os.Remove(p); err != nil && !os.IsNotExist(err) {
		return err
	}
	logrus.WithField("asset_id", id).Info("Asset deleted successfully")
	return nil
}
