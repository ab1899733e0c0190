// Package store keeps uploaded media bytes and their asset records.
//
// Two backends exist: an in-memory map for tests and short-lived servers,
// and a directory on disk. New picks one from configuration.
package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"time"

	"github.com/oklog/ulid/v2"
	"github.com/sirupsen/logrus"

	"github.com/xob0t/memoria/pkg/media"
)

// ErrNotFound is returned for ids the store does not hold.
var ErrNotFound = errors.New("asset not found")

// Source prefix of assets held in a store.
const SourcePrefix = "store:"

// AssetStore persists uploaded media.
type AssetStore interface {
	// Put stores the bytes read from r under a fresh id and returns the
	// asset record, whose Source is "store:<id>".
	Put(ctx context.Context, name string, r io.Reader) (media.Asset, error)
	// Get returns the asset record.
	Get(ctx context.Context, id string) (media.Asset, error)
	// List returns all records, oldest first.
	List(ctx context.Context) ([]media.Asset, error)
	// Open returns the stored bytes.
	Open(ctx context.Context, id string) (io.ReadCloser, error)
	// Delete removes the record and its bytes.
	Delete(ctx context.Context, id string) error
}

// Storage types accepted by New.
const (
	TypeMemory     = "memory"
	TypeFilesystem = "filesystem"
)

// New returns the store for storageType. Unknown or empty types fall back
// to the in-memory store.
func New(storageType, basePath string) (AssetStore, error) {
	fields := logrus.Fields{"storageType": storageType}

	var (
		s   AssetStore
		err error
	)
	switch storageType {
	case TypeFilesystem:
		fields["basePath"] = basePath
		s, err = NewFilesystem(basePath)
		if err != nil {
			return nil, err
		}
	default:
		fields["storageType"] = "in-memory"
		s = NewMemory()
	}
	logrus.WithFields(fields).Info("Use storage")
	return s, nil
}

// newRecord builds the asset record for a fresh upload.
func newRecord(name string, size int64) media.Asset {
	id := ulid.Make().String()
	return media.Asset{
		ID:         id,
		Source:     SourcePrefix + id,
		Name:       filepath.Base(name),
		Size:       size,
		UploadedAt: time.Now().UTC(),
		Kind:       media.KindOf(name),
	}
}

func notFound(id string) error {
	return fmt.Errorf("%w: %s", ErrNotFound, id)
}
