package file

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"os"
	"path/filepath"

	"taskboard/internal/core/port"
	tel "taskboard/internal/core/telemetry"
)

const backend = "file"

// fileRepository stores each key as <dir>/<escaped key>.json.
type fileRepository struct {
	dir       string
	telemetry port.Telemetry
}

func NewFileRepository(dir string, telemetry port.Telemetry) (port.StateRepository, error) {
	if dir == "" {
		return nil, errors.New("data directory is not set")
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("create data directory: %w", err)
	}

	if telemetry == nil {
		telemetry = tel.NewNoOpProbe()
	}

	return &fileRepository{dir: dir, telemetry: telemetry}, nil
}

func (r *fileRepository) path(key string) string {
	return filepath.Join(r.dir, url.PathEscape(key)+".json")
}

// Put writes through a temp file and rename so readers never see a partial blob.
func (r *fileRepository) Put(ctx context.Context, key string, value []byte) (err error) {
	op := tel.StartOperation(r.telemetry, ctx, "Put", backend)
	defer func() { op.End(err) }()

	tmp, err := os.CreateTemp(r.dir, ".state-*")
	if err != nil {
		return fmt.Errorf("create temp file: %w", err)
	}
	defer os.Remove(tmp.Name())

	if _, err = tmp.Write(value); err != nil {
		tmp.Close()
		return fmt.Errorf("write state: %w", err)
	}

	if err = tmp.Close(); err != nil {
		return fmt.Errorf("close state: %w", err)
	}

	if err = os.Rename(tmp.Name(), r.path(key)); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}

	return nil
}

func (r *fileRepository) Get(ctx context.Context, key string) (value []byte, err error) {
	op := tel.StartOperation(r.telemetry, ctx, "Get", backend)
	defer func() { op.End(err) }()

	value, err = os.ReadFile(r.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return nil, port.ErrStateNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("read state: %w", err)
	}

	return value, nil
}

func (r *fileRepository) Delete(ctx context.Context, key string) (err error) {
	op := tel.StartOperation(r.telemetry, ctx, "Delete", backend)
	defer func() { op.End(err) }()

	if err = os.Remove(r.path(key)); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove state: %w", err)
	}

	return nil
}

func (r *fileRepository) Has(ctx context.Context, key string) (bool, error) {
	_, err := os.Stat(r.path(key))
	if errors.Is(err, os.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("stat state: %w", err)
	}

	return true, nil
}

func (r *fileRepository) Close() error {
	return nil
}
