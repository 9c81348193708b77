package storage

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
)

// Supported values for the storage.driver setting.
const (
	DriverNone   = ""
	DriverMemory = "memory"
	DriverS3     = "s3"
	DriverGCS    = "gcs"
	DriverMinIO  = "minio"
)

// ErrUnknownDriver indicates an unsupported storage driver.
var ErrUnknownDriver = errors.New("storage: unknown driver")

// FactoryOptions carries per-backend settings. Only the block matching the
// selected driver is read.
type FactoryOptions struct {
	S3    S3Options
	GCS   GCSOptions
	MinIO MinIOOptions
}

type constructor func(ctx context.Context, opts FactoryOptions) (Storage, error)

var drivers = map[string]constructor{
	DriverNone:   func(context.Context, FactoryOptions) (Storage, error) { return NewNoop(), nil },
	DriverMemory: func(context.Context, FactoryOptions) (Storage, error) { return NewMemory(), nil },
	DriverS3:     func(ctx context.Context, o FactoryOptions) (Storage, error) { return NewS3(ctx, o.S3) },
	DriverGCS:    func(ctx context.Context, o FactoryOptions) (Storage, error) { return NewGCS(ctx, o.GCS) },
	DriverMinIO:  func(_ context.Context, o FactoryOptions) (Storage, error) { return NewMinIO(o.MinIO) },
}

// NormalizeDriver lowercases and trims a configured driver name. "none" is
// accepted as an alias for DriverNone.
func NormalizeDriver(driver string) string {
	d := strings.ToLower(strings.TrimSpace(driver))
	if d == "none" {
		return DriverNone
	}
	return d
}

// Drivers lists the accepted driver names, excluding DriverNone.
func Drivers() []string {
	out := make([]string, 0, len(drivers))
	for name := range drivers {
		if name != DriverNone {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out
}

// NewFromDriver constructs a Storage implementation by driver name.
func NewFromDriver(ctx context.Context, driver string, opts FactoryOptions) (Storage, error) {
	newStorage, ok := drivers[NormalizeDriver(driver)]
	if !ok {
		return nil, fmt.Errorf("%w: %q (want one of %s)", ErrUnknownDriver, driver, strings.Join(Drivers(), ", "))
	}
	return newStorage(ctx, opts)
}
