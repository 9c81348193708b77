// Package archive stores credential snapshots in object storage.
package archive

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/samber/lo"
	"github.com/shandysiswandi/totphog/internal/pkg/instrument"
	"github.com/shandysiswandi/totphog/internal/pkg/storage"
	"github.com/shandysiswandi/totphog/internal/vault/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const (
	keyTimeLayout   = "20060102T150405Z"
	metaCount       = "credential-count"
	contentTypeJSON = "application/json"

	// snapshots are small; anything larger was not written by us
	maxSnapshotSize = 32 << 20
)

type Archive struct {
	client storage.Storage
	ins    instrument.Instrumentation
	bucket string
	prefix string
}

func NewArchive(client storage.Storage, ins instrument.Instrumentation, bucket, prefix string) *Archive {
	return &Archive{
		client: client,
		ins:    ins,
		bucket: bucket,
		prefix: strings.Trim(prefix, "/"),
	}
}

// Key returns the object key of a snapshot taken at at.
func (a *Archive) Key(at time.Time) string {
	name := "tokens-" + at.UTC().Format(keyTimeLayout) + ".json"
	if a.prefix == "" {
		return name
	}
	return path.Join(a.prefix, name)
}

func (a *Archive) Upload(ctx context.Context, at time.Time, body []byte, count int) (*entity.Snapshot, error) {
	ctx, span := a.startSpan(ctx, "Upload")
	defer span.End()

	key := a.Key(at)
	span.SetAttributes(attribute.String("storage.key", key))

	info, err := a.client.PutObject(ctx, a.bucket, key, bytes.NewReader(body), storage.PutOptions{
		Size:        int64(len(body)),
		ContentType: contentTypeJSON,
		Metadata:    map[string]string{metaCount: strconv.Itoa(count)},
	})
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	size := info.Size
	if size == 0 {
		size = int64(len(body))
	}

	return &entity.Snapshot{
		Bucket:    a.bucket,
		Key:       key,
		Size:      size,
		Count:     count,
		CreatedAt: at.UTC(),
	}, nil
}

// List returns snapshots newest first.
func (a *Archive) List(ctx context.Context, limit int) ([]entity.Snapshot, error) {
	ctx, span := a.startSpan(ctx, "List")
	defer span.End()

	prefix := "tokens-"
	if a.prefix != "" {
		prefix = a.prefix + "/tokens-"
	}

	objects, err := a.client.ListObjects(ctx, a.bucket, prefix, storage.ListOptions{})
	if err != nil {
		recordError(span, err)
		return nil, err
	}

	snaps := lo.FilterMap(objects, func(o storage.ObjectInfo, _ int) (entity.Snapshot, bool) {
		at, ok := a.parseKey(o.Key)
		if !ok {
			return entity.Snapshot{}, false
		}

		count, _ := strconv.Atoi(o.Metadata[metaCount])
		return entity.Snapshot{
			Bucket:    a.bucket,
			Key:       o.Key,
			Size:      o.Size,
			Count:     count,
			CreatedAt: at,
		}, true
	})

	// keys sort by time, so reversing the lexical order puts the newest first
	slices.Reverse(snaps)
	if limit > 0 && len(snaps) > limit {
		snaps = snaps[:limit]
	}

	return snaps, nil
}

func (a *Archive) Download(ctx context.Context, key string) ([]byte, error) {
	ctx, span := a.startSpan(ctx, "Download")
	defer span.End()

	if _, ok := a.parseKey(key); !ok {
		return nil, storage.ErrObjectNotFound
	}

	rc, _, err := a.client.GetObject(ctx, a.bucket, key)
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	defer rc.Close()

	data, err := io.ReadAll(io.LimitReader(rc, maxSnapshotSize+1))
	if err != nil {
		recordError(span, err)
		return nil, err
	}
	if len(data) > maxSnapshotSize {
		err := fmt.Errorf("archive: snapshot %s exceeds %d bytes", key, maxSnapshotSize)
		recordError(span, err)
		return nil, err
	}

	return data, nil
}

// parseKey accepts only keys produced by Key under this archive's prefix.
func (a *Archive) parseKey(key string) (time.Time, bool) {
	name := key
	if a.prefix != "" {
		rest, ok := strings.CutPrefix(key, a.prefix+"/")
		if !ok {
			return time.Time{}, false
		}
		name = rest
	}

	stamp, ok := strings.CutPrefix(name, "tokens-")
	if !ok {
		return time.Time{}, false
	}
	stamp, ok = strings.CutSuffix(stamp, ".json")
	if !ok {
		return time.Time{}, false
	}

	at, err := time.Parse(keyTimeLayout, stamp)
	if err != nil {
		return time.Time{}, false
	}

	return at, true
}

func (a *Archive) startSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	ctx, span := a.ins.Tracer("vault.outbound.archive").Start(ctx, name)
	span.SetAttributes(attribute.String("storage.bucket", a.bucket))
	return ctx, span
}

func recordError(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}
