package usecase

import (
	"context"
	"errors"
	"log/slog"

	"github.com/shandysiswandi/totphog/internal/pkg/goerror"
	"github.com/shandysiswandi/totphog/internal/pkg/storage"
	"github.com/shandysiswandi/totphog/internal/vault/entity"
)

const defaultSnapshotLimit = 50

// SnapshotExport uploads the current credential file to object storage.
func (s *Usecase) SnapshotExport(ctx context.Context) (*entity.Snapshot, error) {
	ctx, span := s.startSpan(ctx, "SnapshotExport")
	defer span.End()

	body, count, err := s.store.Export()
	if err != nil {
		slog.ErrorContext(ctx, "failed to export credentials", "error", err)
		return nil, goerror.NewServer(err)
	}

	snap, err := s.repoArchive.Upload(ctx, s.clock.Now(), body, count)
	if err != nil {
		return nil, s.archiveError(ctx, "upload", err)
	}

	slog.InfoContext(ctx, "snapshot exported", "bucket", snap.Bucket, "key", snap.Key, "count", snap.Count)

	return snap, nil
}

type SnapshotListInput struct {
	Limit int `json:"limit" validate:"gte=0,lte=1000"`
}

func (s *Usecase) SnapshotList(ctx context.Context, in SnapshotListInput) ([]entity.Snapshot, error) {
	ctx, span := s.startSpan(ctx, "SnapshotList")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	if in.Limit == 0 {
		in.Limit = defaultSnapshotLimit
	}

	snaps, err := s.repoArchive.List(ctx, in.Limit)
	if err != nil {
		return nil, s.archiveError(ctx, "list", err)
	}

	return snaps, nil
}

type SnapshotDownloadInput struct {
	Key string `json:"key" validate:"required,max=1024"`
}

func (s *Usecase) SnapshotDownload(ctx context.Context, in SnapshotDownloadInput) ([]byte, error) {
	ctx, span := s.startSpan(ctx, "SnapshotDownload")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	data, err := s.repoArchive.Download(ctx, in.Key)
	if err != nil {
		return nil, s.archiveError(ctx, "download", err)
	}

	return data, nil
}

func (s *Usecase) archiveError(ctx context.Context, op string, err error) error {
	switch {
	case errors.Is(err, storage.ErrDisabled):
		return goerror.NewBusinessWrap(err, "Snapshot storage is not configured", goerror.CodeUnavailable)
	case errors.Is(err, storage.ErrObjectNotFound):
		return goerror.NewBusinessWrap(err, "Snapshot not found", goerror.CodeNotFound)
	default:
		slog.ErrorContext(ctx, "snapshot archive failed", "op", op, "error", err)
		return goerror.NewServer(err)
	}
}
