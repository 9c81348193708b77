package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/totphog/internal/vault/entity"
)

type CredentialDeleteAllOutput struct {
	DeletedCount int
}

func (s *Usecase) CredentialDeleteAll(ctx context.Context) (*CredentialDeleteAllOutput, error) {
	ctx, span := s.startSpan(ctx, "CredentialDeleteAll")
	defer span.End()

	n, err := s.store.DeleteAll()
	if err != nil {
		return nil, s.storeError(ctx, "CredentialDeleteAll", err)
	}

	slog.InfoContext(ctx, "credentials cleared", "count", n)

	s.publish(ctx, entity.CredentialEvent{
		Type:       entity.EventCredentialCleared,
		Count:      n,
		OccurredAt: s.clock.Now(),
	})

	return &CredentialDeleteAllOutput{DeletedCount: n}, nil
}
