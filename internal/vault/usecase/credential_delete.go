package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/totphog/internal/pkg/goerror"
	"github.com/shandysiswandi/totphog/internal/vault/entity"
)

type CredentialDeleteInput struct {
	ID string `json:"id" validate:"required"`
}

func (s *Usecase) CredentialDelete(ctx context.Context, in CredentialDeleteInput) error {
	ctx, span := s.startSpan(ctx, "CredentialDelete")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return goerror.NewInvalidInput(err)
	}

	cred, found := s.store.Get(in.ID)
	if !found {
		slog.WarnContext(ctx, "credential not found", "credential_id", in.ID)
		return errCredentialNotFound()
	}

	ok, err := s.store.Delete(in.ID)
	if err != nil {
		return s.storeError(ctx, "CredentialDelete", err)
	}
	if !ok {
		return errCredentialNotFound()
	}

	slog.InfoContext(ctx, "credential deleted", "credential_id", in.ID)

	s.publish(ctx, entity.CredentialEvent{
		Type:         entity.EventCredentialDeleted,
		CredentialID: cred.ID,
		Name:         cred.Name,
		Issuer:       cred.Issuer,
		Count:        1,
		OccurredAt:   s.clock.Now(),
	})

	return nil
}
