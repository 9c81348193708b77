package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/totphog/internal/pkg/goerror"
	"github.com/shandysiswandi/totphog/internal/vault/entity"
)

type CredentialDetailInput struct {
	ID string `json:"id" validate:"required"`
}

func (s *Usecase) CredentialDetail(ctx context.Context, in CredentialDetailInput) (*entity.Credential, error) {
	ctx, span := s.startSpan(ctx, "CredentialDetail")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	cred, ok := s.store.Get(in.ID)
	if !ok {
		slog.WarnContext(ctx, "credential not found", "credential_id", in.ID)
		return nil, errCredentialNotFound()
	}

	return &cred, nil
}
