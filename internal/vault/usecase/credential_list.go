package usecase

import (
	"context"

	"github.com/shandysiswandi/totphog/internal/vault/entity"
)

func (s *Usecase) CredentialList(ctx context.Context) ([]entity.Credential, error) {
	_, span := s.startSpan(ctx, "CredentialList")
	defer span.End()

	return s.store.GetAll(), nil
}
