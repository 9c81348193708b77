package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/totphog/internal/vault/entity"
)

func (s *Usecase) CodeList(ctx context.Context) ([]entity.CredentialCode, error) {
	ctx, span := s.startSpan(ctx, "CodeList")
	defer span.End()

	codes := s.store.GenerateAllCodes()
	for _, cc := range codes {
		if cc.Err != nil {
			slog.WarnContext(ctx, "failed to generate code", "credential_id", cc.Credential.ID, "error", cc.Err)
		}
	}

	return codes, nil
}
