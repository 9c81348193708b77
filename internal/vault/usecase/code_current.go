package usecase

import (
	"context"
	"log/slog"
	"time"

	"github.com/shandysiswandi/totphog/internal/pkg/goerror"
	"github.com/shandysiswandi/totphog/internal/vault/entity"
)

// CodeCurrentInput asks for the code of one credential. A zero At means now.
type CodeCurrentInput struct {
	ID string `json:"id" validate:"required"`
	At time.Time
}

func (s *Usecase) CodeCurrent(ctx context.Context, in CodeCurrentInput) (*entity.CodeResult, error) {
	ctx, span := s.startSpan(ctx, "CodeCurrent")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	at := in.At
	if at.IsZero() {
		at = s.clock.Now()
	}

	res, ok, err := s.store.GenerateCodeAt(in.ID, at)
	if !ok {
		slog.WarnContext(ctx, "credential not found", "credential_id", in.ID)
		return nil, errCredentialNotFound()
	}
	if err != nil {
		return nil, s.storeError(ctx, "CodeCurrent", err)
	}

	return &res, nil
}
