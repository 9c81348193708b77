package usecase

import (
	"context"
	"log/slog"

	"github.com/shandysiswandi/totphog/internal/pkg/goerror"
)

type ProvisioningURIInput struct {
	ID string `json:"id" validate:"required"`
}

type ProvisioningURIOutput struct {
	URI string
}

func (s *Usecase) ProvisioningURI(ctx context.Context, in ProvisioningURIInput) (*ProvisioningURIOutput, error) {
	ctx, span := s.startSpan(ctx, "ProvisioningURI")
	defer span.End()

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	uri, ok := s.store.ProvisioningURI(in.ID)
	if !ok {
		slog.WarnContext(ctx, "credential not found", "credential_id", in.ID)
		return nil, errCredentialNotFound()
	}

	return &ProvisioningURIOutput{URI: uri}, nil
}
