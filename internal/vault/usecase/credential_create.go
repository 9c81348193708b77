package usecase

import (
	"context"
	"log/slog"
	"strings"

	"github.com/shandysiswandi/totphog/internal/pkg/goerror"
	"github.com/shandysiswandi/totphog/internal/vault/entity"
)

// CredentialCreateInput adds a credential either from an otpauth URI or from
// explicit fields. URI wins when both are given.
type CredentialCreateInput struct {
	URI       string `json:"uri" validate:"omitempty,max=4096"`
	Name      string `json:"name" validate:"required_without=URI,max=255"`
	Secret    string `json:"secret" validate:"required_without=URI,omitempty,base32"`
	Issuer    string `json:"issuer" validate:"max=255"`
	Digits    int    `json:"digits" validate:"omitempty,min=1,max=10"`
	Period    int    `json:"period" validate:"omitempty,min=1"`
	Algorithm string `json:"algorithm" validate:"omitempty,otpalg"`
}

func (s *Usecase) CredentialCreate(ctx context.Context, in CredentialCreateInput) (*entity.Credential, error) {
	ctx, span := s.startSpan(ctx, "CredentialCreate")
	defer span.End()

	in.URI = strings.TrimSpace(in.URI)
	in.Secret = strings.TrimSpace(in.Secret)

	if err := s.validator.Validate(in); err != nil {
		return nil, goerror.NewInvalidInput(err)
	}

	var (
		cred entity.Credential
		err  error
	)

	if in.URI != "" {
		cred, err = s.store.AddFromURI(in.URI)
	} else {
		cred, err = s.store.Add(entity.NewCredential{
			Name:      in.Name,
			Secret:    in.Secret,
			Issuer:    in.Issuer,
			Digits:    in.Digits,
			Period:    in.Period,
			Algorithm: in.Algorithm,
		})
	}
	if err != nil {
		return nil, s.storeError(ctx, "CredentialCreate", err)
	}

	slog.InfoContext(ctx, "credential created", "credential_id", cred.ID, "issuer", cred.Issuer)

	s.publish(ctx, entity.CredentialEvent{
		Type:         entity.EventCredentialCreated,
		CredentialID: cred.ID,
		Name:         cred.Name,
		Issuer:       cred.Issuer,
		Count:        1,
		OccurredAt:   s.clock.Now(),
	})

	return &cred, nil
}
