package vault

import (
	"github.com/shandysiswandi/totphog/internal/pkg/clock"
	"github.com/shandysiswandi/totphog/internal/pkg/config"
	"github.com/shandysiswandi/totphog/internal/pkg/goroutine"
	"github.com/shandysiswandi/totphog/internal/pkg/instrument"
	"github.com/shandysiswandi/totphog/internal/pkg/messaging"
	"github.com/shandysiswandi/totphog/internal/pkg/otp"
	"github.com/shandysiswandi/totphog/internal/pkg/router"
	"github.com/shandysiswandi/totphog/internal/pkg/storage"
	"github.com/shandysiswandi/totphog/internal/pkg/validator"
	"github.com/shandysiswandi/totphog/internal/vault/inbound"
	"github.com/shandysiswandi/totphog/internal/vault/outbound/archive"
	"github.com/shandysiswandi/totphog/internal/vault/outbound/mq"
	"github.com/shandysiswandi/totphog/internal/vault/store"
	"github.com/shandysiswandi/totphog/internal/vault/usecase"
)

type Dependency struct {
	Store      *store.Store               `validate:"required"`
	Goroutine  *goroutine.Manager         `validate:"required"`
	Router     *router.Router             `validate:"required"`
	Messaging  messaging.Publisher        `validate:"required"`
	Storage    storage.Storage            `validate:"required"`
	Config     config.Config              `validate:"required"`
	Instrument instrument.Instrumentation `validate:"required"`
	Clock      clock.Clocker              `validate:"required"`
	Totp       otp.OTP                    `validate:"required"`
	Validator  validator.Validator        `validate:"required"`
}

func New(dep Dependency) error {
	if err := dep.Validator.Validate(dep); err != nil {
		return err
	}

	repoMsg := mq.NewMessaging(dep.Messaging, dep.Instrument, dep.Config.GetString("messaging.destination"))
	repoArchive := archive.NewArchive(
		dep.Storage,
		dep.Instrument,
		dep.Config.GetString("storage.bucket"),
		dep.Config.GetString("storage.prefix"),
	)

	uc := usecase.New(usecase.Dependency{
		Store:         dep.Store,
		RepoMessaging: repoMsg,
		RepoArchive:   repoArchive,
		Validator:     dep.Validator,
		Totp:          dep.Totp,
		Clock:         dep.Clock,
		Instrument:    dep.Instrument,
		Goroutine:     dep.Goroutine,
	})

	inbound.RegisterHTTPEndpoint(dep.Router, uc, dep.Config, dep.Clock)

	return nil
}
