package mq

import (
	"context"
	"encoding/json"

	"github.com/shandysiswandi/totphog/internal/pkg/instrument"
	"github.com/shandysiswandi/totphog/internal/pkg/messaging"
	"github.com/shandysiswandi/totphog/internal/shared/event"
	"github.com/shandysiswandi/totphog/internal/vault/entity"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
)

const keyOfCorrelationID string = "cID"

type Messaging struct {
	client      messaging.Publisher
	ins         instrument.Instrumentation
	destination string
}

// NewMessaging publishes credential events to destination, or to
// event.CredentialDestination when destination is empty.
func NewMessaging(client messaging.Publisher, ins instrument.Instrumentation, destination string) *Messaging {
	if destination == "" {
		destination = event.CredentialDestination
	}

	return &Messaging{client: client, ins: ins, destination: destination}
}

func (m *Messaging) PublishCredentialEvent(ctx context.Context, ev entity.CredentialEvent) error {
	ctx, span := m.ins.Tracer("vault.outbound.mq").Start(ctx, "PublishCredentialEvent")
	defer span.End()

	span.SetAttributes(
		attribute.String("event.type", string(ev.Type)),
		attribute.String("messaging.destination", m.destination),
	)

	body, err := json.Marshal(event.CredentialMessage{
		Type:         string(ev.Type),
		CredentialID: ev.CredentialID,
		Name:         ev.Name,
		Issuer:       ev.Issuer,
		Count:        ev.Count,
		OccurredAt:   ev.OccurredAt.UTC(),
	})
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	msg := messaging.OutgoingMessage{
		Body:        body,
		Key:         []byte(ev.CredentialID),
		OrderingKey: ev.CredentialID,
	}
	if cID := instrument.GetCorrelationID(ctx); cID != "" {
		msg.Headers = []messaging.Header{{Key: keyOfCorrelationID, Value: []byte(cID)}}
	}

	if _, err := m.client.Publish(ctx, m.destination, msg); err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		return err
	}

	return nil
}
