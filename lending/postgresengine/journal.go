package postgresengine

import (
	"context"

	"github.com/doug-martin/goqu/v9"
	"github.com/google/uuid"
	jsoniter "github.com/json-iterator/go"

	"github.com/libsys/lending-engine-go/lending"
)

var marshal = jsoniter.ConfigFastest

// AppendEvent appends a domain event to the lending journal. The journal is
// append-only; events are never updated or deleted.
func (s *Store) AppendEvent(ctx context.Context, event lending.DomainEvent) error {
	payload, marshalErr := marshal.Marshal(event)
	if marshalErr != nil {
		return operationError(marshalErr)
	}

	sqlQuery, _, toSQLErr := builder().
		Insert(s.table(lending.TableEvents)).
		Rows(goqu.Record{
			colID:         uuid.New().String(),
			colEventType:  event.EventType(),
			colOccurredAt: event.HasOccurredAt(),
			colPayload:    goqu.L("?::jsonb", string(payload)),
		}).
		ToSQL()
	if toSQLErr != nil {
		return operationError(toSQLErr)
	}

	if _, err := s.executeExec(ctx, sqlQuery); err != nil {
		return operationError(err)
	}

	s.logOperation(ctx, "appended event", logAttrTable, lending.TableEvents, "event_type", event.EventType())

	return nil
}
