package database

import (
	"errors"

	"github.com/huzidev/dev-forum-api/internal/observability"

	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"
)

const queryTraceKey = "forum:query_trace"

type queryTrace struct {
	span trace.Span
	done func()
}

// RegisterTracing wraps every gorm statement in a repository span and
// records its latency by operation and table.
func RegisterTracing(db *gorm.DB) error {
	cb := db.Callback()
	return errors.Join(
		cb.Create().Before("gorm:create").Register("forum:trace_create", beginQuery("insert")),
		cb.Create().After("gorm:create").Register("forum:trace_create_end", endQuery),
		cb.Query().Before("gorm:query").Register("forum:trace_query", beginQuery("select")),
		cb.Query().After("gorm:query").Register("forum:trace_query_end", endQuery),
		cb.Update().Before("gorm:update").Register("forum:trace_update", beginQuery("update")),
		cb.Update().After("gorm:update").Register("forum:trace_update_end", endQuery),
		cb.Delete().Before("gorm:delete").Register("forum:trace_delete", beginQuery("delete")),
		cb.Delete().After("gorm:delete").Register("forum:trace_delete_end", endQuery),
		cb.Row().Before("gorm:row").Register("forum:trace_row", beginQuery("")),
		cb.Row().After("gorm:row").Register("forum:trace_row_end", endQuery),
		cb.Raw().Before("gorm:raw").Register("forum:trace_raw", beginQuery("")),
		cb.Raw().After("gorm:raw").Register("forum:trace_raw_end", endQuery),
	)
}

// beginQuery starts the span. An empty op is derived from the raw SQL.
func beginQuery(op string) func(*gorm.DB) {
	return func(tx *gorm.DB) {
		kind := op
		if kind == "" {
			kind = statementKind(tx.Statement.SQL.String())
		}
		table := tx.Statement.Table
		if table == "" {
			table = "raw"
		}
		ctx, span := observability.TraceRepository(tx.Statement.Context, tx.Dialector.Name(), kind, table)
		tx.Statement.Context = ctx
		tx.InstanceSet(queryTraceKey, &queryTrace{span: span, done: observability.TrackQuery(kind, table)})
	}
}

func endQuery(tx *gorm.DB) {
	v, ok := tx.InstanceGet(queryTraceKey)
	if !ok {
		return
	}
	qt, ok := v.(*queryTrace)
	if !ok {
		return
	}
	qt.done()
	if tx.Error != nil && !errors.Is(tx.Error, gorm.ErrRecordNotFound) {
		observability.RecordErrorInContext(tx.Statement.Context, tx.Error)
	}
	qt.span.End()
}
