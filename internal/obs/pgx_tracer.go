package obs

import (
	"context"
	"strings"

	"github.com/jackc/pgx/v5"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

const maxStatementLen = 256

// PGXTracer is a pgx.QueryTracer emitting one client span per statement. Spans are
// named after the sqlc query ("-- name: GetPartnerByID :one") when present.
type PGXTracer struct{}

func (PGXTracer) TraceQueryStart(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryStartData) context.Context {
	name, statement := splitQueryName(data.SQL)
	if len(statement) > maxStatementLen {
		statement = statement[:maxStatementLen] + "..."
	}
	ctx, _ = otel.Tracer("fulfillment-fees/pgx").Start(ctx, "db "+name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("db.system", "postgresql"),
			attribute.String("db.operation.name", name),
			attribute.String("db.query.text", statement),
		),
	)
	return ctx
}

func (PGXTracer) TraceQueryEnd(ctx context.Context, _ *pgx.Conn, data pgx.TraceQueryEndData) {
	span := trace.SpanFromContext(ctx)
	if data.Err != nil {
		span.RecordError(data.Err)
		span.SetStatus(codes.Error, data.Err.Error())
	} else {
		span.SetAttributes(attribute.Int64("db.rows_affected", data.CommandTag.RowsAffected()))
	}
	span.End()
}

// splitQueryName separates the sqlc name comment from the statement. Statements
// without one are named by their leading keyword.
func splitQueryName(sql string) (string, string) {
	sql = strings.TrimSpace(sql)
	if rest, ok := strings.CutPrefix(sql, "-- name:"); ok {
		header, body, _ := strings.Cut(rest, "\n")
		if fields := strings.Fields(header); len(fields) > 0 {
			return fields[0], strings.TrimSpace(body)
		}
	}
	if fields := strings.Fields(sql); len(fields) > 0 {
		return strings.ToUpper(fields[0]), sql
	}
	return "query", sql
}
