package middleware

import (
	"strconv"

	"github.com/ChakCage/Borlas/internal/observability"

	"github.com/gofiber/fiber/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// HeaderTraceID echoes the trace of a request back to the client.
const HeaderTraceID = "X-Trace-ID"

// TracingMiddleware opens a server span per request, continuing any trace
// propagated in the request headers.
func TracingMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		carrier := propagation.MapCarrier{}
		c.Request().Header.VisitAll(func(k, v []byte) {
			carrier.Set(string(k), string(v))
		})
		parent := otel.GetTextMapPropagator().Extract(c.UserContext(), carrier)

		ctx, span := observability.Tracer.Start(parent, c.Method()+" "+c.Path(),
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", c.Method()),
				attribute.String("http.target", c.OriginalURL()),
				attribute.String("net.peer.ip", c.IP()),
			),
		)
		defer span.End()

		if sc := span.SpanContext(); sc.HasTraceID() {
			c.Locals(LocalTraceID, sc.TraceID().String())
			c.Set(HeaderTraceID, sc.TraceID().String())
		}
		c.SetUserContext(ctx)

		err := c.Next()

		status := c.Response().StatusCode()
		// Renamed after routing to the matched pattern.
		span.SetName(c.Method() + " " + c.Route().Path)
		span.SetAttributes(attribute.Int("http.status_code", status))
		if id, ok := c.Locals(LocalUserID).(uint); ok {
			span.SetAttributes(attribute.String("user.id", strconv.FormatUint(uint64(id), 10)))
		}
		if err != nil {
			span.RecordError(err)
		}
		if err != nil || status >= fiber.StatusInternalServerError {
			span.SetStatus(codes.Error, strconv.Itoa(status))
		}
		return err
	}
}
