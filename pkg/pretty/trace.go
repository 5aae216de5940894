package pretty

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"
)

// SpanEventName names the event TraceSpan adds.
const SpanEventName = "vergen.build_info"

// Trace logs the banners and values. Banner lines go out at their own level,
// values at the configured one. Styles are not applied.
func (p *Pretty) Trace(log *zap.Logger) {
	if log == nil {
		return
	}
	if p.prefix != nil {
		for _, line := range p.prefix.Lines {
			log.Log(p.prefix.Level, line)
		}
	}
	vars := p.Vars()
	lw, cw := widths(vars)
	for _, v := range vars {
		log.Log(p.level, p.keyText(v, lw, cw)+": "+v.Value,
			zap.String("key", v.Key),
			zap.String("value", v.Value),
		)
	}
	if p.suffix != nil {
		for _, line := range p.suffix.Lines {
			log.Log(p.suffix.Level, line)
		}
	}
}

// TraceSpan records the values as one event on the span in ctx. It does
// nothing when ctx carries no recording span.
func (p *Pretty) TraceSpan(ctx context.Context) {
	span := trace.SpanFromContext(ctx)
	if !span.IsRecording() {
		return
	}
	vars := p.Vars()
	attrs := make([]attribute.KeyValue, 0, len(vars))
	for _, v := range vars {
		attrs = append(attrs, attribute.String(fieldName(v.Category, v.Label), v.Value))
	}
	span.AddEvent(SpanEventName, trace.WithAttributes(attrs...))
}
