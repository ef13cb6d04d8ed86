package parser

// TraceEvent describes a grammar production the parser has just recognised.
type TraceEvent struct {
	// Production is one of start, pattern_type, threads, width, height,
	// colors, row, knot, pattern_data or end.
	Production string
	// Index is the cursor position after the production was consumed.
	Index  int
	Detail string
}

// WithTracer registers a callback invoked once per recognised production,
// in source order. Without a tracer the parser produces no output.
func WithTracer(fn func(TraceEvent)) Option {
	return func(p *Parser) {
		p.tracer = fn
	}
}

func (p *Parser) trace(production, detail string) {
	if p.tracer == nil {
		return
	}
	p.tracer(TraceEvent{Production: production, Index: p.pos, Detail: detail})
}
