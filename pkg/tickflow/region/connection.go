package region

import (
	"log/slog"

	"github.com/randalmurphal/tickflow/pkg/tickflow/buffer"
	"github.com/randalmurphal/tickflow/pkg/tickflow/connect"
)

// Connection is a terminated region-aware connection: it records the policy
// chosen when it was wired and owns the buffer, if any.
type Connection struct {
	policy   buffer.Policy
	buf      buffer.Buffer
	source   ref
	sink     ref
	buffered bool
}

// Policy returns the buffering policy applied to this connection.
func (c *Connection) Policy() buffer.Policy { return c.policy }

// Buffer returns the staging buffer, or nil for a direct connection.
func (c *Connection) Buffer() buffer.Buffer { return c.buf }

// Buffered reports whether data on this connection passes through a buffer,
// either created here or earlier on the path.
func (c *Connection) Buffered() bool { return c.buffered }

// SourceRegion returns the producer region, or nil if the producing end
// was not region-aware.
func (c *Connection) SourceRegion() *Region { return c.source.get() }

// SinkRegion returns the consumer region, or nil if the consuming end was
// not region-aware.
func (c *Connection) SinkRegion() *Region { return c.sink.get() }

// decide picks the policy for a hop from source to sink. A path already
// staged into a region may only continue inside that region.
func decide(source, sink ref, buffered bool) buffer.Policy {
	if !source.set || !sink.set {
		return buffer.Direct
	}
	from, to := source.get(), sink.get()
	same := from.ID() == to.ID()
	if buffered && !same {
		panic(&WiringError{From: from.name, To: to.name, Err: ErrDoubleBuffer})
	}
	return buffer.Decide(same)
}

// stage wires b between the producer's switch tick and the consumer's
// delivery hook, which runs before its work tick.
func stage(b buffer.Buffer, from, to *Region) {
	from.SwitchTick().Subscribe(func(connect.Void) { b.Commit() })
	to.deliver.Subscribe(func(connect.Void) { b.Deliver() })
	from.logger.Debug("staged cross-region connection",
		slog.String("from", from.name),
		slog.String("to", to.name),
	)
}
