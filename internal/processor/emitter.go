// Package processor turns decoded Raydium instructions into normalized
// swap events: one processor per protocol, each applying the allow-list
// filter and routing built events through the shared emitter.
package processor

import (
	"fmt"
	"io"
	"os"

	"go.uber.org/zap"

	"raydium-alerts/internal/event"
	"raydium-alerts/internal/observability"
	"raydium-alerts/internal/solana"
	"raydium-alerts/internal/webhook"
)

// Emitter routes built events to the local sink and, when configured, the
// webhook queue. Shared by all processors.
type Emitter struct {
	format   event.OutputFormat
	notifier *webhook.Notifier
	out      io.Writer
	logger   *zap.Logger
	metrics  *observability.Metrics
}

// NewEmitter creates an emitter. A nil notifier disables webhook delivery;
// a nil out defaults to stdout.
func NewEmitter(format event.OutputFormat, notifier *webhook.Notifier, out io.Writer, logger *zap.Logger, metrics *observability.Metrics) *Emitter {
	if out == nil {
		out = os.Stdout
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Emitter{
		format:   format,
		notifier: notifier,
		out:      out,
		logger:   logger,
		metrics:  metrics,
	}
}

// Emit writes the event to the local sink and queues it for webhook
// delivery without blocking. A full queue drops the event from the webhook
// path only; the local sink always gets it.
func (e *Emitter) Emit(ev event.SwapEvent) {
	fmt.Fprintln(e.out, ev.Format(e.format))

	if e.notifier != nil {
		if err := e.notifier.TrySend(ev); err != nil {
			e.logger.Warn("failed to queue webhook notification",
				zap.String("signature", ev.Signature),
				zap.Error(err))
		}
	}

	e.metrics.RecordEventEmitted(string(ev.Protocol), string(ev.Kind))
}

// Processor consumes one protocol's instructions.
type Processor interface {
	// ProgramID returns the program this processor handles.
	ProgramID() solana.Pubkey
	// Process consumes one top-level instruction with its CPI tree.
	// Per-instruction problems are absorbed; Process never fails the stream.
	Process(meta solana.TxMeta, ix solana.Instruction, inner []solana.NestedInstruction)
}

// newEventBuilder seeds a builder with the per-transaction fields every
// event shares.
func newEventBuilder(protocol event.Protocol, meta solana.TxMeta) *event.Builder {
	b := event.NewBuilder().
		Protocol(protocol).
		Signature(meta.Signature).
		Slot(meta.Slot)
	if meta.BlockTime != nil {
		b.Timestamp(*meta.BlockTime)
	}
	return b
}
