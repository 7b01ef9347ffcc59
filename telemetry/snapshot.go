package telemetry

import (
	"time"

	"github.com/featherforge/arclink/protocol"
)

// Snapshot is one coherent reading of every sensor domain, the unit the
// double buffer publishes. It embeds the wire payload plus fields that
// travel out of band (too large or variable for the fixed frame).
type Snapshot struct {
	protocol.TelemetryPayload

	// NetworkID is the identifier of the network the coordinator is
	// joined to, if any. Sent on request rather than every frame.
	NetworkID string

	// Taken records when the snapshot was captured.
	Taken time.Time
}
