// Package link implements the fixed-cadence bidirectional transport that
// connects the coordinator and renderer nodes over one serial channel.
//
// An Endpoint runs a single tick function that first drains a bounded
// number of inbound packets, dispatching each to a registered handler,
// and then sends this node's own periodic frame on a drift-corrected
// schedule. Periodic frames carry a 4-byte monotonic counter; gaps are
// counted but never retransmitted, because every frame supersedes the
// one before it. Aperiodic traffic (commands, file transfer, status)
// shares the wire through Send and the handler table.
//
// The two roles differ only in what they send and latch:
//
//	ep := link.NewCoordinator(port, sensorBuf, frameBuf)
//	go ep.Run(ctx)
//
//	ep := link.NewRenderer(port, nextFrame, onTelemetry)
//	go ep.Run(ctx)
package link
