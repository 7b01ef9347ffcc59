// Package telemetry provides the shared-state buffers that decouple
// sensor acquisition and frame reception from the 60 Hz link loop.
//
// DoubleBuffer moves snapshots from a single producer to readers without
// locks; FrameBuffer latches the latest inbound render frame behind a
// mutex. Both follow a latest-value-wins policy: slow consumers skip
// intermediate states rather than apply backpressure to the link.
package telemetry
