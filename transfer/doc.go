// Package transfer implements the chunked, acknowledged file transfer
// layered on top of the link.
//
// A Manager fragments one buffer at a time into fixed-size slices and
// sends them one per tick, always yielding to the periodic traffic
// first. Every fragment is acknowledged; a missing or negative ack is
// retried up to a bounded budget, after which the session fails with a
// single completion callback. The Receiver allocates exactly the
// announced size, accepts fragments only in strict order, and verifies
// a whole-file CRC-16 before handing the reassembled buffer to its
// observer.
//
// Typical wiring on a node that both sends and receives:
//
//	mgr := transfer.NewManager(ep, transfer.WithObserver(obs))
//	recv := transfer.NewReceiver(ep, transfer.WithObserver(obs))
//	transfer.Attach(ep, mgr, recv, nil)
//
// and, inside the link loop after each tick:
//
//	mgr.Update(now, allowSend)
//	recv.CheckTimeout(now)
package transfer
