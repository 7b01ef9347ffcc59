package transfer

import (
	"fmt"
	"time"

	"github.com/sigurn/crc16"

	"github.com/featherforge/arclink/protocol"
)

// Receiver is the receive side of the file transfer protocol. It owns
// one buffer per session, allocated to the exact announced size, and
// enforces strict fragment ordering: the only accepted fragment is the
// one at the expected index, everything else is answered with a retry
// ack and dropped.
//
// All methods must be called from the goroutine driving the link tick.
type Receiver struct {
	send Sender
	cfg  Config
	obs  TransferObserver
	log  Logger

	active       bool
	meta         protocol.FileMetadata
	buf          []byte
	next         uint16
	lastActivity time.Time
}

// NewReceiver returns a receiver bound to the given link.
func NewReceiver(send Sender, opts ...Option) *Receiver {
	cfg := defaultConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	obs := cfg.Observer
	if obs == nil {
		obs = nopObserver{}
	}
	log := cfg.Logger
	if log == nil {
		log = nopLogger{}
	}
	return &Receiver{send: send, cfg: cfg, obs: obs, log: log}
}

// HandleMetadata opens a receive session. A metadata packet arriving
// mid-session supersedes the old session: the sender restarting is the
// only way a new metadata can appear on the wire.
func (r *Receiver) HandleMetadata(m *protocol.FileMetadata, now time.Time) error {
	if m.TotalSize == 0 || m.FragmentSize == 0 {
		return &SizeError{Detail: "zero-size metadata"}
	}
	need := (int(m.TotalSize) + int(m.FragmentSize) - 1) / int(m.FragmentSize)
	if need != int(m.TotalFragments) {
		return &SizeError{Detail: fmt.Sprintf("announced %d fragments, geometry implies %d",
			m.TotalFragments, need)}
	}

	if r.active {
		r.log.Info("receive session superseded", "old", r.meta.Name, "new", m.Name)
	}

	r.active = true
	r.meta = *m
	r.buf = make([]byte, m.TotalSize)
	r.next = 0
	r.lastActivity = now

	r.log.Info("receive session opened", "file", m.Name, "size", m.TotalSize,
		"fragments", m.TotalFragments)
	return nil
}

// HandleFragment stores one fragment and acknowledges it. Out-of-order
// fragments are rejected with a retry ack and never written; a fragment
// whose length does not match its slot aborts the session.
func (r *Receiver) HandleFragment(f *protocol.FileFragment, now time.Time) {
	if !r.active || f.FileID != r.meta.FileID {
		r.ack(f.FileID, f.FragmentIndex, protocol.AckError)
		return
	}
	r.lastActivity = now

	if f.FragmentIndex != r.next {
		r.log.Debug("out-of-order fragment", "expected", r.next, "got", f.FragmentIndex)
		r.ack(f.FileID, f.FragmentIndex, protocol.AckRetry)
		return
	}

	// Every fragment has an exact expected length: FragmentSize, or the
	// remainder for the final one. A mismatch either truncates the buffer
	// or writes past it, so the session cannot continue.
	offset := int(f.FragmentIndex) * int(r.meta.FragmentSize)
	want := int(r.meta.FragmentSize)
	if rem := len(r.buf) - offset; rem < want {
		want = rem
	}
	if len(f.Data) != want {
		r.log.Error("fragment size mismatch", "fragment", f.FragmentIndex,
			"len", len(f.Data), "want", want)
		r.ack(f.FileID, f.FragmentIndex, protocol.AckError)
		r.finish(Result{FileID: r.meta.FileID, Name: r.meta.Name,
			Err: &SizeError{Detail: "fragment size mismatch"}})
		return
	}

	copy(r.buf[offset:], f.Data)
	r.next++
	r.ack(f.FileID, f.FragmentIndex, protocol.AckOK)
	r.obs.OnProgress(r.progressNow())

	if r.next == r.meta.TotalFragments {
		r.complete()
	}
}

// CheckTimeout abandons a session whose sender has gone quiet, freeing
// the buffer. The link loop calls it once per tick.
func (r *Receiver) CheckTimeout(now time.Time) {
	if !r.active || now.Sub(r.lastActivity) <= r.cfg.IdleTimeout {
		return
	}
	r.log.Error("receive session idle", "file", r.meta.Name, "received", r.next)
	r.finish(Result{FileID: r.meta.FileID, Name: r.meta.Name, Err: ErrIdleTimeout})
}

// Active reports whether a receive session is open.
func (r *Receiver) Active() bool { return r.active }

// Progress returns the received fraction of the session, 0.0 to 1.0.
func (r *Receiver) Progress() float64 {
	if !r.active || r.meta.TotalSize == 0 {
		return 0
	}
	return float64(r.bytesReceived()) / float64(r.meta.TotalSize)
}

func (r *Receiver) complete() {
	if got := crc16.Checksum(r.buf, crcTable); got != r.meta.CRC16 {
		r.log.Error("file checksum mismatch", "file", r.meta.Name,
			"want", r.meta.CRC16, "got", got)
		r.finish(Result{FileID: r.meta.FileID, Name: r.meta.Name, Err: ErrChecksumMismatch})
		return
	}
	r.log.Info("receive complete", "file", r.meta.Name, "size", len(r.buf))
	r.finish(Result{FileID: r.meta.FileID, Name: r.meta.Name, Data: r.buf})
}

// finish closes the session and fires the completion callback once.
func (r *Receiver) finish(res Result) {
	r.active = false
	r.buf = nil
	r.obs.OnComplete(res)
}

func (r *Receiver) ack(fileID uint32, index uint16, status uint8) {
	a := protocol.FileAck{FileID: fileID, FragmentIndex: index, Status: status}
	if err := r.send.Send(protocol.MsgFileAck, a.Marshal()); err != nil {
		// Fire-and-forget: a lost ack is recovered by the sender's own
		// retry path.
		r.log.Debug("ack send failed", "err", err)
	}
}

func (r *Receiver) bytesReceived() int {
	done := int(r.next) * int(r.meta.FragmentSize)
	if done > int(r.meta.TotalSize) {
		done = int(r.meta.TotalSize)
	}
	return done
}

func (r *Receiver) progressNow() Progress {
	return Progress{
		FileID:     r.meta.FileID,
		Name:       r.meta.Name,
		BytesDone:  r.bytesReceived(),
		TotalBytes: int(r.meta.TotalSize),
		Fraction:   r.Progress(),
	}
}
