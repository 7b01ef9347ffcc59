package transfer

import (
	"fmt"
	"time"

	"github.com/sigurn/crc16"

	"github.com/featherforge/arclink/protocol"
)

// State is the sender session state.
type State int

// Sender session states.
const (
	StateIdle State = iota
	StateSendingMetadata
	StateSendingData
	StateWaitingAck
	StateCompleted
	StateError
)

// String returns a human-readable state name.
func (s State) String() string {
	switch s {
	case StateIdle:
		return "IDLE"
	case StateSendingMetadata:
		return "SENDING_METADATA"
	case StateSendingData:
		return "SENDING_DATA"
	case StateWaitingAck:
		return "WAITING_ACK"
	case StateCompleted:
		return "COMPLETED"
	case StateError:
		return "ERROR"
	default:
		return "UNKNOWN"
	}
}

// Stats are the per-session sender counters.
type Stats struct {
	FragmentsSent  uint64
	FragmentsAcked uint64
	Retries        uint64
}

// crcTable is shared by sender and receiver for the whole-file checksum.
var crcTable = crc16.MakeTable(crc16.CRC16_CCITT_FALSE)

// Manager is the send side of the file transfer protocol. It fragments
// one buffer at a time and paces the fragments behind the periodic
// traffic: Update sends at most one packet per call, and only when the
// caller signals the tick has bandwidth to spare.
//
// At most one session is in flight; Start rejects a second. All methods
// must be called from the goroutine driving the link tick.
type Manager struct {
	send Sender
	cfg  Config
	obs  TransferObserver
	log  Logger

	state    State
	meta     protocol.FileMetadata
	data     []byte
	next     uint16
	retries  int
	lastSend time.Time
	nextID   uint32

	stats Stats
}

// NewManager returns a sender bound to the given link.
func NewManager(send Sender, opts ...Option) *Manager {
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
	return &Manager{send: send, cfg: cfg, obs: obs, log: log, nextID: 1}
}

// Start opens a new session for data under the given name. It fails with
// ErrTransferActive while a previous session is still in flight; a
// completed or failed session may be superseded at any time.
func (m *Manager) Start(name string, data []byte) error {
	switch m.state {
	case StateIdle, StateCompleted, StateError:
	default:
		return ErrTransferActive
	}
	if len(data) == 0 {
		return &SizeError{Detail: "empty transfer"}
	}

	fragSize := m.cfg.FragmentSize
	totalFragments := (len(data) + fragSize - 1) / fragSize
	if totalFragments > 0xFFFF {
		return &SizeError{Detail: fmt.Sprintf("%d fragments exceed the index range", totalFragments)}
	}

	m.meta = protocol.FileMetadata{
		FileID:         m.nextID,
		TotalSize:      uint32(len(data)),
		FragmentSize:   uint16(fragSize),
		TotalFragments: uint16(totalFragments),
		CRC16:          crc16.Checksum(data, crcTable),
		Name:           name,
	}
	m.nextID++
	m.data = data
	m.next = 0
	m.retries = 0
	m.stats = Stats{}
	m.state = StateSendingMetadata

	m.log.Info("transfer started", "file", name, "size", len(data), "fragments", totalFragments)
	return nil
}

// Update advances the session. The link loop calls it once per tick,
// after the periodic frame; allowSend is false on ticks whose bandwidth
// the periodic traffic already consumed. At most one packet goes out per
// call.
func (m *Manager) Update(now time.Time, allowSend bool) {
	switch m.state {
	case StateSendingMetadata:
		if !allowSend {
			return
		}
		if err := m.send.Send(protocol.MsgFileStart, m.meta.Marshal()); err != nil {
			m.retry(now, "metadata send failed")
			return
		}
		m.state = StateSendingData

	case StateSendingData:
		if !allowSend {
			return
		}
		m.sendFragment(now)

	case StateWaitingAck:
		if now.Sub(m.lastSend) > m.cfg.AckTimeout {
			m.retry(now, "ack timeout")
		}
	}
}

// HandleAck feeds one acknowledgment into the session. Acks for other
// sessions or arriving outside WAITING_ACK are ignored.
func (m *Manager) HandleAck(ack *protocol.FileAck) {
	if m.state != StateWaitingAck || ack.FileID != m.meta.FileID || ack.FragmentIndex != m.next {
		return
	}

	switch ack.Status {
	case protocol.AckOK:
		m.retries = 0
		m.stats.FragmentsAcked++
		m.next++
		m.obs.OnProgress(m.progressNow())
		if m.next == m.meta.TotalFragments {
			m.state = StateCompleted
			m.log.Info("transfer complete", "file", m.meta.Name)
			m.obs.OnComplete(Result{FileID: m.meta.FileID, Name: m.meta.Name})
			return
		}
		m.state = StateSendingData

	case protocol.AckRetry:
		m.retry(m.lastSend, "peer requested retry")

	default:
		m.fail(ErrAborted)
	}
}

// Cancel abandons the session. The receiver cleans itself up via its own
// idle timeout; nothing further goes out on the wire.
func (m *Manager) Cancel() {
	if m.state == StateIdle || m.state == StateCompleted || m.state == StateError {
		return
	}
	m.log.Info("transfer cancelled", "file", m.meta.Name)
	m.state = StateIdle
	m.data = nil
	m.obs.OnComplete(Result{FileID: m.meta.FileID, Name: m.meta.Name, Err: ErrCancelled})
}

// State returns the current session state.
func (m *Manager) State() State { return m.state }

// Progress returns the acknowledged fraction of the session, 0.0 to 1.0.
func (m *Manager) Progress() float64 {
	if m.meta.TotalSize == 0 {
		return 0
	}
	return float64(m.bytesAcked()) / float64(m.meta.TotalSize)
}

// Stats returns a copy of the session counters.
func (m *Manager) Stats() Stats { return m.stats }

func (m *Manager) sendFragment(now time.Time) {
	start := int(m.next) * m.cfg.FragmentSize
	end := start + m.cfg.FragmentSize
	if end > len(m.data) {
		end = len(m.data)
	}

	frag := protocol.FileFragment{
		FileID:        m.meta.FileID,
		FragmentIndex: m.next,
		Data:          m.data[start:end],
	}

	// On a loopback link the ack arrives inside Send, so the state must
	// already be WAITING_ACK when the write happens.
	m.state = StateWaitingAck
	m.lastSend = now
	if err := m.send.Send(protocol.MsgFileData, frag.Marshal()); err != nil {
		m.retry(now, "fragment send failed")
		return
	}

	m.stats.FragmentsSent++
}

// retry charges one attempt against the budget and re-queues the current
// step; exhausting the budget fails the session.
func (m *Manager) retry(now time.Time, reason string) {
	m.retries++
	m.stats.Retries++
	m.log.Debug("transfer retry", "file", m.meta.Name, "fragment", m.next,
		"attempt", m.retries, "reason", reason)

	if m.retries >= m.cfg.MaxRetries {
		m.fail(ErrRetriesExhausted)
		return
	}
	if m.state == StateWaitingAck {
		m.state = StateSendingData
	}
	m.lastSend = now
}

// fail ends the session with err. Reaching StateError first guarantees
// the completion callback fires exactly once.
func (m *Manager) fail(err error) {
	if m.state == StateError {
		return
	}
	m.state = StateError
	m.data = nil
	m.log.Error("transfer failed", "file", m.meta.Name, "err", err)
	m.obs.OnComplete(Result{FileID: m.meta.FileID, Name: m.meta.Name, Err: err})
}

func (m *Manager) bytesAcked() int {
	done := int(m.next) * m.cfg.FragmentSize
	if done > int(m.meta.TotalSize) {
		done = int(m.meta.TotalSize)
	}
	return done
}

func (m *Manager) progressNow() Progress {
	return Progress{
		FileID:     m.meta.FileID,
		Name:       m.meta.Name,
		BytesDone:  m.bytesAcked(),
		TotalBytes: int(m.meta.TotalSize),
		Fraction:   m.Progress(),
	}
}
