package transfer

import (
	"bytes"
	"errors"
	"testing"
	"time"

	"github.com/featherforge/arclink/protocol"
)

// captureSender records outgoing packets and can be made to fail.
type captureSender struct {
	sent []capturedPacket
	err  error
}

type capturedPacket struct {
	msgType protocol.MessageType
	payload []byte
}

func (s *captureSender) Send(t protocol.MessageType, payload []byte) error {
	if s.err != nil {
		return s.err
	}
	s.sent = append(s.sent, capturedPacket{t, append([]byte(nil), payload...)})
	return nil
}

// loopLink delivers sender packets straight into the receiver and acks
// straight back, simulating a lossless wire.
type loopLink struct {
	mgr  *Manager
	recv *Receiver
	now  func() time.Time

	fragments int
}

func (l *loopLink) Send(t protocol.MessageType, payload []byte) error {
	switch t {
	case protocol.MsgFileStart:
		m, err := protocol.UnmarshalFileMetadata(payload)
		if err != nil {
			return err
		}
		return l.recv.HandleMetadata(m, l.now())
	case protocol.MsgFileData:
		f, err := protocol.UnmarshalFileFragment(payload)
		if err != nil {
			return err
		}
		l.fragments++
		l.recv.HandleFragment(f, l.now())
	case protocol.MsgFileAck:
		a, err := protocol.UnmarshalFileAck(payload)
		if err != nil {
			return err
		}
		l.mgr.HandleAck(a)
	}
	return nil
}

// recordObserver collects callbacks.
type recordObserver struct {
	progress  []Progress
	completes []Result
}

func (o *recordObserver) OnProgress(p Progress) { o.progress = append(o.progress, p) }
func (o *recordObserver) OnComplete(r Result)   { o.completes = append(o.completes, r) }

func testPattern(n int) []byte {
	data := make([]byte, n)
	for i := range data {
		data[i] = byte(i*31 + 7)
	}
	return data
}

func TestEndToEndReassembly(t *testing.T) {
	const size = 1024 // not a multiple of the fragment size

	link := &loopLink{now: func() time.Time { return time.Unix(1000, 0) }}
	sendObs := &recordObserver{}
	recvObs := &recordObserver{}
	link.mgr = NewManager(link, WithObserver(sendObs))
	link.recv = NewReceiver(link, WithObserver(recvObs))

	data := testPattern(size)
	if err := link.mgr.Start("pattern.bin", data); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	now := time.Unix(1000, 0)
	for i := 0; i < 100 && link.mgr.State() != StateCompleted; i++ {
		link.mgr.Update(now, true)
		now = now.Add(time.Millisecond)
	}

	if link.mgr.State() != StateCompleted {
		t.Fatalf("sender state = %v, want COMPLETED", link.mgr.State())
	}

	wantFragments := (size + protocol.DefaultFragmentSize - 1) / protocol.DefaultFragmentSize
	if link.fragments != wantFragments {
		t.Errorf("fragments sent = %d, want %d", link.fragments, wantFragments)
	}

	if len(recvObs.completes) != 1 {
		t.Fatalf("receiver completions = %d, want 1", len(recvObs.completes))
	}
	res := recvObs.completes[0]
	if res.Err != nil {
		t.Fatalf("receive failed: %v", res.Err)
	}
	if !bytes.Equal(res.Data, data) {
		t.Error("reassembled buffer differs from original")
	}
	if res.Name != "pattern.bin" {
		t.Errorf("name = %q, want pattern.bin", res.Name)
	}

	// Progress hits exactly 1.0 only on the completing fragment.
	for i, p := range recvObs.progress {
		last := i == len(recvObs.progress)-1
		if last && p.Fraction != 1.0 {
			t.Errorf("final progress = %v, want 1.0", p.Fraction)
		}
		if !last && p.Fraction >= 1.0 {
			t.Errorf("progress[%d] = %v before completion", i, p.Fraction)
		}
	}

	if len(sendObs.completes) != 1 || sendObs.completes[0].Err != nil {
		t.Errorf("sender completion = %+v", sendObs.completes)
	}
}

func TestOutOfOrderFragmentRejected(t *testing.T) {
	sender := &captureSender{}
	recv := NewReceiver(sender)

	now := time.Unix(1000, 0)
	meta := &protocol.FileMetadata{
		FileID: 1, TotalSize: 400, FragmentSize: 200, TotalFragments: 2,
	}
	if err := recv.HandleMetadata(meta, now); err != nil {
		t.Fatalf("HandleMetadata failed: %v", err)
	}

	// Fragment 1 before fragment 0.
	recv.HandleFragment(&protocol.FileFragment{
		FileID: 1, FragmentIndex: 1, Data: make([]byte, 200),
	}, now)

	if len(sender.sent) != 1 {
		t.Fatalf("acks sent = %d, want 1", len(sender.sent))
	}
	ack, err := protocol.UnmarshalFileAck(sender.sent[0].payload)
	if err != nil {
		t.Fatalf("bad ack: %v", err)
	}
	if ack.Status != protocol.AckRetry || ack.FragmentIndex != 1 {
		t.Errorf("ack = %+v, want retry status for index 1", ack)
	}
	if recv.Progress() != 0 {
		t.Errorf("progress = %v, want 0 (no write)", recv.Progress())
	}
}

func TestRetryExhaustion(t *testing.T) {
	obs := &recordObserver{}
	sender := &captureSender{err: errors.New("wire down")}
	mgr := NewManager(sender, WithObserver(obs))

	if err := mgr.Start("doomed.bin", testPattern(100)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	now := time.Unix(1000, 0)
	for i := 0; i < 20; i++ {
		mgr.Update(now, true)
		now = now.Add(time.Millisecond)
	}

	if mgr.State() != StateError {
		t.Fatalf("state = %v, want ERROR", mgr.State())
	}
	if mgr.Stats().Retries != DefaultMaxRetries {
		t.Errorf("retries = %d, want exactly %d", mgr.Stats().Retries, DefaultMaxRetries)
	}
	if len(obs.completes) != 1 {
		t.Fatalf("completions = %d, want exactly 1", len(obs.completes))
	}
	if !errors.Is(obs.completes[0].Err, ErrRetriesExhausted) {
		t.Errorf("completion error = %v, want ErrRetriesExhausted", obs.completes[0].Err)
	}
}

func TestAckTimeoutTriggersResend(t *testing.T) {
	sender := &captureSender{}
	mgr := NewManager(sender)

	if err := mgr.Start("slow.bin", testPattern(50)); err != nil {
		t.Fatalf("Start failed: %v", err)
	}

	now := time.Unix(1000, 0)
	mgr.Update(now, true) // metadata
	mgr.Update(now, true) // fragment 0
	if got := len(sender.sent); got != 2 {
		t.Fatalf("packets sent = %d, want 2", got)
	}

	// No ack arrives; past the timeout the fragment goes out again.
	now = now.Add(DefaultAckTimeout + time.Millisecond)
	mgr.Update(now, true) // timeout noticed
	mgr.Update(now, true) // resend
	if got := len(sender.sent); got != 3 {
		t.Fatalf("packets sent = %d, want 3 after resend", got)
	}

	f1, _ := protocol.UnmarshalFileFragment(sender.sent[1].payload)
	f2, _ := protocol.UnmarshalFileFragment(sender.sent[2].payload)
	if f1.FragmentIndex != f2.FragmentIndex {
		t.Errorf("resent index = %d, want %d", f2.FragmentIndex, f1.FragmentIndex)
	}
}

func TestStartRejectedWhileActive(t *testing.T) {
	sender := &captureSender{}
	mgr := NewManager(sender)

	if err := mgr.Start("first.bin", testPattern(10)); err != nil {
		t.Fatalf("first Start failed: %v", err)
	}
	if err := mgr.Start("second.bin", testPattern(10)); !errors.Is(err, ErrTransferActive) {
		t.Errorf("second Start error = %v, want ErrTransferActive", err)
	}
}

func TestCancelFiresCallbackOnce(t *testing.T) {
	obs := &recordObserver{}
	mgr := NewManager(&captureSender{}, WithObserver(obs))

	mgr.Start("gone.bin", testPattern(10))
	mgr.Cancel()
	mgr.Cancel() // second cancel is a no-op

	if mgr.State() != StateIdle {
		t.Errorf("state = %v, want IDLE", mgr.State())
	}
	if len(obs.completes) != 1 || !errors.Is(obs.completes[0].Err, ErrCancelled) {
		t.Errorf("completions = %+v", obs.completes)
	}
}

func TestReceiverChecksumMismatch(t *testing.T) {
	obs := &recordObserver{}
	recv := NewReceiver(&captureSender{}, WithObserver(obs))

	now := time.Unix(1000, 0)
	recv.HandleMetadata(&protocol.FileMetadata{
		FileID: 1, TotalSize: 4, FragmentSize: 200, TotalFragments: 1,
		CRC16: 0xDEAD, // wrong on purpose
	}, now)
	recv.HandleFragment(&protocol.FileFragment{
		FileID: 1, FragmentIndex: 0, Data: []byte{1, 2, 3, 4},
	}, now)

	if len(obs.completes) != 1 {
		t.Fatalf("completions = %d, want 1", len(obs.completes))
	}
	if !errors.Is(obs.completes[0].Err, ErrChecksumMismatch) {
		t.Errorf("error = %v, want ErrChecksumMismatch", obs.completes[0].Err)
	}
}

func TestReceiverIdleTimeout(t *testing.T) {
	obs := &recordObserver{}
	recv := NewReceiver(&captureSender{}, WithObserver(obs))

	now := time.Unix(1000, 0)
	recv.HandleMetadata(&protocol.FileMetadata{
		FileID: 1, TotalSize: 400, FragmentSize: 200, TotalFragments: 2,
	}, now)

	recv.CheckTimeout(now.Add(DefaultIdleTimeout - time.Second))
	if !recv.Active() {
		t.Fatal("session closed before the idle window elapsed")
	}

	recv.CheckTimeout(now.Add(DefaultIdleTimeout + time.Second))
	if recv.Active() {
		t.Fatal("session still active past the idle window")
	}
	if len(obs.completes) != 1 || !errors.Is(obs.completes[0].Err, ErrIdleTimeout) {
		t.Errorf("completions = %+v", obs.completes)
	}
}

func TestReceiverRejectsShortFragment(t *testing.T) {
	obs := &recordObserver{}
	sender := &captureSender{}
	recv := NewReceiver(sender, WithObserver(obs))

	now := time.Unix(1000, 0)
	recv.HandleMetadata(&protocol.FileMetadata{
		FileID: 1, TotalSize: 400, FragmentSize: 200, TotalFragments: 2,
	}, now)

	// A non-final fragment must carry exactly FragmentSize bytes; a short
	// one would leave a silent gap in the buffer.
	recv.HandleFragment(&protocol.FileFragment{
		FileID: 1, FragmentIndex: 0, Data: make([]byte, 150),
	}, now)

	if recv.Active() {
		t.Fatal("session still active after a size-mismatch fragment")
	}
	if len(obs.completes) != 1 {
		t.Fatalf("completions = %d, want 1", len(obs.completes))
	}
	var se *SizeError
	if !errors.As(obs.completes[0].Err, &se) {
		t.Errorf("error = %v, want *SizeError", obs.completes[0].Err)
	}

	last := sender.sent[len(sender.sent)-1]
	if last.msgType != protocol.MsgFileAck {
		t.Fatalf("last packet type = %v, want FILE_ACK", last.msgType)
	}
	ack, err := protocol.UnmarshalFileAck(last.payload)
	if err != nil {
		t.Fatalf("ack decode failed: %v", err)
	}
	if ack.Status != protocol.AckError {
		t.Errorf("ack status = %d, want AckError", ack.Status)
	}
}

func TestReceiverRejectsInconsistentMetadata(t *testing.T) {
	recv := NewReceiver(&captureSender{})

	err := recv.HandleMetadata(&protocol.FileMetadata{
		FileID: 1, TotalSize: 1000, FragmentSize: 200, TotalFragments: 3,
	}, time.Unix(1000, 0))

	var se *SizeError
	if !errors.As(err, &se) {
		t.Errorf("error = %v, want *SizeError", err)
	}
}
