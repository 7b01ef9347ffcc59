package telemetry

import (
	"sync"
	"testing"
	"time"
)

func testTime() time.Time { return time.Unix(1700000000, 0) }

func TestDoubleBufferInitialRead(t *testing.T) {
	b := NewDoubleBuffer()

	s := b.Read()
	if s.Temperature != 0 || s.NetworkID != "" {
		t.Errorf("initial read = %+v, want zero snapshot", s)
	}
	if b.Version() != 0 {
		t.Errorf("initial version = %d, want 0", b.Version())
	}
}

func TestDoubleBufferPublishRead(t *testing.T) {
	b := NewDoubleBuffer()

	var s Snapshot
	s.Temperature = 21.5
	s.NetworkID = "mesh-7"
	b.Publish(s)

	got := b.Read()
	if got.Temperature != 21.5 || got.NetworkID != "mesh-7" {
		t.Errorf("read = %+v, want published snapshot", got)
	}
	if b.Version() != 1 {
		t.Errorf("version = %d, want 1", b.Version())
	}

	// Latest wins.
	s.Temperature = 22.0
	b.Publish(s)
	if got := b.Read(); got.Temperature != 22.0 {
		t.Errorf("temperature = %v, want 22.0", got.Temperature)
	}
}

// TestDoubleBufferSnapshotAtomicity publishes snapshots whose fields are
// all set to the same value and checks concurrent readers never see the
// fields disagree. A torn read under single-flip conditions would fail.
func TestDoubleBufferSnapshotAtomicity(t *testing.T) {
	b := NewDoubleBuffer()

	const iterations = 10000
	var wg sync.WaitGroup
	stop := make(chan struct{})

	errs := make(chan string, 4)
	for r := 0; r < 4; r++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for {
				select {
				case <-stop:
					return
				default:
				}
				s := b.Read()
				if s.AccelX != s.GyroX || s.AccelX != s.Temperature {
					select {
					case errs <- "torn snapshot observed":
					default:
					}
					return
				}
			}
		}()
	}

	for i := 1; i <= iterations; i++ {
		var s Snapshot
		v := float32(i)
		s.AccelX, s.GyroX, s.Temperature = v, v, v
		b.Publish(s)
	}
	close(stop)
	wg.Wait()

	select {
	case msg := <-errs:
		t.Fatal(msg)
	default:
	}

	if b.Version() != iterations {
		t.Errorf("version = %d, want %d", b.Version(), iterations)
	}
}

func TestFrameBufferTakeConsumesFreshness(t *testing.T) {
	var f FrameBuffer

	if _, _, ok := f.Take(); ok {
		t.Fatal("Take on empty buffer reported a frame")
	}

	f.Store([]byte{1, 2, 3}, 7, testTime())
	data, seq, ok := f.Take()
	if !ok || seq != 7 || len(data) != 3 {
		t.Fatalf("Take = (% X, %d, %v)", data, seq, ok)
	}

	if _, _, ok := f.Take(); ok {
		t.Error("second Take reported a fresh frame")
	}

	// Peek still sees the frame.
	if _, seq, ok := f.Peek(); !ok || seq != 7 {
		t.Error("Peek lost the frame after Take")
	}
}

func TestFrameBufferAge(t *testing.T) {
	var f FrameBuffer

	if _, ok := f.Age(testTime()); ok {
		t.Fatal("Age on empty buffer reported a value")
	}

	at := testTime()
	f.Store([]byte{1}, 1, at)
	age, ok := f.Age(at.Add(50_000_000)) // 50ms later
	if !ok || age.Milliseconds() != 50 {
		t.Errorf("age = %v, %v", age, ok)
	}
}
