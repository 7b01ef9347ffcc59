package transfer

// Progress describes how far a transfer has advanced.
// Passed to TransferObserver.OnProgress after every acknowledged fragment.
type Progress struct {
	// FileID identifies the session
	FileID uint32

	// Name is the file name announced in the metadata
	Name string

	// BytesDone is the number of bytes sent-and-acknowledged (sender) or
	// received-and-stored (receiver)
	BytesDone int

	// TotalBytes is the full transfer size
	TotalBytes int

	// Fraction is BytesDone / TotalBytes, reaching exactly 1.0 only on
	// the fragment that completes the transfer
	Fraction float64
}

// Result describes how a transfer ended. Err is nil on success; on the
// receive side Data holds the complete reassembled buffer.
type Result struct {
	FileID uint32
	Name   string
	Data   []byte
	Err    error
}

// TransferObserver receives transfer lifecycle notifications.
// Implementations should return quickly; both callbacks run on the
// goroutine driving the transfer.
type TransferObserver interface {
	// OnProgress is called after each acknowledged fragment
	OnProgress(p Progress)

	// OnComplete is called exactly once per session, on success or failure
	OnComplete(r Result)
}

// nopObserver keeps the callback paths nil-safe.
type nopObserver struct{}

func (nopObserver) OnProgress(Progress) {}
func (nopObserver) OnComplete(Result)   {}
