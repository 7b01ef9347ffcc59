package protocol

import (
	"encoding/binary"
)

// File transfer wire constants.
const (
	// FileMetadataSize is the fixed wire size of a FileMetadata payload.
	FileMetadataSize = 46

	// FileFragmentHeaderSize is the size of a fragment header before data.
	FileFragmentHeaderSize = 8

	// FileAckSize is the fixed wire size of a FileAck payload.
	FileAckSize = 8

	// FileNameLen is the fixed length of the name field. Shorter names
	// are NUL padded; longer names are truncated.
	FileNameLen = 32

	// DefaultFragmentSize is the data byte count per fragment chosen so
	// that header plus data stays under the one-byte frame length limit.
	DefaultFragmentSize = 200
)

// Acknowledgement statuses.
const (
	AckOK    uint8 = 0 // fragment accepted, send the next one
	AckRetry uint8 = 1 // fragment rejected, send the same one again
	AckError uint8 = 2 // transfer aborted by the receiver
)

// FileMetadata announces an incoming transfer. It carries everything the
// receiver needs to allocate and validate: total size, fragment geometry,
// and a CRC-16 of the whole file checked after reassembly.
type FileMetadata struct {
	FileID         uint32
	TotalSize      uint32
	FragmentSize   uint16
	TotalFragments uint16
	CRC16          uint16
	Name           string
}

// Marshal serializes the metadata into its fixed wire layout.
func (m *FileMetadata) Marshal() []byte {
	out := make([]byte, FileMetadataSize)
	binary.LittleEndian.PutUint32(out[0:], m.FileID)
	binary.LittleEndian.PutUint32(out[4:], m.TotalSize)
	binary.LittleEndian.PutUint16(out[8:], m.FragmentSize)
	binary.LittleEndian.PutUint16(out[10:], m.TotalFragments)
	binary.LittleEndian.PutUint16(out[12:], m.CRC16)
	copy(out[14:14+FileNameLen], m.Name)
	return out
}

// UnmarshalFileMetadata parses a FileMetadata payload.
func UnmarshalFileMetadata(data []byte) (*FileMetadata, error) {
	if len(data) != FileMetadataSize {
		return nil, &PayloadError{Type: MsgFileStart, Got: len(data), Want: FileMetadataSize}
	}
	name := data[14 : 14+FileNameLen]
	end := len(name)
	for i, b := range name {
		if b == 0 {
			end = i
			break
		}
	}
	return &FileMetadata{
		FileID:         binary.LittleEndian.Uint32(data[0:]),
		TotalSize:      binary.LittleEndian.Uint32(data[4:]),
		FragmentSize:   binary.LittleEndian.Uint16(data[8:]),
		TotalFragments: binary.LittleEndian.Uint16(data[10:]),
		CRC16:          binary.LittleEndian.Uint16(data[12:]),
		Name:           string(name[:end]),
	}, nil
}

// FileFragment is one data slice of a transfer. FragmentIndex is
// zero-based; the receiver only accepts the index it expects next.
type FileFragment struct {
	FileID        uint32
	FragmentIndex uint16
	Data          []byte
}

// Marshal serializes the fragment header followed by its data.
func (f *FileFragment) Marshal() []byte {
	out := make([]byte, FileFragmentHeaderSize+len(f.Data))
	binary.LittleEndian.PutUint32(out[0:], f.FileID)
	binary.LittleEndian.PutUint16(out[4:], f.FragmentIndex)
	binary.LittleEndian.PutUint16(out[6:], uint16(len(f.Data)))
	copy(out[FileFragmentHeaderSize:], f.Data)
	return out
}

// UnmarshalFileFragment parses a FileFragment payload. The declared data
// length must match the bytes actually present.
func UnmarshalFileFragment(data []byte) (*FileFragment, error) {
	if len(data) < FileFragmentHeaderSize {
		return nil, &PayloadError{Type: MsgFileData, Got: len(data), Want: FileFragmentHeaderSize}
	}
	declared := int(binary.LittleEndian.Uint16(data[6:]))
	if len(data) != FileFragmentHeaderSize+declared {
		return nil, &PayloadError{Type: MsgFileData, Got: len(data), Want: FileFragmentHeaderSize + declared}
	}
	frag := &FileFragment{
		FileID:        binary.LittleEndian.Uint32(data[0:]),
		FragmentIndex: binary.LittleEndian.Uint16(data[4:]),
		Data:          make([]byte, declared),
	}
	copy(frag.Data, data[FileFragmentHeaderSize:])
	return frag, nil
}

// FileAck acknowledges a single fragment. Status AckOK advances the
// sender, AckRetry makes it resend and AckError aborts the transfer.
type FileAck struct {
	FileID        uint32
	FragmentIndex uint16
	Status        uint8
}

// Marshal serializes the ack into its fixed wire layout.
func (a *FileAck) Marshal() []byte {
	out := make([]byte, FileAckSize)
	binary.LittleEndian.PutUint32(out[0:], a.FileID)
	binary.LittleEndian.PutUint16(out[4:], a.FragmentIndex)
	out[6] = a.Status
	// out[7] reserved
	return out
}

// UnmarshalFileAck parses a FileAck payload.
func UnmarshalFileAck(data []byte) (*FileAck, error) {
	if len(data) != FileAckSize {
		return nil, &PayloadError{Type: MsgFileAck, Got: len(data), Want: FileAckSize}
	}
	return &FileAck{
		FileID:        binary.LittleEndian.Uint32(data[0:]),
		FragmentIndex: binary.LittleEndian.Uint16(data[4:]),
		Status:        data[6],
	}, nil
}
