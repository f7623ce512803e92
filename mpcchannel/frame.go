package mpcchannel

import (
	"encoding/binary"
	"fmt"
	"io"
)

// WriteFrame writes a length-prefixed message, the framing every gc/ot
// exchange over a Channel uses since both carry variable-length batches.
func WriteFrame(ch Channel, payload []byte) error {
	var length [4]byte
	binary.BigEndian.PutUint32(length[:], uint32(len(payload)))
	if _, err := ch.Write(length[:]); err != nil {
		return fmt.Errorf("mpcchannel: write frame length: %w", err)
	}
	if _, err := ch.Write(payload); err != nil {
		return fmt.Errorf("mpcchannel: write frame payload: %w", err)
	}
	return ch.Flush()
}

// ReadFrame reads one length-prefixed message written by WriteFrame.
func ReadFrame(ch Channel) ([]byte, error) {
	var length [4]byte
	if _, err := io.ReadFull(ch, length[:]); err != nil {
		return nil, fmt.Errorf("mpcchannel: read frame length: %w", err)
	}
	n := binary.BigEndian.Uint32(length[:])
	payload := make([]byte, n)
	if _, err := io.ReadFull(ch, payload); err != nil {
		return nil, fmt.Errorf("mpcchannel: read frame payload: %w", err)
	}
	return payload, nil
}
