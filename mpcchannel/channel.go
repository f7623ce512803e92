// Package mpcchannel defines the bulk boolean channel the MPC core reads
// and writes garbled tables, OT messages and handshake bytes over. Actual
// network transport (TCP/UNIX sockets, retries) is out of scope for this
// core; only the interface, a length-prefixed framing helper and an
// in-memory implementation for tests and benchmarks live here.
package mpcchannel

import "io"

// Channel is the inter-server channel contract the gc and ot packages are
// written against. Flush lets a buffered implementation push pending
// writes before the peer blocks on a read; Clone hands back an
// independent channel sharing the same underlying transport, used to give
// each frontier worker its own channel.
type Channel interface {
	io.Reader
	io.Writer
	Flush() error
	Clone() Channel
}

// PipeChannel is an in-memory Channel backed by an io.Pipe, suitable for
// tests and same-process benchmarks where both servers run as goroutines.
type PipeChannel struct {
	r *io.PipeReader
	w *io.PipeWriter
}

// NewPipePair returns two PipeChannels wired to each other: writes on one
// end are readable on the other.
func NewPipePair() (Channel, Channel) {
	r1, w1 := io.Pipe()
	r2, w2 := io.Pipe()
	a := &PipeChannel{r: r1, w: w2}
	b := &PipeChannel{r: r2, w: w1}
	return a, b
}

func (p *PipeChannel) Read(b []byte) (int, error)  { return p.r.Read(b) }
func (p *PipeChannel) Write(b []byte) (int, error) { return p.w.Write(b) }
func (p *PipeChannel) Flush() error                { return nil }

// Clone returns the same channel: PipeChannel has no per-clone state, so
// sharing it is safe as long as callers serialize their reads/writes
// (the frontier worker pool gives each worker its own channel pair
// instead of cloning a shared one in practice).
func (p *PipeChannel) Clone() Channel { return p }
