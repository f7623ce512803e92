// Package collector is the leader-facing surface over frontier: a
// Server type exposing the RPC-shaped method names a real transport
// would dispatch to, and a Leader helper implementing the arithmetic a
// leader runs once it holds both servers' replies. No network
// transport, wire codec, or CLI lives here; this package exists so the
// two-collection integration scenarios have a natural entry point that
// mirrors the shape of the real protocol, the way this codebase's
// dspf.CombineResults mirrors what a leader does after a round trip
// split across a seed owner and an evaluator.
package collector

import (
	"fmt"
	"log"

	"heavyhitters/ball"
	"heavyhitters/field"
	"heavyhitters/frontier"
	"heavyhitters/mpcchannel"

	"github.com/bits-and-blooms/bitset"
)

// Server wraps one server's frontier.Collection behind the method names
// a real RPC dispatch table would route to.
type Server struct {
	col *frontier.Collection
}

// NewServer constructs a Server for the given role and tree depth.
func NewServer(gcSender bool, depth int) *Server {
	return &Server{col: frontier.New(gcSender, depth)}
}

// Reset discards all registered keys and tree state.
func (s *Server) Reset() {
	s.col.Reset()
}

// AddKeys registers a batch of client ball-key shares.
func (s *Server) AddKeys(keys []ball.Key) {
	for _, k := range keys {
		s.col.AddKey(k)
	}
}

// TreeInit seeds the frontier with a single root node.
func (s *Server) TreeInit() error {
	return s.col.TreeInit()
}

// TreeCrawl expands the frontier by one level over the given channels.
func (s *Server) TreeCrawl(channels []mpcchannel.Channel) ([]field.T, error) {
	start := len(s.col.Frontier)
	vals, err := s.col.TreeCrawl(channels)
	if err != nil {
		return nil, err
	}
	log.Printf("collector: tree_crawl expanded %d nodes into %d", start, len(vals))
	return vals, nil
}

// TreeCrawlLast is TreeCrawl's last-level counterpart.
func (s *Server) TreeCrawlLast(channels []mpcchannel.Channel) ([]field.U, error) {
	start := len(s.col.Frontier)
	vals, err := s.col.TreeCrawlLast(channels)
	if err != nil {
		return nil, err
	}
	log.Printf("collector: tree_crawl_last expanded %d nodes into %d", start, len(vals))
	return vals, nil
}

// TreePrune drops frontier nodes the leader decided not to keep.
func (s *Server) TreePrune(keep *bitset.BitSet) error {
	return s.col.TreePrune(keep)
}

// TreePruneLast is TreePrune's last-level counterpart.
func (s *Server) TreePruneLast(keep *bitset.BitSet) error {
	return s.col.TreePruneLast(keep)
}

// FinalShares returns this server's share of the surviving last-level
// results.
func (s *Server) FinalShares() []frontier.Result {
	return s.col.FinalShares()
}

// Leader holds the thresholding and reconstruction logic run by the
// party that collects both servers' replies each round.
type Leader struct {
	NumClients int
	Threshold  int
}

// Reconstruct applies the keep rule (reconstructed count >= threshold)
// to one level's T-valued per-node sums from both servers.
func (l Leader) Reconstruct(vals0, vals1 []field.T) (*bitset.BitSet, error) {
	th := field.ZeroT()
	for i := 0; i < l.Threshold; i++ {
		th = th.Add(field.OneT())
	}
	keep, err := frontier.KeepValues(l.NumClients, th, vals0, vals1)
	if err != nil {
		return nil, fmt.Errorf("collector: reconstruct: %w", err)
	}
	return keep, nil
}

// ReconstructLast is Reconstruct's U-field counterpart for the last
// level.
func (l Leader) ReconstructLast(vals0, vals1 []field.U) (*bitset.BitSet, error) {
	th := field.ZeroU()
	for i := 0; i < l.Threshold; i++ {
		th = th.Add(field.OneU())
	}
	keep, err := frontier.KeepValuesLast(l.NumClients, th, vals0, vals1)
	if err != nil {
		return nil, fmt.Errorf("collector: reconstruct last level: %w", err)
	}
	return keep, nil
}

// FinalValues reconstructs the plaintext counts for the surviving
// heavy-hitter paths from both servers' final shares.
func (l Leader) FinalValues(res0, res1 []frontier.Result) ([]frontier.Result, error) {
	out, err := frontier.FinalValues(res0, res1)
	if err != nil {
		return nil, fmt.Errorf("collector: final values: %w", err)
	}
	return out, nil
}
