// Package frontier implements the KeyCollection/frontier engine: the
// live prefix-tree state each server keeps while the leader drives a
// multi-round protocol that expands the tree one level at a time, counts
// how many clients' L∞-ball keys match each candidate prefix via a
// garbled-equality-then-OT pipeline, and prunes prefixes that fall below
// threshold. It mirrors the reference KeyCollection this system was
// distilled from, with the crossbeam worker-scope of that implementation
// rebuilt as a Go goroutine-per-channel fan-out.
package frontier

import (
	"errors"
	"fmt"
	"math/big"
	"sync"

	"heavyhitters/ball"
	"heavyhitters/field"
	"heavyhitters/gc"
	"heavyhitters/mpcchannel"
	"heavyhitters/ot"

	"github.com/bits-and-blooms/bitset"
)

// ClientKey is one client's L∞-ball key share plus the liveness flag the
// leader can flip to exclude a client from future counting rounds
// without re-keying the whole collection.
type ClientKey struct {
	Live bool
	Key  ball.Key
}

// TreeNode is one live node of the shared prefix tree: a d-axis path
// (the prefix bits chosen so far, per axis) and, for every client, the
// evaluation cursor reached by walking that path.
type TreeNode struct {
	Path      [][]bool
	KeyStates []ball.EvalState
}

// Result pairs a final-level tree path with the field value accumulated
// for it, mirroring the wire shape a leader reconstructs a count from.
type Result struct {
	Path  [][]bool
	Value field.U
}

// Collection is one server's half of the frontier engine. GCSender
// distinguishes the garbler role (server 0) from the evaluator role
// (server 1) for the counting round's garbled-equality-then-OT pipeline;
// every exported method that mutates state takes Mu, matching the
// single-exclusive-mutex-per-server contract the leader's RPC surface
// relies on.
type Collection struct {
	Mu sync.Mutex

	GCSender bool
	Depth    int

	Keys         []ClientKey
	Frontier     []TreeNode
	FrontierLast []Result
}

// New creates an empty collection for the given tree depth.
func New(gcSender bool, depth int) *Collection {
	return &Collection{GCSender: gcSender, Depth: depth}
}

// Reset discards all keys and tree state.
func (c *Collection) Reset() {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Keys = nil
	c.Frontier = nil
	c.FrontierLast = nil
}

// AddKey registers one client's ball key share, live by default.
func (c *Collection) AddKey(key ball.Key) {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	c.Keys = append(c.Keys, ClientKey{Live: true, Key: key})
}

// TreeInit resets the frontier to a single root node covering every
// registered client.
func (c *Collection) TreeInit() error {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if len(c.Keys) == 0 {
		return errors.New("frontier: no keys registered")
	}
	d := c.Keys[0].Key.Dimension()
	root := TreeNode{
		Path:      make([][]bool, d),
		KeyStates: make([]ball.EvalState, len(c.Keys)),
	}
	for i, k := range c.Keys {
		root.KeyStates[i] = ball.EvalInit(k.Key)
	}
	c.Frontier = []TreeNode{root}
	c.FrontierLast = nil
	return nil
}

// allBitVectors enumerates every bit string of length d in ascending
// lexicographic order, the fixed child-expansion order the frontier uses
// at every level so both servers expand identically without
// coordination.
func allBitVectors(d int) [][]bool {
	n := 1 << d
	out := make([][]bool, n)
	for v := 0; v < n; v++ {
		bits := make([]bool, d)
		for i := 0; i < d; i++ {
			bits[i] = (v>>(d-1-i))&1 == 1
		}
		out[v] = bits
	}
	return out
}

func (c *Collection) makeChild(parent TreeNode, searchString []bool) (TreeNode, error) {
	child := TreeNode{
		Path:      make([][]bool, len(parent.Path)),
		KeyStates: make([]ball.EvalState, len(c.Keys)),
	}
	for axis := range parent.Path {
		child.Path[axis] = append(append([]bool{}, parent.Path[axis]...), searchString[axis])
	}
	for i, k := range c.Keys {
		state, err := ball.EvalBit(k.Key, parent.KeyStates[i], searchString)
		if err != nil {
			return TreeNode{}, fmt.Errorf("frontier: expand client %d: %w", i, err)
		}
		child.KeyStates[i] = state
	}
	return child, nil
}

func (c *Collection) expand() ([]TreeNode, error) {
	if len(c.Keys) == 0 {
		return nil, errors.New("frontier: no keys registered")
	}
	d := c.Keys[0].Key.Dimension()
	searchStrings := allBitVectors(d)

	next := make([]TreeNode, 0, len(c.Frontier)*len(searchStrings))
	for _, node := range c.Frontier {
		for _, s := range searchStrings {
			child, err := c.makeChild(node, s)
			if err != nil {
				return nil, err
			}
			next = append(next, child)
		}
	}
	return next, nil
}

// crawlChunk runs the garbled-equality-then-OT pipeline for one worker's
// contiguous slice of the flattened (node, client) evidence matrix and
// returns one T element per row, in the same order.
func crawlChunk(gcSender bool, ch mpcchannel.Channel, evidence [][]bool) ([]field.T, error) {
	var binaryShares []bool
	var err error
	if gcSender {
		binaryShares, err = gc.Garbler{Channel: ch}.Run(evidence)
	} else {
		binaryShares, err = gc.Evaluator{Channel: ch}.Run(evidence)
	}
	if err != nil {
		return nil, fmt.Errorf("frontier: equality test: %w", err)
	}

	if gcSender {
		pairs := make([][2]field.T, len(binaryShares))
		vals := make([]field.T, len(binaryShares))
		for i, mask := range binaryShares {
			r0 := field.RandomT()
			r1 := r0.Add(field.OneT())
			vals[i] = r1
			if mask {
				pairs[i] = [2]field.T{r0, r1}
			} else {
				pairs[i] = [2]field.T{r1, r0}
			}
		}
		if err := ot.Send(ch, pairs); err != nil {
			return nil, fmt.Errorf("frontier: ot send: %w", err)
		}
		return vals, nil
	}

	vals, err := ot.Receive(ch, binaryShares)
	if err != nil {
		return nil, fmt.Errorf("frontier: ot receive: %w", err)
	}
	return vals, nil
}

// crawlChunkLast is crawlChunk's field-U counterpart for the tree's last
// level.
func crawlChunkLast(gcSender bool, ch mpcchannel.Channel, evidence [][]bool) ([]field.U, error) {
	var binaryShares []bool
	var err error
	if gcSender {
		binaryShares, err = gc.Garbler{Channel: ch}.Run(evidence)
	} else {
		binaryShares, err = gc.Evaluator{Channel: ch}.Run(evidence)
	}
	if err != nil {
		return nil, fmt.Errorf("frontier: equality test: %w", err)
	}

	if gcSender {
		pairs := make([][2]field.U, len(binaryShares))
		vals := make([]field.U, len(binaryShares))
		for i, mask := range binaryShares {
			r0 := field.RandomU()
			r1 := r0.Add(field.OneU())
			vals[i] = r1
			if mask {
				pairs[i] = [2]field.U{r0, r1}
			} else {
				pairs[i] = [2]field.U{r1, r0}
			}
		}
		if err := ot.SendU(ch, pairs); err != nil {
			return nil, fmt.Errorf("frontier: ot send: %w", err)
		}
		return vals, nil
	}

	vals, err := ot.ReceiveU(ch, binaryShares)
	if err != nil {
		return nil, fmt.Errorf("frontier: ot receive: %w", err)
	}
	return vals, nil
}

// splitEvidence partitions the flattened evidence rows into at most
// numChunks contiguous chunks of ceil(len(evidence)/numChunks) rows each
// (the last may be shorter, and fewer than numChunks chunks result when
// the rows run out early), the same chunking the reference
// implementation's crossbeam scope used per channel.
func splitEvidence(evidence [][]bool, numChunks int) [][][]bool {
	total := len(evidence)
	chunkSize := (total + numChunks - 1) / numChunks
	if chunkSize == 0 {
		chunkSize = 1
	}
	chunks := make([][][]bool, 0, numChunks)
	for start := 0; start < total; start += chunkSize {
		end := start + chunkSize
		if end > total {
			end = total
		}
		chunks = append(chunks, evidence[start:end])
	}
	return chunks
}

// TreeCrawl expands the frontier by one level and runs the counting
// round across the given channels, one goroutine per channel each
// running the garbled-equality-then-OT pipeline on its own chunk of the
// flattened (node, client) evidence matrix. It returns one T value per
// new frontier node, the sum over live clients of that node's per-client
// match indicator.
func (c *Collection) TreeCrawl(channels []mpcchannel.Channel) ([]field.T, error) {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	if len(channels) == 0 {
		return nil, errors.New("frontier: at least one channel is required")
	}

	nextFrontier, err := c.expand()
	if err != nil {
		return nil, err
	}

	numClients := len(c.Keys)
	evidence := make([][]bool, 0, len(nextFrontier)*numClients)
	for _, node := range nextFrontier {
		for _, state := range node.KeyStates {
			evidence = append(evidence, ball.Evidence(state))
		}
	}

	chunks := splitEvidence(evidence, len(channels))
	results := make([][]field.T, len(chunks))

	var wg sync.WaitGroup
	errs := make([]error, len(chunks))
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk [][]bool, ch mpcchannel.Channel) {
			defer wg.Done()
			vals, err := crawlChunk(c.GCSender, ch, chunk)
			results[i] = vals
			errs[i] = err
		}(i, chunk, channels[i])
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	flat := make([]field.T, 0, len(evidence))
	for _, r := range results {
		flat = append(flat, r...)
	}

	sums := make([]field.T, len(nextFrontier))
	idx := 0
	for n := range nextFrontier {
		sum := field.ZeroT()
		for i := 0; i < numClients; i++ {
			if c.Keys[i].Live {
				sum = sum.Add(flat[idx])
			}
			idx++
		}
		sums[n] = sum
	}

	c.Frontier = nextFrontier
	return sums, nil
}

// TreeCrawlLast is TreeCrawl's final-level counterpart: it runs over
// field.U instead of field.T and records the resulting per-node sums
// into FrontierLast instead of replacing Frontier.
func (c *Collection) TreeCrawlLast(channels []mpcchannel.Channel) ([]field.U, error) {
	c.Mu.Lock()
	defer c.Mu.Unlock()

	if len(channels) == 0 {
		return nil, errors.New("frontier: at least one channel is required")
	}

	nextFrontier, err := c.expand()
	if err != nil {
		return nil, err
	}

	numClients := len(c.Keys)
	evidence := make([][]bool, 0, len(nextFrontier)*numClients)
	for _, node := range nextFrontier {
		for _, state := range node.KeyStates {
			evidence = append(evidence, ball.Evidence(state))
		}
	}

	chunks := splitEvidence(evidence, len(channels))
	results := make([][]field.U, len(chunks))

	var wg sync.WaitGroup
	errs := make([]error, len(chunks))
	for i, chunk := range chunks {
		wg.Add(1)
		go func(i int, chunk [][]bool, ch mpcchannel.Channel) {
			defer wg.Done()
			vals, err := crawlChunkLast(c.GCSender, ch, chunk)
			results[i] = vals
			errs[i] = err
		}(i, chunk, channels[i])
	}
	wg.Wait()

	for _, err := range errs {
		if err != nil {
			return nil, err
		}
	}

	flat := make([]field.U, 0, len(evidence))
	for _, r := range results {
		flat = append(flat, r...)
	}

	sums := make([]field.U, len(nextFrontier))
	idx := 0
	for n := range nextFrontier {
		sum := field.ZeroU()
		for i := 0; i < numClients; i++ {
			if c.Keys[i].Live {
				sum = sum.Add(flat[idx])
			}
			idx++
		}
		sums[n] = sum
	}

	c.FrontierLast = make([]Result, len(nextFrontier))
	for i, node := range nextFrontier {
		c.FrontierLast[i] = Result{Path: node.Path, Value: sums[i]}
	}

	return sums, nil
}

// TreePrune drops every frontier node whose keep bit is clear, using a
// single stable forward compaction; any stable compaction that preserves
// relative order is an acceptable replacement for the back-to-front
// removal a naive in-place delete would otherwise require.
func (c *Collection) TreePrune(keep *bitset.BitSet) error {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if keep.Len() != uint(len(c.Frontier)) {
		return fmt.Errorf("frontier: keep bitset length %d does not match frontier length %d", keep.Len(), len(c.Frontier))
	}
	kept := c.Frontier[:0]
	for i, node := range c.Frontier {
		if keep.Test(uint(i)) {
			kept = append(kept, node)
		}
	}
	c.Frontier = kept
	return nil
}

// TreePruneLast is TreePrune's counterpart for the last-level results.
func (c *Collection) TreePruneLast(keep *bitset.BitSet) error {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	if keep.Len() != uint(len(c.FrontierLast)) {
		return fmt.Errorf("frontier: keep bitset length %d does not match frontier_last length %d", keep.Len(), len(c.FrontierLast))
	}
	kept := c.FrontierLast[:0]
	for i, r := range c.FrontierLast {
		if keep.Test(uint(i)) {
			kept = append(kept, r)
		}
	}
	c.FrontierLast = kept
	return nil
}

// FinalShares returns this server's share of the surviving last-level
// results.
func (c *Collection) FinalShares() []Result {
	c.Mu.Lock()
	defer c.Mu.Unlock()
	out := make([]Result, len(c.FrontierLast))
	copy(out, c.FrontierLast)
	return out
}

// KeepValues implements the threshold rule: a node is kept when the
// reconstructed count (server 0's sum minus server 1's sum) is at least
// threshold. It is run by the leader, who is the only party that ever
// holds both servers' sums at once.
func KeepValues(nclients int, threshold field.T, vals0, vals1 []field.T) (*bitset.BitSet, error) {
	if len(vals0) != len(vals1) {
		return nil, errors.New("frontier: vals0/vals1 length mismatch")
	}
	keep := bitset.New(uint(len(vals0)))
	max := big.NewInt(int64(nclients))
	for i := range vals0 {
		v := vals0[i].Sub(vals1[i])
		if v.Int().Cmp(max) > 0 {
			return nil, fmt.Errorf("frontier: reconstructed count %s exceeds client count %d", v.Int(), nclients)
		}
		if v.Int().Cmp(threshold.Int()) >= 0 {
			keep.Set(uint(i))
		}
	}
	return keep, nil
}

// KeepValuesLast is KeepValues's field.U counterpart for the tree's last
// level.
func KeepValuesLast(nclients int, threshold field.U, vals0, vals1 []field.U) (*bitset.BitSet, error) {
	if len(vals0) != len(vals1) {
		return nil, errors.New("frontier: vals0/vals1 length mismatch")
	}
	keep := bitset.New(uint(len(vals0)))
	max := big.NewInt(int64(nclients))
	for i := range vals0 {
		v0 := vals0[i]
		v1 := vals1[i]
		v0.Reduce()
		v1.Reduce()
		v := v0.Sub(v1)
		if v.Int().Cmp(max) > 0 {
			return nil, fmt.Errorf("frontier: reconstructed count %s exceeds client count %d", v.Int(), nclients)
		}
		if v.Int().Cmp(threshold.Int()) >= 0 {
			keep.Set(uint(i))
		}
	}
	return keep, nil
}

// FinalValues reconstructs the plaintext counts the leader sees at the
// end of the protocol by subtracting the two servers' final shares,
// matching KeepValues's reconstruction convention.
func FinalValues(res0, res1 []Result) ([]Result, error) {
	if len(res0) != len(res1) {
		return nil, errors.New("frontier: final share length mismatch")
	}
	out := make([]Result, len(res0))
	for i := range res0 {
		v0 := res0[i].Value
		v1 := res1[i].Value
		v0.Reduce()
		v1.Reduce()
		out[i] = Result{Path: res0[i].Path, Value: v0.Sub(v1)}
	}
	return out, nil
}
