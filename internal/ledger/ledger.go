package ledger

import (
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// genesisPreviousHash is the fixed sentinel for block 0.
var genesisPreviousHash = strings.Repeat("0", 64)

// genesisProof seeds the monotonic proof counter. The proof is not a
// proof-of-work: it is an explicit sequence counter incremented by one per
// block, with no computational puzzle attached.
const genesisProof int64 = 1

// Block is one append-only unit of the ledger, linked to its predecessor by
// hash. Records are opaque event payloads (trade records, verification
// results); the ledger never interprets them.
type Block struct {
	Index        int64             `json:"index"`
	Timestamp    time.Time         `json:"timestamp"`
	Proof        int64             `json:"proof"`
	PreviousHash string            `json:"previous_hash"`
	Records      []json.RawMessage `json:"data"`
}

// ChainIntegrityError reports a break in the hash linkage. It voids the
// ledger's trust model and is non-recoverable within a process.
type ChainIntegrityError struct {
	Index int64
}

func (e *ChainIntegrityError) Error() string {
	return fmt.Sprintf("ledger chain integrity violated at block %d", e.Index)
}

// Ledger is the ordered, hash-linked sequence of blocks. Appends are
// serialized so index assignment, proof increment, and previous-hash linkage
// commit as one atomic step.
type Ledger struct {
	mu     sync.RWMutex
	blocks []Block
	logger *zap.Logger
}

// New creates a ledger seeded with its genesis block.
func New(logger *zap.Logger) *Ledger {
	if logger == nil {
		logger = zap.NewNop()
	}
	l := &Ledger{logger: logger}
	l.blocks = append(l.blocks, Block{
		Index:        0,
		Timestamp:    time.Now().UTC(),
		Proof:        genesisProof,
		PreviousHash: genesisPreviousHash,
	})
	return l
}

// BlockHash computes the deterministic hash of a block over a canonical,
// field-ordered serialization. It is a pure function: identical blocks hash
// identically across processes.
func BlockHash(b Block) string {
	h := sha256.New()

	var buf [8]byte
	binary.BigEndian.PutUint64(buf[:], uint64(b.Index))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(b.Timestamp.UnixNano()))
	h.Write(buf[:])
	binary.BigEndian.PutUint64(buf[:], uint64(b.Proof))
	h.Write(buf[:])
	h.Write([]byte(b.PreviousHash))
	for _, rec := range b.Records {
		binary.BigEndian.PutUint64(buf[:], uint64(len(rec)))
		h.Write(buf[:])
		h.Write(rec)
	}

	return hex.EncodeToString(h.Sum(nil))
}

// Append builds, links, and stores the next block carrying the given records,
// and returns a copy of it. It never fails: an empty chain is a programming
// error and panics.
func (l *Ledger) Append(records ...json.RawMessage) Block {
	l.mu.Lock()
	defer l.mu.Unlock()

	if len(l.blocks) == 0 {
		panic("ledger: chain has no genesis block")
	}

	last := l.blocks[len(l.blocks)-1]
	block := Block{
		Index:        int64(len(l.blocks)),
		Timestamp:    time.Now().UTC(),
		Proof:        last.Proof + 1,
		PreviousHash: BlockHash(last),
		Records:      copyRecords(records),
	}
	l.blocks = append(l.blocks, block)

	l.logger.Info("ledger.block_appended",
		zap.Int64("index", block.Index),
		zap.Int64("proof", block.Proof),
		zap.Int("records", len(block.Records)),
	)

	return cloneBlock(block)
}

// Last returns a copy of the most recent block.
func (l *Ledger) Last() Block {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return cloneBlock(l.blocks[len(l.blocks)-1])
}

// Len returns the chain length including genesis.
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.blocks)
}

// Blocks returns a snapshot copy of the full chain.
func (l *Ledger) Blocks() []Block {
	l.mu.RLock()
	defer l.mu.RUnlock()

	out := make([]Block, len(l.blocks))
	for i, b := range l.blocks {
		out[i] = cloneBlock(b)
	}
	return out
}

// Verify walks the chain and returns a ChainIntegrityError at the first
// block whose previous_hash does not match its predecessor. Corruption is
// detected, never repaired.
func (l *Ledger) Verify() error {
	l.mu.RLock()
	defer l.mu.RUnlock()

	for i := 1; i < len(l.blocks); i++ {
		if l.blocks[i].PreviousHash != BlockHash(l.blocks[i-1]) {
			l.logger.Error("ledger.chain_integrity_violation",
				zap.Int("index", i))
			return &ChainIntegrityError{Index: int64(i)}
		}
	}
	return nil
}

// VerifyChain reports whether the hash linkage holds for the whole chain.
func (l *Ledger) VerifyChain() bool {
	return l.Verify() == nil
}

func copyRecords(records []json.RawMessage) []json.RawMessage {
	if len(records) == 0 {
		return nil
	}
	out := make([]json.RawMessage, len(records))
	for i, r := range records {
		out[i] = append(json.RawMessage(nil), r...)
	}
	return out
}

func cloneBlock(b Block) Block {
	b.Records = copyRecords(b.Records)
	return b
}
