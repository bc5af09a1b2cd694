// Package snowflake generates unique 64-bit tweet ids that sort by
// creation time: 41 bits of milliseconds since a custom epoch, 10 bits of
// node id, 12 bits of per-millisecond sequence.
package snowflake

import (
	"fmt"
	"sync"
	"time"
)

const (
	// epoch is 2022-11-10T00:00:00Z in Unix milliseconds, the day the
	// tweets schema first shipped.
	epoch int64 = 1668038400000

	nodeBits = 10
	seqBits  = 12

	maxNode = -1 ^ (-1 << nodeBits)
	maxSeq  = -1 ^ (-1 << seqBits)

	timeShift = nodeBits + seqBits
	nodeShift = seqBits
)

// Generator hands out ids for a single node. Safe for concurrent use.
type Generator struct {
	mu     sync.Mutex
	node   int64
	lastTS int64
	seq    int64
	now    func() time.Time
}

// New creates a Generator for the given node id (0..1023).
func New(node int64) (*Generator, error) {
	if node < 0 || node > maxNode {
		return nil, fmt.Errorf("snowflake node id %d out of range [0, %d]", node, maxNode)
	}
	return &Generator{node: node, now: time.Now}, nil
}

// Next returns the next id. Ids issued by one generator are strictly
// increasing; ids from different nodes are unique and millisecond-ordered.
func (g *Generator) Next() int64 {
	g.mu.Lock()
	defer g.mu.Unlock()

	ts := g.now().UnixMilli()
	if ts < g.lastTS {
		// Clock went backwards; hold the line until it catches up.
		ts = g.lastTS
	}

	if ts == g.lastTS {
		g.seq = (g.seq + 1) & maxSeq
		if g.seq == 0 {
			for ts <= g.lastTS {
				ts = g.now().UnixMilli()
			}
		}
	} else {
		g.seq = 0
	}
	g.lastTS = ts

	return (ts-epoch)<<timeShift | g.node<<nodeShift | g.seq
}

// Timestamp extracts the creation time embedded in an id.
func Timestamp(id int64) time.Time {
	return time.UnixMilli((id >> timeShift) + epoch)
}
