package audio

// ChunkTable reassembles an audio transfer delivered as explicitly
// indexed chunks in arbitrary order. Slots are sized up front from the
// declared total; the transfer completes when every slot has been filled
// at least once.
type ChunkTable struct {
	slots  [][]int32
	filled int
	total  int
}

// NewChunkTable creates an empty table with no transfer in progress.
func NewChunkTable() *ChunkTable {
	return &ChunkTable{}
}

// Start resets the table for a new transfer of totalChunks chunks. A
// non-positive total leaves the table empty, so every indexed chunk is
// out of range.
func (c *ChunkTable) Start(totalChunks int) {
	if totalChunks < 0 {
		totalChunks = 0
	}
	c.slots = make([][]int32, totalChunks)
	c.filled = 0
	c.total = totalChunks
}

// Add stores samples at the 1-based chunk index. Indexes outside
// [1, total] are rejected. A duplicate index overwrites its slot without
// advancing the completion count.
func (c *ChunkTable) Add(index int, samples []int32) bool {
	if index < 1 || index > c.total {
		return false
	}
	if c.slots[index-1] == nil {
		c.filled++
	}
	if samples == nil {
		samples = []int32{}
	}
	c.slots[index-1] = samples
	return true
}

// Complete reports whether every declared chunk has arrived.
func (c *ChunkTable) Complete() bool {
	return c.total > 0 && c.filled >= c.total
}

// Linearize returns all samples in chunk index order and resets the
// table.
func (c *ChunkTable) Linearize() []int32 {
	n := 0
	for _, slot := range c.slots {
		n += len(slot)
	}
	out := make([]int32, 0, n)
	for _, slot := range c.slots {
		out = append(out, slot...)
	}
	c.Reset()
	return out
}

// Reset clears all transfer state.
func (c *ChunkTable) Reset() {
	c.slots = nil
	c.filled = 0
	c.total = 0
}

// Received returns the number of distinct chunks stored so far.
func (c *ChunkTable) Received() int {
	return c.filled
}

// Expected returns the declared chunk count of the current transfer.
func (c *ChunkTable) Expected() int {
	return c.total
}
