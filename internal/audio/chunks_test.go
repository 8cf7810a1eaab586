package audio

import "testing"

func TestChunkTableInOrderCompletion(t *testing.T) {
	c := NewChunkTable()
	c.Start(3)

	for i := 1; i <= 3; i++ {
		if !c.Add(i, []int32{int32(i)}) {
			t.Fatalf("Chunk %d rejected", i)
		}
		if i < 3 && c.Complete() {
			t.Fatalf("Complete after %d of 3 chunks", i)
		}
	}
	if !c.Complete() {
		t.Fatal("Not complete after all chunks")
	}

	got := c.Linearize()
	want := []int32{1, 2, 3}
	for i, v := range want {
		if got[i] != v {
			t.Errorf("Sample %d = %d, want %d", i, got[i], v)
		}
	}
}

func TestChunkTableOutOfOrderMatchesInOrder(t *testing.T) {
	inOrder := NewChunkTable()
	inOrder.Start(3)
	inOrder.Add(1, []int32{10, 11})
	inOrder.Add(2, []int32{20})
	inOrder.Add(3, []int32{30, 31, 32})
	want := inOrder.Linearize()

	outOfOrder := NewChunkTable()
	outOfOrder.Start(3)
	outOfOrder.Add(2, []int32{20})
	outOfOrder.Add(3, []int32{30, 31, 32})
	if outOfOrder.Complete() {
		t.Fatal("Complete before the first chunk arrived")
	}
	outOfOrder.Add(1, []int32{10, 11})
	if !outOfOrder.Complete() {
		t.Fatal("Not complete after final missing chunk")
	}
	got := outOfOrder.Linearize()

	if len(got) != len(want) {
		t.Fatalf("Lengths differ: %d vs %d", len(got), len(want))
	}
	for i := range want {
		if got[i] != want[i] {
			t.Errorf("Sample %d = %d, want %d", i, got[i], want[i])
		}
	}
}

func TestChunkTableRejectsOutOfRange(t *testing.T) {
	c := NewChunkTable()
	c.Start(2)

	if c.Add(0, []int32{1}) {
		t.Error("Index 0 accepted")
	}
	if c.Add(3, []int32{1}) {
		t.Error("Index past total accepted")
	}
	if c.Add(-1, []int32{1}) {
		t.Error("Negative index accepted")
	}
	if c.Received() != 0 {
		t.Errorf("Rejected chunks counted: %d", c.Received())
	}
}

func TestChunkTableDuplicateDoesNotComplete(t *testing.T) {
	c := NewChunkTable()
	c.Start(2)

	c.Add(1, []int32{1})
	c.Add(1, []int32{2})

	if c.Complete() {
		t.Fatal("Duplicate index completed the transfer")
	}
	if c.Received() != 1 {
		t.Errorf("Received = %d, want 1", c.Received())
	}

	c.Add(2, []int32{3})
	got := c.Linearize()
	if len(got) != 2 || got[0] != 2 || got[1] != 3 {
		t.Errorf("Duplicate should overwrite its slot, got %v", got)
	}
}

func TestChunkTableStartWithoutTotal(t *testing.T) {
	c := NewChunkTable()
	c.Start(0)

	if c.Add(1, []int32{1}) {
		t.Error("Chunk accepted with zero declared total")
	}
	if c.Complete() {
		t.Error("Empty transfer reported complete")
	}
}

func TestChunkTableLinearizeResets(t *testing.T) {
	c := NewChunkTable()
	c.Start(1)
	c.Add(1, []int32{5})
	c.Linearize()

	if c.Expected() != 0 || c.Received() != 0 {
		t.Errorf("Table not reset: %d/%d", c.Received(), c.Expected())
	}
	if c.Add(1, []int32{5}) {
		t.Error("Chunk accepted after reset without a new start")
	}
}

func TestChunkTableEmptyChunkCounts(t *testing.T) {
	c := NewChunkTable()
	c.Start(2)

	c.Add(1, []int32{})
	c.Add(2, []int32{7})

	if !c.Complete() {
		t.Fatal("Empty chunk did not count toward completion")
	}
	got := c.Linearize()
	if len(got) != 1 || got[0] != 7 {
		t.Errorf("Linearize = %v, want [7]", got)
	}
}
