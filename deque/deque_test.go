package deque

import (
	"testing"

	"soilsim/model"
)

func TestArrDeque_AddLastEvictsOldest(t *testing.T) {
	deque := NewArrDeque(3)
	for day := 1; day <= 5; day++ {
		deque.AddLast(model.ColumnSnapshot{Day: day})
	}
	if !deque.IsFull() || deque.Size() != 3 {
		t.Fatalf("size %d, full %v", deque.Size(), deque.IsFull())
	}
	var days []int
	deque.Traverse(func(i int, item *model.ColumnSnapshot) {
		days = append(days, item.Day)
	})
	if len(days) != 3 || days[0] != 3 || days[2] != 5 {
		t.Errorf("days %v, want [3 4 5]", days)
	}
	if deque.Last().Day != 5 {
		t.Errorf("last day %d", deque.Last().Day)
	}
}

func TestArrDeque_BothEnds(t *testing.T) {
	deque := NewArrDeque(4)
	deque.AddLast(model.ColumnSnapshot{Day: 2})
	deque.AddFirst(model.ColumnSnapshot{Day: 1})
	deque.AddLast(model.ColumnSnapshot{Day: 3})
	if deque.Get(0).Day != 1 || deque.Get(2).Day != 3 {
		t.Errorf("order %v", deque.Items())
	}
	deque.RemoveFirst()
	deque.RemoveLast()
	if deque.Size() != 1 || deque.Get(0).Day != 2 {
		t.Errorf("after removals %v", deque.Items())
	}
	deque.RemoveLast()
	deque.RemoveLast()
	if !deque.IsEmpty() || deque.Last() != nil {
		t.Error("deque should be empty")
	}
}

func BenchmarkArrDeque_AddLast(b *testing.B) {
	deque := NewArrDeque(365)
	for i := 0; i < b.N; i++ {
		deque.AddLast(model.ColumnSnapshot{Day: i})
	}
}

func BenchmarkArrDeque_AddFirst(b *testing.B) {
	deque := NewArrDeque(365)
	for i := 0; i < b.N; i++ {
		deque.AddFirst(model.ColumnSnapshot{Day: i})
		deque.RemoveFirst()
	}
}
