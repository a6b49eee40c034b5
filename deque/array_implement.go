package deque

import (
	"soilsim/model"
)

type ArrDeque struct {
	arr []model.ColumnSnapshot

	// 头部下标
	start int
	// 元素个数
	size int
	// 容量
	capacity int
}

// 工厂方法
func NewArrDeque(capacity int) *ArrDeque {
	if capacity < 1 {
		capacity = 1
	}
	return &ArrDeque{
		arr:      make([]model.ColumnSnapshot, capacity),
		capacity: capacity,
	}
}

func (ad *ArrDeque) Size() int {
	return ad.size
}

func (ad *ArrDeque) index(i int) int {
	return (ad.start + i) % ad.capacity
}

func (ad *ArrDeque) Get(i int) *model.ColumnSnapshot {
	if i < 0 || i >= ad.size {
		panic("index out of length")
	}
	return &ad.arr[ad.index(i)]
}

// Last returns the newest snapshot, nil when empty.
func (ad *ArrDeque) Last() *model.ColumnSnapshot {
	if ad.size == 0 {
		return nil
	}
	return ad.Get(ad.size - 1)
}

func (ad *ArrDeque) Traverse(f func(i int, item *model.ColumnSnapshot)) {
	for i := 0; i < ad.size; i++ {
		f(i, &ad.arr[ad.index(i)])
	}
}

// Items copies the snapshots from oldest to newest.
func (ad *ArrDeque) Items() []model.ColumnSnapshot {
	items := make([]model.ColumnSnapshot, 0, ad.size)
	ad.Traverse(func(_ int, item *model.ColumnSnapshot) {
		items = append(items, *item)
	})
	return items
}

func (ad *ArrDeque) AddLast(item model.ColumnSnapshot) {
	if ad.size == ad.capacity { // 满了, 丢弃最早的
		ad.arr[ad.start] = item
		ad.start = ad.index(1)
		return
	}
	ad.arr[ad.index(ad.size)] = item
	ad.size++
}

func (ad *ArrDeque) RemoveLast() {
	if ad.size == 0 {
		return
	}
	ad.size--
	ad.arr[ad.index(ad.size)] = model.ColumnSnapshot{}
}

func (ad *ArrDeque) AddFirst(item model.ColumnSnapshot) {
	if ad.size == ad.capacity { // 满了, 丢弃最新的
		ad.RemoveLast()
	}
	ad.start = (ad.start - 1 + ad.capacity) % ad.capacity
	ad.arr[ad.start] = item
	ad.size++
}

func (ad *ArrDeque) RemoveFirst() {
	if ad.size == 0 {
		return
	}
	ad.arr[ad.start] = model.ColumnSnapshot{}
	ad.start = ad.index(1)
	ad.size--
}

func (ad *ArrDeque) IsFull() bool {
	return ad.size == ad.capacity
}

func (ad *ArrDeque) IsEmpty() bool {
	return ad.size == 0
}
