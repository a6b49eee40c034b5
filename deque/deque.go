/**
 *
 * 利用数组实现的定长双端队列，保存土壤柱最近若干天的快照
 * 队列满时 AddLast 会挤掉最早的一天
 *
 */

package deque

import "soilsim/model"

type Deque interface {
	// 队列的长度
	Size() int

	// 获取队列中对应下标的快照, 0 为最早
	Get(i int) *model.ColumnSnapshot

	// 正向遍历
	Traverse(f func(i int, item *model.ColumnSnapshot))

	// 在队列结尾增加一个元素
	AddLast(item model.ColumnSnapshot)

	// 在队列结尾删除一个元素
	RemoveLast()

	// 在队列头部增加一个元素
	AddFirst(item model.ColumnSnapshot)

	// 在队列头部删除一个元素
	RemoveFirst()

	IsFull() bool

	IsEmpty() bool
}
