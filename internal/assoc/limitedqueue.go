package assoc

import "container/heap"

// LimitedQueue is a fixed-capacity priority queue: pushing past capacity
// silently discards the current lowest-priority item, per §7's
// OverCapacity error kind — "a limited-queue saw more items than capacity;
// silently discards lowest-priority item (this is the design intent, not
// an error)." less reports whether a has lower priority than b; the item
// less ranks lowest is the eviction candidate.
type LimitedQueue[T any] struct {
	capacity int
	h        *boundedHeap[T]
}

// NewLimitedQueue builds a queue holding at most capacity items, ranked by
// less (true means a has lower priority than b — the heap's root is
// always the current lowest-priority item, so it's what gets evicted).
func NewLimitedQueue[T any](capacity int, less func(a, b T) bool) *LimitedQueue[T] {
	if capacity < 1 {
		capacity = 1
	}
	h := &boundedHeap[T]{less: less}
	heap.Init(h)
	return &LimitedQueue[T]{capacity: capacity, h: h}
}

// Push inserts an item, evicting the current lowest-priority item if the
// queue is already at capacity and the new item outranks it.
func (q *LimitedQueue[T]) Push(item T) {
	if q.h.Len() < q.capacity {
		heap.Push(q.h, item)
		return
	}
	if q.h.less(q.h.items[0], item) {
		q.h.items[0] = item
		heap.Fix(q.h, 0)
	}
	// else: item ranks at or below the current minimum; discarded, per
	// OverCapacity's documented design intent.
}

// Len returns the number of items currently held.
func (q *LimitedQueue[T]) Len() int { return q.h.Len() }

// Items drains the queue and returns its contents, highest-priority first.
func (q *LimitedQueue[T]) Items() []T {
	out := make([]T, 0, q.h.Len())
	for q.h.Len() > 0 {
		out = append(out, heap.Pop(q.h).(T))
	}
	// heap.Pop yields ascending priority (root = lowest); reverse for
	// highest-priority-first.
	for i, j := 0, len(out)-1; i < j; i, j = i+1, j-1 {
		out[i], out[j] = out[j], out[i]
	}
	return out
}

type boundedHeap[T any] struct {
	items []T
	less  func(a, b T) bool
}

func (h *boundedHeap[T]) Len() int { return len(h.items) }
func (h *boundedHeap[T]) Less(i, j int) bool {
	// min-heap on priority: root is the lowest-priority item.
	return h.less(h.items[i], h.items[j])
}
func (h *boundedHeap[T]) Swap(i, j int) { h.items[i], h.items[j] = h.items[j], h.items[i] }
func (h *boundedHeap[T]) Push(x any)    { h.items = append(h.items, x.(T)) }
func (h *boundedHeap[T]) Pop() any {
	old := h.items
	n := len(old)
	item := old[n-1]
	h.items = old[:n-1]
	return item
}
