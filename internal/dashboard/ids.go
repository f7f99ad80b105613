package dashboard

// The platform treats strictly negative identifiers in a write payload as
// "create on write". IDAllocator isolates that convention: it hands out
// strictly decreasing negative integers seeded below every identifier
// already present in scope, so each new entity in a single write is distinct
// from every existing one.
type IDAllocator struct {
	next int
}

// NewIDAllocator seeds an allocator from the identifiers currently in
// scope. The first allocated id is min(smallest existing − 1, −1).
func NewIDAllocator(existing []int) *IDAllocator {
	next := -1
	for _, id := range existing {
		if id-1 < next {
			next = id - 1
		}
	}
	return &IDAllocator{next: next}
}

// Next returns the next fresh negative identifier.
func (a *IDAllocator) Next() int {
	id := a.next
	a.next--
	return id
}
