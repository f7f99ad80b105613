package dashboard

import "testing"

func TestIDAllocator_startsAtMinusOne(t *testing.T) {
	a := NewIDAllocator(nil)
	if got := a.Next(); got != -1 {
		t.Fatalf("first id = %d, want -1", got)
	}
	if got := a.Next(); got != -2 {
		t.Fatalf("second id = %d, want -2", got)
	}
}

func TestIDAllocator_seedsBelowExisting(t *testing.T) {
	tests := []struct {
		name     string
		existing []int
		want     int
	}{
		{"positives only", []int{3, 7, 1}, -1},
		{"negative present", []int{3, -2, 7}, -3},
		{"deeply negative", []int{-10}, -11},
		{"empty", nil, -1},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := NewIDAllocator(tt.existing).Next(); got != tt.want {
				t.Errorf("Next() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestIDAllocator_strictlyDecreasing(t *testing.T) {
	a := NewIDAllocator([]int{1, 2, 3})
	seen := map[int]bool{1: true, 2: true, 3: true}
	prev := 0
	for i := 0; i < 50; i++ {
		id := a.Next()
		if id >= 0 {
			t.Fatalf("allocated non-negative id %d", id)
		}
		if seen[id] {
			t.Fatalf("id %d collides", id)
		}
		if prev != 0 && id >= prev {
			t.Fatalf("id %d not below previous %d", id, prev)
		}
		seen[id] = true
		prev = id
	}
}
