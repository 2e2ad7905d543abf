package utils_test

import (
	"testing"

	"n2t.dev/toolchain/pkg/utils"
)

func TestRing(t *testing.T) {
	t.Run("FIFO ordering", func(t *testing.T) {
		ring := utils.NewRing[int](3)
		ring.Push(1)
		ring.Push(2)
		ring.Push(3)

		for _, want := range []int{1, 2, 3} {
			got, err := ring.Pop()
			if err != nil {
				t.Fatalf("unexpected error popping ring: %s", err)
			}
			if got != want {
				t.Fatalf("expected %d, got %d", want, got)
			}
		}
	})

	t.Run("wraps around after draining", func(t *testing.T) {
		ring := utils.NewRing[int](2)
		ring.Push(1)
		ring.Pop()
		ring.Push(2)
		ring.Push(3)

		if !ring.Full() {
			t.Fatalf("expected ring to be full")
		}
		got, _ := ring.Pop()
		if got != 2 {
			t.Fatalf("expected 2, got %d", got)
		}
	})

	t.Run("pop on empty ring errors", func(t *testing.T) {
		ring := utils.NewRing[int](1)
		if _, err := ring.Pop(); err == nil {
			t.Fatalf("expected error popping empty ring")
		}
	})

	t.Run("push on full ring panics", func(t *testing.T) {
		defer func() {
			if recover() == nil {
				t.Fatalf("expected panic pushing onto full ring")
			}
		}()
		ring := utils.NewRing[int](1)
		ring.Push(1)
		ring.Push(2)
	})
}
