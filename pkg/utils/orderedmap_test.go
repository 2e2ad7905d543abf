package utils_test

import (
	"testing"

	"n2t.dev/toolchain/pkg/utils"
)

func TestOrderedMap(t *testing.T) {
	t.Run("preserves insertion order", func(t *testing.T) {
		m := utils.NewOrderedMap[string, int]()
		m.Set("b", 2)
		m.Set("a", 1)
		m.Set("c", 3)

		keys := m.Keys()
		expected := []string{"b", "a", "c"}
		for i, k := range expected {
			if keys[i] != k {
				t.Fatalf("expected key %d to be %q, got %q", i, k, keys[i])
			}
		}
	})

	t.Run("overwrite keeps position", func(t *testing.T) {
		m := utils.NewOrderedMap[string, int]()
		m.Set("a", 1)
		m.Set("b", 2)
		m.Set("a", 99)

		if m.Count() != 2 {
			t.Fatalf("expected 2 entries, got %d", m.Count())
		}
		val, err := m.Get("a")
		if err != nil || val != 99 {
			t.Fatalf("expected overwritten value 99, got %d (err: %v)", val, err)
		}
	})

	t.Run("missing key errors", func(t *testing.T) {
		m := utils.NewOrderedMap[string, int]()
		if _, err := m.Get("nope"); err == nil {
			t.Fatalf("expected error for missing key")
		}
	})
}
