package infra

import (
	"testing"
	"time"
)

func TestCalculateBackoff(t *testing.T) {
	t.Run("doubles per retry", func(t *testing.T) {
		if got := CalculateBackoff(0); got != 1*time.Second {
			t.Errorf("Expected 1s, got %v", got)
		}
		if got := CalculateBackoff(3); got != 8*time.Second {
			t.Errorf("Expected 8s, got %v", got)
		}
	})

	t.Run("caps at the maximum", func(t *testing.T) {
		if got := CalculateBackoff(20); got != 60*time.Second {
			t.Errorf("Expected 60s cap, got %v", got)
		}
	})

	t.Run("negative retry treated as zero", func(t *testing.T) {
		if got := CalculateBackoff(-5); got != 1*time.Second {
			t.Errorf("Expected 1s, got %v", got)
		}
	})
}
