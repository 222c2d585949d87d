package memory

import (
	"testing"

	"loot/internal/platform/kv"
	"loot/internal/platform/kv/kvtest"
)

func TestConformance(t *testing.T) {
	kvtest.Run(t, func(*testing.T) kv.Store { return New() })
}
