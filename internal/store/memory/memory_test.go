package memory

import (
	"testing"

	"github.com/memvault/memvault/internal/store"
	"github.com/memvault/memvault/internal/store/storetest"
)

func TestMemoryStore_Compliance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store { return New() })
}
