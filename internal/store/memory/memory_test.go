package memory

import (
	"testing"

	"github.com/rootsofthewild/village-weather/internal/store"
	"github.com/rootsofthewild/village-weather/internal/store/storetest"
)

func TestMemoryStore_Conformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) store.Store {
		return New()
	})
}
