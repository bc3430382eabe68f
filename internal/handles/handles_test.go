package handles

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterLookup(t *testing.T) {
	type payload struct{ n int }
	v := &payload{n: 7}
	id := Register(v)
	require.NotZero(t, id)
	require.Same(t, v, Lookup(id))
	Delete(id)
	require.Nil(t, Lookup(id))
}

func TestTake(t *testing.T) {
	id := Register("once")
	require.Equal(t, "once", Take(id))
	require.Nil(t, Take(id))
	require.Nil(t, Lookup(id))
}

func TestConcurrent(t *testing.T) {
	before := Count()
	var wg sync.WaitGroup
	for g := range 16 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for ii := range 100 {
				id := Register(g*1000 + ii)
				assert.Equal(t, g*1000+ii, Lookup(id))
				assert.Equal(t, g*1000+ii, Take(id))
			}
		}()
	}
	wg.Wait()
	require.Equal(t, before, Count())
}
