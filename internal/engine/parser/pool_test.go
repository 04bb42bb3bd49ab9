package parser

import (
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParserPool_ConcurrentUse(t *testing.T) {
	loader, err := NewGrammarLoader(nil)
	require.NoError(t, err)
	pool := NewParserPool(loader.Language("javascript"))

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			tree := pool.Parse([]byte("import x from './x';"))
			if !assert.NotNil(t, tree) {
				return
			}
			defer tree.Close()
			assert.False(t, tree.RootNode().HasError())
		}()
	}
	wg.Wait()
	assert.Equal(t, 0, pool.InUse())
}

func TestParserPool_TracksBorrowed(t *testing.T) {
	loader, err := NewGrammarLoader(nil)
	require.NoError(t, err)
	pool := NewParserPool(loader.Language("python"))

	a := pool.Get()
	b := pool.Get()
	assert.Equal(t, 2, pool.InUse())
	pool.Put(a)
	pool.Put(b)
	pool.Put(nil)
	assert.Equal(t, 0, pool.InUse())
}
