package correlation

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromHeaderOrGenerateHonorsHeader(t *testing.T) {
	assert.Equal(t, "abc-123", FromHeaderOrGenerate("  abc-123  "))
}

func TestFromHeaderOrGenerateGeneratesWhenEmpty(t *testing.T) {
	id := FromHeaderOrGenerate("   ")
	assert.True(t, strings.HasPrefix(id, "req_"))
	parts := strings.Split(id, "_")
	require.Len(t, parts, 3)
}

func TestWithRestoresOuterValueAfterReturn(t *testing.T) {
	base := context.Background()
	With(base, "outer", func(outerCtx context.Context) {
		id, ok := From(outerCtx)
		require.True(t, ok)
		assert.Equal(t, "outer", id)

		With(outerCtx, "inner", func(innerCtx context.Context) {
			id, _ := From(innerCtx)
			assert.Equal(t, "inner", id)
		})

		// outerCtx itself is unaffected by the nested With — contexts are
		// immutable, so there is nothing to "restore".
		id, ok = From(outerCtx)
		require.True(t, ok)
		assert.Equal(t, "outer", id)
	})
}

func TestConcurrentRequestsDoNotLeakCorrelationIDs(t *testing.T) {
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		id := Generate()
		go func(id string) {
			defer wg.Done()
			With(context.Background(), id, func(ctx context.Context) {
				got, ok := From(ctx)
				require.True(t, ok)
				assert.Equal(t, id, got)
			})
		}(id)
	}
	wg.Wait()
}
