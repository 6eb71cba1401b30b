package memory

import (
	"fmt"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestBufferRenderEmpty(t *testing.T) {
	buf := NewBuffer(3)
	require.Equal(t, "", buf.Render())
}

func TestBufferRenderFormat(t *testing.T) {
	buf := NewBuffer(3)
	buf.Append("what is up", "not much")
	require.Equal(t, "Human: what is up\nAssistant: not much", buf.Render())
}

func TestBufferWindowEviction(t *testing.T) {
	buf := NewBuffer(3)
	for i := 1; i <= 5; i++ {
		buf.Append(fmt.Sprintf("q%d", i), fmt.Sprintf("a%d", i))
	}
	rendered := buf.Render()
	lines := strings.Split(rendered, "\n")
	require.Len(t, lines, 6)
	require.Equal(t, "Human: q3", lines[0])
	require.Equal(t, "Assistant: a5", lines[5])
	require.NotContains(t, rendered, "q1")
	require.NotContains(t, rendered, "q2")
	// chronological order preserved
	require.True(t, strings.Index(rendered, "q3") < strings.Index(rendered, "q4"))
	require.True(t, strings.Index(rendered, "q4") < strings.Index(rendered, "q5"))
}

func TestStoreIsolatesDatasets(t *testing.T) {
	store := NewStore(3)
	store.Append("alpha", "qa", "aa")
	store.Append("beta", "qb", "ab")
	require.Contains(t, store.Render("alpha"), "qa")
	require.NotContains(t, store.Render("alpha"), "qb")
	require.Contains(t, store.Render("beta"), "qb")
}

func TestStoreDrop(t *testing.T) {
	store := NewStore(3)
	store.Append("alpha", "q", "a")
	store.Drop("alpha")
	require.Equal(t, "", store.Render("alpha"))
}

func TestBufferConcurrentAppend(t *testing.T) {
	buf := NewBuffer(3)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			for j := 0; j < 25; j++ {
				buf.Append(fmt.Sprintf("q%d-%d", n, j), fmt.Sprintf("a%d-%d", n, j))
			}
		}(i)
	}
	wg.Wait()
	// the window holds regardless of interleaving
	lines := strings.Split(buf.Render(), "\n")
	require.Len(t, lines, 6)
	require.True(t, strings.HasPrefix(lines[0], "Human: "))
	require.True(t, strings.HasPrefix(lines[5], "Assistant: "))
}

func TestStoreConcurrentMutation(t *testing.T) {
	store := NewStore(3)
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			dataset := fmt.Sprintf("ds%d", n%2)
			for j := 0; j < 50; j++ {
				store.Append(dataset, fmt.Sprintf("q%d", j), fmt.Sprintf("a%d", j))
				_ = store.Render(dataset)
				if j%10 == 9 {
					store.Drop(dataset)
				}
			}
		}(i)
	}
	wg.Wait()
	// buffers still behave after the churn
	store.Drop("ds0")
	store.Append("ds0", "q", "a")
	require.Equal(t, "Human: q\nAssistant: a", store.Render("ds0"))
}
