package preview

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestShouldIgnoreEvent(t *testing.T) {
	ignored := []string{
		"/content/.hidden.md",
		"/content/post.md~",
		"/content/.post.md.swp",
		"/content/.#post.md",
		"/content/#post.md#",
		"/content/Thumbs.db",
		"/content/.DS_Store",
	}
	for _, p := range ignored {
		require.True(t, shouldIgnoreEvent(p), "expected %q to be ignored", p)
	}

	kept := []string{
		"/content/post.md",
		"/content/notes/deep.md",
		"/content/css/custom.css",
	}
	for _, p := range kept {
		require.False(t, shouldIgnoreEvent(p), "expected %q to trigger a rebuild", p)
	}
}

func TestDebouncer_CoalescesBursts(t *testing.T) {
	rebuildReq, trigger := newDebouncer()

	for i := 0; i < 10; i++ {
		trigger()
	}

	select {
	case <-rebuildReq:
	case <-time.After(2 * time.Second):
		t.Fatal("debounced rebuild request never arrived")
	}

	// The burst collapses into a single request.
	select {
	case <-rebuildReq:
		t.Fatal("burst produced more than one rebuild request")
	case <-time.After(2 * debounceDelay):
	}
}
