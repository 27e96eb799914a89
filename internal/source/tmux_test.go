package source

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTrimOverlap(t *testing.T) {
	cases := []struct {
		name string
		prev string
		cur  string
		want string
	}{
		{
			name: "first poll returns everything",
			prev: "",
			cur:  "line a\nline b\n",
			want: "line a\nline b\n",
		},
		{
			name: "full overlap yields empty chunk",
			prev: "line a\nline b\n",
			cur:  "line a\nline b\n",
			want: "",
		},
		{
			name: "new lines after overlap",
			prev: "line a\nline b\n",
			cur:  "line a\nline b\nline c\nline d\n",
			want: "line c\nline d",
		},
		{
			name: "scrolled window keeps only tail overlap",
			prev: "old\n[ 10%] Building\n[ 20%] Building\n",
			cur:  "[ 10%] Building\n[ 20%] Building\n[ 30%] Building\n",
			want: "[ 30%] Building",
		},
		{
			name: "no overlap returns whole capture",
			prev: "completely\ndifferent\n",
			cur:  "fresh output\n",
			want: "fresh output\n",
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, trimOverlap(tc.prev, tc.cur))
		})
	}
}

func TestTmuxSourceFetch(t *testing.T) {
	captures := []string{
		"[ 10%] Building CXX object one.cc.o\n",
		"[ 10%] Building CXX object one.cc.o\n[ 20%] Building CXX object two.cc.o\n",
	}
	dead := "0"
	var calls []string

	src := NewTmuxSource("%7")
	src.run = func(ctx context.Context, args ...string) (string, error) {
		calls = append(calls, args[0])
		if args[0] == "display-message" {
			return dead + "\n", nil
		}
		out := captures[0]
		if len(captures) > 1 {
			captures = captures[1:]
		}
		return out, nil
	}

	chunk, completed, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.False(t, completed)
	assert.Contains(t, chunk, "one.cc.o")

	dead = "1"
	chunk, completed, err = src.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, completed)
	assert.Contains(t, chunk, "two.cc.o")
	assert.NotContains(t, chunk, "one.cc.o")

	require.GreaterOrEqual(t, len(calls), 4)
	assert.Equal(t, "capture-pane", calls[0])
	assert.Equal(t, "display-message", calls[1])
}

func TestTmuxSourceVanishedPaneCompletes(t *testing.T) {
	src := NewTmuxSource("%9")
	src.run = func(ctx context.Context, args ...string) (string, error) {
		if args[0] == "display-message" {
			return "", errors.New("tmux display-message: exit status 1: can't find pane: %9")
		}
		return "Built target driver\n", nil
	}

	chunk, completed, err := src.Fetch(context.Background())
	require.NoError(t, err)
	assert.True(t, completed)
	assert.True(t, strings.Contains(chunk, "Built target driver"))
}

func TestTmuxSourceTransientLivenessErrorIsNotCompletion(t *testing.T) {
	transient := []string{
		"tmux display-message: signal: killed: context deadline exceeded",
		"tmux display-message: exit status 1: server busy",
	}
	for _, msg := range transient {
		src := NewTmuxSource("%9")
		src.run = func(ctx context.Context, args ...string) (string, error) {
			if args[0] == "display-message" {
				return "", errors.New(msg)
			}
			return "[ 42%] Building CXX object src/core.cc.o\n", nil
		}

		chunk, completed, err := src.Fetch(context.Background())
		require.Error(t, err, msg)
		assert.False(t, completed, msg)
		// The captured output still reaches the tracker alongside the error.
		assert.Contains(t, chunk, "core.cc.o")
	}
}
