package worker_test

import (
	"testing"

	"github.com/stretchr/testify/require"

	"memescan/internal/worker"
)

func TestWatchlist(t *testing.T) {
	rq := require.New(t)

	w := worker.NewWatchlist("EQa", "", "EQb", "EQa")
	rq.Equal([]string{"EQa", "EQb"}, w.List())

	w.Add("EQc")
	rq.True(w.Has("EQc"))

	w.Remove("EQa")
	rq.Equal([]string{"EQb", "EQc"}, w.List())

	list := w.List()
	list[0] = "mutated"
	rq.True(w.Has("EQb"))

	w.Clear()
	rq.Empty(w.List())
}
