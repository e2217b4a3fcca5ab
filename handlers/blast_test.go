package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBlastRunStop(t *testing.T) {
	run := &blastRun{}
	assert.False(t, run.stopped())

	run.stop()
	assert.True(t, run.stopped())

	// Stop kedua kali aman
	run.stop()
	assert.True(t, run.stopped())
}

func TestBlastRunsScopedPerHandler(t *testing.T) {
	h1 := NewHandler(nil, nil, nil, nil, nil)
	h2 := NewHandler(nil, nil, nil, nil, nil)

	run := &blastRun{}
	h1.blastMu.Lock()
	h1.blastRuns[100] = run
	h1.blastMu.Unlock()

	// Registry blast milik handler, bukan state global proses
	assert.Equal(t, run, h1.blastRuns[100])
	assert.Empty(t, h2.blastRuns)
}
