package goid

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetGIDDiffersAcrossGoroutines(t *testing.T) {
	main := GetGID()
	assert.NotZero(t, main)
	assert.Equal(t, main, GetGID())

	ch := make(chan uint64)
	go func() { ch <- GetGID() }()
	other := <-ch
	assert.NotZero(t, other)
	assert.NotEqual(t, main, other)
}
