package shared

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPairKey(t *testing.T) {
	assert.Equal(t, "alice|bob", PairKey("bob", "alice"))
	assert.Equal(t, PairKey("alice", "bob"), PairKey("bob", "alice"))

	other, ok := PairOther("alice|bob", "bob")
	assert.True(t, ok)
	assert.Equal(t, "alice", other)

	_, ok = PairOther("alice|bob", "carol")
	assert.False(t, ok)
	_, ok = PairOther("nopair", "nopair")
	assert.False(t, ok)
}
