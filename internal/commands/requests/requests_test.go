package requests

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSplitLinks(t *testing.T) {
	assert.Equal(t, []string{"a", "b", "c"}, splitLinks("a, b c"))
	assert.Equal(t, []string{"one"}, splitLinks("one"))
	assert.Empty(t, splitLinks(""))
	assert.Empty(t, splitLinks(" ,  , "))
	assert.Equal(t, []string{"x", "y"}, splitLinks("x\ny"))
}
