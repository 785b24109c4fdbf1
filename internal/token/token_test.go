package token

import (
	"strings"
	"testing"

	"github.com/deepnoodle-ai/wonton/assert"
)

func TestLookup(t *testing.T) {
	for key, val := range keywords {
		assert.Equal(t, LookupIdentifier(key), val)
		// Keywords are case sensitive
		assert.Equal(t, LookupIdentifier(strings.ToUpper(key)), IDENT)
	}
}

func TestPosition(t *testing.T) {
	pos := Position{Line: 2, Column: 0}
	assert.Equal(t, pos.LineNumber(), 3)
	assert.Equal(t, pos.ColumnNumber(), 1)
	assert.Equal(t, pos.String(), "3:1")
	assert.Equal(t, pos.Advance(4).ColumnNumber(), 5)
	assert.True(t, pos.IsValid())
	assert.False(t, NoPos.IsValid())

	named := Position{Line: 0, Column: 6, File: "loops.yaml"}
	assert.Equal(t, named.String(), "loops.yaml:1:7")
}
