package cache

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestListKeyDeterministic(t *testing.T) {
	cursor := int64(91)
	a := ListKey(7, "active", &cursor, 20, map[string]string{"priority": "high", "client": "acme"})
	b := ListKey(7, "active", &cursor, 20, map[string]string{"client": "acme", "priority": "high"})
	assert.Equal(t, a, b)
	assert.Equal(t, "rncs:list:7:active:91:20|client=acme,priority=high", a)
}

func TestListKeyFirstPage(t *testing.T) {
	assert.Equal(t, "rncs:list:7:active:first:20|none", ListKey(7, "active", nil, 20, nil))
}

func TestListKeyVariesByPrincipalAndTab(t *testing.T) {
	base := ListKey(7, "active", nil, 20, nil)
	assert.NotEqual(t, base, ListKey(8, "active", nil, 20, nil))
	assert.NotEqual(t, base, ListKey(7, "finalized", nil, 20, nil))
	assert.NotEqual(t, base, ListKey(7, "active", nil, 50, nil))
}

func TestTagRecord(t *testing.T) {
	assert.Equal(t, "record:42", TagRecord(42))
}
