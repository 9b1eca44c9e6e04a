package app

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPolicyByName(t *testing.T) {
	p, err := PolicyByName("")
	require.NoError(t, err)
	assert.IsType(t, DropPolicy{}, p)

	p, err = PolicyByName("close")
	require.NoError(t, err)
	assert.IsType(t, ClosePolicy{}, p)

	_, err = PolicyByName("kick")
	assert.Error(t, err)
}
