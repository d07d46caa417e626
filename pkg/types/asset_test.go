// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package types

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseQueryType(t *testing.T) {
	for _, s := range []string{"domain", "ip", "company"} {
		qt, err := ParseQueryType(s)
		require.NoError(t, err)
		assert.Equal(t, QueryType(s), qt)
	}

	_, err := ParseQueryType("asn")
	assert.ErrorContains(t, err, `unknown query type "asn"`)
}
