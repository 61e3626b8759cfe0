package phone_test

import (
	"testing"

	"github.com/jcpaschoal/propman/business/types/phone"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseNull(t *testing.T) {
	p, err := phone.ParseNull("+1 (415) 555-0100")
	require.NoError(t, err)
	assert.True(t, p.Valid())
	assert.Equal(t, "+14155550100", p.String())

	empty, err := phone.ParseNull("  ")
	require.NoError(t, err)
	assert.False(t, empty.Valid())
	assert.False(t, phone.ToSQLNullString(empty).Valid)

	_, err = phone.ParseNull("call me")
	assert.Error(t, err)
}
