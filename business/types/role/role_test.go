package role_test

import (
	"testing"

	"github.com/jcpaschoal/propman/business/types/role"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want role.Role
	}{
		{"ADMIN", role.Admin},
		{"company", role.Company},
		{"Tenant", role.Tenant},
	}

	for _, tt := range tests {
		got, err := role.Parse(tt.in)
		require.NoError(t, err, tt.in)
		assert.True(t, got.Equal(tt.want), tt.in)
	}

	_, err := role.Parse("USER")
	assert.Error(t, err)
}
