package password_test

import (
	"strings"
	"testing"

	"github.com/jcpaschoal/propman/business/types/password"
	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	_, err := password.Parse("secret123")
	assert.NoError(t, err)

	_, err = password.Parse("short")
	assert.ErrorIs(t, err, password.ErrTooShort)

	_, err = password.Parse(strings.Repeat("x", 73))
	assert.ErrorIs(t, err, password.ErrTooLong)
}
