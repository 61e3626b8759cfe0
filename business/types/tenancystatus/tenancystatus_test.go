package tenancystatus_test

import (
	"testing"

	"github.com/jcpaschoal/propman/business/types/tenancystatus"
	"github.com/stretchr/testify/assert"
)

func TestTransitions(t *testing.T) {
	assert.True(t, tenancystatus.Pending.CanTransitionTo(tenancystatus.Active))
	assert.True(t, tenancystatus.Pending.CanTransitionTo(tenancystatus.Inactive))
	assert.True(t, tenancystatus.Active.CanTransitionTo(tenancystatus.Inactive))

	assert.False(t, tenancystatus.Active.CanTransitionTo(tenancystatus.Pending))
	assert.False(t, tenancystatus.Inactive.CanTransitionTo(tenancystatus.Active))
	assert.False(t, tenancystatus.Active.CanTransitionTo(tenancystatus.Active))
}

func TestLive(t *testing.T) {
	assert.True(t, tenancystatus.Pending.Live())
	assert.True(t, tenancystatus.Active.Live())
	assert.False(t, tenancystatus.Inactive.Live())
}
