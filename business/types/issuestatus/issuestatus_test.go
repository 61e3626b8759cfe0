package issuestatus_test

import (
	"testing"

	"github.com/jcpaschoal/propman/business/types/issuestatus"
	"github.com/stretchr/testify/assert"
)

func TestTransitions(t *testing.T) {
	assert.True(t, issuestatus.Open.CanTransitionTo(issuestatus.InProgress))
	assert.True(t, issuestatus.InProgress.CanTransitionTo(issuestatus.Resolved))
	assert.True(t, issuestatus.Resolved.CanTransitionTo(issuestatus.Closed))
	assert.True(t, issuestatus.Resolved.CanTransitionTo(issuestatus.Open))

	assert.False(t, issuestatus.InProgress.CanTransitionTo(issuestatus.Open))
	assert.False(t, issuestatus.Closed.CanTransitionTo(issuestatus.Open))
	assert.False(t, issuestatus.Open.CanTransitionTo(issuestatus.Open))
}
