package ai

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	state "rescue-sim/server/internal/state"
)

func newPlayer(pos Vec2) *state.PlayerState {
	return &state.PlayerState{Actor: state.Actor{ID: "player-1", Kind: state.EntityKindPlayer, Kinematic: state.Kinematic{Position: pos}}}
}

func TestPlayerPicksUpAndDelivers(t *testing.T) {
	victim := Vec2{X: 300, Y: 300}
	w := corridorWorld(t, victim)
	controller, err := NewPlayerController(w, nil)
	require.NoError(t, err)

	player := newPlayer(Vec2{X: 290, Y: 300})
	out := controller.Update(context.Background(), player, defaultStep)
	require.NotNil(t, out.PickedUp)
	assert.Equal(t, victim, *player.Carrying)
	assert.Zero(t, w.Victims().Len())

	require.NoError(t, controller.SetTarget(player, Vec2{X: 600, Y: 300}))
	for i := 0; i < 500 && player.Carrying != nil; i++ {
		controller.Update(context.Background(), player, defaultStep)
	}
	assert.Nil(t, player.Carrying)
	assert.Equal(t, 1, player.Rescued)
}

func TestPlayerCannotClaimTakenVictim(t *testing.T) {
	victim := Vec2{X: 300, Y: 300}
	w := corridorWorld(t, victim)
	controller, err := NewPlayerController(w, nil)
	require.NoError(t, err)

	require.True(t, w.Victims().Remove(victim))
	player := newPlayer(Vec2{X: 295, Y: 300})
	out := controller.Update(context.Background(), player, defaultStep)
	assert.Nil(t, out.PickedUp)
	assert.Nil(t, player.Carrying)
}

func TestPlayerTargetValidation(t *testing.T) {
	w := corridorWorld(t)
	controller, err := NewPlayerController(w, nil)
	require.NoError(t, err)

	player := newPlayer(Vec2{X: 100, Y: 100})
	require.ErrorIs(t, controller.SetTarget(player, Vec2{X: -10, Y: 100}), ErrBlockedTarget)
	assert.Nil(t, player.Target)

	require.NoError(t, controller.SetTarget(player, Vec2{X: 200, Y: 100}))
	controller.Update(context.Background(), player, defaultStep)
	assert.Greater(t, player.Position.X, 100.0)
	assert.Equal(t, state.FacingRight, player.Facing)
}
