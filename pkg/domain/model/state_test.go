package model_test

import (
	"testing"

	"github.com/m-mizutani/gt"

	"github.com/m-mizutani/shipit/pkg/domain/model"
	"github.com/m-mizutani/shipit/pkg/domain/types"
)

func TestRunState_LastWriteWins(t *testing.T) {
	state := model.NewRunState(true, false)
	gt.Bool(t, state.DryRun).True()
	gt.Bool(t, state.Force).False()

	state.SetHasChanges(types.RepoSource, true)
	state.SetHasChanges(types.RepoSource, false)
	gt.Bool(t, state.HasChanges[types.RepoSource]).False()

	_, ok := state.HasChanges[types.RepoDist]
	gt.Bool(t, ok).False()
}

func TestRunState_SetHasChanges_ZeroValue(t *testing.T) {
	var state model.RunState
	state.SetHasChanges(types.RepoDist, true)
	gt.Bool(t, state.HasChanges[types.RepoDist]).True()
}
