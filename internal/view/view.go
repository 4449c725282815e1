// Package view defines the capability seam between the fleet controller
// and whatever renders it. The controller calls into a View without
// knowing about concrete rendering; test doubles implement the same
// interface for guard and dispatcher tests.
package view

import (
	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/fleet"
)

// View is everything the controller needs from a display surface.
type View interface {
	// Render displays the current fleet snapshot.
	Render(snap fleet.Snapshot)

	// PromptConfirm asks the operator a yes/no question.
	PromptConfirm(message string) bool

	// ReadCreateForm collects the payload for a new VM. The node list is
	// offered as placement candidates, already ranked by stress score.
	ReadCreateForm(cluster string, nodes []api.Node) (api.CreateRequest, error)

	// ReadConfigForm collects a new configuration for an existing VM,
	// pre-filled with its current values.
	ReadConfigForm(vmid int, current api.VMConfig) (api.ConfigRequest, error)

	// ShowResult reports a successful action.
	ShowResult(message string)

	// ShowError reports a failed action.
	ShowError(err error)
}

// Discard is a View that renders nothing and declines every prompt.
// Surfaces that manage their own prompting (the panel's confirm modal
// submits pre-confirmed requests) use it to satisfy the controller.
type Discard struct{}

func (Discard) Render(fleet.Snapshot)          {}
func (Discard) PromptConfirm(string) bool      { return false }
func (Discard) ShowResult(string)              {}
func (Discard) ShowError(error)                {}

func (Discard) ReadCreateForm(string, []api.Node) (api.CreateRequest, error) {
	return api.CreateRequest{}, nil
}

func (Discard) ReadConfigForm(int, api.VMConfig) (api.ConfigRequest, error) {
	return api.ConfigRequest{}, nil
}
