// Package testing provides test doubles for the view package.
package testing

import (
	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/fleet"
)

// FakeView implements view.View with scripted answers and full recording
// for assertions.
type FakeView struct {
	// ConfirmAnswers is consumed front-to-back by PromptConfirm; when
	// exhausted, prompts are declined.
	ConfirmAnswers []bool

	// Canned form results.
	CreateForm    api.CreateRequest
	CreateFormErr error
	ConfigForm    api.ConfigRequest
	ConfigFormErr error

	// Recorded interactions.
	Rendered []fleet.Snapshot
	Prompts  []string
	Results  []string
	Errors   []error
}

// NewFakeView creates a fake that declines all prompts by default.
func NewFakeView() *FakeView {
	return &FakeView{}
}

// Confirming makes the next n prompts answer yes.
func (v *FakeView) Confirming(n int) *FakeView {
	for i := 0; i < n; i++ {
		v.ConfirmAnswers = append(v.ConfirmAnswers, true)
	}
	return v
}

// Render implements view.View.
func (v *FakeView) Render(snap fleet.Snapshot) {
	v.Rendered = append(v.Rendered, snap)
}

// PromptConfirm implements view.View.
func (v *FakeView) PromptConfirm(message string) bool {
	v.Prompts = append(v.Prompts, message)
	if len(v.ConfirmAnswers) == 0 {
		return false
	}
	answer := v.ConfirmAnswers[0]
	v.ConfirmAnswers = v.ConfirmAnswers[1:]
	return answer
}

// ReadCreateForm implements view.View.
func (v *FakeView) ReadCreateForm(cluster string, _ []api.Node) (api.CreateRequest, error) {
	if v.CreateFormErr != nil {
		return api.CreateRequest{}, v.CreateFormErr
	}
	req := v.CreateForm
	if req.Cluster == "" {
		req.Cluster = cluster
	}
	return req, nil
}

// ReadConfigForm implements view.View.
func (v *FakeView) ReadConfigForm(vmid int, _ api.VMConfig) (api.ConfigRequest, error) {
	if v.ConfigFormErr != nil {
		return api.ConfigRequest{}, v.ConfigFormErr
	}
	req := v.ConfigForm
	req.VMID = vmid
	return req, nil
}

// ShowResult implements view.View.
func (v *FakeView) ShowResult(message string) {
	v.Results = append(v.Results, message)
}

// ShowError implements view.View.
func (v *FakeView) ShowError(err error) {
	v.Errors = append(v.Errors, err)
}
