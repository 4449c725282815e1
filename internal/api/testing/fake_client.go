// Package testing provides test doubles for the api package.
package testing

import (
	"context"
	"sync"

	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/errors"
)

// Call records a single backend call for assertions.
type Call struct {
	Method  string
	Cluster string
	Payload interface{}
}

// FakeClient simulates the backend for controller and store tests.
// Responses are configured per cluster; errors are configured per method.
type FakeClient struct {
	mu sync.Mutex

	VMs    map[string][]api.VM   // keyed by cluster
	Nodes  map[string][]api.Node // keyed by cluster
	Config map[int]api.VMConfig  // keyed by vmid

	CreateResult api.CreateResult

	// Errors to return per method name ("ListVMs", "StartVM", ...).
	Errors map[string]error

	// Hooks run before a method returns, keyed by method name. Used to
	// stall or interleave responses in race tests.
	Hooks map[string]func()

	// Calls records every invocation in order.
	Calls []Call
}

// NewFakeClient creates an empty fake backend.
func NewFakeClient() *FakeClient {
	return &FakeClient{
		VMs:    make(map[string][]api.VM),
		Nodes:  make(map[string][]api.Node),
		Config: make(map[int]api.VMConfig),
		Errors: make(map[string]error),
		Hooks:  make(map[string]func()),
	}
}

// SetVMs replaces the VM list served for a cluster.
func (f *FakeClient) SetVMs(cluster string, vms []api.VM) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.VMs[cluster] = vms
}

// SetNodes replaces the node list served for a cluster.
func (f *FakeClient) SetNodes(cluster string, nodes []api.Node) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Nodes[cluster] = nodes
}

// SetHook installs (or removes, with nil) a hook that runs during calls
// to the named method, before it returns.
func (f *FakeClient) SetHook(method string, fn func()) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if fn == nil {
		delete(f.Hooks, method)
		return
	}
	f.Hooks[method] = fn
}

// FailWith makes the named method return err.
func (f *FakeClient) FailWith(method string, err error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.Errors[method] = err
}

// CallsTo returns how many times the named method was invoked.
func (f *FakeClient) CallsTo(method string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.Calls {
		if c.Method == method {
			n++
		}
	}
	return n
}

// MutationCalls returns how many mutation requests reached the fake backend.
func (f *FakeClient) MutationCalls() int {
	return f.CallsTo("CreateVM") + f.CallsTo("StartVM") +
		f.CallsTo("ShutdownVM") + f.CallsTo("DeleteVM") + f.CallsTo("ConfigureVM")
}

func (f *FakeClient) record(method, cluster string, payload interface{}) (func(), error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, Call{Method: method, Cluster: cluster, Payload: payload})
	err := f.Errors[method]
	hook := f.Hooks[method]
	f.mu.Unlock()

	if hook == nil {
		hook = func() {}
	}
	return hook, err
}

// ListVMs implements api.Client.
func (f *FakeClient) ListVMs(_ context.Context, cluster string) ([]api.VM, error) {
	hook, err := f.record("ListVMs", cluster, nil)
	hook()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.VM(nil), f.VMs[cluster]...), nil
}

// ListNodes implements api.Client.
func (f *FakeClient) ListNodes(_ context.Context, cluster string) ([]api.Node, error) {
	hook, err := f.record("ListNodes", cluster, nil)
	hook()
	if err != nil {
		return nil, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]api.Node(nil), f.Nodes[cluster]...), nil
}

// GetVMConfig implements api.Client.
func (f *FakeClient) GetVMConfig(_ context.Context, cluster, _ string, vmid int) (api.VMConfig, error) {
	hook, err := f.record("GetVMConfig", cluster, vmid)
	hook()
	if err != nil {
		return api.VMConfig{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	cfg, ok := f.Config[vmid]
	if !ok {
		return api.VMConfig{}, errors.New(errors.ErrBackend, "no such vm", "")
	}
	return cfg, nil
}

// CreateVM implements api.Client.
func (f *FakeClient) CreateVM(_ context.Context, req api.CreateRequest) (api.CreateResult, error) {
	hook, err := f.record("CreateVM", req.Cluster, req)
	hook()
	if err != nil {
		return api.CreateResult{}, err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.CreateResult, nil
}

// StartVM implements api.Client.
func (f *FakeClient) StartVM(_ context.Context, req api.ControlRequest) error {
	hook, err := f.record("StartVM", req.Cluster, req)
	hook()
	return err
}

// ShutdownVM implements api.Client.
func (f *FakeClient) ShutdownVM(_ context.Context, req api.ControlRequest) error {
	hook, err := f.record("ShutdownVM", req.Cluster, req)
	hook()
	return err
}

// DeleteVM implements api.Client.
func (f *FakeClient) DeleteVM(_ context.Context, req api.ControlRequest) error {
	hook, err := f.record("DeleteVM", req.Cluster, req)
	hook()
	return err
}

// ConfigureVM implements api.Client.
func (f *FakeClient) ConfigureVM(_ context.Context, req api.ConfigRequest) error {
	hook, err := f.record("ConfigureVM", req.Cluster, req)
	hook()
	return err
}
