// Package api implements the REST client for the fleet backend.
//
// The backend is authoritative for all VM state. Non-2xx responses carry a
// plain-text error message that is surfaced to the operator verbatim; the
// client never parses structured error codes. Transport failures and HTTP
// rejections are distinguishable via the TRANSPORT and BACKEND error codes.
// There are no retries anywhere in this package: a failed mutation requires
// a fresh user action.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/fleetdeck/fleetdeck/internal/errors"
)

// DefaultTimeout bounds every backend round-trip. The controller treats a
// timeout the same as any other transport failure.
const DefaultTimeout = 15 * time.Second

// Client is the backend surface consumed by the fleet controller.
type Client interface {
	ListVMs(ctx context.Context, cluster string) ([]VM, error)
	ListNodes(ctx context.Context, cluster string) ([]Node, error)
	GetVMConfig(ctx context.Context, cluster, node string, vmid int) (VMConfig, error)
	CreateVM(ctx context.Context, req CreateRequest) (CreateResult, error)
	StartVM(ctx context.Context, req ControlRequest) error
	ShutdownVM(ctx context.Context, req ControlRequest) error
	DeleteVM(ctx context.Context, req ControlRequest) error
	ConfigureVM(ctx context.Context, req ConfigRequest) error
}

// HTTPClient talks to the backend over HTTP.
type HTTPClient struct {
	baseURL string
	token   string
	http    *http.Client
}

// NewHTTPClient creates a client for the backend at baseURL.
// An empty timeout falls back to DefaultTimeout.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	if timeout == 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		baseURL: strings.TrimRight(baseURL, "/"),
		token:   token,
		http:    &http.Client{Timeout: timeout},
	}
}

// vmListResponse matches the wrapped list shape; some backend variants
// return a bare array instead, so ListVMs tries both.
type vmListResponse struct {
	VMs   []VM `json:"vms"`
	Total int  `json:"total"`
}

type nodeListResponse struct {
	Nodes []Node `json:"nodes"`
}

// ListVMs fetches all VMs for the given cluster.
func (c *HTTPClient) ListVMs(ctx context.Context, cluster string) ([]VM, error) {
	path := "/vms?cluster_name=" + url.QueryEscape(cluster)
	body, err := c.get(ctx, path)
	if err != nil {
		return nil, err
	}

	var wrapped vmListResponse
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.VMs != nil {
		return wrapped.VMs, nil
	}

	var bare []VM
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Backend returned an unreadable VM list",
			"Check the backend URL points at the fleet API")
	}
	return bare, nil
}

// ListNodes fetches all nodes for the given cluster.
func (c *HTTPClient) ListNodes(ctx context.Context, cluster string) ([]Node, error) {
	body, err := c.get(ctx, "/nodes/"+url.PathEscape(cluster))
	if err != nil {
		return nil, err
	}

	var wrapped nodeListResponse
	if err := json.Unmarshal(body, &wrapped); err == nil && wrapped.Nodes != nil {
		return wrapped.Nodes, nil
	}

	var bare []Node
	if err := json.Unmarshal(body, &bare); err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Backend returned an unreadable node list",
			"Check the backend URL points at the fleet API")
	}
	return bare, nil
}

// GetVMConfig fetches the current resource configuration of a VM.
func (c *HTTPClient) GetVMConfig(ctx context.Context, cluster, node string, vmid int) (VMConfig, error) {
	path := fmt.Sprintf("/vm/%s/%s/%d/config", url.PathEscape(cluster), url.PathEscape(node), vmid)
	body, err := c.get(ctx, path)
	if err != nil {
		return VMConfig{}, err
	}

	var cfg VMConfig
	if err := json.Unmarshal(body, &cfg); err != nil {
		return VMConfig{}, errors.WrapWithCode(err, errors.ErrTransport,
			fmt.Sprintf("Backend returned an unreadable config for VM %d", vmid),
			"")
	}
	// Some variants only report the raw string.
	if cfg.DiskGB == 0 && cfg.DiskSizeRaw != "" {
		if gb, perr := ParseDiskSize(cfg.DiskSizeRaw); perr == nil {
			cfg.DiskGB = gb
		}
	}
	return cfg, nil
}

// CreateVM provisions a new VM and returns the backend's placement result.
func (c *HTTPClient) CreateVM(ctx context.Context, req CreateRequest) (CreateResult, error) {
	body, err := c.post(ctx, "/vm/create", req)
	if err != nil {
		return CreateResult{}, err
	}

	var result CreateResult
	if len(body) > 0 {
		if err := json.Unmarshal(body, &result); err != nil {
			return CreateResult{}, errors.WrapWithCode(err, errors.ErrTransport,
				"Backend returned an unreadable create result",
				"")
		}
	}
	return result, nil
}

// StartVM asks the backend to start a VM.
func (c *HTTPClient) StartVM(ctx context.Context, req ControlRequest) error {
	_, err := c.post(ctx, "/vm/start", req)
	return err
}

// ShutdownVM asks the backend to shut a VM down.
func (c *HTTPClient) ShutdownVM(ctx context.Context, req ControlRequest) error {
	_, err := c.post(ctx, "/vm/shutdown", req)
	return err
}

// DeleteVM asks the backend to delete a VM. A running VM is force-stopped
// by the backend before removal.
func (c *HTTPClient) DeleteVM(ctx context.Context, req ControlRequest) error {
	_, err := c.post(ctx, "/vm/delete", req)
	return err
}

// ConfigureVM applies a new vCPU/memory/disk configuration.
func (c *HTTPClient) ConfigureVM(ctx context.Context, req ConfigRequest) error {
	_, err := c.post(ctx, "/vm/config", req)
	return err
}

func (c *HTTPClient) get(ctx context.Context, path string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+path, nil)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Couldn't build backend request", "")
	}
	return c.do(req)
}

func (c *HTTPClient) post(ctx context.Context, path string, payload interface{}) ([]byte, error) {
	buf, err := json.Marshal(payload)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Couldn't serialize backend request", "")
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+path, bytes.NewReader(buf))
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Couldn't build backend request", "")
	}
	req.Header.Set("Content-Type", "application/json")
	return c.do(req)
}

func (c *HTTPClient) do(req *http.Request) ([]byte, error) {
	if c.token != "" {
		req.Header.Set("Authorization", "Bearer "+c.token)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Backend unreachable",
			"Check the backend URL and your network connection")
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, errors.WrapWithCode(err, errors.ErrTransport,
			"Backend response cut short", "")
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// The backend's error body is free text for the operator.
		msg := strings.TrimSpace(string(body))
		if msg == "" {
			msg = resp.Status
		}
		return nil, errors.New(errors.ErrBackend, msg, "")
	}

	return body, nil
}
