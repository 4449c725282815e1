package api

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/fleetdeck/fleetdeck/internal/errors"
)

// VM lifecycle status values as reported by the backend.
const (
	StatusRunning = "running"
	StatusStopped = "stopped"
)

// VM is a single virtual machine as reported by the backend.
// The id is unique within a cluster.
type VM struct {
	VMID   int     `json:"vmid"`
	Name   string  `json:"name"`
	Status string  `json:"status"`
	Node   string  `json:"node"`
	CPU    float64 `json:"cpu"`    // instantaneous CPU percent, 0-100
	Mem    int64   `json:"mem"`    // used bytes
	MaxMem int64   `json:"maxmem"` // max bytes
	Uptime int64   `json:"uptime"` // seconds
	IP     string  `json:"ip,omitempty"`
}

// Running reports whether the VM's last-known status is running.
func (v VM) Running() bool {
	return v.Status == StatusRunning
}

// Node is a hypervisor host inside a cluster. Nodes are read-only from the
// panel's perspective; they are observed to rank placement candidates and to
// populate the manual node picker.
type Node struct {
	Name       string  `json:"value"`
	Label      string  `json:"label"`
	Status     string  `json:"status"` // online, high-load, offline
	CPU        float64 `json:"cpu"`    // percent, 0-100
	MemUsage   float64 `json:"mem_usage"`
	MemUsedGB  float64 `json:"mem_used_gb"`
	MemTotalGB float64 `json:"mem_total_gb"`
	VMCount    int     `json:"vm_count"` // running VMs
	Zone       string  `json:"zone,omitempty"`
}

// VMConfig is the current resource configuration of a VM.
type VMConfig struct {
	VCPU        int    `json:"vcpu"`
	MemoryMB    int    `json:"memory"`
	DiskGB      int    `json:"disk_size"`
	DiskSizeRaw string `json:"disk_size_raw"` // e.g. "20G", retained for display
}

// CreateRequest is the payload for provisioning a new VM.
type CreateRequest struct {
	Cluster  string `json:"cluster_name"`
	Node     string `json:"node_zone"`
	Name     string `json:"vm_name,omitempty"`
	VCPU     int    `json:"vcpu"`
	MemoryMB int    `json:"memory"`
	DiskGB   int    `json:"resize"`
}

// CreateResult is the backend's structured response to a create.
type CreateResult struct {
	Status string `json:"status"`
	VMID   int    `json:"vmid"`
	Name   string `json:"name"`
	Node   string `json:"node"`
	Region string `json:"region,omitempty"`
}

// ControlRequest addresses a single VM for start/shutdown/delete.
type ControlRequest struct {
	Cluster string `json:"cluster_name,omitempty"`
	Node    string `json:"node"`
	VMID    int    `json:"vmid"`
}

// ConfigRequest is the payload for reconfiguring an existing VM.
type ConfigRequest struct {
	Cluster  string `json:"cluster_name,omitempty"`
	Node     string `json:"node"`
	VMID     int    `json:"vmid"`
	VCPU     int    `json:"vcpu"`
	MemoryMB int    `json:"memory"`
	DiskGB   int    `json:"resize"`
}

// ParseDiskSize converts a backend disk size string ("20G", "512M", "1T",
// or a bare number meaning gigabytes) into whole gigabytes. Sub-gigabyte
// values round up so a non-empty disk never parses to zero.
func ParseDiskSize(raw string) (int, error) {
	s := strings.TrimSpace(raw)
	if s == "" {
		return 0, errors.New(errors.ErrValidation,
			"Disk size is empty",
			"Expected a value like 20G")
	}

	multiplier := 1.0
	switch {
	case strings.HasSuffix(s, "T"):
		multiplier = 1024
		s = strings.TrimSuffix(s, "T")
	case strings.HasSuffix(s, "G"):
		s = strings.TrimSuffix(s, "G")
	case strings.HasSuffix(s, "M"):
		multiplier = 1.0 / 1024
		s = strings.TrimSuffix(s, "M")
	}

	n, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return 0, errors.WrapWithCode(err, errors.ErrValidation,
			fmt.Sprintf("Can't parse disk size %q", raw),
			"Expected a value like 20G")
	}
	if n < 0 {
		return 0, errors.New(errors.ErrValidation,
			fmt.Sprintf("Negative disk size %q", raw),
			"")
	}

	gb := n * multiplier
	whole := int(gb)
	if gb > float64(whole) {
		whole++
	}
	return whole, nil
}

// FormatDiskSize renders whole gigabytes in the backend's raw form.
func FormatDiskSize(gb int) string {
	return fmt.Sprintf("%dG", gb)
}
