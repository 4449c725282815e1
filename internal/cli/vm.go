package cli

import (
	"context"
	"fmt"
	"strconv"

	"github.com/spf13/cobra"

	"github.com/fleetdeck/fleetdeck/internal/api"
	"github.com/fleetdeck/fleetdeck/internal/errors"
	"github.com/fleetdeck/fleetdeck/internal/guard"
)

// Command-specific flags.
var (
	createNodeFlag   string
	createNameFlag   string
	createVCPUFlag   int
	createMemoryFlag int
	createDiskFlag   int
	deleteYesFlag    bool
	configVCPUFlag   int
	configMemoryFlag int
	configDiskFlag   int
)

// vmCmd groups the per-VM operations.
var vmCmd = &cobra.Command{
	Use:   "vm",
	Short: "Manage VMs in the active cluster",
}

// vmListCmd lists the VMs in the active cluster.
var vmListCmd = &cobra.Command{
	Use:   "list",
	Short: "List VMs in the active cluster",
	Long: `List every VM in the active cluster with status, node, and
utilization gauges.

Examples:
  fleetdeck vm list
  fleetdeck vm list --cluster pve-west`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(false)
		if err != nil {
			return err
		}
		if err := s.selectCluster(cmdContext()); err != nil {
			return err
		}
		s.term.Render(s.ctrl.Snapshot())
		return nil
	},
}

// vmCreateCmd provisions a new VM.
var vmCreateCmd = &cobra.Command{
	Use:   "create",
	Short: "Provision a new VM",
	Long: `Provision a new VM in the active cluster.

With flags, the VM is created directly. Without flags, an interactive
form walks through node selection (ranked by load) and sizing.

Bounds: 1-16 vCPU, 1024-24576 MB memory, 10-200 GB disk.

Examples:
  fleetdeck vm create
  fleetdeck vm create --node pve-node2 --vcpu 4 --memory 8192 --disk 40
  fleetdeck vm create --name build-agent --node pve-node1 --vcpu 2 --memory 2048 --disk 20`,
	RunE: func(cmd *cobra.Command, args []string) error {
		s, err := newSession(false)
		if err != nil {
			return err
		}
		ctx := cmdContext()
		if err := s.selectCluster(ctx); err != nil {
			return err
		}

		req := guard.Request{
			Action:   guard.ActionCreate,
			Node:     createNodeFlag,
			Name:     createNameFlag,
			VCPU:     createVCPUFlag,
			MemoryMB: createMemoryFlag,
			DiskGB:   createDiskFlag,
		}

		// No sizing flags at all means interactive mode.
		if createNodeFlag == "" && createVCPUFlag == 0 && createMemoryFlag == 0 && createDiskFlag == 0 {
			snap := s.ctrl.Snapshot()
			form, err := s.term.ReadCreateForm(snap.Cluster, snap.Nodes)
			if err != nil {
				return err
			}
			req.Node = form.Node
			req.Name = form.Name
			req.VCPU = form.VCPU
			req.MemoryMB = form.MemoryMB
			req.DiskGB = form.DiskGB
		}

		result, err := s.ctrl.Submit(ctx, req)
		if err != nil {
			return err
		}
		s.term.ShowResult(result.Message)
		return nil
	},
}

// vmStartCmd starts a stopped VM.
var vmStartCmd = &cobra.Command{
	Use:   "start <vmid>",
	Short: "Start a VM",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return controlCommand(args[0], guard.ActionStart)
	},
}

// vmStopCmd gracefully shuts a VM down.
var vmStopCmd = &cobra.Command{
	Use:   "stop <vmid>",
	Short: "Gracefully shut down a VM",
	Long: `Request a graceful shutdown of a running VM.

The guest OS is asked to stop; the command returns once the backend
accepts the request, not when the VM has finished stopping.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return controlCommand(args[0], guard.ActionShutdown)
	},
}

// vmDeleteCmd deletes a VM after confirmation.
var vmDeleteCmd = &cobra.Command{
	Use:   "delete <vmid>",
	Short: "Delete a VM",
	Long: `Delete a VM. Asks for confirmation first; deleting a running VM
gets a sterner warning since it force-stops the VM and destroys its
data.

Examples:
  fleetdeck vm delete 104
  fleetdeck vm delete 104 --yes`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vmid, err := parseVMID(args[0])
		if err != nil {
			return err
		}

		s, err := newSession(false)
		if err != nil {
			return err
		}
		ctx := cmdContext()
		if err := s.selectCluster(ctx); err != nil {
			return err
		}

		result, err := s.ctrl.Submit(ctx, guard.Request{
			Action:    guard.ActionDelete,
			VMID:      vmid,
			Confirmed: deleteYesFlag,
		})
		if err != nil {
			return err
		}
		s.term.ShowResult(result.Message)
		return nil
	},
}

// vmConfigCmd changes a VM's resources.
var vmConfigCmd = &cobra.Command{
	Use:   "config <vmid>",
	Short: "Change a VM's vCPU, memory, and disk",
	Long: `Reconfigure a VM's resources.

Disk size can only grow. Passing the current disk size asks for
confirmation that only vCPU and memory will change.

With flags, values are applied directly; without flags, an interactive
form is prefilled with the VM's current configuration.

Examples:
  fleetdeck vm config 101
  fleetdeck vm config 101 --vcpu 8 --memory 16384 --disk 80`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		vmid, err := parseVMID(args[0])
		if err != nil {
			return err
		}

		s, err := newSession(false)
		if err != nil {
			return err
		}
		ctx := cmdContext()
		if err := s.selectCluster(ctx); err != nil {
			return err
		}

		req := guard.Request{
			Action:   guard.ActionReconfigure,
			VMID:     vmid,
			VCPU:     configVCPUFlag,
			MemoryMB: configMemoryFlag,
			DiskGB:   configDiskFlag,
		}

		if configVCPUFlag == 0 && configMemoryFlag == 0 && configDiskFlag == 0 {
			form, err := s.readConfigForm(ctx, vmid)
			if err != nil {
				return err
			}
			req.VCPU = form.VCPU
			req.MemoryMB = form.MemoryMB
			req.DiskGB = form.DiskGB
		}

		result, err := s.ctrl.Submit(ctx, req)
		if err != nil {
			return err
		}
		s.term.ShowResult(result.Message)
		return nil
	},
}

// parseVMID parses a numeric VM id argument.
func parseVMID(arg string) (int, error) {
	vmid, err := strconv.Atoi(arg)
	if err != nil || vmid <= 0 {
		return 0, errors.New(errors.ErrValidation,
			fmt.Sprintf("'%s' is not a VM id", arg),
			"VM ids are positive numbers; see 'fleetdeck vm list'")
	}
	return vmid, nil
}

// controlCommand handles the start/stop commands, which differ only in
// the action.
func controlCommand(arg string, action guard.Action) error {
	vmid, err := parseVMID(arg)
	if err != nil {
		return err
	}

	s, err := newSession(false)
	if err != nil {
		return err
	}
	ctx := cmdContext()
	if err := s.selectCluster(ctx); err != nil {
		return err
	}

	result, err := s.ctrl.Submit(ctx, guard.Request{Action: action, VMID: vmid})
	if err != nil {
		return err
	}
	s.term.ShowResult(result.Message)
	return nil
}

// readConfigForm fetches the VM's current configuration and runs the
// interactive reconfigure form prefilled with it.
func (s *session) readConfigForm(ctx context.Context, vmid int) (api.ConfigRequest, error) {
	snap := s.ctrl.Snapshot()
	vm, ok := snap.FindVM(vmid)
	if !ok {
		return api.ConfigRequest{}, errors.New(errors.ErrValidation,
			fmt.Sprintf("VM %d is not in the current snapshot", vmid),
			"Check the id with 'fleetdeck vm list'")
	}

	current, err := s.client.GetVMConfig(ctx, snap.Cluster, vm.Node, vmid)
	if err != nil {
		return api.ConfigRequest{}, err
	}
	return s.term.ReadConfigForm(vmid, current)
}

func init() {
	vmCreateCmd.Flags().StringVar(&createNodeFlag, "node", "", "target node (defaults to interactive pick)")
	vmCreateCmd.Flags().StringVar(&createNameFlag, "name", "", "VM name (backend generates one when empty)")
	vmCreateCmd.Flags().IntVar(&createVCPUFlag, "vcpu", 0, "vCPU count (1-16)")
	vmCreateCmd.Flags().IntVar(&createMemoryFlag, "memory", 0, "memory in MB (1024-24576)")
	vmCreateCmd.Flags().IntVar(&createDiskFlag, "disk", 0, "disk size in GB (10-200)")

	vmDeleteCmd.Flags().BoolVarP(&deleteYesFlag, "yes", "y", false, "skip the confirmation prompt")

	vmConfigCmd.Flags().IntVar(&configVCPUFlag, "vcpu", 0, "vCPU count (1-16)")
	vmConfigCmd.Flags().IntVar(&configMemoryFlag, "memory", 0, "memory in MB (1024-24576)")
	vmConfigCmd.Flags().IntVar(&configDiskFlag, "disk", 0, "disk size in GB (10-200)")

	vmCmd.AddCommand(vmListCmd)
	vmCmd.AddCommand(vmCreateCmd)
	vmCmd.AddCommand(vmStartCmd)
	vmCmd.AddCommand(vmStopCmd)
	vmCmd.AddCommand(vmDeleteCmd)
	vmCmd.AddCommand(vmConfigCmd)
	rootCmd.AddCommand(vmCmd)
}
