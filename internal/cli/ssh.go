package cli

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/fleetdeck/fleetdeck/internal/errors"
	"github.com/fleetdeck/fleetdeck/pkg/sshutil"
)

var (
	sshUserFlag     string
	sshInsecureFlag bool
)

// vmSSHCmd opens an interactive shell in a VM.
var vmSSHCmd = &cobra.Command{
	Use:   "ssh <vmid>",
	Short: "Open a shell in a VM",
	Long: `Open an interactive SSH session into a VM.

The VM's address comes from the fleet snapshot; connection settings
(user, port, identity) resolve from ~/.ssh/config with defaults from
the ssh section of your fleetdeck config. Authentication uses the SSH
agent or local key files.

Examples:
  fleetdeck vm ssh 101
  fleetdeck vm ssh 101 --user root`,
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
		if err := s.selectCluster(cmdContext()); err != nil {
			return err
		}

		snap := s.ctrl.Snapshot()
		vm, ok := snap.FindVM(vmid)
		if !ok {
			return errors.New(errors.ErrValidation,
				fmt.Sprintf("VM %d is not in the current snapshot", vmid),
				"Check the id with 'fleetdeck vm list'")
		}
		if !vm.Running() {
			return errors.New(errors.ErrValidation,
				fmt.Sprintf("VM %d (%s) is %s", vm.VMID, vm.Name, vm.Status),
				fmt.Sprintf("Start it first: fleetdeck vm start %d", vm.VMID))
		}
		if vm.IP == "" {
			return errors.New(errors.ErrBackend,
				fmt.Sprintf("VM %d has no reported IP address yet", vm.VMID),
				"The guest agent may still be starting; try again shortly")
		}

		user := sshUserFlag
		if user == "" {
			user = s.cfg.SSH.User
		}
		settings := sshutil.Resolve(vm.IP, user, s.cfg.SSH.Port)

		if sshInsecureFlag {
			sshutil.StrictHostKeyChecking = false
		}

		client, err := sshutil.Dial(vm.IP, settings, 10*time.Second)
		if err != nil {
			return err
		}
		defer client.Close()
		defer sshutil.CloseAgent()

		return client.Shell(os.Stdin, os.Stdout, os.Stderr)
	},
}

func init() {
	vmSSHCmd.Flags().StringVar(&sshUserFlag, "user", "", "remote user (overrides ssh.user from config)")
	vmSSHCmd.Flags().BoolVar(&sshInsecureFlag, "insecure-host-key", false, "skip known_hosts verification")
	vmCmd.AddCommand(vmSSHCmd)
}
