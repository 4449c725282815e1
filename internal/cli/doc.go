// Package cli implements the fleetdeck command-line interface.
//
// The package is organized around Cobra commands, with each command
// delegating to the controller for the actual work. The general
// structure separates:
//
//   - Command definitions (cobra.Command instances)
//   - Session wiring (config -> API client -> controller)
//   - Implementation details (in other internal packages)
//
// # Command Structure
//
// The root command is "fleetdeck" with subcommands:
//
//	fleetdeck panel            - Interactive fleet dashboard
//	fleetdeck vm list          - List VMs in the active cluster
//	fleetdeck vm create        - Provision a new VM
//	fleetdeck vm start <id>    - Start a VM
//	fleetdeck vm stop <id>     - Gracefully shut down a VM
//	fleetdeck vm delete <id>   - Delete a VM (confirmed)
//	fleetdeck vm config <id>   - Change vCPU, memory, disk
//	fleetdeck vm ssh <id>      - Open a shell in a VM
//	fleetdeck nodes            - Show cluster nodes ranked by load
//	fleetdeck init             - Create a config file
//
// # Flag Handling
//
// Global flags (--config, --cluster) are defined on the root command
// and available to all subcommands. Command-specific flags like --vcpu
// and --yes are defined on individual commands.
package cli
