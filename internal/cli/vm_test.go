package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/fleetdeck/fleetdeck/internal/errors"
)

func TestParseVMID(t *testing.T) {
	vmid, err := parseVMID("101")
	require.NoError(t, err)
	assert.Equal(t, 101, vmid)

	for _, bad := range []string{"", "abc", "-5", "0", "10.5"} {
		_, err := parseVMID(bad)
		require.Error(t, err, "input %q", bad)
		assert.True(t, errors.IsCode(err, errors.ErrValidation))
	}
}

func TestCommandTreeRegistered(t *testing.T) {
	names := make(map[string]bool)
	for _, c := range rootCmd.Commands() {
		names[c.Name()] = true
	}
	for _, want := range []string{"panel", "vm", "nodes", "init", "version", "completion"} {
		assert.True(t, names[want], "missing command %q", want)
	}

	vmNames := make(map[string]bool)
	for _, c := range vmCmd.Commands() {
		vmNames[c.Name()] = true
	}
	for _, want := range []string{"list", "create", "start", "stop", "delete", "config", "ssh"} {
		assert.True(t, vmNames[want], "missing vm subcommand %q", want)
	}
}
