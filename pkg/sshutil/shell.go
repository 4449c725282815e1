package sshutil

import (
	"io"
	"os"

	"golang.org/x/crypto/ssh"
	"golang.org/x/term"

	"github.com/fleetdeck/fleetdeck/internal/errors"
)

// Shell runs an interactive login shell on the remote host, wiring the
// local terminal through in raw mode. It blocks until the remote shell
// exits. A non-zero remote exit status is not an error; the user simply
// typed exit 1.
func (c *Client) Shell(in *os.File, out, errOut io.Writer) error {
	session, err := c.Client.NewSession()
	if err != nil {
		return errors.WrapWithCode(err, errors.ErrSSH,
			"Failed to create SSH session",
			"Connection may have been closed. Try reconnecting.")
	}
	defer session.Close()

	fd := int(in.Fd())
	if term.IsTerminal(fd) {
		state, err := term.MakeRaw(fd)
		if err != nil {
			return errors.WrapWithCode(err, errors.ErrSSH,
				"Couldn't put the terminal into raw mode", "")
		}
		defer term.Restore(fd, state) //nolint:errcheck

		width, height, err := term.GetSize(fd)
		if err != nil {
			width, height = 80, 24
		}

		termType := os.Getenv("TERM")
		if termType == "" {
			termType = "xterm-256color"
		}

		modes := ssh.TerminalModes{
			ssh.ECHO:          1,
			ssh.TTY_OP_ISPEED: 14400,
			ssh.TTY_OP_OSPEED: 14400,
		}
		if err := session.RequestPty(termType, height, width, modes); err != nil {
			return errors.WrapWithCode(err, errors.ErrSSH,
				"Remote host refused a PTY", "")
		}
	}

	session.Stdin = in
	session.Stdout = out
	session.Stderr = errOut

	if err := session.Shell(); err != nil {
		return errors.WrapWithCode(err, errors.ErrSSH,
			"Couldn't start a remote shell", "")
	}

	if err := session.Wait(); err != nil {
		if _, ok := err.(*ssh.ExitError); ok {
			return nil
		}
		return errors.WrapWithCode(err, errors.ErrSSH,
			"SSH session ended abnormally", "")
	}
	return nil
}
