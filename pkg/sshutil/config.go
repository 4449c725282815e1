// Package sshutil dials SSH sessions into fleet VMs, resolving
// connection settings from ~/.ssh/config and authenticating via the
// SSH agent or local key files.
package sshutil

import (
	"bytes"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/kevinburke/ssh_config"
)

// Settings holds resolved SSH connection parameters for one target.
type Settings struct {
	Hostname     string
	Port         string
	User         string
	IdentityFile string

	// encryptedKeys are keys found on disk that need a passphrase;
	// surfaced in auth-failure suggestions.
	encryptedKeys []string
}

// Address returns the host:port string for dialing.
func (s *Settings) Address() string {
	return net.JoinHostPort(s.Hostname, s.Port)
}

// Resolve parses a target string and fills in settings from
// ~/.ssh/config. The target can be an alias, a hostname or IP, a
// user@host, or a host:port. Explicit parts of the target win over the
// config file; defaultUser and defaultPort fill whatever is left.
func Resolve(target, defaultUser string, defaultPort int) *Settings {
	s := &Settings{
		Port: "22",
		User: currentUser(),
	}
	if defaultUser != "" {
		s.User = defaultUser
	}
	if defaultPort > 0 && defaultPort != 22 {
		s.Port = strconv.Itoa(defaultPort)
	}

	explicitUser := false
	if atIdx := strings.Index(target, "@"); atIdx != -1 {
		s.User = target[:atIdx]
		target = target[atIdx+1:]
		explicitUser = true
	}

	explicitPort := false
	if colonIdx := strings.LastIndex(target, ":"); colonIdx != -1 {
		if port := target[colonIdx+1:]; isDigits(port) {
			s.Port = port
			target = target[:colonIdx]
			explicitPort = true
		}
	}

	s.Hostname = target

	cfg := loadSSHConfig(sshConfigPath())
	if cfg == nil {
		return s
	}

	if hostname, _ := cfg.Get(target, "HostName"); hostname != "" {
		s.Hostname = hostname
	}
	if port, _ := cfg.Get(target, "Port"); port != "" && !explicitPort {
		s.Port = port
	}
	if user, _ := cfg.Get(target, "User"); user != "" && !explicitUser {
		s.User = user
	}
	if identity, _ := cfg.Get(target, "IdentityFile"); identity != "" {
		s.IdentityFile = expandPath(identity)
	}

	return s
}

// sshConfigPath locates the user's SSH config; a variable so tests can
// point it at a fixture.
var sshConfigPath = func() string {
	return filepath.Join(homeDir(), ".ssh", "config")
}

// loadSSHConfig parses the SSH config file, tolerating Match directives
// by only reading content before the first one. Returns nil when the
// file is missing or unparseable; resolution then falls back to
// defaults.
func loadSSHConfig(path string) *ssh_config.Config {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil
	}

	// The ssh_config library doesn't support Match blocks; strip
	// everything from the first one onward.
	if idx := matchDirectiveIndex(content); idx >= 0 {
		content = content[:idx]
	}

	cfg, err := ssh_config.Decode(bytes.NewReader(content))
	if err != nil {
		return nil
	}
	return cfg
}

// matchDirectiveIndex returns the byte offset of the first Match
// directive, or -1.
func matchDirectiveIndex(content []byte) int {
	offset := 0
	for _, line := range strings.Split(string(content), "\n") {
		trimmed := strings.TrimSpace(line)
		if strings.HasPrefix(strings.ToLower(trimmed), "match ") {
			return offset
		}
		offset += len(line) + 1
	}
	return -1
}

func homeDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return os.Getenv("HOME")
	}
	return home
}

func currentUser() string {
	if user := os.Getenv("USER"); user != "" {
		return user
	}
	return "root"
}

func expandPath(path string) string {
	if strings.HasPrefix(path, "~/") {
		return filepath.Join(homeDir(), path[2:])
	}
	return path
}

func isDigits(s string) bool {
	if s == "" {
		return false
	}
	for _, c := range s {
		if c < '0' || c > '9' {
			return false
		}
	}
	return true
}
