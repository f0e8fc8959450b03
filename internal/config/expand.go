package config

import (
	"os"
	"os/user"
	"path/filepath"
	"strings"
)

// ExpandTilde replaces ~ or ~/path with the user's home directory.
// Does not support ~username syntax.
func ExpandTilde(path string) string {
	if path == "~" || strings.HasPrefix(path, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, strings.TrimPrefix(path[1:], "/"))
	}
	return path
}

// ExpandPath expands ${HOME}, ${USER} and a leading ~ in a local path.
func ExpandPath(s string) string {
	if s == "" {
		return s
	}
	if strings.Contains(s, "${HOME}") {
		home, _ := os.UserHomeDir()
		s = strings.ReplaceAll(s, "${HOME}", home)
	}
	if strings.Contains(s, "${USER}") {
		s = strings.ReplaceAll(s, "${USER}", currentUser())
	}
	return ExpandTilde(s)
}

func currentUser() string {
	if u, err := user.Current(); err == nil && u.Username != "" {
		return u.Username
	}
	return os.Getenv("USER")
}
