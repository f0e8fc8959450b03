// Command procdash is a terminal dashboard and control CLI for a process
// supervisor backend: live status, per-process actions and the password
// gated config editor.
package main

import (
	"github.com/rileyhilliard/procdash/internal/cli"
)

// Stamped by the release build:
//
//	go build -ldflags "-X main.version=$(git describe --tags) -X main.commit=$(git rev-parse --short HEAD) -X main.date=$(date -u +%F)" ./cmd/procdash
//
// `procdash version` and the dashboard header report them.
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	cli.SetVersionInfo(version, commit, date)
	cli.Execute()
}
