package main

import (
	"context"
	"fmt"
	"io"
	"os/exec"

	firecracker "github.com/firecracker-microvm/firecracker-go-sdk"
)

// spawnSkillFirecracker is the optional, host-chosen Firecracker
// isolation tier. It constructs a firecracker-go-sdk Machine config
// (socket under /tmp, kernel image at /var/lib/skillrt/vmlinux) and
// then always returns an error: no stdio bridge to the microVM exists
// in this build, so the skill is never launched on this path. Hosts
// that need a running skill use isolation "process".
func spawnSkillFirecracker(cfg *Config) (*exec.Cmd, io.WriteCloser, io.ReadCloser, error) {
	_, err := firecracker.NewMachine(context.Background(), firecracker.Config{
		SocketPath:      fmt.Sprintf("/tmp/skillrt-%s.sock", cfg.SkillID),
		KernelImagePath: "/var/lib/skillrt/vmlinux",
	})
	if err != nil {
		return nil, nil, nil, fmt.Errorf("firecracker isolation unavailable, falling back requires isolation: process in the host config: %w", err)
	}
	return nil, nil, nil, fmt.Errorf("firecracker isolation is not wired to a stdio bridge in this build; set isolation: process in the host config")
}
