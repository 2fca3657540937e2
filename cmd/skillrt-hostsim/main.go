// Command skillrt-hostsim is a reference host process for the skill
// runtime protocol: it spawns a skill binary over stdio, answers its
// reverse-RPC calls against a local SQLite store, drives the skill
// lifecycle, and exposes /metrics and /ws for observability.
package main

import (
	"context"
	"fmt"
	"os"
)

func main() {
	if err := buildRootCmd().ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
