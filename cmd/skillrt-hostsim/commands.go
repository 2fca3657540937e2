package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func buildRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "skillrt-hostsim",
		Short: "Reference host process for the skill runtime protocol",
		Long: `skillrt-hostsim spawns a skill binary, services its reverse-RPC
calls against a local SQLite-backed store, drives the skill lifecycle
(load, activate, tick, shutdown), and exposes /metrics and /ws for
observability. It exists to exercise the protocol end to end; a real
host is free to implement its own.`,
	}
	root.AddCommand(buildRunCmd(), buildReplayCmd(), buildSchemaCmd())
	return root
}

func buildRunCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "run",
		Short: "Spawn a skill and run it until shutdown",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			return runHost(cmd.Context(), cfg)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML host config file")
	return cmd
}

func buildReplayCmd() *cobra.Command {
	var configPath string
	var eventsPath string
	cmd := &cobra.Command{
		Use:   "replay",
		Short: "Spawn a skill, load it, and replay a recorded event file against it",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := LoadConfig(configPath)
			if err != nil {
				return err
			}
			if eventsPath == "" {
				return fmt.Errorf("--events is required")
			}
			return replayHost(cmd.Context(), cfg, eventsPath)
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "", "Path to YAML host config file")
	cmd.Flags().StringVar(&eventsPath, "events", "", "Path to a newline-delimited JSON event file")
	return cmd
}

func buildSchemaCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "schema",
		Short: "Print the host config file's JSON Schema",
		RunE: func(cmd *cobra.Command, args []string) error {
			out, err := configSchemaJSON()
			if err != nil {
				return err
			}
			fmt.Println(out)
			return nil
		},
	}
}
