// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Quibble Contributors

package main

import (
	"github.com/spf13/cobra"
)

// Global flags available to all subcommands.
var configFile string

// NewRootCmd creates the root command for the Quibble CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "quibble",
		Short: "Quibble - forum API server",
		Long: `Quibble is a forum backend exposing a GraphQL API with
session-based authentication backed by PostgreSQL and Redis.`,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "config file path")

	cmd.AddCommand(newServeCmd())
	cmd.AddCommand(newMigrateCmd())

	return cmd
}
