package main

import (
	"fmt"

	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newListVersionsCmd())
	rootCmd.AddCommand(newListPackagesCmd())
	rootCmd.AddCommand(newMaxVersionCmd())
}

func newListVersionsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-versions PACKAGE",
		Short: "List all versions of a package, sorted alphanumerically",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stg, err := stageRef()
			if err != nil {
				return err
			}
			m, err := newManager()
			if err != nil {
				return err
			}

			versions := m.ListVersions(cmd.Context(), stg, args[0])
			out := cmd.OutOrStdout()
			if len(versions) == 0 {
				fmt.Fprintf(out, "No versions found for package '%s'\n", args[0])
				return nil
			}
			for _, v := range versions {
				fmt.Fprintln(out, v)
			}
			return nil
		},
	}
}

func newListPackagesCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list-packages",
		Short: "List all packages on the stage",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			stg, err := stageRef()
			if err != nil {
				return err
			}
			m, err := newManager()
			if err != nil {
				return err
			}

			packages := m.ListPackages(cmd.Context(), stg)
			out := cmd.OutOrStdout()
			if len(packages) == 0 {
				fmt.Fprintln(out, "No packages found")
				return nil
			}
			for _, p := range packages {
				fmt.Fprintln(out, p)
			}
			return nil
		},
	}
}

func newMaxVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "max-version PACKAGE",
		Short: "Print the latest version of a package",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			stg, err := stageRef()
			if err != nil {
				return err
			}
			m, err := newManager()
			if err != nil {
				return err
			}

			maxVer := m.MaxVersion(cmd.Context(), stg, args[0])
			out := cmd.OutOrStdout()
			if maxVer == "" {
				fmt.Fprintf(out, "No versions found for package '%s'\n", args[0])
				return nil
			}
			fmt.Fprintln(out, maxVer)
			return nil
		},
	}
}
