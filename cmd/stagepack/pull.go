package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/stagepack/stagepack/internal/pkgmgr"
	"github.com/stagepack/stagepack/internal/utils"
)

func init() {
	rootCmd.AddCommand(newPullCmd())
}

func newPullCmd() *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "pull LOCAL_PATH PACKAGE VERSION",
		Short: "Pull a package version into a local directory",
		Long: `Pull files from a package version to a local directory.

Downloads all files from @stage/packages/PACKAGE/VERSION/ to LOCAL_PATH,
preserving the directory structure. Use 'latest' as VERSION to pull the
most recent version.`,
		Args: cobra.ExactArgs(3),
		RunE: func(cmd *cobra.Command, args []string) error {
			stg, err := stageRef()
			if err != nil {
				return err
			}

			localPath, err := utils.ResolvePath(args[0])
			if err != nil {
				return err
			}
			packageName, version := args[1], args[2]

			m, err := newManager()
			if err != nil {
				return err
			}

			results, err := m.Pull(cmd.Context(), stg, packageName, version, localPath, parallel)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			if len(results) == 0 {
				fmt.Fprintf(out, "No files found in package '%s' version '%s'\n", packageName, version)
				return nil
			}

			failed := 0
			for _, res := range results {
				if res.Status == pkgmgr.StatusFailed {
					failed++
					fmt.Fprintf(out, "%s %s: %s\n", red(res.Status), res.File, res.Error)
				} else {
					fmt.Fprintf(out, "%s %s -> %s\n", green(res.Status), res.File, res.Target)
				}
			}

			fmt.Fprintf(out, "Pulled %d of %d file(s) from '%s' version '%s' to %s\n",
				len(results)-failed, len(results), packageName, version, localPath)
			return nil
		},
	}

	cmd.Flags().IntVarP(&parallel, "parallel", "p", 4, "Number of parallel download threads")
	return cmd
}
