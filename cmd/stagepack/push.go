package main

import (
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/stagepack/stagepack/internal/alphanum"
	"github.com/stagepack/stagepack/internal/utils"
)

func init() {
	rootCmd.AddCommand(newPushCmd())
}

func newPushCmd() *cobra.Command {
	var parallel int

	cmd := &cobra.Command{
		Use:   "push LOCAL_PATH PACKAGE [VERSION]",
		Short: "Push a local directory as a new package version",
		Long: `Push files from a local directory to a new package version.

Uploads all files recursively from LOCAL_PATH to the stage at
@stage/packages/PACKAGE/VERSION/. When VERSION is omitted, the latest
existing version is auto-incremented (or 1.0.0 is used for a new package).

Package versions are immutable: pushing to an existing version fails.`,
		Args: cobra.RangeArgs(2, 3),
		RunE: func(cmd *cobra.Command, args []string) error {
			stg, err := stageRef()
			if err != nil {
				return err
			}

			localPath, err := utils.ResolvePath(args[0])
			if err != nil {
				return err
			}
			packageName := args[1]

			m, err := newManager()
			if err != nil {
				return err
			}

			ctx := cmd.Context()
			var version string
			if len(args) == 3 {
				version = args[2]
			} else if maxVer := m.MaxVersion(ctx, stg, packageName); maxVer == "" {
				version = "1.0.0"
			} else {
				version = alphanum.Increment(maxVer)
			}

			out := cmd.OutOrStdout()
			count := 0
			for res, err := range m.Push(ctx, stg, packageName, version, localPath, parallel) {
				if err != nil {
					return err
				}
				count++
				fmt.Fprintf(out, "%s %s -> %s (%s)\n",
					green(res.Status), res.Source, res.Target, humanize.Bytes(uint64(res.Size)))
			}

			if count == 0 {
				fmt.Fprintf(out, "No files found in %s\n", localPath)
				return nil
			}

			fmt.Fprintf(out, "Pushed %d file(s) to %s version %s\n",
				count, cyan(packageName), cyan(version))
			return nil
		},
	}

	cmd.Flags().IntVarP(&parallel, "parallel", "p", 4, "Number of parallel upload threads")
	return cmd
}
