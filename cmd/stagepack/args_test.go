package main

import (
	"bytes"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/require"
)

func execArgs(t *testing.T, sub *cobra.Command, args ...string) error {
	t.Helper()
	cmd := &cobra.Command{Use: "stagepack", SilenceUsage: true, SilenceErrors: true}
	cmd.AddCommand(sub)

	var out bytes.Buffer
	cmd.SetOut(&out)
	cmd.SetErr(&out)
	cmd.SetArgs(args)
	return cmd.Execute()
}

func TestPushCommand_RequiresPathAndPackage(t *testing.T) {
	require.Error(t, execArgs(t, newPushCmd(), "push", "./dir"))
}

func TestPullCommand_RequiresVersion(t *testing.T) {
	require.Error(t, execArgs(t, newPullCmd(), "pull", "./dir", "mypkg"))
}

func TestListVersionsCommand_RequiresPackage(t *testing.T) {
	require.Error(t, execArgs(t, newListVersionsCmd(), "list-versions"))
}

func TestListPackagesCommand_RejectsArgs(t *testing.T) {
	require.Error(t, execArgs(t, newListPackagesCmd(), "list-packages", "extra"))
}
