package cmd

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"

	"github.com/Sh1ra083/codex/internal/coordination"
)

func execute(t *testing.T, args ...string) error {
	t.Helper()
	rootCmd.SetArgs(args)
	return rootCmd.Execute()
}

func seedTeams(t *testing.T, root string, names ...string) {
	t.Helper()
	hub, err := coordination.NewHub(coordination.Config{Root: root})
	if err != nil {
		t.Fatalf("NewHub: %v", err)
	}
	for _, name := range names {
		if err := hub.CreateTeam(name, "leader-1"); err != nil {
			t.Fatalf("CreateTeam(%s): %v", name, err)
		}
	}
}

func TestTeamCreateCommand(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	root := t.TempDir()

	if err := execute(t, "team", "create", "demo", "--root", root); err != nil {
		t.Fatalf("team create: %v", err)
	}
	if _, err := os.Stat(filepath.Join(root, "teams", "demo", "config.json")); err != nil {
		t.Errorf("team config not created: %v", err)
	}

	// Creating the same team again fails.
	if err := execute(t, "team", "create", "demo", "--root", root); err == nil {
		t.Error("expected duplicate create to fail")
	}
}

func TestTeamCleanupCommand_GlobMatching(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	root := t.TempDir()
	seedTeams(t, root, "demo-1", "demo-2", "keep")

	if err := execute(t, "team", "cleanup", "demo-*", "--root", root); err != nil {
		t.Fatalf("team cleanup: %v", err)
	}

	for _, gone := range []string{"demo-1", "demo-2"} {
		if _, err := os.Stat(filepath.Join(root, "teams", gone)); !os.IsNotExist(err) {
			t.Errorf("team %s should have been removed", gone)
		}
	}
	if _, err := os.Stat(filepath.Join(root, "teams", "keep", "config.json")); err != nil {
		t.Errorf("non-matching team should survive: %v", err)
	}
}

func TestTeamCleanupCommand_InvalidPattern(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	root := t.TempDir()

	if err := execute(t, "team", "cleanup", "[", "--root", root); err == nil {
		t.Error("expected invalid glob pattern to fail")
	}
}

func TestInboxConsumeCommand(t *testing.T) {
	viper.Reset()
	t.Cleanup(viper.Reset)
	root := t.TempDir()
	seedTeams(t, root, "demo")

	if err := execute(t, "team", "message", "demo", "alice", "hello", "there", "--root", root); err != nil {
		t.Fatalf("team message: %v", err)
	}
	if err := execute(t, "inbox", "consume", "demo", "alice", "--root", root); err != nil {
		t.Fatalf("inbox consume: %v", err)
	}
	if err := execute(t, "inbox", "read", "demo", "alice", "--root", root); err != nil {
		t.Fatalf("inbox read: %v", err)
	}
}
