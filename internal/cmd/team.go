package cmd

import (
	"fmt"
	"strings"

	"github.com/gobwas/glob"
	"github.com/spf13/cobra"

	"github.com/Sh1ra083/codex/internal/team"
)

var teamCmd = &cobra.Command{
	Use:   "team",
	Short: "Inspect and operate on teams",
}

var teamCreateCmd = &cobra.Command{
	Use:   "create <name>",
	Short: "Create a new team",
	Long: `Create a team's full state tree: roster config, work queue, and the
leader's mailbox. Fails if the team already exists.`,
	Args: cobra.ExactArgs(1),
	RunE: runTeamCreate,
}

var teamStatusCmd = &cobra.Command{
	Use:   "status <name>",
	Short: "Show a team's roster",
	Args:  cobra.ExactArgs(1),
	RunE:  runTeamStatus,
}

var teamTasksCmd = &cobra.Command{
	Use:   "tasks <name>",
	Short: "Show a team's work queue",
	Args:  cobra.ExactArgs(1),
	RunE:  runTeamTasks,
}

var teamMessageCmd = &cobra.Command{
	Use:   "message <name> <to> <content>",
	Short: "Send a direct message to a teammate's mailbox",
	Args:  cobra.MinimumNArgs(3),
	RunE:  runTeamMessage,
}

var teamBroadcastCmd = &cobra.Command{
	Use:   "broadcast <name> <content>",
	Short: "Send a message to every mailbox in the team",
	Args:  cobra.MinimumNArgs(2),
	RunE:  runTeamBroadcast,
}

var teamCleanupCmd = &cobra.Command{
	Use:   "cleanup <pattern>",
	Short: "Remove the state of teams matching a glob pattern",
	Long: `Remove the persisted state (roster, queue, mailboxes) of every team
whose name matches the glob pattern, e.g. "demo-*" or "scratch".`,
	Args: cobra.ExactArgs(1),
	RunE: runTeamCleanup,
}

var (
	teamCreateLeader string
	teamMessageFrom  string
)

func init() {
	teamCreateCmd.Flags().StringVar(&teamCreateLeader, "leader", "cli", "agent ID recorded as the team leader")
	teamMessageCmd.Flags().StringVar(&teamMessageFrom, "from", "leader", "sender name recorded on the message")
	teamBroadcastCmd.Flags().StringVar(&teamMessageFrom, "from", "leader", "sender name recorded on the message")

	teamCmd.AddCommand(teamCreateCmd, teamStatusCmd, teamTasksCmd, teamMessageCmd, teamBroadcastCmd, teamCleanupCmd)
	rootCmd.AddCommand(teamCmd)
}

func runTeamCreate(cmd *cobra.Command, args []string) error {
	hub, cleanup, err := newHub()
	if err != nil {
		return err
	}
	defer cleanup()

	if err := hub.CreateTeam(args[0], team.AgentID(teamCreateLeader)); err != nil {
		return fmt.Errorf("failed to create team: %w", err)
	}
	fmt.Printf("Created team %q (leader: %s)\n", args[0], teamCreateLeader)
	return nil
}

func runTeamStatus(cmd *cobra.Command, args []string) error {
	hub, cleanup, err := newHub()
	if err != nil {
		return err
	}
	defer cleanup()

	cfg, err := hub.Teams().Load(args[0])
	if err != nil {
		return fmt.Errorf("failed to load team: %w", err)
	}

	fmt.Printf("Team: %s\n", cfg.Name)
	fmt.Printf("Created: %s\n", cfg.CreatedAt)
	fmt.Printf("Leader: %s\n", cfg.LeaderID)
	fmt.Printf("Members: %d\n", len(cfg.Members))

	if len(cfg.Members) == 0 {
		return nil
	}
	rows := make([][]string, 0, len(cfg.Members))
	for _, m := range cfg.Members {
		rows = append(rows, []string{m.Name, m.AgentID.String(), m.Role, m.Status.String()})
	}
	fmt.Println(renderTable([]string{"NAME", "AGENT ID", "ROLE", "STATUS"}, rows))
	return nil
}

func runTeamTasks(cmd *cobra.Command, args []string) error {
	hub, cleanup, err := newHub()
	if err != nil {
		return err
	}
	defer cleanup()

	tasks, err := hub.Tasks(args[0])
	if err != nil {
		return fmt.Errorf("failed to load tasks: %w", err)
	}
	if len(tasks) == 0 {
		fmt.Println("No tasks")
		return nil
	}

	rows := make([][]string, 0, len(tasks))
	for _, t := range tasks {
		rows = append(rows, []string{
			t.ID,
			t.Title,
			t.Status.String(),
			t.AssignedTo,
			strings.Join(t.DependsOn, ", "),
		})
	}
	fmt.Println(renderTable([]string{"ID", "TITLE", "STATUS", "ASSIGNED TO", "DEPENDS ON"}, rows))
	return nil
}

func runTeamMessage(cmd *cobra.Command, args []string) error {
	hub, cleanup, err := newHub()
	if err != nil {
		return err
	}
	defer cleanup()

	content := strings.Join(args[2:], " ")
	if err := hub.SendMessage(args[0], teamMessageFrom, args[1], content); err != nil {
		return fmt.Errorf("failed to send message: %w", err)
	}
	fmt.Printf("Sent to %s\n", args[1])
	return nil
}

func runTeamBroadcast(cmd *cobra.Command, args []string) error {
	hub, cleanup, err := newHub()
	if err != nil {
		return err
	}
	defer cleanup()

	content := strings.Join(args[1:], " ")
	if err := hub.Broadcast(args[0], teamMessageFrom, content); err != nil {
		return fmt.Errorf("failed to broadcast: %w", err)
	}
	fmt.Println("Broadcast sent")
	return nil
}

func runTeamCleanup(cmd *cobra.Command, args []string) error {
	matcher, err := glob.Compile(args[0])
	if err != nil {
		return fmt.Errorf("invalid pattern %q: %w", args[0], err)
	}

	hub, cleanup, err := newHub()
	if err != nil {
		return err
	}
	defer cleanup()

	names, err := hub.Teams().ListTeams()
	if err != nil {
		return fmt.Errorf("failed to list teams: %w", err)
	}

	removed := 0
	for _, name := range names {
		if !matcher.Match(name) {
			continue
		}
		if err := hub.CleanupTeam(cmd.Context(), name); err != nil {
			return fmt.Errorf("failed to clean up team %q: %w", name, err)
		}
		fmt.Printf("Cleaned up %s\n", name)
		removed++
	}
	if removed == 0 {
		fmt.Println("No teams matched")
	}
	return nil
}
