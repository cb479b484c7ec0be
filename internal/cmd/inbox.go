package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
)

var inboxCmd = &cobra.Command{
	Use:   "inbox",
	Short: "Inspect and consume teammate mailboxes",
}

var inboxReadCmd = &cobra.Command{
	Use:   "read <team> <agent>",
	Short: "Show a mailbox without consuming it",
	Long: `Print every message in the agent's mailbox, including ones already
consumed. Read flags are left untouched.`,
	Args: cobra.ExactArgs(2),
	RunE: runInboxRead,
}

var inboxConsumeCmd = &cobra.Command{
	Use:   "consume <team> <agent>",
	Short: "Drain the unread messages from a mailbox",
	Long: `Print the unread messages in the agent's mailbox and flag them as
read. A second consume returns nothing until new messages arrive.`,
	Args: cobra.ExactArgs(2),
	RunE: runInboxConsume,
}

func init() {
	inboxCmd.AddCommand(inboxReadCmd, inboxConsumeCmd)
	rootCmd.AddCommand(inboxCmd)
}

func runInboxRead(cmd *cobra.Command, args []string) error {
	hub, cleanup, err := newHub()
	if err != nil {
		return err
	}
	defer cleanup()

	messages, err := hub.Inbox(args[0]).ReadInbox(args[1])
	if err != nil {
		return fmt.Errorf("failed to read inbox: %w", err)
	}
	if len(messages) == 0 {
		fmt.Println("Inbox is empty")
		return nil
	}

	for _, msg := range messages {
		marker := " "
		if !msg.Read {
			marker = "*"
		}
		fmt.Printf("%s [%s] %s: %s\n", marker, msg.Timestamp, msg.From, msg.Content)
	}
	return nil
}

func runInboxConsume(cmd *cobra.Command, args []string) error {
	hub, cleanup, err := newHub()
	if err != nil {
		return err
	}
	defer cleanup()

	text, ok, err := hub.Inbox(args[0]).ConsumeAsTags(args[1])
	if err != nil {
		return fmt.Errorf("failed to consume inbox: %w", err)
	}
	if !ok {
		fmt.Println("No unread messages")
		return nil
	}
	fmt.Println(text)
	return nil
}
