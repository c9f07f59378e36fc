package cmd

import (
	"fmt"

	"github.com/iksnae/chat-session/internal"
	"github.com/spf13/cobra"
)

var deleteAll bool

// deleteCmd represents the delete command
var deleteCmd = &cobra.Command{
	Use:   "delete [session-id]",
	Short: "Delete stored sessions",
	Long:  `Delete one stored session by ID (or unique prefix), or every session with --all.`,
	Args: func(cmd *cobra.Command, args []string) error {
		if deleteAll && len(args) > 0 {
			return fmt.Errorf("--all takes no session ID")
		}
		if !deleteAll && len(args) != 1 {
			return fmt.Errorf("requires a session ID or --all")
		}
		return nil
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		store, err := openStore()
		if err != nil {
			return err
		}
		defer store.Close()

		cache := cacheManager()

		if deleteAll {
			n, err := store.ClearSessions()
			if err != nil {
				return err
			}
			if err := cache.ClearCache(); err != nil {
				internal.LogWarn("Failed to clear cache: %v", err)
			}
			internal.PrintSuccess(fmt.Sprintf("Deleted %d session(s)", n))
			return nil
		}

		id, err := store.ResolveID(args[0])
		if err != nil {
			return err
		}
		if err := store.DeleteSession(id); err != nil {
			return err
		}
		if err := cache.Invalidate(id); err != nil {
			internal.LogWarn("Failed to drop cached statistics for %s: %v", id, err)
		}
		internal.PrintSuccess(fmt.Sprintf("Deleted session %s", id))
		return nil
	},
}

func init() {
	rootCmd.AddCommand(deleteCmd)
	deleteCmd.Flags().BoolVar(&deleteAll, "all", false, "Delete every stored session")
}
