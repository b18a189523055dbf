package cmd

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"
)

var (
	syncMessagesPath string
	syncTimeout      int
)

var syncCmd = &cobra.Command{
	Use:   "sync",
	Short: "Compile stored messages and merge them into stored transactions",
	Long: `Optionally appends messages from a JSON file to the store, then compiles
every stored message and merges the result into the stored transactions.
Running it again over the same messages adds nothing.

Examples:
  kwgn-sms sync
  kwgn-sms sync -m inbox.json
  kwgn-sms sync -m inbox.json -c prod.yaml`,
	Run: func(cmd *cobra.Command, args []string) {
		ctx, cancel := context.WithTimeout(context.Background(), time.Duration(syncTimeout)*time.Second)
		defer cancel()

		syncer, closeStore, err := openSyncer(ctx, appConfig)
		if err != nil {
			log.Fatal().Err(err).Msg("failed to open store")
		}
		defer closeStore()

		if syncMessagesPath != "" {
			messages, err := readMessages(syncMessagesPath)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to read messages")
			}
			added, err := syncer.AddMessages(ctx, messages)
			if err != nil {
				log.Fatal().Err(err).Msg("failed to store messages")
			}
			log.Info().Int("added", added).Int("read", len(messages)).Msg("messages stored")
		}

		res, err := syncer.Sync(ctx)
		if err != nil {
			log.Fatal().Err(err).Msg("sync failed")
		}

		fmt.Fprintf(cmd.OutOrStdout(), "Complete: %d messages, %d compiled, %d added, %d skipped, %d total\n",
			res.Messages, res.Compiled, res.Added, res.Skipped, res.Total)
	},
}

func init() {
	rootCmd.AddCommand(syncCmd)

	syncCmd.Flags().StringVarP(&syncMessagesPath, "messages", "m", "", "JSON file with messages to append before syncing")
	syncCmd.Flags().IntVar(&syncTimeout, "timeout", 300, "Operation timeout in seconds")
}
