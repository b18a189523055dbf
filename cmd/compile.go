package cmd

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aqlanhadi/kwgn-sms/extractor"
	"github.com/aqlanhadi/kwgn-sms/extractor/common"
	"github.com/spf13/cobra"
)

var compileMessagesPath string

var compileCmd = &cobra.Command{
	Use:   "compile",
	Short: "Compile messages into transactions",
	Long: `Reads a JSON array of messages and prints the transactions extracted
with the configured accounts. Nothing is stored and nothing is deduplicated.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		messages, err := readMessages(compileMessagesPath)
		if err != nil {
			return err
		}

		compiler := extractor.NewCompiler(log)
		compiler.Workers = appConfig.Compile.Workers
		for _, account := range appConfig.Accounts {
			for _, err := range compiler.Patterns.Validate(account) {
				log.Warn().Str("account", account.ID).Err(err).Msg("template will be skipped")
			}
		}

		txs := compiler.Compile(messages, appConfig.Accounts)
		return printJSON(cmd, txs)
	},
}

func readMessages(path string) ([]common.Message, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read messages: %w", err)
	}
	var messages []common.Message
	if err := json.Unmarshal(data, &messages); err != nil {
		return nil, fmt.Errorf("failed to decode messages from %s: %w", path, err)
	}
	return messages, nil
}

func printJSON(cmd *cobra.Command, v any) error {
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func init() {
	rootCmd.AddCommand(compileCmd)

	compileCmd.Flags().StringVarP(&compileMessagesPath, "messages", "m", "", "JSON file with an array of messages (required)")
	compileCmd.MarkFlagRequired("messages")
}
