package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/aqlanhadi/kwgn-sms/config"
	"github.com/aqlanhadi/kwgn-sms/logger"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	cfgFile   string
	verbose   bool
	appConfig *config.Config
	log       = logger.New()
	rootCmd   = &cobra.Command{
		Use:   "kwgn-sms",
		Short: "Turn bank SMS alerts into reconciled transactions",
		Long: `kwgn-sms matches bank notification messages to accounts, extracts
transactions with per-account regex templates and merges them into a
stored transaction set without creating duplicates.`,
		SilenceUsage: true,
		Run: func(cmd *cobra.Command, args []string) {
			cmd.Help()
		},
	}
)

func Execute() {
	err := rootCmd.Execute()
	if err != nil {
		os.Exit(1)
	}
}

func init() {
	cobra.OnInitialize(initConfig, initLogging)

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file path (default is ./.kwgn-sms.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")
}

func initLogging() {
	level := ""
	if appConfig != nil {
		level = appConfig.LogLevel
	}
	logger.Configure(verbose, level)
}

func initConfig() {
	// .env is optional; real environment variables take precedence.
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		fmt.Fprintf(os.Stderr, "Error loading .env: %v\n", err)
	}

	viper.Reset()
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		cobra.CheckErr(err)

		viper.AddConfigPath(".")  // First check current directory
		viper.AddConfigPath(home) // Then check home directory
		viper.SetConfigName(".kwgn-sms")
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("KWGN")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			fmt.Fprintf(os.Stderr, "Error reading config file: %v\n", err)
			os.Exit(1)
		}
		// No config file found, use embedded default configuration
		viper.SetConfigType("yaml")
		if err := viper.ReadConfig(bytes.NewBufferString(config.DefaultYAML)); err != nil {
			fmt.Fprintf(os.Stderr, "Error loading embedded configuration: %v\n", err)
			os.Exit(1)
		}
	}

	cfg, err := config.Load(viper.GetViper())
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error loading configuration: %v\n", err)
		os.Exit(1)
	}
	appConfig = cfg
}

// setLogger replaces the command logger, used by tests.
func setLogger(l zerolog.Logger) {
	log = l
}
