package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"site_cms/config"
)

var (
	cfgFile   string
	verbose   bool
	appConfig config.Config
	logger    *logrus.Logger
)

var rootCmd = &cobra.Command{
	Use:   "site_cms",
	Short: "Blog content pipeline: editor sessions, post storage and rendering",
	Long: `site_cms serves the blog admin API and public pages, and offers offline
commands to render stored documents, import Markdown and draft posts.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return initializeConfig(cmd)
	},
}

func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is ./config.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logs")
}

func initializeConfig(cmd *cobra.Command) error {
	cfg, used, err := config.Load(cfgFile)
	if err != nil {
		return err
	}
	if verbose {
		cfg.LogLevel = "debug"
	}
	appConfig = cfg
	logger = cfg.NewLogger(cmd.ErrOrStderr())
	if used != "" {
		logger.WithField("file", used).Debug("using config file")
	}
	return nil
}
