// Package main provides the entry point for the narrator CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile   string
	languageFlag string
	engineFlag   string
	outputFlag   string
	userFlag     string
	titleFlag    string

	rootCmd = &cobra.Command{
		Use:   "narrator [VIDEO_URL]",
		Short: "Turn video transcripts into narrated audio",
		Long: "\nNarrator pulls the transcript of a video, cleans the caption noise " +
			"out of it and synthesizes it into an audio file you can listen to anywhere.",
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runSpeak(cmd, args[0])
		},
	}
)

func setupLog() error {
	log.SetOutput(os.Stderr)
	log.SetReportTimestamp(false)

	level := viper.GetString("log_level")
	if env := os.Getenv("NARRATOR_LOG_LEVEL"); env != "" {
		level = env
	}
	if level == "" {
		return nil
	}

	parsed, err := log.ParseLevel(level)
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	log.SetLevel(parsed)
	return nil
}

func main() {
	if err := setupLog(); err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func init() {
	tryLoadConfigFromDefaultPlaces()
	if len(CommitSHA) >= 7 {
		vt := rootCmd.VersionTemplate()
		rootCmd.SetVersionTemplate(vt[:len(vt)-1] + " (" + CommitSHA[0:7] + ")\n")
	}
	if Version == "" {
		Version = "unknown (built from source)"
	}
	rootCmd.Version = Version
	rootCmd.InitDefaultCompletionCmd()

	rootCmd.PersistentFlags().StringVar(&configFile, "config", "", fmt.Sprintf("config file (default %s)", viper.GetViper().ConfigFileUsed()))
	rootCmd.PersistentFlags().StringVarP(&languageFlag, "language", "l", "", "narration language (name or ISO code)")
	rootCmd.PersistentFlags().StringVarP(&engineFlag, "engine", "e", "", "synthesis engine (azure/mock)")
	rootCmd.PersistentFlags().StringVarP(&outputFlag, "output", "o", "", "audio output directory")
	rootCmd.PersistentFlags().StringVarP(&userFlag, "user", "u", "", "user id owning the produced audio")
	rootCmd.PersistentFlags().StringVarP(&titleFlag, "title", "t", "", "override the audio title")

	_ = viper.BindPFlag("language", rootCmd.PersistentFlags().Lookup("language"))
	_ = viper.BindPFlag("engine", rootCmd.PersistentFlags().Lookup("engine"))
	_ = viper.BindPFlag("output_dir", rootCmd.PersistentFlags().Lookup("output"))
	_ = viper.BindPFlag("user_id", rootCmd.PersistentFlags().Lookup("user"))

	rootCmd.AddCommand(speakCmd, voicesCmd, configCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "narrator")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "narrator")}, dirs...)
	}

	if c := os.Getenv("NARRATOR_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("narrator")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("narrator")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", used)
		return
	}

	configFile = filepath.Join(dirs[0], "narrator.yml")
	if err := ensureConfigFile(); err != nil {
		log.Error("Could not create default configuration", "error", err)
	}
}
