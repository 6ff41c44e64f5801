// Package main provides the entry point for the squirrel CLI, a memoizing
// command runner backed by an on-disk cache.
package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/caarlos0/env/v11"
	"github.com/charmbracelet/log"
	"github.com/mitchellh/go-homedir"
	gap "github.com/muesli/go-app-paths"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keksclan/rawrsquirrel/internal/memo"
)

var (
	// Version as provided by goreleaser.
	Version = ""
	// CommitSHA as provided by goreleaser.
	CommitSHA = ""

	configFile string
	cacheDir   string
	ttl        int
	compress   bool
	debug      bool

	exitCode int

	rootCmd = &cobra.Command{
		Use:   "squirrel [flags] -- COMMAND [ARGS...]",
		Short: "Run commands with their output squirreled away on disk",
		Long: "Run a command and stash its stdout in an on-disk cache.\n" +
			"Repeated runs within the TTL replay the stored output without\n" +
			"starting the command at all.",
		Example: "  squirrel -- curl -s https://example.com/api\n" +
			"  squirrel --ttl 60 -- du -sh /var\n" +
			"  squirrel --compress -- pg_dump mydb",
		SilenceErrors:    false,
		SilenceUsage:     true,
		TraverseChildren: true,
		Args:             cobra.MinimumNArgs(1),
		RunE:             execute,
	}
)

func execute(_ *cobra.Command, args []string) error {
	// grab config values from Viper
	cacheDir = viper.GetString("cache_dir")
	ttl = viper.GetInt("ttl")
	compress = viper.GetBool("compress")

	// Environment overrides take precedence over config file values.
	overrides, err := env.ParseAs[memo.Config]()
	if err != nil {
		return fmt.Errorf("error parsing environment: %w", err)
	}
	if overrides.CacheDir != "" {
		cacheDir = overrides.CacheDir
	}
	if overrides.TTL != nil {
		ttl = *overrides.TTL
	}
	if overrides.Compress {
		compress = true
	}

	dir, err := resolveCacheDir(cacheDir)
	if err != nil {
		return err
	}

	runner := &memo.Runner{
		CacheDir:   dir,
		TTLSeconds: ttl,
		Compress:   compress,
		Logger:     log.Default(),
		Stdout:     os.Stdout,
		Stderr:     os.Stderr,
	}

	code, err := runner.Run(args)
	exitCode = code
	return err
}

// resolveCacheDir expands and, unlike the cache itself, creates the cache
// directory. Falls back to the user cache scope when unset.
func resolveCacheDir(dir string) (string, error) {
	if dir == "" {
		scope := gap.NewScope(gap.User, "squirrel")
		d, err := scope.CacheDir()
		if err != nil {
			return "", fmt.Errorf("could not resolve cache directory: %w", err)
		}
		dir = d
	}

	expanded, err := homedir.Expand(dir)
	if err != nil {
		return "", fmt.Errorf("could not expand cache directory: %w", err)
	}

	if err := os.MkdirAll(expanded, 0o755); err != nil {
		return "", fmt.Errorf("could not create cache directory: %w", err)
	}
	return expanded, nil
}

func main() {
	closer, err := setupLog()
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	if err := rootCmd.Execute(); err != nil {
		_ = closer()
		if exitCode == 0 {
			exitCode = 1
		}
		os.Exit(exitCode)
	}
	_ = closer()
	if exitCode != 0 {
		os.Exit(exitCode)
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
	rootCmd.PersistentFlags().StringVarP(&cacheDir, "cache-dir", "d", "", "cache directory (default: user cache dir)")
	rootCmd.PersistentFlags().BoolVar(&debug, "debug", false, "verbose logging")
	rootCmd.Flags().IntVarP(&ttl, "ttl", "t", 3600, "seconds a cached result stays fresh (0 disables caching)")
	rootCmd.Flags().BoolVarP(&compress, "compress", "z", false, "compress cached output with zstd")

	// Config bindings
	_ = viper.BindPFlag("cache_dir", rootCmd.PersistentFlags().Lookup("cache-dir"))
	_ = viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	_ = viper.BindPFlag("ttl", rootCmd.Flags().Lookup("ttl"))
	_ = viper.BindPFlag("compress", rootCmd.Flags().Lookup("compress"))

	viper.SetDefault("cache_dir", "")
	viper.SetDefault("ttl", 3600)
	viper.SetDefault("compress", false)
	viper.SetDefault("debug", false)
	viper.SetDefault("log_file", "")

	rootCmd.AddCommand(cleanCmd, configCmd, manCmd)
}

func tryLoadConfigFromDefaultPlaces() {
	scope := gap.NewScope(gap.User, "squirrel")
	dirs, err := scope.ConfigDirs()
	if err != nil {
		fmt.Println("Could not find configuration directory.")
		os.Exit(1)
	}

	if c := os.Getenv("XDG_CONFIG_HOME"); c != "" {
		dirs = append([]string{filepath.Join(c, "squirrel")}, dirs...)
	}

	if c := os.Getenv("SQUIRREL_CONFIG_HOME"); c != "" {
		dirs = append([]string{c}, dirs...)
	}

	for _, v := range dirs {
		viper.AddConfigPath(v)
	}

	viper.SetConfigName("squirrel")
	viper.SetConfigType("yaml")
	viper.SetEnvPrefix("squirrel")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			log.Warn("Could not parse configuration file", "err", err)
		}
	}

	if used := viper.ConfigFileUsed(); used != "" {
		log.Debug("Using configuration file", "path", viper.ConfigFileUsed())
		return
	}

	configFile = filepath.Join(dirs[0], "squirrel.yml")
}
