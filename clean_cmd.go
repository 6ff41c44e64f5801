package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/keksclan/rawrsquirrel/pkg/squirrel"
)

var cleanCmd = &cobra.Command{
	Use:     "clean",
	Short:   "Remove all cached entries",
	Example: "squirrel clean\nsquirrel clean --cache-dir ~/.cache/squirrel",
	Args:    cobra.NoArgs,
	RunE: func(*cobra.Command, []string) error {
		resolved, err := resolveCacheDir(viper.GetString("cache_dir"))
		if err != nil {
			return err
		}

		entries, err := os.ReadDir(resolved)
		if err != nil {
			return fmt.Errorf("unable to read cache directory: %w", err)
		}

		removed := 0
		for _, entry := range entries {
			if entry.IsDir() || !strings.HasSuffix(entry.Name(), squirrel.Ext) {
				continue
			}
			path := filepath.Join(resolved, entry.Name())
			if err := os.Remove(path); err != nil {
				log.Warn("Could not remove cache entry", "path", path, "err", err)
				continue
			}
			removed++
		}

		fmt.Printf("Removed %d cached entries from %s\n", removed, resolved)
		return nil
	},
}
