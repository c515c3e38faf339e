package cmd

import (
	"fmt"
	"sort"
	"strings"

	"github.com/spf13/cobra"
)

var listProfilesCmd = &cobra.Command{
	Use:   "list-profiles",
	Short: "List all profiles defined in configuration",
	Long: `List-profiles displays all scan profiles defined in the configuration file
along with the settings they override.

Example:
  extscan list-profiles --config extscan.yaml`,
	RunE: runListProfiles,
}

func init() {
	rootCmd.AddCommand(listProfilesCmd)
}

func runListProfiles(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig()
	if err != nil {
		return err
	}

	names := cfg.ListProfiles()
	if len(names) == 0 {
		cmd.Printf("No profiles defined in %s\n", configName())
		return nil
	}

	// Sort profile names for consistent output
	sort.Strings(names)

	cmd.Printf("Profiles defined in %s:\n\n", configName())

	for i, name := range names {
		profile, err := cfg.GetProfile(name)
		if err != nil {
			return fmt.Errorf("failed to get profile %q: %w", name, err)
		}
		scan := profile.GetProfileScan(cfg.Scan)

		cmd.Printf("%d. %s\n", i+1, name)
		if profile.Description != "" {
			cmd.Printf("   Description:   %s\n", profile.Description)
		}
		cmd.Printf("   Roots:         %s\n", orDefault(scan.Roots, "."))
		cmd.Printf("   Extensions:    %s\n", orDefault(scan.Extensions, "rar"))

		if profile.Concurrency > 0 || profile.Workers > 0 {
			cmd.Printf("   Concurrency:   Custom (concurrency=%d, workers=%d)\n",
				scan.Concurrency, scan.Workers)
		}
		if profile.FollowSymlinks != nil {
			cmd.Printf("   Symlinks:      follow=%v\n", *profile.FollowSymlinks)
		}
		if len(profile.Exclude) > 0 {
			cmd.Printf("   Exclude:       %d pattern(s)\n", len(profile.Exclude))
			for _, p := range profile.Exclude {
				cmd.Printf("      - %s\n", p)
			}
		}

		if i < len(names)-1 {
			cmd.Println()
		}
	}

	cmd.Printf("\nTotal: %d profile(s)\n", len(names))
	return nil
}

func orDefault(values []string, def string) string {
	if len(values) == 0 {
		return def
	}
	return strings.Join(values, ", ")
}
