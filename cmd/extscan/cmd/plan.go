package cmd

import (
	"strings"

	"github.com/spf13/cobra"

	"github.com/dbsmedya/extscan/internal/filter"
	"github.com/dbsmedya/extscan/internal/scanner"
)

var planProfile string

var planCmd = &cobra.Command{
	Use:   "plan [PATH...]",
	Short: "Show the effective scan settings without scanning",
	Long: `Plan resolves configuration, profile and flags exactly like scan does and
prints the result, followed by a check of every root.

The plan shows:
  - Roots and whether each one can be scanned
  - Extensions, concurrency and workers per root
  - Symlink policy and active ignore sources

Example:
  extscan plan --profile media
  extscan plan -e zip /srv`,
	RunE: runPlan,
}

func init() {
	planCmd.Flags().StringVarP(&planProfile, "profile", "p", "",
		"Profile name from configuration file")
	planCmd.Flags().StringSliceVarP(&scanExtensions, "ext", "e", nil,
		"Extension to match, repeatable (default rar)")
	planCmd.Flags().IntVarP(&scanConcurrency, "concurrency", "c", 0,
		"Maximum concurrent metadata reads (default 4 x CPUs)")
	planCmd.Flags().IntVarP(&scanWorkers, "workers", "w", 0,
		"Walker goroutines per root (default CPUs)")
	planCmd.Flags().BoolVar(&scanFollow, "follow-symlinks", false,
		"Follow symbolic links")
	planCmd.Flags().BoolVar(&scanNoIgnore, "no-ignore", false,
		"Do not honor ignore files")
	planCmd.Flags().StringArrayVar(&scanExclude, "exclude", nil,
		"Additional gitignore-style pattern to exclude, repeatable")

	rootCmd.AddCommand(planCmd)
}

func runPlan(cmd *cobra.Command, args []string) error {
	_, eff, err := resolve(planProfile, scanOverrides(args))
	if err != nil {
		return err
	}

	opts := scanOptions(eff)
	f, err := filter.NewExtensionFilter(opts.Extensions...)
	if err != nil {
		return err
	}

	cmd.Printf("Configuration:   %s\n", configName())
	if eff.Profile != "" {
		cmd.Printf("Profile:         %s\n", eff.Profile)
	}
	cmd.Printf("Extensions:      %s\n", f)
	cmd.Printf("Concurrency:     %d\n", opts.Concurrency)
	cmd.Printf("Workers/root:    %d\n", opts.Workers)
	cmd.Printf("Follow symlinks: %v\n", opts.FollowSymlinks)

	if opts.Ignore.Enabled {
		cmd.Printf("Ignore rules:    %s\n", ignoreSources(opts))
	} else {
		cmd.Printf("Ignore rules:    disabled\n")
	}
	for _, p := range opts.Ignore.Patterns {
		cmd.Printf("   - %s\n", p)
	}

	cmd.Printf("\nRoots:\n")
	ok := 0
	for i, check := range scanner.Preflight(opts.Roots) {
		if check.OK() {
			ok++
			note := ""
			if check.Symlink {
				note = " (symlink)"
			}
			cmd.Printf("%d. ✅ %s -> %s%s\n", i+1, check.Root, check.Abs, note)
			continue
		}
		cmd.Printf("%d. ❌ %v\n", i+1, check.Err)
	}

	cmd.Printf("\nTotal: %d of %d root(s) can be scanned\n", ok, len(opts.Roots))
	return nil
}

func ignoreSources(opts scanner.Options) string {
	var sources []string
	if opts.Ignore.GitIgnore {
		sources = append(sources, ".gitignore")
	}
	if opts.Ignore.DotIgnore {
		sources = append(sources, ".ignore")
	}
	if opts.Ignore.GitExclude {
		sources = append(sources, ".git/info/exclude")
	}
	if opts.Ignore.GitGlobal {
		sources = append(sources, "global git excludes")
	}
	if len(opts.Ignore.Patterns) > 0 {
		sources = append(sources, "extra patterns")
	}
	if len(sources) == 0 {
		return "none"
	}
	out := strings.Join(sources, ", ")
	if opts.Ignore.Parents {
		out += " (including parent directories)"
	}
	if opts.Ignore.RequireGit {
		out += "; git sources only inside a repository"
	}
	return out
}
