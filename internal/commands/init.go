package commands

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"

	"github.com/finwatch-dev/finwatch/internal/config"
)

func newInitCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "init [directory]",
		Short: "Scaffold a finwatch working directory",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(_ *cobra.Command, args []string) error {
			dir := "."
			if len(args) > 0 {
				dir = args[0]
			}

			absDir, err := filepath.Abs(dir)
			if err != nil {
				return fmt.Errorf("resolving path: %w", err)
			}
			return runInit(absDir)
		},
	}
	return cmd
}

func runInit(dir string) error {
	for _, d := range []string{"secrets", "config", "logs"} {
		if err := os.MkdirAll(filepath.Join(dir, d), 0o755); err != nil {
			return fmt.Errorf("creating directory %s: %w", d, err)
		}
	}

	cfg := config.Default()
	if err := config.Save(filepath.Join(dir, "finwatch.yaml"), cfg); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	// Token files are placeholders; the operator fills them in.
	for _, f := range []string{
		cfg.Aggregator.TokenFile,
		cfg.Slack.BotTokenFile,
		cfg.Slack.AppTokenFile,
	} {
		path := filepath.Join(dir, f)
		if _, err := os.Stat(path); err == nil {
			continue
		}
		if err := os.WriteFile(path, []byte{}, 0o600); err != nil {
			return fmt.Errorf("writing %s: %w", f, err)
		}
	}

	gitignore := "secrets/\nconfig/txns.db\nlogs/\n"
	if err := os.WriteFile(filepath.Join(dir, ".gitignore"), []byte(gitignore), 0o644); err != nil {
		return fmt.Errorf("writing .gitignore: %w", err)
	}

	fmt.Printf("Initialized finwatch directory at %s\n", dir)
	return nil
}
