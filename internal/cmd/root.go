package cmd

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/MakeNowJust/heredoc"
	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/fang"
	"github.com/nxadm/tail"
	"github.com/spf13/cobra"

	"github.com/tujuhre12/recycler/internal/config"
	"github.com/tujuhre12/recycler/internal/log"
	"github.com/tujuhre12/recycler/internal/tui/components/scroller"
	"github.com/tujuhre12/recycler/internal/version"
)

func init() {
	rootCmd.PersistentFlags().StringP("cwd", "c", "", "Current working directory")
	rootCmd.PersistentFlags().String("config", "", "Config file to use instead of the project files")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "Debug")

	rootCmd.Flags().IntP("count", "n", 1000, "Number of generated items when no file is given")
	rootCmd.Flags().BoolP("follow", "f", false, "Keep reading lines appended to the file")
}

var rootCmd = &cobra.Command{
	Use:   "recycler [file]",
	Short: "Scroll huge lists with a recycled pool of views",
	Long: heredoc.Doc(`
		Recycler scrolls through a list of items while keeping only a small
		pool of rendered views. Drag with the mouse past either end and let go
		to load more, or follow a growing file.
	`),
	Example: heredoc.Doc(`
		# Scroll through generated items
		recycler

		# Browse a file
		recycler ./CHANGELOG.md

		# Follow a log as it grows
		recycler -f /var/log/syslog

		# Run with debug logging in a specific directory
		recycler -d -c /path/to/project
	`),
	Args: cobra.MaximumNArgs(1),
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		path, _ := cmd.Flags().GetString("config")
		if path == "" {
			return nil
		}
		abs, err := filepath.Abs(path)
		if err != nil {
			return fmt.Errorf("failed to resolve config path: %w", err)
		}
		return os.Setenv("RECYCLER_CONFIG", abs)
	},
	RunE: func(cmd *cobra.Command, args []string) error {
		cwd, err := ResolveCwd(cmd)
		if err != nil {
			return err
		}
		cfg, err := config.Load(cwd)
		if err != nil {
			return err
		}
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			cfg.Options.Debug = true
		}
		level := log.ParseLevel(cfg.Options.LogLevel)
		if cfg.Options.Debug {
			level = slog.LevelDebug
		}
		log.Setup(cfg.LogFile(), level)

		count, _ := cmd.Flags().GetInt("count")
		follow, _ := cmd.Flags().GetBool("follow")

		var file string
		if len(args) > 0 {
			file = args[0]
		}
		if follow && file == "" {
			return fmt.Errorf("--follow needs a file")
		}

		ctx, cancel := context.WithCancel(cmd.Context())
		defer cancel()

		var (
			lines  []string
			source scroller.Source
		)
		if file != "" {
			lines, err = readLines(file)
			if err != nil {
				return err
			}
		} else {
			gen := &generator{next: count}
			lines = gen.initial(count)
			source = gen.Load
		}

		model, err := scroller.New(cfg, lines, source)
		if err != nil {
			return err
		}
		program := tea.NewProgram(
			model,
			tea.WithAltScreen(),
			tea.WithContext(ctx),
			tea.WithMouseCellMotion(),
		)

		if follow {
			if err := followFile(ctx, file, program); err != nil {
				return err
			}
		}
		watchConfig(ctx, cwd, program)

		slog.Info("Starting recycler", "version", version.Version, "items", len(lines), "file", file)
		if _, err := program.Run(); err != nil {
			slog.Error("TUI run error", "error", err)
			return fmt.Errorf("TUI error: %v", err)
		}
		return nil
	},
}

func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(version.Version),
	); err != nil {
		os.Exit(1)
	}
}

// ResolveCwd changes into the directory given by --cwd, if any, and returns
// the working directory.
func ResolveCwd(cmd *cobra.Command) (string, error) {
	cwd, _ := cmd.Flags().GetString("cwd")
	if cwd != "" {
		err := os.Chdir(cwd)
		if err != nil {
			return "", fmt.Errorf("failed to change directory: %v", err)
		}
		return cwd, nil
	}
	cwd, err := os.Getwd()
	if err != nil {
		return "", fmt.Errorf("failed to get current working directory: %v", err)
	}
	return cwd, nil
}

func readLines(path string) ([]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return nil, nil
	}
	return strings.Split(text, "\n"), nil
}

// followFile sends every line appended to path after startup to program.
func followFile(ctx context.Context, path string, program *tea.Program) error {
	t, err := tail.TailFile(path, tail.Config{
		Location:  &tail.SeekInfo{Offset: 0, Whence: io.SeekEnd},
		Follow:    true,
		ReOpen:    true,
		MustExist: true,
		Logger:    tail.DiscardingLogger,
	})
	if err != nil {
		return fmt.Errorf("failed to follow %s: %w", path, err)
	}

	go func() {
		defer log.RecoverPanic("follow", nil)
		defer t.Cleanup()
		for {
			select {
			case <-ctx.Done():
				if err := t.Stop(); err != nil {
					slog.Debug("Failed to stop tail", "error", err)
				}
				return
			case line, ok := <-t.Lines:
				if !ok {
					return
				}
				if line.Err != nil {
					slog.Warn("Failed to read followed line", "file", path, "error", line.Err)
					continue
				}
				program.Send(scroller.AppendMsg{Lines: []string{line.Text}})
			}
		}
	}()
	return nil
}

// watchConfig reloads the configuration whenever one of its files changes.
// Invalid edits are logged and ignored.
func watchConfig(ctx context.Context, cwd string, program *tea.Program) {
	changes, err := config.Watch(ctx, config.Paths(cwd))
	if err != nil {
		slog.Warn("Config changes will not be picked up", "error", err)
		return
	}
	go func() {
		defer log.RecoverPanic("config-watch", nil)
		for range changes {
			cfg, err := config.Load(cwd)
			if err != nil {
				slog.Warn("Ignoring invalid config", "error", err)
				continue
			}
			slog.Info("Config reloaded")
			program.Send(scroller.ConfigMsg{Config: cfg})
		}
	}()
}
