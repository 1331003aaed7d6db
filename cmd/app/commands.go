package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/urfave/cli/v3"

	"github.com/starford/memos/internal"
	"github.com/starford/memos/internal/index"
	"github.com/starford/memos/internal/mcpserver"
	"github.com/starford/memos/internal/memoservice"
	"github.com/starford/memos/internal/models"
)

// openService loads the config and wires the memo service. Logs go to
// stderr so command output stays clean.
func openService(cmd *cli.Command) (*internal.Config, *internal.Components, *slog.Logger, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, nil, nil, err
	}
	logger := internal.NewLogger(cfg, os.Stderr)
	comp, err := internal.Open(cfg, logger)
	if err != nil {
		return nil, nil, nil, err
	}
	return cfg, comp, logger, nil
}

func addCommand() *cli.Command {
	return &cli.Command{
		Name:      "add",
		Usage:     "Append a memo to today's journal, auto-tagged from the keyword tables",
		ArgsUsage: "<text>",
		Flags: []cli.Flag{
			&cli.StringSliceFlag{Name: "tag", Aliases: []string{"t"}, Usage: "Extra tag, repeatable"},
			&cli.StringFlag{Name: "group", Aliases: []string{"g"}, Usage: "Quick-tag group keyword or label"},
			&cli.BoolFlag{Name: "no-auto", Usage: "Skip smart and habit keyword matching"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			text := strings.TrimSpace(strings.Join(cmd.Args().Slice(), " "))
			if text == "" {
				return errors.New("add: memo text is required")
			}
			_, comp, _, err := openService(cmd)
			if err != nil {
				return err
			}
			memo, err := comp.Service.Create(ctx, memoservice.CreateInput{
				Content: text,
				Tags:    cmd.StringSlice("tag"),
				Group:   cmd.String("group"),
				AutoTag: !cmd.Bool("no-auto"),
			})
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.Root().Writer, "%s: %s\n", memo.FilePath, memo.RawText)
			return err
		},
	}
}

func listCommand() *cli.Command {
	return &cli.Command{
		Name:  "list",
		Usage: "Print memos newest first",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "tag", Usage: "Only memos with this tag"},
			&cli.StringFlag{Name: "group", Usage: "Only memos in this quick-tag group"},
			&cli.StringFlag{Name: "query", Aliases: []string{"q"}, Usage: "Case-insensitive text or tag search"},
			&cli.IntFlag{Name: "limit", Aliases: []string{"n"}, Value: 20, Usage: "Maximum memos to print"},
		},
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, comp, _, err := openService(cmd)
			if err != nil {
				return err
			}
			page, err := comp.Service.List(ctx, memoservice.Filter{
				Tag:   cmd.String("tag"),
				Group: cmd.String("group"),
				Query: cmd.String("query"),
				Limit: int(cmd.Int("limit")),
			})
			if err != nil {
				return err
			}
			return printMemos(cmd.Root().Writer, page.Items)
		},
	}
}

func printMemos(w io.Writer, memos []models.Memo) error {
	for _, m := range memos {
		var b strings.Builder
		b.WriteString(m.DateString)
		if m.TimeString != "" {
			b.WriteString(" " + m.TimeString)
		}
		for _, t := range m.Tags {
			b.WriteString(" #" + t)
		}
		if m.Content != "" {
			b.WriteString(" " + m.Content)
		}
		if _, err := fmt.Fprintln(w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

func statsCommand() *cli.Command {
	return &cli.Command{
		Name:  "stats",
		Usage: "Print memo counts",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			_, comp, _, err := openService(cmd)
			if err != nil {
				return err
			}
			st, err := comp.Service.Stats(ctx)
			if err != nil {
				return err
			}
			_, err = fmt.Fprintf(cmd.Root().Writer, "total: %d\ntags: %d\ntoday: %d\nthis week: %d\n",
				st.Total, st.Tags, st.Today, st.ThisWeek)
			return err
		},
	}
}

func mcpCommand() *cli.Command {
	return &cli.Command{
		Name:  "mcp",
		Usage: "Serve memo tools over MCP on stdio",
		Action: func(ctx context.Context, cmd *cli.Command) error {
			cfg, comp, logger, err := openService(cmd)
			if err != nil {
				return err
			}

			ctx, cancel := context.WithCancel(ctx)
			defer cancel()
			go func() {
				if err := index.Watch(ctx, comp.Index, cfg.Vault.Path, logger, nil); err != nil {
					logger.Warn("watcher stopped", slog.String("error", err.Error()))
				}
			}()

			logger.Info("mcp: serving on stdio", slog.String("vault_path", cfg.Vault.Path))
			return mcpserver.New(comp.Service, version).ServeStdio()
		},
	}
}
