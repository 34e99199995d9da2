package main

import (
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/config"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/journal"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/logger"
	"github.com/Wenfeng-Gao-cn/doc-chunk/internal/supervisor"
)

// GlobalFlags holds persistent flags shared by all subcommands.
type GlobalFlags struct {
	ConfigPath string
	BaseDir    string
	LogLevel   string
}

// buildRoot creates the root command with all service subcommands attached.
func buildRoot() *cobra.Command {
	flags := &GlobalFlags{}

	root := &cobra.Command{
		Use:   "chunksupd",
		Short: "Supervisor for the Doc-chunk pipeline services",
		Long: `chunksupd starts, stops and monitors the background services of the
document chunking pipeline: the chunk generator (gen_chunk_graph.py) and the
knowledge-base writer (Write_k_b_from_folder.py). Each service is tracked by
a PID file and writes to a date-stamped log file under the logs directory.

Examples:
  chunksupd start chunker --doc-dir sample_doc
  chunksupd status kbwriter
  chunksupd logs chunker
  chunksupd serve --listen :8085`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVar(&flags.ConfigPath, "config", "", "path to TOML config file (optional)")
	root.PersistentFlags().StringVar(&flags.BaseDir, "base-dir", ".", "directory holding the pipeline scripts, pid files and logs")
	root.PersistentFlags().StringVar(&flags.LogLevel, "log-level", "info", "supervisor log level (debug|info|warn|error)")

	root.AddCommand(
		createStartCommand(flags),
		createStopCommand(flags),
		createRestartCommand(flags),
		createStatusCommand(flags),
		createLogsCommand(flags),
		createHistoryCommand(flags),
		createServeCommand(flags),
	)
	return root
}

// buildSupervisor loads config and wires one supervisor for the named
// service. The returned cleanup closes the journal sink when one is open.
func buildSupervisor(flags *GlobalFlags, name string) (*supervisor.Supervisor, func(), error) {
	fc, err := config.Load(flags.ConfigPath, flags.BaseDir)
	if err != nil {
		return nil, nil, err
	}
	sp := config.Find(fc.Services, name)
	if sp == nil {
		return nil, nil, &supervisor.CodedError{
			Code: supervisor.ExitFailure,
			Msg:  fmt.Sprintf("unknown service %q (configured: %s)", name, strings.Join(config.Names(fc.Services), ", ")),
		}
	}

	sup := supervisor.New(*sp)
	lc := fc.Log
	if lc.Level == "" {
		lc.Level = flags.LogLevel
	}
	sup.SetLogger(logger.New(lc))

	env, err := config.GlobalEnv(fc)
	if err != nil {
		return nil, nil, err
	}
	sup.SetEnv(env)

	jrn, err := journal.New(fc.Journal)
	if err != nil {
		return nil, nil, fmt.Errorf("open journal: %w", err)
	}
	cleanup := func() {}
	if jrn != nil {
		sup.SetJournal(jrn)
		cleanup = func() { _ = jrn.Close() }
	}
	return sup, cleanup, nil
}

func createStartCommand(flags *GlobalFlags) *cobra.Command {
	var docDir string
	cmd := &cobra.Command{
		Use:   "start <service>",
		Short: "Start a service as a detached background process",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, cleanup, err := buildSupervisor(flags, args[0])
			if err != nil {
				return err
			}
			defer cleanup()
			return sup.Start(docDir)
		},
	}
	cmd.Flags().StringVar(&docDir, "doc-dir", "", "document directory (skips the interactive prompt)")
	return cmd
}

func createStopCommand(flags *GlobalFlags) *cobra.Command {
	return &cobra.Command{
		Use:   "stop <service>",
		Short: "Stop a service and remove its PID file",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, cleanup, err := buildSupervisor(flags, args[0])
			if err != nil {
				return err
			}
			defer cleanup()
			return sup.Stop()
		},
	}
}

func createRestartCommand(flags *GlobalFlags) *cobra.Command {
	var docDir string
	cmd := &cobra.Command{
		Use:   "restart <service>",
		Short: "Stop a service, wait the settle delay, and start it again",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, cleanup, err := buildSupervisor(flags, args[0])
			if err != nil {
				return err
			}
			defer cleanup()
			return sup.Restart(docDir)
		},
	}
	cmd.Flags().StringVar(&docDir, "doc-dir", "", "document directory (skips the interactive prompt)")
	return cmd
}

func createStatusCommand(flags *GlobalFlags) *cobra.Command {
	var lines int
	cmd := &cobra.Command{
		Use:   "status <service>",
		Short: "Report whether a service is running and show recent log lines",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, cleanup, err := buildSupervisor(flags, args[0])
			if err != nil {
				return err
			}
			defer cleanup()
			st, err := sup.Status(lines)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "%s: %s (pid %d)\n", st.Name, st.State, st.PID)
			if len(st.LogTail) > 0 {
				fmt.Fprintf(out, "--- last %d lines of %s ---\n", len(st.LogTail), st.LogPath)
				for _, l := range st.LogTail {
					fmt.Fprintln(out, l)
				}
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&lines, "lines", 10, "number of trailing log lines to show")
	return cmd
}

func createLogsCommand(flags *GlobalFlags) *cobra.Command {
	var follow bool
	cmd := &cobra.Command{
		Use:   "logs <service>",
		Short: "Print the service's log file, following appends until interrupted",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, cleanup, err := buildSupervisor(flags, args[0])
			if err != nil {
				return err
			}
			defer cleanup()
			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()
			return sup.Logs(ctx, cmd.OutOrStdout(), follow)
		},
	}
	cmd.Flags().BoolVar(&follow, "follow", true, "stream appended log data (Ctrl-C to stop)")
	return cmd
}

func createHistoryCommand(flags *GlobalFlags) *cobra.Command {
	var limit int
	cmd := &cobra.Command{
		Use:   "history <service>",
		Short: "List recent lifecycle events recorded in the journal",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			sup, cleanup, err := buildSupervisor(flags, args[0])
			if err != nil {
				return err
			}
			defer cleanup()
			events, err := sup.History(cmd.Context(), limit)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if len(events) == 0 {
				fmt.Fprintln(out, "no recorded events")
				return nil
			}
			for _, e := range events {
				fmt.Fprintf(out, "%s  %-6s  pid=%-8d %s\n",
					e.OccurredAt.Local().Format("2006-01-02 15:04:05"), e.Type, e.PID, e.Detail)
			}
			return nil
		},
	}
	cmd.Flags().IntVar(&limit, "limit", 20, "maximum number of events to list")
	return cmd
}
