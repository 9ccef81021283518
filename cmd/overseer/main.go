package main

import (
	"context"
	"crypto/sha256"
	"flag"
	"fmt"
	"io"
	"os"
	"runtime/debug"
	"strings"
	"text/tabwriter"
	"time"

	"overseer/internal/app"
	overseerclient "overseer/internal/client"
	"overseer/internal/config"
	"overseer/internal/logging"
	"overseer/internal/session"
	"overseer/internal/store"
)

const usageText = `overseer is an operator console for an AI task backend.

Usage:
  overseer <command> [flags]

Commands:
  ui       run the terminal console
  send     submit a prompt and print the assigned request id
  history  list recent prompts
  tasks    list task records
  watch    follow a task's live events
  version  print the client build id
  help     show help

Flags:
  -h, --help   show help

Examples:
  overseer ui
  overseer send "summarize the deploy logs"
  overseer tasks --limit 20
  overseer watch <request-id>
`

const version = "dev"

func printUsage() {
	fmt.Fprint(os.Stderr, usageText)
}

func main() {
	args := os.Args[1:]
	if len(args) == 0 {
		exitOnErr("ui", runUI(nil))
		return
	}

	switch args[0] {
	case "-h", "--help", "help":
		printUsage()
		return
	case "ui":
		exitOnErr("ui", runUI(args[1:]))
	case "send":
		exitOnErr("send", runSend(args[1:]))
	case "history":
		exitOnErr("history", runHistory(args[1:]))
	case "tasks":
		exitOnErr("tasks", runTasks(args[1:]))
	case "watch":
		exitOnErr("watch", runWatch(args[1:]))
	case "version":
		fmt.Println(buildVersion())
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", args[0])
		printUsage()
		os.Exit(2)
	}
}

func runUI(args []string) error {
	fs := flag.NewFlagSet("ui", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	logger := logging.Nop()
	if logPath, err := config.LogPath(); err == nil {
		if file, err := os.OpenFile(logPath, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644); err == nil {
			defer file.Close()
			logger = logging.New(file, logging.ParseLevel(cfg.LogLevel()))
		}
	}

	client, err := overseerclient.New()
	if err != nil {
		return err
	}

	statePath, err := config.StatePath()
	if err != nil {
		return err
	}
	states, err := store.NewBboltStateStore(statePath)
	if err != nil {
		return err
	}
	defer states.Close()

	identity := session.NewIdentityManager(states, client, buildVersion(), logger)

	return app.Run(app.Options{
		Backend:  client,
		Streams:  client,
		Identity: identity,
		States:   states,
		Config:   cfg,
		Logger:   logger,
	})
}

func runSend(args []string) error {
	fs := flag.NewFlagSet("send", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	prompt := strings.TrimSpace(strings.Join(fs.Args(), " "))
	if prompt == "" {
		return fmt.Errorf("usage: overseer send <prompt>")
	}

	ctx := context.Background()
	client, err := overseerclient.New()
	if err != nil {
		return err
	}
	resp, err := client.SubmitPrompt(ctx, overseerclient.SubmitPromptRequest{Prompt: prompt})
	if err != nil {
		return err
	}
	fmt.Printf("%s\t%s\n", resp.RequestID, resp.Status)
	return nil
}

func runHistory(args []string) error {
	fs := flag.NewFlagSet("history", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	limit := fs.Int("limit", 50, "maximum records to fetch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	client, err := overseerclient.New()
	if err != nil {
		return err
	}
	records, err := client.History(ctx, *limit)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "REQUEST\tCREATED\tSTATUS\tPROMPT")
	for _, record := range records {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			record.RequestID,
			record.CreatedAt.Local().Format(time.DateTime),
			record.Status,
			oneLine(record.Prompt, 80))
	}
	return writer.Flush()
}

func runTasks(args []string) error {
	fs := flag.NewFlagSet("tasks", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	limit := fs.Int("limit", 50, "maximum records to fetch")
	if err := fs.Parse(args); err != nil {
		return err
	}

	ctx := context.Background()
	client, err := overseerclient.New()
	if err != nil {
		return err
	}
	tasks, err := client.Tasks(ctx, *limit)
	if err != nil {
		return err
	}

	writer := tabwriter.NewWriter(os.Stdout, 0, 8, 2, ' ', 0)
	fmt.Fprintln(writer, "TASK\tSTATUS\tUPDATED\tRESULT")
	for _, task := range tasks {
		fmt.Fprintf(writer, "%s\t%s\t%s\t%s\n",
			task.TaskID,
			task.Status,
			task.UpdatedAt.Local().Format(time.DateTime),
			oneLine(task.Result, 80))
	}
	return writer.Flush()
}

func runWatch(args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return fmt.Errorf("usage: overseer watch <request-id>")
	}
	taskID := fs.Arg(0)

	ctx := context.Background()
	client, err := overseerclient.New()
	if err != nil {
		return err
	}
	events, cancel, err := client.TaskEvents(ctx, taskID)
	if err != nil {
		return err
	}
	defer cancel()

	for event := range events {
		stamp := event.Timestamp.Local().Format(time.TimeOnly)
		fmt.Printf("%s  %s  %s", stamp, event.Kind, event.Status)
		if event.Result != "" {
			fmt.Printf("  %s", oneLine(event.Result, 120))
		}
		fmt.Println()
		if event.Terminal() {
			return nil
		}
	}
	return fmt.Errorf("stream closed before task %s finished", taskID)
}

func oneLine(text string, limit int) string {
	text = strings.ReplaceAll(strings.TrimSpace(text), "\n", " ")
	runes := []rune(text)
	if len(runes) > limit {
		return string(runes[:limit-1]) + "…"
	}
	return text
}

func exitOnErr(label string, err error) {
	if err == nil {
		return
	}
	fmt.Fprintf(os.Stderr, "%s error: %v\n", label, err)
	os.Exit(1)
}

func buildVersion() string {
	if info, ok := debug.ReadBuildInfo(); ok {
		var revision string
		var modified string
		for _, setting := range info.Settings {
			switch setting.Key {
			case "vcs.revision":
				revision = setting.Value
			case "vcs.modified":
				modified = setting.Value
			}
		}
		if revision != "" {
			if modified == "true" {
				return revision + "-dirty"
			}
			return revision
		}
	}

	exe, err := os.Executable()
	if err == nil {
		file, err := os.Open(exe)
		if err == nil {
			defer file.Close()
			hasher := sha256.New()
			if _, err := io.Copy(hasher, file); err == nil {
				sum := hasher.Sum(nil)
				return fmt.Sprintf("bin-%x", sum[:6])
			}
		}
	}

	return version
}
