// Command eventctl is a terminal front end of the EventEase API.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"sort"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"eventease/client"
)

type command struct {
	usage string
	run   func(ctx context.Context, app *app, args []string) error
}

var commands = map[string]command{
	"signup":        {"signup -name NAME -email EMAIL -password PASS", signup},
	"login":         {"login -email EMAIL -password PASS", login},
	"logout":        {"logout", logout},
	"whoami":        {"whoami", whoami},
	"events":        {"events [-search Q] [-category C] [-type T] [-page N] [-limit N] [-local Q]", listEvents},
	"event":         {"event ID", showEvent},
	"register":      {"register -event ID -name NAME -email EMAIL -phone PHONE [-tickets N] [-ticket-type T] -method M", register},
	"registrations": {"registrations", myRegistrations},
	"cancel":        {"cancel REGISTRATION_ID", cancelRegistration},
	"location":      {"location [-lat LAT -lng LNG | -city NAME | -list]", chooseLocation},
	"notifications": {"notifications", notifications},
	"subscribe":     {"subscribe -email EMAIL", subscribe},
}

type app struct {
	client *client.Client
	out    io.Writer
}

func main() {
	_ = godotenv.Load()
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, nil)))

	global := flag.NewFlagSet("eventctl", flag.ExitOnError)
	apiURL := global.String("api", getEnv("EVENTEASE_API", "http://localhost:8080/api"), "API base url")
	sessionPath := global.String("session", getEnv("EVENTEASE_SESSION", defaultSessionPath()), "session file")
	timeout := global.Duration("timeout", 30*time.Second, "timeout of one command")
	global.Usage = func() { usage(global) }
	_ = global.Parse(os.Args[1:])

	if global.NArg() == 0 {
		usage(global)
		os.Exit(2)
	}
	cmd, ok := commands[global.Arg(0)]
	if !ok {
		fmt.Fprintf(os.Stderr, "unknown command %q\n\n", global.Arg(0))
		usage(global)
		os.Exit(2)
	}

	c, err := client.New(*apiURL, client.WithSessionStore(client.FileSessionStore{Path: *sessionPath}))
	if err != nil {
		slog.Error("start client", "error", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()
	ctx, cancel := context.WithTimeout(ctx, *timeout)
	defer cancel()

	if err := cmd.run(ctx, &app{client: c, out: os.Stdout}, global.Args()[1:]); err != nil {
		slog.Error(global.Arg(0)+" failed", "error", err)
		if errors.Is(err, client.ErrUnauthorized) {
			fmt.Fprintln(os.Stderr, "log in first: eventctl login -email ... -password ...")
		}
		os.Exit(1)
	}
}

func usage(fs *flag.FlagSet) {
	fmt.Fprintln(os.Stderr, "usage: eventctl [flags] <command> [args]")
	fmt.Fprintln(os.Stderr, "\nflags:")
	fs.PrintDefaults()
	fmt.Fprintln(os.Stderr, "\ncommands:")
	names := make([]string, 0, len(commands))
	for name := range commands {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Fprintf(os.Stderr, "  %s\n", commands[name].usage)
	}
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func defaultSessionPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ".eventease-session.json"
	}
	return filepath.Join(home, ".eventease", "session.json")
}
