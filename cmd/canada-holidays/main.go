package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/klabast/wb-services/canada-holidays/internal/app"
	"github.com/klabast/wb-services/canada-holidays/internal/commands"
)

func usage() {
	fmt.Fprintf(os.Stderr, "Usage: canada-holidays [command] [OPTIONS]\n\n")
	fmt.Fprintf(os.Stderr, "Commands:\n")
	fmt.Fprintf(os.Stderr, "  serve          Serve the holiday API (default)\n")
	fmt.Fprintf(os.Stderr, "  list           Print the holidays of a province\n")
	fmt.Fprintf(os.Stderr, "  hash-password  Create the admin auth file\n\n")
	fmt.Fprintf(os.Stderr, "Run 'canada-holidays <command> -h' for command options.\n")
}

func main() {
	// Check for subcommands, serve is the default
	command := app.ModeServe
	args := os.Args[1:]
	if len(args) > 0 && !strings.HasPrefix(args[0], "-") {
		command, args = args[0], args[1:]
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	var err error
	switch command {
	case app.ModeServe:
		err = commands.Serve(ctx, args)
	case app.ModeList:
		err = commands.List(ctx, args, os.Stdout)
	case "hash-password":
		err = commands.HashPassword(args)
	case "help":
		usage()
		return
	default:
		fmt.Fprintf(os.Stderr, "Unknown command %q\n\n", command)
		usage()
		os.Exit(2)
	}

	if err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return
		}
		if errors.Is(err, app.ErrAborted) {
			fmt.Fprintln(os.Stderr, "Aborted")
			os.Exit(1)
		}
		app.Logger.WithError(err).Errorf("%s failed", command)
		os.Exit(1)
	}
}
