// Command loadhistory prints the load outcome journal written by the viewer.
package main

import (
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"text/tabwriter"
	"time"

	"github.com/milk9111/sceneviewer/history"
)

func main() {
	path := flag.String("history", "", "LevelDB directory written by the viewer's -history flag")
	limit := flag.Int("n", 20, "number of entries to print, newest first (0 for all)")
	failed := flag.Bool("failed", false, "only print failed loads")
	prune := flag.Int("prune", -1, "keep only the newest N entries and exit")
	flag.Parse()

	if *path == "" {
		fmt.Fprintln(os.Stderr, "usage: loadhistory -history DIR [-n N] [-failed] [-prune N]")
		os.Exit(2)
	}

	store, err := history.Open(*path)
	if err != nil {
		slog.Error("open journal", "error", err)
		os.Exit(1)
	}

	runErr := run(store, os.Stdout, *limit, *failed, *prune)
	// Close before exiting so the LevelDB lock is released on every path.
	if err := store.Close(); err != nil {
		slog.Error("close journal", "error", err)
		os.Exit(1)
	}
	if runErr != nil {
		slog.Error("loadhistory", "error", runErr)
		os.Exit(1)
	}
}

func run(store *history.Store, out io.Writer, limit int, failed bool, prune int) error {
	if prune >= 0 {
		return store.Prune(prune)
	}

	n := limit
	if failed {
		n = 0
	}
	entries, err := store.Recent(n)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "TIME\tSTATUS\tKIND\tPATH\tERROR")
	printed := 0
	for _, e := range entries {
		if failed && e.Status != "failed" {
			continue
		}
		if limit > 0 && printed >= limit {
			break
		}
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\t%s\n", e.At.Format(time.DateTime), e.Status, e.Kind, e.Path, e.Error)
		printed++
	}
	return tw.Flush()
}
