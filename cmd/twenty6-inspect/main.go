// Command twenty6-inspect attaches to an existing ring by an inherited
// file descriptor number and prints its fill diagnostics once, or
// periodically with --watch.
// It is a thin CLI wrapper around the library and carries no ABI
// guarantees of its own.
package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/cvonelm/twenty6"
)

func main() {
	var (
		fd       int
		watch    bool
		interval time.Duration
		strict   bool
	)

	root := &cobra.Command{
		Use:   "twenty6-inspect",
		Short: "Print fill diagnostics for a ring buffer given an inherited file descriptor",
		RunE: func(cmd *cobra.Command, args []string) error {
			var opts []twenty6.AttachOption
			if strict {
				opts = append(opts, twenty6.WithStrictVersion())
			}

			ep, err := twenty6.Attach(fd, opts...)
			if err != nil {
				return fmt.Errorf("attach fd %d: %w", fd, err)
			}
			defer ep.Close()

			if !watch {
				return ep.PrintFill(os.Stdout)
			}

			for {
				if err := ep.PrintFill(os.Stdout); err != nil {
					return err
				}
				time.Sleep(interval)
			}
		},
	}

	root.Flags().IntVar(&fd, "fd", -1, "file descriptor of the ring's shared-memory handle")
	root.Flags().BoolVar(&watch, "watch", false, "keep printing on an interval instead of exiting after one snapshot")
	root.Flags().DurationVar(&interval, "interval", time.Second, "interval between snapshots when --watch is set")
	root.Flags().BoolVar(&strict, "strict-version", false, "reject a header whose version or size looks wrong")
	root.MarkFlagRequired("fd")

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
