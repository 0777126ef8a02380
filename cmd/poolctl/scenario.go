// File: cmd/poolctl/scenario.go
// Author: momentics <momentics@gmail.com>

package main

import (
	"errors"
	"fmt"
	"io"

	"github.com/momentics/hioload-pool/api"
	"github.com/momentics/hioload-pool/pool"
	"github.com/spf13/cobra"
)

func init() {
	rootCmd.AddCommand(newScenarioCmd())
}

func newScenarioCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "scenario",
		Short: "Walk a 4x2 pool to exhaustion and back",
		Long: `The scenario command fills a pool of two chunks with four slots each,
shows the ninth acquire failing, releases one object and shows that the
reacquired slot carries a new version in its tag.

Example:
  poolctl scenario`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runScenario(cmd.OutOrStdout())
		},
	}
}

type cell struct {
	id int
}

func runScenario(w io.Writer) error {
	p, err := pool.New[cell](
		pool.WithName[cell]("scenario"),
		pool.WithSlotsPerChunk[cell](4),
		pool.WithMaxChunks[cell](2),
	)
	if err != nil {
		return err
	}

	live := make([]*cell, 0, p.Capacity())
	for i := 0; i < p.Capacity(); i++ {
		obj, err := p.AcquireWith(func(c *cell) { c.id = i })
		if err != nil {
			return fmt.Errorf("acquire %d: %w", i, err)
		}
		live = append(live, obj)
		fmt.Fprintf(w, "acquire #%d -> %s (chunks=%d)\n", i+1, p.TagOf(obj), p.Stats().Chunks)
	}

	_, err = p.Acquire()
	if !errors.Is(err, api.ErrCapacityExhausted) {
		return fmt.Errorf("acquire #%d: expected capacity exhausted, got %v", len(live)+1, err)
	}
	fmt.Fprintf(w, "acquire #%d -> %s\n", len(live)+1, api.CodeOf(err))

	victim := live[len(live)/2]
	before := p.TagOf(victim)
	p.Release(victim)
	fmt.Fprintf(w, "release    %s\n", before)

	again, err := p.Acquire()
	if err != nil {
		return fmt.Errorf("reacquire: %w", err)
	}
	after := p.TagOf(again)
	fmt.Fprintf(w, "reacquire  %s\n", after)
	if after.Chunk() != before.Chunk() || after.Slot() != before.Slot() || after.Version() == before.Version() {
		return fmt.Errorf("reacquired %s, want same slot as %s with a new version", after, before)
	}
	live[len(live)/2] = again

	for _, obj := range live {
		p.Release(obj)
	}
	return p.Close()
}
