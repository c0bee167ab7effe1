package cli

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"
)

const probeTimeout = 5 * time.Second

type probe struct {
	name  string
	check func(ctx context.Context) error
}

// status probes every configured backend concurrently and prints one
// line per backend. Probe failures are reported, not returned: a dead
// backend must not hide the state of the others.
func (a *App) status(ctx context.Context) {
	probes := []probe{
		{"botchat", func(ctx context.Context) error {
			_, err := a.bots.ListWorkspaces(ctx)
			return err
		}},
		{"tasks", func(ctx context.Context) error {
			_, err := a.tasks.ListUsers(ctx)
			return err
		}},
		{"registrar", func(ctx context.Context) error {
			_, err := a.registrar.Ping(ctx)
			return err
		}},
		{"tracker", func(ctx context.Context) error {
			_, err := a.tracker.Viewer(ctx)
			return err
		}},
		{"deploy", func(ctx context.Context) error {
			_, err := a.deploy.ListProjects(ctx)
			return err
		}},
		{"notes", func(ctx context.Context) error {
			_, err := a.notes.ListSpaces(ctx)
			return err
		}},
	}

	results := make(map[string]error, len(probes))
	var mu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	for _, p := range probes {
		p := p
		g.Go(func() error {
			pctx, cancel := context.WithTimeout(gctx, probeTimeout)
			defer cancel()
			err := p.check(pctx)
			mu.Lock()
			results[p.name] = err
			mu.Unlock()
			return nil
		})
	}
	_ = g.Wait()

	names := make([]string, 0, len(results))
	for n := range results {
		names = append(names, n)
	}
	sort.Strings(names)
	for _, n := range names {
		if err := results[n]; err != nil {
			fmt.Fprintf(a.out, "%-10s down: %v\n", n, err)
		} else {
			fmt.Fprintf(a.out, "%-10s ok\n", n)
		}
	}
}
