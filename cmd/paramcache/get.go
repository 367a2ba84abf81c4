package main

import (
	"strconv"
	"time"

	"github.com/agentuity/go-paramcache/cache"
	"github.com/agentuity/go-paramcache/tui"
	"github.com/cockroachdb/errors"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

type lookupResult struct {
	round  int
	name   string
	value  string
	cached bool
	err    error
}

func (r lookupResult) row(reveal bool) []string {
	status := "fetched"
	switch {
	case r.err != nil:
		status = "error"
	case r.cached:
		status = "cache"
	}
	value := r.value
	switch {
	case r.err != nil:
		value = r.err.Error()
	case !reveal:
		value = tui.MaskValue(value)
	}
	return []string{strconv.Itoa(r.round), r.name, value, status}
}

// lookup resolves name under the Shared lock, reporting whether the value was
// already fresh in the cache.
func lookup(cmd *cobra.Command, shared *cache.Shared, name string, force bool) (res lookupResult) {
	res.name = name
	shared.Do(func(c *cache.ParameterCache) error {
		if e, ok := c.Peek(name); ok && !force {
			res.cached = !e.IsExpiredAt(time.Now())
		}
		res.value, res.err = c.Lookup(cmd.Context(), name, force)
		return nil
	})
	return res
}

func newGetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "get NAME...",
		Short: "Look up one or more parameters",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			force, _ := cmd.Flags().GetBool("force-refresh")
			repeat, _ := cmd.Flags().GetInt("repeat")
			concurrency, _ := cmd.Flags().GetInt("concurrency")
			reveal, _ := cmd.Flags().GetBool("reveal")

			rt, err := setup(cmd)
			if err != nil {
				return err
			}
			defer rt.Close()

			var rows [][]string
			var failed int
			for round := 1; round <= max(1, repeat); round++ {
				results := make([]lookupResult, len(args))
				var g errgroup.Group
				g.SetLimit(max(1, concurrency))
				for i, name := range args {
					g.Go(func() error {
						results[i] = lookup(cmd, rt.shared, name, force && round == 1)
						results[i].round = round
						return nil
					})
				}
				g.Wait()
				for _, r := range results {
					if r.err != nil {
						failed++
						rt.logger.Debug("lookup %s: %+v", r.name, r.err)
					}
					rows = append(rows, r.row(reveal))
				}
			}

			tui.Table(cmd.OutOrStdout(), []string{"ROUND", "NAME", "VALUE", "FROM"}, rows, tui.Dim(0))
			if failed > 0 {
				return errors.Newf("%d of %d lookups failed", failed, len(rows))
			}
			return nil
		},
	}
	cmd.Flags().Bool("force-refresh", false, "bypass cached values on the first round")
	cmd.Flags().Int("repeat", 1, "number of lookup rounds, to show values being served from the cache")
	cmd.Flags().Int("concurrency", 8, "maximum lookups in flight")
	cmd.Flags().Bool("reveal", false, "print values in full instead of masked")
	return cmd
}
