// SPDX-License-Identifier: MIT
package dyd

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/dustin/go-humanize/english"
	"github.com/spf13/cobra"

	"github.com/skaphos/dyd/internal/engine"
	"github.com/skaphos/dyd/internal/model"
	"github.com/skaphos/dyd/internal/timeparse"
)

const clearScreen = "\x1b[H\x1b[2J"

var diffCmd = &cobra.Command{
	Use:   "diff",
	Short: "Sync every mirror and list the commits since the review threshold",
	Long: "Clones or updates a local mirror of every repository in the manifest, then lists the commits " +
		"newer than the review threshold. This is the default command.",
	Args: cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		return runDiff(cmd)
	},
}

func init() {
	addDiffFlags(diffCmd)
	rootCmd.AddCommand(diffCmd)
}

// diffRun drives sync cycles and is the single consumer of engine events.
type diffRun struct {
	cmd       *cobra.Command
	sess      *session
	eng       *engine.Engine
	view      *engine.View
	repos     []model.Repository
	sinceExpr string
	format    string
	render    renderOptions
	watch     bool
	interval  time.Duration
	started   time.Time
}

func runDiff(cmd *cobra.Command) error {
	format := strings.ToLower(strings.TrimSpace(getStringFlag(cmd, "format")))
	if format != "table" && format != "json" {
		return fmt.Errorf("unsupported format %q (supported: table,json)", format)
	}
	setColorOutputMode(cmd, format)

	sess, err := openSession(cmd)
	if err != nil {
		return err
	}
	defer sess.Close()
	if err := sess.manifest.Validate(); err != nil {
		return err
	}

	sinceExpr := sess.manifest.Since
	if v := strings.TrimSpace(getStringFlag(cmd, "since")); v != "" {
		sinceExpr = v
	}
	since, err := timeparse.ParseRelative(sinceExpr, time.Now())
	if err != nil {
		return fmt.Errorf("since: %w", err)
	}

	repos, err := sess.manifest.Repositories()
	if err != nil {
		return err
	}
	repos, err = selectRepositories(repos, getStringFlag(cmd, "only"))
	if err != nil {
		return err
	}
	if len(repos) == 0 {
		infof(cmd, "no repositories match --only %q", getStringFlag(cmd, "only"))
		return nil
	}

	concurrency := sess.manifest.Concurrency
	if v, _ := cmd.Flags().GetInt("concurrency"); v != 0 {
		concurrency = v
	}
	eng, err := engine.New(sess.adapters, engine.Options{
		Concurrency: concurrency,
		StepTimeout: sess.manifest.StepTimeout(),
		Logger:      sess.log,
	})
	if err != nil {
		return err
	}

	interval, _ := cmd.Flags().GetDuration("interval")
	watch := getBoolFlag(cmd, "watch")
	if watch && interval <= 0 {
		return fmt.Errorf("--interval must be positive, got %s", interval)
	}

	run := &diffRun{
		cmd:       cmd,
		sess:      sess,
		eng:       eng,
		view:      engine.NewView(repos),
		repos:     repos,
		sinceExpr: sinceExpr,
		format:    format,
		render: renderOptions{
			since:        since,
			all:          getBoolFlag(cmd, "all"),
			noHeaders:    getBoolFlag(cmd, "no-headers"),
			messageWidth: messageLimit(cmd),
		},
		watch:    watch,
		interval: interval,
	}

	ctx, stop := signal.NotifyContext(commandContext(cmd), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return run.loop(ctx)
}

func (r *diffRun) loop(ctx context.Context) error {
	// Buffered for a full cycle of transitions so jobs rarely block on emit.
	events := make(chan engine.Event, len(r.repos)*4+1)
	defer r.eng.Wait()

	r.startCycle(ctx, events)
	if r.watch {
		engine.StartTicker(ctx, r.interval, events)
	}

	for {
		select {
		case <-ctx.Done():
			if r.watch {
				return nil
			}
			return ctx.Err()
		case ev := <-events:
			if tick, ok := ev.(engine.Tick); ok {
				if r.view.Settled() {
					r.sess.log.Debug("tick", "at", tick.At)
					if err := r.refreshSince(); err != nil {
						return err
					}
					r.view.ResetAll()
					r.startCycle(ctx, events)
				}
				continue
			}
			wasSettled := r.view.Settled()
			if !r.view.Apply(ev) {
				continue
			}
			if sc, ok := ev.(engine.StatusChanged); ok {
				debugf(r.cmd, "%s %s", sc.RepoID, sc.Status)
			}
			if wasSettled || !r.view.Settled() {
				continue
			}
			if err := r.finishCycle(); err != nil {
				return err
			}
			if !r.watch {
				return nil
			}
		}
	}
}

func (r *diffRun) startCycle(ctx context.Context, events chan<- engine.Event) {
	r.started = time.Now()
	r.sess.log.Info("sync cycle started", "repositories", len(r.repos), "root", r.sess.root)
	r.eng.DispatchAll(ctx, r.repos, r.sess.root, events)
}

// refreshSince re-resolves a relative threshold so a long watch session
// keeps a sliding window.
func (r *diffRun) refreshSince() error {
	since, err := timeparse.ParseRelative(r.sinceExpr, time.Now())
	if err != nil {
		return fmt.Errorf("since: %w", err)
	}
	r.render.since = since
	return nil
}

func (r *diffRun) finishCycle() error {
	counts := r.view.Counts()
	failed := counts[model.StatusFailed]
	elapsed := time.Since(r.started).Round(time.Millisecond)
	r.sess.log.Info("sync cycle finished", "finished", counts[model.StatusFinished], "failed", failed, "elapsed", elapsed)

	if r.watch && colorOutputEnabled {
		_, _ = fmt.Fprint(r.cmd.OutOrStdout(), clearScreen)
	}
	repos := r.view.Repositories()
	var err error
	if r.format == "json" {
		err = writeDiffJSON(r.cmd, repos, r.render)
	} else {
		err = writeDiffTable(r.cmd, repos, r.render)
	}
	if err != nil {
		return err
	}

	infof(r.cmd, "synced %s in %s", english.Plural(r.view.Len(), "repository", "repositories"), elapsed)
	switch {
	case failed == 0:
	case failed == r.view.Len():
		infof(r.cmd, "all repositories failed to sync")
		raiseExitCode(exitError)
	default:
		infof(r.cmd, "%s failed to sync", english.Plural(failed, "repository", "repositories"))
		raiseExitCode(exitWarning)
	}
	return nil
}
