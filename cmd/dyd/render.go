// SPDX-License-Identifier: MIT
package dyd

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/skaphos/dyd/internal/model"
	"github.com/skaphos/dyd/internal/tableutil"
	"github.com/skaphos/dyd/internal/termstyle"
)

type renderOptions struct {
	since     time.Time
	all       bool
	noHeaders bool
	// messageWidth truncates commit subjects; zero disables truncation.
	messageWidth int
}

type repoReport struct {
	model.Repository
	Fresh int `json:"fresh"`
}

type diffReport struct {
	Since        time.Time    `json:"since"`
	Repositories []repoReport `json:"repositories"`
}

// visibleCommits returns the commits a render shows for repo.
func visibleCommits(repo model.Repository, opts renderOptions) []model.Commit {
	if opts.all {
		return repo.Commits
	}
	return repo.Fresh(opts.since)
}

func writeDiffTable(cmd *cobra.Command, repos []model.Repository, opts renderOptions) error {
	w := tableutil.New(cmd.OutOrStdout(), colorOutputEnabled)
	if err := tableutil.PrintHeaders(w, opts.noHeaders, "ST\tREPOSITORY\tSHA\tAGE\tAUTHOR\tMESSAGE"); err != nil {
		return err
	}
	for _, repo := range repos {
		status := termstyle.Status(colorOutputEnabled, repo.Status)
		name := termstyle.Colorize(colorOutputEnabled, repo.String(), termstyle.Heading)
		commits := visibleCommits(repo, opts)
		if len(commits) == 0 {
			_, _ = fmt.Fprintf(w, "%s\t%s\t-\t-\t-\t%s\n", status, name, emptyNote(repo))
			continue
		}
		for i, c := range commits {
			if i > 0 {
				status, name = "", ""
			}
			_, _ = fmt.Fprintf(w, "%s\t%s\t%s\t%s\t%s\t%s\n",
				status,
				name,
				termstyle.Colorize(colorOutputEnabled, c.SHA, termstyle.SHA),
				dimIfStale(c, opts.since, commitAge(c)),
				dimIfStale(c, opts.since, c.Author),
				dimIfStale(c, opts.since, tableutil.Truncate(c.Message, opts.messageWidth)),
			)
		}
	}
	return w.Flush()
}

func writeDiffJSON(cmd *cobra.Command, repos []model.Repository, opts renderOptions) error {
	report := diffReport{Since: opts.since, Repositories: make([]repoReport, 0, len(repos))}
	for _, repo := range repos {
		fresh := len(repo.Fresh(opts.since))
		repo.Commits = visibleCommits(repo, opts)
		if repo.Commits == nil {
			repo.Commits = []model.Commit{}
		}
		report.Repositories = append(report.Repositories, repoReport{Repository: repo, Fresh: fresh})
	}
	enc := json.NewEncoder(cmd.OutOrStdout())
	enc.SetIndent("", "  ")
	return enc.Encode(report)
}

func emptyNote(repo model.Repository) string {
	switch repo.Status {
	case model.StatusFailed:
		return termstyle.Colorize(colorOutputEnabled, "sync failed (see log)", termstyle.Failed)
	case model.StatusFinished:
		return "no new commits"
	default:
		return string(repo.Status)
	}
}

// commitAge prefers the age reported by the VCS and falls back to one
// computed from the commit time.
func commitAge(c model.Commit) string {
	if c.Age != "" {
		return c.Age
	}
	if c.Time.IsZero() || c.Time.Unix() == 0 {
		return "-"
	}
	return humanize.Time(c.Time)
}

func dimIfStale(c model.Commit, since time.Time, value string) string {
	if !model.Stale(c, since) {
		return value
	}
	return termstyle.Colorize(colorOutputEnabled, value, termstyle.Stale)
}
