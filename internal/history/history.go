// SPDX-License-Identifier: MIT
// Package history decodes one-line VCS log records into commits.
//
// Decoding is total: a malformed line becomes the sentinel record instead
// of an error, so one bad line never drops the rest of a history fetch.
package history

import (
	"strconv"
	"strings"
	"time"

	"github.com/skaphos/dyd/internal/model"
	"github.com/skaphos/dyd/internal/timeparse"
)

const (
	// Separator splits the fields of a record. Backends are configured so
	// it never appears inside a field.
	Separator = "\x0b"
	// FieldCount is the number of fields in a well-formed record:
	// sha, epoch seconds, age, author, subject.
	FieldCount = 5
	// MaxCount is the most records fetched per repository.
	MaxCount = 400
	// GitFormat is the `git log --pretty=tformat:` string emitting records.
	GitFormat = "%h" + Separator + "%ct" + Separator + "%ch" + Separator + "%an" + Separator + "%s"
)

// Epoch is the instant used when a record carries no usable timestamp.
var Epoch = time.Unix(0, 0).UTC()

// Sentinel returns the all-empty record produced for undecodable lines.
// It is indistinguishable from a commit whose fields are all empty.
func Sentinel() model.Commit {
	return model.Commit{Time: Epoch}
}

// Encode joins fields into one record line; backends that do not format
// records natively use it.
func Encode(sha string, when time.Time, age, author, subject string) string {
	return strings.Join([]string{sha, strconv.FormatInt(when.Unix(), 10), age, author, subject}, Separator)
}

// Decode converts one record line into a commit.
func Decode(line string) model.Commit {
	fields := strings.Split(line, Separator)
	if len(fields) != FieldCount {
		return Sentinel()
	}
	when, err := timeparse.ParseUnix(fields[1])
	if err != nil {
		when = Epoch
	}
	return model.Commit{
		SHA:     fields[0],
		Time:    when,
		Date:    fields[1],
		Age:     fields[2],
		Author:  fields[3],
		Message: fields[4],
	}
}

// DecodeAll decodes each non-blank line.
func DecodeAll(lines []string) []model.Commit {
	commits := make([]model.Commit, 0, len(lines))
	for _, line := range lines {
		line = strings.TrimRight(line, "\r")
		if strings.TrimSpace(line) == "" {
			continue
		}
		commits = append(commits, Decode(line))
	}
	return commits
}

// SplitLines splits raw backend output into record lines.
func SplitLines(output string) []string {
	output = strings.Trim(output, "\n")
	if output == "" {
		return nil
	}
	return strings.Split(output, "\n")
}
