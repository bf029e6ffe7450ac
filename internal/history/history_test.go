// SPDX-License-Identifier: MIT
package history_test

import (
	"strings"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/dyd/internal/history"
)

func record(fields ...string) string {
	return strings.Join(fields, history.Separator)
}

var _ = Describe("Decode", func() {
	It("decodes a well-formed record verbatim", func() {
		c := history.Decode(record("a1b2c3d", "1640995200", "2 hours ago", "John Doe", "Add new feature"))
		Expect(c.SHA).To(Equal("a1b2c3d"))
		Expect(c.Time.Unix()).To(Equal(int64(1640995200)))
		Expect(c.Time.Location()).To(Equal(time.UTC))
		Expect(c.Date).To(Equal("1640995200"))
		Expect(c.Age).To(Equal("2 hours ago"))
		Expect(c.Author).To(Equal("John Doe"))
		Expect(c.Message).To(Equal("Add new feature"))
	})

	It("returns the sentinel for too few fields", func() {
		c := history.Decode(record("a1b2c3d", "1640995200", "2 hours ago"))
		Expect(c).To(Equal(history.Sentinel()))
		Expect(c.Time.Unix()).To(Equal(int64(0)))
		Expect(c.SHA).To(BeEmpty())
	})

	It("returns the sentinel for too many fields", func() {
		c := history.Decode(record("a", "1", "b", "c", "d", "e"))
		Expect(c).To(Equal(history.Sentinel()))
	})

	It("returns the sentinel for an empty line", func() {
		Expect(history.Decode("")).To(Equal(history.Sentinel()))
	})

	It("falls back to epoch zero for an unparsable timestamp", func() {
		c := history.Decode(record("a1b2c3d", "invalid_timestamp", "2 hours ago", "John Doe", "Add new feature"))
		Expect(c.Time).To(Equal(history.Epoch))
		Expect(c.SHA).To(Equal("a1b2c3d"))
		Expect(c.Date).To(Equal("invalid_timestamp"))
		Expect(c.Author).To(Equal("John Doe"))
		Expect(c.Message).To(Equal("Add new feature"))
	})

	It("keeps other punctuation inside the message", func() {
		c := history.Decode(record("a", "1", "age", "who", "subject with | pipes and\ttabs"))
		Expect(c.Message).To(Equal("subject with | pipes and\ttabs"))
	})
})

var _ = Describe("DecodeAll", func() {
	It("skips blank lines and tolerates malformed ones", func() {
		lines := history.SplitLines(strings.Join([]string{
			record("aaa", "20", "now", "A", "second"),
			"garbage",
			"",
			record("bbb", "10", "then", "B", "first") + "\r",
		}, "\n") + "\n")

		commits := history.DecodeAll(lines)
		Expect(commits).To(HaveLen(3))
		Expect(commits[0].SHA).To(Equal("aaa"))
		Expect(commits[1]).To(Equal(history.Sentinel()))
		Expect(commits[2].Message).To(Equal("first"))
	})

	It("returns an empty slice for empty output", func() {
		Expect(history.SplitLines("")).To(BeEmpty())
		Expect(history.DecodeAll(nil)).To(BeEmpty())
	})
})

var _ = Describe("Encode", func() {
	It("produces lines Decode understands", func() {
		when := time.Date(2024, 5, 6, 7, 8, 9, 0, time.UTC)
		c := history.Decode(history.Encode("abc1234", when, "3 days ago", "Ada", "Fix bug"))
		Expect(c.Time).To(Equal(when))
		Expect(c.Age).To(Equal("3 days ago"))
		Expect(c.Message).To(Equal("Fix bug"))
	})

	It("matches the git pretty format field order", func() {
		Expect(strings.Split(history.GitFormat, history.Separator)).To(Equal([]string{"%h", "%ct", "%ch", "%an", "%s"}))
	})
})
