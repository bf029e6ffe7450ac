// SPDX-License-Identifier: MIT
package timeparse_test

import (
	"errors"
	"fmt"
	"strconv"
	"time"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/skaphos/dyd/internal/timeparse"
)

func utc(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 6, 1, 2, 0, time.UTC)
}

var _ = Describe("ParseUnix", func() {
	It("converts epoch seconds to UTC", func() {
		got, err := timeparse.ParseUnix("1650989481")
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(time.Date(2022, 4, 26, 16, 11, 21, 0, time.UTC)))
	})

	It("accepts negative values", func() {
		got, err := timeparse.ParseUnix("-60")
		Expect(err).NotTo(HaveOccurred())
		Expect(got.Unix()).To(Equal(int64(-60)))
	})

	It("propagates invalid integer syntax", func() {
		_, err := timeparse.ParseUnix("hello")
		Expect(err).To(HaveOccurred())
		var numErr *strconv.NumError
		Expect(errors.As(err, &numErr)).To(BeTrue())
	})
})

var _ = Describe("ParseRelative", func() {
	base := utc(2022, time.April, 1)

	DescribeTable("days and weeks subtract fixed durations",
		func(n int, unit string, size time.Duration) {
			got, err := timeparse.ParseRelative(fmt.Sprintf("%d %s ago", n, unit), base)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(base.Add(-time.Duration(n) * size)))
		},
		Entry("zero days", 0, "days", 24*time.Hour),
		Entry("one day", 1, "day", 24*time.Hour),
		Entry("four days", 4, "days", 24*time.Hour),
		Entry("one week", 1, "week", 7*24*time.Hour),
		Entry("two weeks", 2, "weeks", 7*24*time.Hour),
		Entry("many weeks", 120, "weeks", 7*24*time.Hour),
	)

	It("lands on calendar dates for days and weeks", func() {
		got, err := timeparse.ParseRelative("4 days ago", base)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(utc(2022, time.March, 28)))

		got, err = timeparse.ParseRelative("2 weeks ago", base)
		Expect(err).NotTo(HaveOccurred())
		Expect(got).To(Equal(utc(2022, time.March, 18)))
	})

	DescribeTable("months subtract calendar months",
		func(input string, want time.Time) {
			got, err := timeparse.ParseRelative(input, utc(2022, time.April, 2))
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("2 months", "2 months ago", utc(2022, time.February, 2)),
		Entry("4 months borrows a year", "4 months ago", utc(2021, time.December, 2)),
		Entry("8 months", "8 months ago", utc(2021, time.August, 2)),
		Entry("12 months", "12 months ago", utc(2021, time.April, 2)),
		Entry("16 months borrows two years", "16 months ago", utc(2020, time.December, 2)),
		Entry("0 months", "0 months ago", utc(2022, time.April, 2)),
	)

	DescribeTable("months clamp to the end of the target month",
		func(input string, from, want time.Time) {
			got, err := timeparse.ParseRelative(input, from)
			Expect(err).NotTo(HaveOccurred())
			Expect(got).To(Equal(want))
		},
		Entry("non-leap February", "1 month ago", utc(2022, time.March, 31), utc(2022, time.February, 28)),
		Entry("leap February", "1 month ago", utc(2024, time.March, 31), utc(2024, time.February, 29)),
		Entry("30-day month", "4 months ago", utc(2022, time.March, 31), utc(2021, time.November, 30)),
		Entry("leap day to non-leap year", "12 months ago", utc(2024, time.February, 29), utc(2023, time.February, 28)),
	)

	DescribeTable("rejects unparseable input",
		func(input string) {
			_, err := timeparse.ParseRelative(input, time.Now())
			var parseErr *timeparse.ParseError
			Expect(errors.As(err, &parseErr)).To(BeTrue())
			Expect(parseErr.Input).To(Equal(input))
		},
		Entry("free text", "hello"),
		Entry("unknown unit", "2 moons ago"),
		Entry("years are unsupported", "1 year ago"),
		Entry("missing suffix", "3 days"),
		Entry("negative amount", "-3 days ago"),
		Entry("empty", ""),
		Entry("overflowing amount", "99999999999999999999 days ago"),
		Entry("overflowing duration", "9999999999999 weeks ago"),
	)
})
