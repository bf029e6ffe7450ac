// SPDX-License-Identifier: MIT
package gitx

import "strings"

// Remote is a single configured git remote.
type Remote struct {
	Name string
	URL  string
}

// ParseRemoteNames parses the newline-separated output of `git remote`.
func ParseRemoteNames(output string) []string {
	var names []string
	for _, line := range strings.Split(output, "\n") {
		name := strings.TrimSpace(line)
		if name == "" {
			continue
		}
		names = append(names, name)
	}
	return names
}
