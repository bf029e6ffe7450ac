// SPDX-License-Identifier: MIT
package vcs

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

func runCommand(ctx context.Context, dir, bin string, args ...string) (string, error) {
	cmd := exec.CommandContext(ctx, bin, args...)
	if strings.TrimSpace(dir) != "" {
		cmd.Dir = dir
	}
	// Plain mode keeps hg output free of user aliases and localization.
	cmd.Env = append(cmd.Environ(), "HGPLAIN=1")
	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		errText := strings.TrimSpace(stderr.String())
		if errText != "" {
			return "", fmt.Errorf("%s %s: %s: %w", bin, args[0], errText, err)
		}
		return "", fmt.Errorf("%s %s: %w", bin, args[0], err)
	}
	return strings.TrimRight(stdout.String(), "\r\n"), nil
}
