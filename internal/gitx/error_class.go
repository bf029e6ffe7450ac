// SPDX-License-Identifier: MIT
package gitx

import (
	"context"
	"errors"
	"strings"
)

var (
	// ErrAuthFailure marks authentication/authorization failures.
	ErrAuthFailure = errors.New("vcs auth error")
	// ErrNetworkFailure marks network/transport failures.
	ErrNetworkFailure = errors.New("vcs network error")
	// ErrCorruptRepo marks corrupt or invalid-repository failures.
	ErrCorruptRepo = errors.New("vcs corrupt repository")
	// ErrMissingRemoteRef marks missing upstream/ref/remote failures.
	ErrMissingRemoteRef = errors.New("vcs missing remote")
	// ErrNotFastForward marks a mirror that diverged from its origin.
	ErrNotFastForward = errors.New("vcs update is not a fast-forward")
)

// Error classes reported in sync failure logs.
const (
	ClassAuth           = "auth"
	ClassNetwork        = "network"
	ClassTimeout        = "timeout"
	ClassCanceled       = "canceled"
	ClassCorrupt        = "corrupt"
	ClassMissingRemote  = "missing_remote"
	ClassNotFastForward = "not_fast_forward"
	ClassUnknown        = "unknown"
)

var sentinelClasses = []struct {
	err   error
	class string
}{
	{ErrAuthFailure, ClassAuth},
	{ErrNetworkFailure, ClassNetwork},
	{ErrCorruptRepo, ClassCorrupt},
	{ErrMissingRemoteRef, ClassMissingRemote},
	{ErrNotFastForward, ClassNotFastForward},
}

// Message heuristics cover git, hg and go-git wording. Order matters:
// the first matching class wins.
var messageClasses = []struct {
	class   string
	needles []string
}{
	{ClassAuth, []string{"permission denied", "authentication failed", "authentication required", "authorization required", "access denied", "publickey", "could not read username", "credential"}},
	{ClassNetwork, []string{"could not resolve host", "network is unreachable", "connection refused", "connection timed out", "failed to connect", "temporary failure in name resolution", "tls handshake timeout", "no route to host"}},
	{ClassTimeout, []string{"timeout", "timed out", "deadline exceeded"}},
	{ClassNotFastForward, []string{"not possible to fast-forward", "non-fast-forward", "diverging branches", "not updating"}},
	{ClassMissingRemote, []string{"repository not found", "does not appear to be a git repository", "couldn't find remote ref", "remote ref does not exist", "no such remote", "unknown revision", "unknown branch", "reference not found"}},
	{ClassCorrupt, []string{"not a git repository", "no repository found", "bad object", "corrupt", "object file"}},
}

// ClassifyError maps VCS and process errors into broad actionable categories.
func ClassifyError(err error) string {
	if err == nil {
		return ""
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return ClassTimeout
	}
	if errors.Is(err, context.Canceled) {
		return ClassCanceled
	}
	for _, sc := range sentinelClasses {
		if errors.Is(err, sc.err) {
			return sc.class
		}
	}

	msg := strings.ToLower(err.Error())
	for _, mc := range messageClasses {
		if containsAny(msg, mc.needles...) {
			return mc.class
		}
	}
	return ClassUnknown
}

func containsAny(msg string, needles ...string) bool {
	for _, needle := range needles {
		if strings.Contains(msg, needle) {
			return true
		}
	}
	return false
}
