// Package model contains domain models passed between layers.
package model

import "time"

// PullRequest is the subset of a GitHub pull request the scoring engine reads.
type PullRequest struct {
	Number    int        // repository-scoped PR number
	Author    string     // login of the PR author
	AvatarURL string     // author avatar, may be empty
	MergedAt  *time.Time // nil when the PR was never merged
	Labels    []string   // label names as returned upstream
}

// Merged reports whether the pull request carries a merge timestamp.
func (p PullRequest) Merged() bool {
	return p.MergedAt != nil && !p.MergedAt.IsZero()
}
