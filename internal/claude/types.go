// Package claude reads Claude Code's local transcript files and folds them
// into normalized session records for correlation.
package claude

import "time"

// TokenUsage holds token counts for a single model within a session.
type TokenUsage struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
}

// Add accumulates another usage record into this one.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
	u.CacheReadInputTokens += other.CacheReadInputTokens
	u.CacheCreationInputTokens += other.CacheCreationInputTokens
}

// Total returns the sum of all token counts.
func (u TokenUsage) Total() int64 {
	return u.InputTokens + u.OutputTokens + u.CacheReadInputTokens + u.CacheCreationInputTokens
}

// Session is one logical interactive agent run within a repository,
// merged across transcript files and subagent sidechains.
type Session struct {
	// ID is the session identifier (transcript filename stem).
	ID string `json:"id"`

	// RepoPath is the working directory the session ran in.
	RepoPath string `json:"repo_path"`

	// StartTime and EndTime span the first and last transcript entries.
	// EndTime is never before StartTime.
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`

	// UserMessages and AssistantMessages count conversational turns.
	UserMessages      int `json:"user_messages"`
	AssistantMessages int `json:"assistant_messages"`

	// ModelUsage maps raw model identifiers to their token usage.
	// A session may use several models (e.g. haiku subagents under opus).
	ModelUsage map[string]TokenUsage `json:"model_usage"`

	// FilesWritten and FilesRead are sets of repo-relative or absolute
	// paths touched via Write/Edit and Read tool calls.
	FilesWritten map[string]bool `json:"files_written"`
	FilesRead    map[string]bool `json:"files_read"`

	// ToolCounts maps tool name to invocation count.
	ToolCounts map[string]int `json:"tool_counts"`
}

// TotalMessages returns user plus assistant message counts.
func (s *Session) TotalMessages() int {
	return s.UserMessages + s.AssistantMessages
}

// TotalTokens sums token counts across all models used in the session.
func (s *Session) TotalTokens() int64 {
	var total int64
	for _, u := range s.ModelUsage {
		total += u.Total()
	}
	return total
}

// Duration returns the wall-clock span of the session.
func (s *Session) Duration() time.Duration {
	if s.StartTime.IsZero() || s.EndTime.IsZero() {
		return 0
	}
	return s.EndTime.Sub(s.StartTime)
}
