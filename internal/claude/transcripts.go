package claude

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"
)

// TranscriptEntry is the top-level structure of a JSONL transcript line.
type TranscriptEntry struct {
	Type        string          `json:"type"`
	Timestamp   string          `json:"timestamp"`
	SessionID   string          `json:"sessionId"`
	CWD         string          `json:"cwd"`
	IsSidechain bool            `json:"isSidechain"`
	IsMeta      bool            `json:"isMeta"`
	Message     json.RawMessage `json:"message"`
}

// transcriptMessage is the nested message object of a user or assistant entry.
type transcriptMessage struct {
	Role    string          `json:"role"`
	Model   string          `json:"model"`
	Usage   usageBlock      `json:"usage"`
	Content json.RawMessage `json:"content"`
}

// usageBlock holds the raw API token counts on an assistant message.
type usageBlock struct {
	InputTokens              int64 `json:"input_tokens"`
	OutputTokens             int64 `json:"output_tokens"`
	CacheReadInputTokens     int64 `json:"cache_read_input_tokens"`
	CacheCreationInputTokens int64 `json:"cache_creation_input_tokens"`
}

// ContentBlock is a single content block within a message.
type ContentBlock struct {
	Type  string          `json:"type"`
	Name  string          `json:"name"`
	Input json.RawMessage `json:"input"`
	Text  string          `json:"text"`
}

// toolFileInput extracts the file_path argument common to file tools.
type toolFileInput struct {
	FilePath string `json:"file_path"`
}

// writeTools are the tool names whose file_path argument counts as a write.
var writeTools = map[string]bool{
	"Write":        true,
	"Edit":         true,
	"MultiEdit":    true,
	"NotebookEdit": true,
}

// LoadOptions controls which sessions LoadSessions returns.
type LoadOptions struct {
	// Days limits sessions to those starting within the last N days.
	// Zero or negative means no limit.
	Days int

	// Project, when non-empty, keeps only sessions whose repo path base
	// matches it.
	Project string
}

// LoadSessions scans all JSONL transcripts under claudeHome/projects/ and
// returns one Session per logical run, sorted by start time. Files that
// cannot be read and lines that cannot be parsed are skipped.
func LoadSessions(claudeHome string, opts LoadOptions) ([]Session, error) {
	projectsDir := filepath.Join(claudeHome, "projects")
	entries, err := os.ReadDir(projectsDir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}

	// Sessions are keyed by session ID so subagent transcripts that share
	// an ID with their parent merge into one record.
	byID := make(map[string]*Session)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}
		dirPath := filepath.Join(projectsDir, entry.Name())

		files, err := os.ReadDir(dirPath)
		if err != nil {
			continue
		}

		for _, f := range files {
			if f.IsDir() || !strings.HasSuffix(f.Name(), ".jsonl") {
				continue
			}
			foldTranscript(filepath.Join(dirPath, f.Name()), byID)
		}
	}

	sessions := make([]Session, 0, len(byID))
	for _, s := range byID {
		if s.StartTime.IsZero() {
			continue
		}
		if s.EndTime.Before(s.StartTime) {
			s.EndTime = s.StartTime
		}
		sessions = append(sessions, *s)
	}

	sessions = filterSessions(sessions, opts)

	sort.Slice(sessions, func(i, j int) bool {
		if sessions[i].StartTime.Equal(sessions[j].StartTime) {
			return sessions[i].ID < sessions[j].ID
		}
		return sessions[i].StartTime.Before(sessions[j].StartTime)
	})

	return sessions, nil
}

// foldTranscript parses one JSONL file and merges its entries into the
// session map. The session ID comes from the entries themselves, falling
// back to the filename stem.
func foldTranscript(path string, byID map[string]*Session) {
	f, err := os.Open(path)
	if err != nil {
		return
	}
	defer f.Close()

	fileID := strings.TrimSuffix(filepath.Base(path), ".jsonl")

	scanner := bufio.NewScanner(f)
	// Long tool results can produce multi-megabyte lines.
	scanner.Buffer(make([]byte, 0, 64*1024), 10*1024*1024)

	for scanner.Scan() {
		var entry TranscriptEntry
		if err := json.Unmarshal(scanner.Bytes(), &entry); err != nil {
			continue
		}

		id := entry.SessionID
		if id == "" {
			id = fileID
		}

		s, ok := byID[id]
		if !ok {
			s = &Session{
				ID:           id,
				ModelUsage:   make(map[string]TokenUsage),
				FilesWritten: make(map[string]bool),
				FilesRead:    make(map[string]bool),
				ToolCounts:   make(map[string]int),
			}
			byID[id] = s
		}

		if s.RepoPath == "" && entry.CWD != "" {
			s.RepoPath = NormalizePath(entry.CWD)
		}

		ts := ParseTimestamp(entry.Timestamp)
		if !ts.IsZero() {
			if s.StartTime.IsZero() || ts.Before(s.StartTime) {
				s.StartTime = ts
			}
			if ts.After(s.EndTime) {
				s.EndTime = ts
			}
		}

		switch entry.Type {
		case "user":
			// Meta entries and sidechain tool results are not turns the
			// user actually typed.
			if !entry.IsMeta && !entry.IsSidechain {
				s.UserMessages++
			}
		case "assistant":
			foldAssistantEntry(&entry, s)
		}
	}
}

// foldAssistantEntry accumulates message counts, token usage, tool counts,
// and file touches from an assistant-type entry.
func foldAssistantEntry(entry *TranscriptEntry, s *Session) {
	if !entry.IsSidechain {
		s.AssistantMessages++
	}

	if entry.Message == nil {
		return
	}
	var msg transcriptMessage
	if err := json.Unmarshal(entry.Message, &msg); err != nil {
		return
	}

	if msg.Model != "" {
		usage := s.ModelUsage[msg.Model]
		usage.Add(TokenUsage{
			InputTokens:              max(msg.Usage.InputTokens, 0),
			OutputTokens:             max(msg.Usage.OutputTokens, 0),
			CacheReadInputTokens:     max(msg.Usage.CacheReadInputTokens, 0),
			CacheCreationInputTokens: max(msg.Usage.CacheCreationInputTokens, 0),
		})
		s.ModelUsage[msg.Model] = usage
	}

	var blocks []ContentBlock
	if err := json.Unmarshal(msg.Content, &blocks); err != nil {
		return
	}

	for _, block := range blocks {
		if block.Type != "tool_use" || block.Name == "" {
			continue
		}
		s.ToolCounts[block.Name]++

		var input toolFileInput
		if err := json.Unmarshal(block.Input, &input); err != nil || input.FilePath == "" {
			continue
		}
		path := NormalizePath(input.FilePath)
		switch {
		case writeTools[block.Name]:
			s.FilesWritten[path] = true
		case block.Name == "Read":
			s.FilesRead[path] = true
		}
	}
}

// filterSessions applies the look-back window and project filter.
func filterSessions(sessions []Session, opts LoadOptions) []Session {
	if opts.Days <= 0 && opts.Project == "" {
		return sessions
	}

	var cutoff time.Time
	if opts.Days > 0 {
		cutoff = time.Now().AddDate(0, 0, -opts.Days)
	}

	var filtered []Session
	for _, s := range sessions {
		if !cutoff.IsZero() && s.StartTime.Before(cutoff) {
			continue
		}
		if opts.Project != "" && ProjectName(s.RepoPath) != opts.Project {
			continue
		}
		filtered = append(filtered, s)
	}
	return filtered
}

// ParseTimestamp parses an ISO 8601 timestamp string. It tries RFC3339Nano,
// RFC3339, and a plain datetime format without timezone. Returns the zero
// time if the string is empty or cannot be parsed by any supported format.
func ParseTimestamp(s string) time.Time {
	if s == "" {
		return time.Time{}
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		t, err = time.Parse(time.RFC3339, s)
		if err != nil {
			t, err = time.Parse("2006-01-02T15:04:05", s)
			if err != nil {
				return time.Time{}
			}
		}
	}
	return t
}
