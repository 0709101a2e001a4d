package main

import (
	"os"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/Paranoid-AF/zsh-codex/redact"
	"github.com/google/uuid"
)

// transcriptEntry is one [[entry]] table in the transcript file.
type transcriptEntry struct {
	ID         string    `toml:"id"`
	Timestamp  time.Time `toml:"timestamp"`
	Service    string    `toml:"service"`
	APIType    string    `toml:"api_type"`
	Model      string    `toml:"model"`
	Cursor     int       `toml:"cursor"`
	Buffer     string    `toml:"buffer"`
	Completion string    `toml:"completion"`
	Cached     bool      `toml:"cached"`
	DurationMS int64     `toml:"duration_ms"`
	Error      string    `toml:"error,omitempty"`
}

type transcript struct {
	Entry []transcriptEntry `toml:"entry"`
}

// appendTranscript appends e to the TOML transcript at path with the buffer
// and completion redacted. Entries without an ID get a random one.
func appendTranscript(path string, e transcriptEntry) error {
	if e.ID == "" {
		e.ID = uuid.NewString()
	}
	e.Buffer = redact.Command(e.Buffer)
	e.Completion = redact.Command(e.Completion)

	f, err := os.OpenFile(path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return err
	}

	enc := toml.NewEncoder(f)
	enc.Indent = ""
	if err := enc.Encode(transcript{Entry: []transcriptEntry{e}}); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}
