// Package log writes the quest audit trail as zstd-compressed JSONL, one
// file per UTC day.
package log

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/klauspost/compress/zstd"

	"github.com/Jolva/SuperQuester-sub001/internal/sim/world"
)

// QuestAuditLogger records quest lifecycle entries (accept, spawn, kill,
// turn-in). Entries are rare, so every write is flushed through to the
// encoder; the trail stays current across a crash.
type QuestAuditLogger struct {
	dir string

	mu     sync.Mutex
	curDay string
	f      *os.File
	enc    *zstd.Encoder
	buf    *bufio.Writer
}

func NewQuestAuditLogger(dataDir string) *QuestAuditLogger {
	return &QuestAuditLogger{dir: filepath.Join(dataDir, "audit")}
}

func (l *QuestAuditLogger) WriteAudit(e world.AuditEntry) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	day := time.Now().UTC().Format("2006-01-02")
	if day != l.curDay {
		if err := l.rotateLocked(day); err != nil {
			return err
		}
	}

	b, err := json.Marshal(e)
	if err != nil {
		return err
	}
	if _, err := l.buf.Write(b); err != nil {
		return err
	}
	if err := l.buf.WriteByte('\n'); err != nil {
		return err
	}
	if err := l.buf.Flush(); err != nil {
		return err
	}
	return l.enc.Flush()
}

func (l *QuestAuditLogger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.closeLocked()
}

func (l *QuestAuditLogger) rotateLocked(day string) error {
	if err := l.closeLocked(); err != nil {
		return err
	}
	if err := os.MkdirAll(l.dir, 0o755); err != nil {
		return err
	}
	path := filepath.Join(l.dir, fmt.Sprintf("quests-%s.jsonl.zst", day))
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return err
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedFastest))
	if err != nil {
		_ = f.Close()
		return err
	}
	l.f = f
	l.enc = enc
	l.buf = bufio.NewWriterSize(enc, 64*1024)
	l.curDay = day
	return nil
}

func (l *QuestAuditLogger) closeLocked() error {
	var err error
	if l.buf != nil {
		_ = l.buf.Flush()
		l.buf = nil
	}
	if l.enc != nil {
		err = l.enc.Close()
		l.enc = nil
	}
	if l.f != nil {
		_ = l.f.Close()
		l.f = nil
	}
	return err
}
