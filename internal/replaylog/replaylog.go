// Package replaylog writes and reads zstd-compressed JSONL logs with one
// entry per controller transition of a turn.
package replaylog

import (
	"bufio"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/klauspost/compress/zstd"

	"github.com/vovakirdan/antfarm/internal/combat"
	"github.com/vovakirdan/antfarm/internal/turn"
	"github.com/vovakirdan/antfarm/internal/world"
)

// Entry is the displayed state after one transition.
type Entry struct {
	Turn         int                  `json:"turn"`
	Stage        int                  `json:"stage"`
	Substage     string               `json:"substage"`
	Interactions []combat.Interaction `json:"interactions,omitempty"`
	State        world.State          `json:"state"`
}

// Writer appends entries to a compressed log file.
type Writer struct {
	f   *os.File
	enc *zstd.Encoder
	w   *bufio.Writer
}

// Create opens a new log at path, creating parent directories.
func Create(path string) (*Writer, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("replaylog: %w", err)
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, fmt.Errorf("replaylog: %w", err)
	}
	enc, err := zstd.NewWriter(f, zstd.WithEncoderLevel(zstd.SpeedDefault))
	if err != nil {
		_ = f.Close()
		return nil, fmt.Errorf("replaylog: %w", err)
	}
	return &Writer{f: f, enc: enc, w: bufio.NewWriterSize(enc, 64*1024)}, nil
}

// Write appends one entry as a JSON line.
func (w *Writer) Write(e Entry) error {
	b, err := json.Marshal(e)
	if err != nil {
		return fmt.Errorf("replaylog: encode: %w", err)
	}
	if _, err := w.w.Write(b); err != nil {
		return err
	}
	return w.w.WriteByte('\n')
}

// Close flushes and closes the log. Closing twice is a no-op.
func (w *Writer) Close() error {
	var err1 error
	if w.w != nil {
		err1 = w.w.Flush()
	}
	if w.enc != nil {
		if err := w.enc.Close(); err1 == nil {
			err1 = err
		}
	}
	if w.f != nil {
		if err := w.f.Close(); err1 == nil {
			err1 = err
		}
	}
	w.w, w.enc, w.f = nil, nil, nil
	return err1
}

// Capture steps c to the end, writing the displayed state after every transition.
func Capture(c *turn.Controller, w *Writer, turnNumber int) error {
	for !c.Done() {
		before := c.Position()
		if err := c.Step(); err != nil {
			return err
		}
		e := Entry{
			Turn:     turnNumber,
			Stage:    before.Stage,
			Substage: before.Substage.String(),
			State:    c.Displayed(),
		}
		if before.Substage == turn.Interacting {
			e.Interactions = c.LastInteractions()
		}
		if err := w.Write(e); err != nil {
			return err
		}
	}
	return nil
}

// Read calls fn for every entry of the log at path, in order.
func Read(path string, fn func(Entry) error) error {
	f, err := os.Open(path)
	if err != nil {
		return fmt.Errorf("replaylog: %w", err)
	}
	defer f.Close()

	dec, err := zstd.NewReader(f)
	if err != nil {
		return fmt.Errorf("replaylog: %w", err)
	}
	defer dec.Close()

	sc := bufio.NewScanner(dec)
	sc.Buffer(make([]byte, 64*1024), 8*1024*1024)

	line := 0
	for sc.Scan() {
		line++
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			return fmt.Errorf("replaylog: %s line %d: unmarshal: %w", filepath.Base(path), line, err)
		}
		if err := fn(e); err != nil {
			return err
		}
	}
	if err := sc.Err(); err != nil {
		return fmt.Errorf("replaylog: %w", err)
	}
	return nil
}

// ReadAll returns every entry of the log at path.
func ReadAll(path string) ([]Entry, error) {
	var out []Entry
	err := Read(path, func(e Entry) error {
		out = append(out, e)
		return nil
	})
	return out, err
}
