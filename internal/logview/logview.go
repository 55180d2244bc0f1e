// Package logview reads the JSON log files written by the application and
// renders their entries as compact, optionally colored, lines.
package logview

import (
	"bufio"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/goccy/go-json"
)

const (
	colorReset   = "\033[0m"
	colorRed     = "\033[31m"
	colorGreen   = "\033[32m"
	colorYellow  = "\033[33m"
	colorBlue    = "\033[34m"
	colorMagenta = "\033[35m"
	colorCyan    = "\033[36m"
	colorWhite   = "\033[37m"
)

// Entry is one decoded log line.
type Entry map[string]interface{}

var timeLayouts = []string{
	"2006-01-02T15:04:05.000Z0700",
	time.RFC3339Nano,
}

func formatTimestamp(timestamp string) string {
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, timestamp); err == nil {
			return t.Format("06-01-02 15:04:05.000")
		}
	}
	return timestamp
}

func padRight(str string, length int) string {
	if len(str) >= length {
		return str
	}
	return str + strings.Repeat(" ", length-len(str))
}

// Formatter renders entries. Extra fields are listed below the message in key order.
type Formatter struct {
	Color bool
}

func (f Formatter) paint(s, color string) string {
	if !f.Color {
		return s
	}
	return color + s + colorReset
}

func (f Formatter) Format(entry Entry) string {
	timestamp, _ := entry["time"].(string)
	level, _ := entry["level"].(string)
	msg, _ := entry["msg"].(string)

	var levelColor string
	switch strings.ToUpper(level) {
	case "DEBUG":
		levelColor = colorBlue
	case "INFO":
		levelColor = colorGreen
	case "WARN":
		levelColor = colorYellow
	case "ERROR":
		levelColor = colorRed
	default:
		levelColor = colorWhite
	}

	var b strings.Builder
	b.WriteString(f.paint(formatTimestamp(timestamp), colorMagenta))
	b.WriteString(" ")
	b.WriteString(f.paint(padRight(strings.ToUpper(level), 5), levelColor))
	b.WriteString(" ")
	b.WriteString(msg)

	keys := make([]string, 0, len(entry))
	for key := range entry {
		if key != "time" && key != "level" && key != "msg" {
			keys = append(keys, key)
		}
	}
	sort.Strings(keys)
	for _, key := range keys {
		b.WriteString(fmt.Sprintf("\n    %s %v", f.paint(key+":", colorCyan), entry[key]))
	}
	return b.String()
}

// Filter is a case-insensitive substring filter shared between the key
// reader and the tailer.
type Filter struct {
	mu   sync.RWMutex
	text string
}

func (f *Filter) Set(text string) {
	f.mu.Lock()
	f.text = text
	f.mu.Unlock()
}

func (f *Filter) Append(r rune) string {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.text += string(r)
	return f.text
}

// Backspace removes the last character and returns the new filter.
func (f *Filter) Backspace() string {
	f.mu.Lock()
	defer f.mu.Unlock()
	if r := []rune(f.text); len(r) > 0 {
		f.text = string(r[:len(r)-1])
	}
	return f.text
}

func (f *Filter) String() string {
	f.mu.RLock()
	defer f.mu.RUnlock()
	return f.text
}

// Match reports whether the rendered entry passes the filter.
func (f *Filter) Match(rendered string) bool {
	text := f.String()
	return text == "" || strings.Contains(strings.ToLower(rendered), strings.ToLower(text))
}

// Notice reports something about the files themselves rather than an entry.
type Notice struct {
	File    string
	Message string
	Err     error
}

// Tailer follows every *.log file in a directory, remembering how far each
// file has been read.
type Tailer struct {
	dir       string
	positions map[string]int64
	known     map[string]bool
}

func NewTailer(dir string) *Tailer {
	return &Tailer{
		dir:       dir,
		positions: make(map[string]int64),
		known:     make(map[string]bool),
	}
}

// Poll reads the lines appended since the last call. Entries are passed to
// onEntry in file order; new files, truncations and bad lines go to onNotice.
func (t *Tailer) Poll(onEntry func(file string, e Entry), onNotice func(Notice)) error {
	files, err := filepath.Glob(filepath.Join(t.dir, "*.log"))
	if err != nil {
		return fmt.Errorf("error reading log directory: %w", err)
	}
	sort.Strings(files)

	for _, path := range files {
		name := filepath.Base(path)
		if !t.known[path] {
			t.known[path] = true
			onNotice(Notice{File: name, Message: "New log file detected"})
		}
		if err := t.readFile(path, name, onEntry, onNotice); err != nil {
			onNotice(Notice{File: name, Message: "Error reading file", Err: err})
		}
	}
	return nil
}

func (t *Tailer) readFile(path, name string, onEntry func(string, Entry), onNotice func(Notice)) error {
	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	stat, err := file.Stat()
	if err != nil {
		return err
	}
	if stat.Size() < t.positions[path] {
		onNotice(Notice{File: name, Message: "File has been truncated, starting from beginning"})
		t.positions[path] = 0
	}
	if _, err := file.Seek(t.positions[path], io.SeekStart); err != nil {
		return err
	}

	reader := bufio.NewReader(file)
	pos := t.positions[path]
	for {
		line, err := reader.ReadString('\n')
		if err == io.EOF {
			// A partial last line is picked up on the next poll.
			break
		}
		if err != nil {
			return err
		}
		pos += int64(len(line))

		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		var entry Entry
		if err := json.Unmarshal([]byte(line), &entry); err != nil {
			onNotice(Notice{File: name, Message: "Error parsing log entry", Err: err})
			continue
		}
		onEntry(name, entry)
	}
	t.positions[path] = pos
	return nil
}
