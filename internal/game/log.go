package game

import (
	"go.uber.org/zap"
)

// DefaultLogCapacity is how many human-readable entries a game keeps.
const DefaultLogCapacity = 100

// logEntry is one log line. Entries with an owner carry hidden information;
// every other viewer sees the public text instead.
type logEntry struct {
	text   string
	owner  string
	public string
}

func (e logEntry) textFor(viewer string) string {
	if e.owner == "" || e.owner == viewer {
		return e.text
	}
	return e.public
}

// Log is a fixed-capacity ring buffer of human-readable game messages. Once
// full, appending evicts the oldest entry. Every entry is mirrored to the
// structured logger at debug level.
type Log struct {
	entries []logEntry
	start   int
	size    int
	logger  *zap.Logger
}

// NewLog creates a log holding at most capacity entries.
func NewLog(capacity int, logger *zap.Logger) *Log {
	if capacity <= 0 {
		capacity = DefaultLogCapacity
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Log{entries: make([]logEntry, capacity), logger: logger}
}

// Append adds a message every viewer may see. Appending to a nil log is a
// no-op.
func (l *Log) Append(message string) {
	l.push(logEntry{text: message})
}

// AppendPrivate adds a message only owner may read in full. Other viewers get
// public in its place.
func (l *Log) AppendPrivate(owner, message, public string) {
	l.push(logEntry{text: message, owner: owner, public: public})
}

func (l *Log) push(e logEntry) {
	if l == nil {
		return
	}
	l.logger.Debug("game log", zap.String("entry", e.text), zap.String("owner", e.owner))
	capacity := len(l.entries)
	if l.size < capacity {
		l.entries[(l.start+l.size)%capacity] = e
		l.size++
		return
	}
	l.entries[l.start] = e
	l.start = (l.start + 1) % capacity
}

// Len returns the number of retained entries.
func (l *Log) Len() int {
	if l == nil {
		return 0
	}
	return l.size
}

// Recent returns up to n of the newest entries as a spectator sees them,
// oldest first.
func (l *Log) Recent(n int) []string {
	return l.RecentFor("", n)
}

// RecentFor returns up to n of the newest entries as viewer sees them,
// oldest first.
func (l *Log) RecentFor(viewer string, n int) []string {
	if l == nil || n <= 0 {
		return []string{}
	}
	n = min(n, l.size)
	out := make([]string, n)
	capacity := len(l.entries)
	first := l.start + l.size - n
	for i := 0; i < n; i++ {
		out[i] = l.entries[(first+i)%capacity].textFor(viewer)
	}
	return out
}

// Last returns the newest entry as a spectator sees it, or "".
func (l *Log) Last() string {
	recent := l.Recent(1)
	if len(recent) == 0 {
		return ""
	}
	return recent[0]
}
