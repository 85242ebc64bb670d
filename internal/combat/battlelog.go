package combat

import "time"

// MaxLogEntries bounds the battle log.
const MaxLogEntries = 10

type LogType string

const (
	LogDamage  LogType = "damage"
	LogMiss    LogType = "miss"
	LogDestroy LogType = "destroy"
	LogInfo    LogType = "info"
)

type LogEntry struct {
	ID        int64     `json:"id"`
	Timestamp time.Time `json:"timestamp"`
	Message   string    `json:"message"`
	Type      LogType   `json:"type"`
}

// BattleLog keeps the newest MaxLogEntries entries, newest first.
type BattleLog struct {
	entries []LogEntry
	nextID  int64
	now     func() time.Time
}

func NewBattleLog(now func() time.Time) *BattleLog {
	if now == nil {
		now = time.Now
	}
	return &BattleLog{now: now, nextID: 1}
}

func (l *BattleLog) Append(message string, typ LogType) LogEntry {
	e := LogEntry{
		ID:        l.nextID,
		Timestamp: l.now(),
		Message:   message,
		Type:      typ,
	}
	l.nextID++

	l.entries = append(l.entries, LogEntry{})
	copy(l.entries[1:], l.entries)
	l.entries[0] = e
	if len(l.entries) > MaxLogEntries {
		l.entries = l.entries[:MaxLogEntries]
	}
	return e
}

// Reset drops every entry and starts over with a single info entry. Ids keep
// increasing so clients never see a reused id.
func (l *BattleLog) Reset(message string) {
	l.entries = l.entries[:0]
	l.Append(message, LogInfo)
}

// Entries returns a copy, newest first.
func (l *BattleLog) Entries() []LogEntry {
	return append([]LogEntry(nil), l.entries...)
}

func (l *BattleLog) Len() int {
	return len(l.entries)
}

// restore loads entries saved newest first and continues numbering after the
// highest id seen.
func (l *BattleLog) restore(entries []LogEntry) {
	if len(entries) > MaxLogEntries {
		entries = entries[:MaxLogEntries]
	}
	l.entries = append(l.entries[:0], entries...)
	for _, e := range entries {
		if e.ID >= l.nextID {
			l.nextID = e.ID + 1
		}
	}
}
