package history

// Log is a fixed-capacity ring of entries. Once full, each Add discards the
// oldest entry.
type Log struct {
	buf  []Entry
	next int
	size int
}

func NewLog(capacity int) *Log {
	if capacity <= 0 {
		capacity = MaxEntries
	}
	return &Log{buf: make([]Entry, capacity)}
}

// LogFrom builds a Log from entries ordered newest first, keeping the newest
// capacity of them.
func LogFrom(entries []Entry, capacity int) *Log {
	l := NewLog(capacity)
	if len(entries) > len(l.buf) {
		entries = entries[:len(l.buf)]
	}
	for i := len(entries) - 1; i >= 0; i-- {
		l.Add(entries[i])
	}
	return l
}

func (l *Log) Add(e Entry) {
	l.buf[l.next] = e
	l.next = (l.next + 1) % len(l.buf)
	if l.size < len(l.buf) {
		l.size++
	}
}

func (l *Log) Len() int { return l.size }

func (l *Log) Cap() int { return len(l.buf) }

// Entries returns a copy of the contents, newest first.
func (l *Log) Entries() []Entry {
	out := make([]Entry, 0, l.size)
	n := len(l.buf)
	for i := 0; i < l.size; i++ {
		out = append(out, l.buf[(l.next-1-i+n)%n])
	}
	return out
}
