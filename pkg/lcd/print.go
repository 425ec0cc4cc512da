package lcd

import (
	"fmt"
	"strings"
)

// PutChar writes one character at the cursor.
func (l *LCD) PutChar(c byte) (byte, error) {
	if err := l.Write(Data, c); err != nil {
		return 0, err
	}
	return c, nil
}

// PutString writes s until the first failure and returns how many
// characters made it to the display. Writing at least one character counts
// as success; nothing written, an empty s included, is a failure.
func (l *LCD) PutString(s string) (int, error) {
	if s == "" {
		return 0, ErrNothingWritten
	}
	for i := 0; i < len(s); i++ {
		if err := l.Write(Data, s[i]); err != nil {
			if i == 0 {
				return 0, err
			}
			l.log.WithError(err).Warnf("only %d of %d characters written", i, len(s))
			return i, nil
		}
	}
	return len(s), nil
}

// Printf formats into a 32 byte buffer and writes it at the cursor. Formats
// longer than 64 bytes are rejected before anything is sent.
func (l *LCD) Printf(format string, args ...interface{}) (int, error) {
	if len(format) > MaxFormatLen {
		l.log.Errorf("length of format is over %d", MaxFormatLen)
		return 0, ErrFormatTooLong
	}
	buf := fmt.Sprintf(format, args...)
	if len(buf) > PrintfBufferSize {
		buf = buf[:PrintfBufferSize]
	}
	return l.PutString(buf)
}

// Line blanks row y and writes s from its start. An empty s just blanks
// the row.
func (l *LCD) Line(y int, s string) error {
	if err := l.CursorSet(0, y); err != nil {
		return err
	}
	if _, err := l.PutString(blankRow); err != nil {
		return err
	}
	if s == "" {
		return nil
	}
	if err := l.CursorSet(0, y); err != nil {
		return err
	}
	_, err := l.PutString(s)
	return err
}

var blankRow = strings.Repeat(" ", Columns)
