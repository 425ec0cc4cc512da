// Package lcd drives a 16x2 character display behind an I2C controller that
// takes a control byte (command or data) ahead of every payload byte.
package lcd

import (
	"fmt"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"

	"github.com/uz-foundation/rp3hal/pkg/halerrors"
	"github.com/uz-foundation/rp3hal/pkg/logging"
)

const (
	DefaultAddr = 0x3C

	Columns = 16
	Rows    = 2

	// Control bytes selecting the register written by the next byte.
	PrefixCommand = 0x00
	PrefixData    = 0x40

	CmdClear          = 0x01
	CmdHome           = 0x02
	CmdEntryMode      = 0x04
	CmdDisplayControl = 0x08
	CmdShift          = 0x10
	CmdSetDDRAMAddr   = 0x80
	CmdDisplayOn      = 0x0F // display, cursor and blink on

	// Start of the second row in DDRAM. Standard controllers put it at
	// 0x40; SO1602-style OLED controllers at 0x20.
	RowOffsetStandard = 0x40
	RowOffsetCompact  = 0x20

	MaxFormatLen     = 64
	PrintfBufferSize = 32
)

var (
	ErrFormatTooLong  = errors.Wrap(halerrors.ErrInvalidArgument, "format longer than 64 bytes")
	ErrNothingWritten = errors.Wrap(halerrors.ErrInvalidArgument, "empty string")
)

type RegisterKind int

const (
	Command RegisterKind = iota
	Data
)

type ShiftTarget int

const (
	ShiftCursor ShiftTarget = iota
	ShiftDisplay
)

type Direction int

const (
	Left Direction = iota
	Right
)

type port interface {
	Write(buf []byte) error
}

type LCD struct {
	dev       port
	rowOffset int
	log       *logrus.Entry

	// Sleep is swapped out by tests.
	Sleep func(time.Duration)
}

func New(dev port) *LCD {
	return &LCD{
		dev:       dev,
		rowOffset: RowOffsetStandard,
		log:       logging.For(logging.HAL),
		Sleep:     time.Sleep,
	}
}

// SetRowOffset picks the DDRAM address of the second row.
func (l *LCD) SetRowOffset(offset int) {
	l.rowOffset = offset
}

// Initialize runs the power-on sequence. A failed write stops the sequence
// and leaves the display as far as it got.
func (l *LCD) Initialize() error {
	l.Sleep(100 * time.Millisecond)
	for _, cmd := range []byte{CmdClear, CmdHome, CmdDisplayOn, CmdClear} {
		if err := l.Write(Command, cmd); err != nil {
			return halerrors.Sequence("lcd", fmt.Sprintf("command 0x%02x", cmd), err)
		}
		l.Sleep(20 * time.Millisecond)
	}
	return nil
}

// Write sends one byte to the command or data register.
func (l *LCD) Write(kind RegisterKind, b byte) error {
	var prefix byte
	switch kind {
	case Command:
		prefix = PrefixCommand
	case Data:
		prefix = PrefixData
	default:
		return halerrors.InvalidArgument("unknown register kind %d", int(kind))
	}
	if err := l.dev.Write([]byte{prefix, b}); err != nil {
		l.log.WithError(err).Error("fail to write data to i2c slave")
		return err
	}
	return nil
}

func (l *LCD) SetEntryMode(cursorIncrement, shiftDisplay bool) error {
	cfg := byte(CmdEntryMode)
	if cursorIncrement {
		cfg |= 0x02
	}
	if shiftDisplay {
		cfg |= 0x01
	}
	return l.Write(Command, cfg)
}

func (l *LCD) SetDisplayControl(displayOn, cursorOn, blinkOn bool) error {
	cfg := byte(CmdDisplayControl)
	if displayOn {
		cfg |= 0x04
	}
	if cursorOn {
		cfg |= 0x02
	}
	if blinkOn {
		cfg |= 0x01
	}
	return l.Write(Command, cfg)
}

func (l *LCD) Shift(target ShiftTarget, dir Direction) error {
	cfg := byte(CmdShift)
	switch target {
	case ShiftDisplay:
		cfg |= 0x80
	case ShiftCursor:
	default:
		return halerrors.InvalidArgument("unknown shift target %d", int(target))
	}
	switch dir {
	case Right:
		cfg |= 0x40
	case Left:
	default:
		return halerrors.InvalidArgument("unknown shift direction %d", int(dir))
	}
	return l.Write(Command, cfg)
}

func (l *LCD) CursorHome() error {
	return l.Write(Command, CmdHome)
}

// CursorSet moves the cursor to column x of row y.
func (l *LCD) CursorSet(x, y int) error {
	return l.Write(Command, CursorAddress(x, y, l.rowOffset))
}

// CursorAddress is the set-DDRAM-address command for (x, y).
func CursorAddress(x, y, rowOffset int) byte {
	return byte(x+y*rowOffset) | CmdSetDDRAMAddr
}

// DecodeCursorAddress inverts CursorAddress for a two row display with the
// given row offset.
func DecodeCursorAddress(cmd byte, rowOffset int) (x, y int) {
	addr := int(cmd &^ CmdSetDDRAMAddr)
	if addr >= rowOffset {
		y = 1
	}
	return addr - y*rowOffset, y
}

func (l *LCD) Clear() error {
	if err := l.Write(Command, CmdClear); err != nil {
		return err
	}
	return l.CursorHome()
}
