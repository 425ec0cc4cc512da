package hardware

import (
	"fmt"
	"io"
	"runtime"
	"strconv"
	"time"
)

const (
	Banner          = "RP3 BOARD SENSOR"
	SoftwareVersion = "0.01"
)

// ShowInfo puts the banner and today's date on the display and writes the
// system summary to w.
func (h *Hardware) ShowInfo(w io.Writer) error {
	if err := h.LCD.Clear(); err != nil {
		return err
	}
	if err := h.LCD.SetDisplayControl(true, false, false); err != nil {
		return err
	}
	if err := h.LCD.CursorSet(0, 0); err != nil {
		return err
	}
	if _, err := h.LCD.Printf(Banner); err != nil {
		return err
	}
	h.Sleep(2 * time.Second)
	if err := h.LCD.CursorSet(0, 1); err != nil {
		return err
	}
	date := h.Clock.LocalTime()
	if _, err := h.LCD.Printf("%04d/%02d/%02d", date.Year, date.Month, date.Day); err != nil {
		return err
	}

	fmt.Fprintf(w, "[Runtime Info]================== \n")
	fmt.Fprintf(w, "Go            = %s \n", runtime.Version())
	fmt.Fprintf(w, "Platform      = %s/%s \n", runtime.GOOS, runtime.GOARCH)
	fmt.Fprintf(w, "int size      = %d \n", strconv.IntSize/8)
	fmt.Fprintf(w, "[System Info]=================== \n")
	fmt.Fprintf(w, "S/W Ver.      = %s \n", SoftwareVersion)
	fmt.Fprintf(w, "Date(local)   = %v\n", h.Clock.LocalTime())
	fmt.Fprintf(w, "Date(UTC)     = %v\n", h.Clock.UTC())
	fmt.Fprintf(w, "================================ \n")
	fmt.Fprintf(w, "%s\nLaunch .... \n\n\n", Banner)
	return nil
}
