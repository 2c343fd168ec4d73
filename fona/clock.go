package fona

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/martincalsyn/fona-go/at"
)

// Clock reads the module's real-time clock.
//
// The module replies with +CCLK: "yy/MM/dd,hh:mm:ss+zz" where zz is a
// timezone offset in quarter hours. The offset is tolerated but not
// applied; the returned time carries the clock's face value in UTC.
func (d *Device) Clock(ctx context.Context) (time.Time, error) {
	fields, err := d.sendReadFields(ctx, at.CmdClockRead, at.ReplyClock, true, ",")
	if err != nil {
		return time.Time{}, fmt.Errorf("read clock: %w", err)
	}
	t, err := parseClock(fields)
	if err != nil {
		return time.Time{}, fmt.Errorf("read clock: %w", err)
	}
	return t, nil
}

// SetClock writes the module's real-time clock. The timezone field is
// written as +00 to match what Clock reads back.
func (d *Device) SetClock(ctx context.Context, t time.Time) error {
	cmd := fmt.Sprintf(`AT+CCLK="%02d/%02d/%02d,%02d:%02d:%02d+00"`,
		t.Year()%100, int(t.Month()), t.Day(), t.Hour(), t.Minute(), t.Second())
	if err := d.sendExpect(ctx, cmd, at.OK, cmd); err != nil {
		return fmt.Errorf("set clock: %w", err)
	}
	return nil
}

// parseClock turns the comma-split clock reply into a time.Time. The first
// field is the date as yy/MM/dd with a two-digit year offset by 2000; the
// second is the time as hh:mm:ss, optionally followed by a +-separated
// timezone segment.
func parseClock(fields []string) (time.Time, error) {
	if len(fields) != 2 {
		return time.Time{}, fmt.Errorf("%w: expected date and time, got %d fields", ErrBadReply, len(fields))
	}

	dateParts := strings.Split(fields[0], "/")
	if len(dateParts) != 3 {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrBadReply, fields[0])
	}

	// The timezone offset, when present, trails the seconds after a '+'.
	// It is parsed off and discarded.
	clock, _, _ := strings.Cut(fields[1], "+")
	clockParts := strings.Split(clock, ":")
	if len(clockParts) != 3 {
		return time.Time{}, fmt.Errorf("%w: bad time %q", ErrBadReply, fields[1])
	}

	nums := make([]int, 0, 6)
	for _, part := range append(dateParts, clockParts...) {
		n, err := strconv.Atoi(part)
		if err != nil {
			return time.Time{}, fmt.Errorf("%w: bad numeric field %q", ErrBadReply, part)
		}
		nums = append(nums, n)
	}

	return time.Date(2000+nums[0], time.Month(nums[1]), nums[2],
		nums[3], nums[4], nums[5], 0, time.UTC), nil
}
