package fona

import (
	"context"
	"fmt"

	"github.com/martincalsyn/fona-go/at"
)

// IMEI returns the module's serial number (International Mobile Equipment
// Identity). The module replies with the bare number on a line of its own.
func (d *Device) IMEI(ctx context.Context) (string, error) {
	imei, err := d.sendReadReply(ctx, at.CmdIMEI, "", false)
	if err != nil {
		return "", fmt.Errorf("read IMEI: %w", err)
	}
	return imei, nil
}

// CCID returns the SIM card's identifier (ICCID). The reply line carries a
// "+CCID" prefix which is stripped from the result.
func (d *Device) CCID(ctx context.Context) (string, error) {
	ccid, err := d.sendReadReply(ctx, at.CmdCCID, at.ReplyCCID, false)
	if err != nil {
		return "", fmt.Errorf("read CCID: %w", err)
	}
	return ccid, nil
}

// UnlockSIM enters the SIM card's PIN code. Most modules lock the SIM
// after a few failed attempts, so callers should not retry blindly.
func (d *Device) UnlockSIM(ctx context.Context, pin string) error {
	cmd := fmt.Sprintf("AT+CPIN=%s", pin)
	if err := d.sendExpect(ctx, cmd, at.OK, cmd); err != nil {
		return fmt.Errorf("unlock SIM: %w", err)
	}
	return nil
}
