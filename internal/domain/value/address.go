package value

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var ErrInvalidAddress = errors.New("invalid TON address")

var (
	rawAddressPattern      = regexp.MustCompile(`^-?\d{1,3}:[0-9a-fA-F]{64}$`) //nolint:gochecknoglobals
	friendlyAddressPattern = regexp.MustCompile(`^[A-Za-z0-9_+/-]{48}$`)       //nolint:gochecknoglobals
)

// Address адрес в сыром (0:abcd...) или user-friendly (EQ.../UQ...) виде.
// Конвертации между формами нет, адрес передаётся апстримам как есть.
type Address string

func ParseAddress(s string) (Address, error) {
	s = strings.TrimSpace(s)

	if rawAddressPattern.MatchString(s) || friendlyAddressPattern.MatchString(s) {
		return Address(s), nil
	}

	return "", fmt.Errorf("%w: %q", ErrInvalidAddress, s)
}

func (a Address) String() string {
	return string(a)
}
