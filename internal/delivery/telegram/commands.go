package telegram

import (
	"errors"
	"strconv"
	"strings"
)

const HelpText = `Commands:
/help - show this help
/import_all - import every category from Naver Shopping
/import <category> - import one category (CPU, GPU, RAM, SSD, MOTHERBOARD, POWER_SUPPLY, CASE, COOLER)
/crawl - refresh offers of every active seller now
/price <part_id> - current offers for a part
/history <part_id> [period] - daily prices, period like 7d (default 30d)

Example:
/import gpu
/history 42 7d
`

var ErrInvalidArguments = errors.New("invalid arguments")

func ParseCategory(args string) (string, error) {
	fields := strings.Fields(args)
	if len(fields) != 1 {
		return "", ErrInvalidArguments
	}
	return fields[0], nil
}

func ParsePartID(args string) (uint, error) {
	idStr := strings.TrimSpace(args)
	if idStr == "" {
		return 0, ErrInvalidArguments
	}
	value, err := strconv.ParseUint(idStr, 10, 64)
	if err != nil || value == 0 {
		return 0, ErrInvalidArguments
	}
	return uint(value), nil
}

// ParseHistoryArgs splits "<part_id> [period]". The period is passed through
// unvalidated; the price usecase falls back to its default.
func ParseHistoryArgs(args string) (uint, string, error) {
	fields := strings.Fields(args)
	if len(fields) == 0 || len(fields) > 2 {
		return 0, "", ErrInvalidArguments
	}
	partID, err := ParsePartID(fields[0])
	if err != nil {
		return 0, "", err
	}
	period := ""
	if len(fields) == 2 {
		period = fields[1]
	}
	return partID, period, nil
}
