package handlers

import (
	"errors"
	"strconv"
	"strings"
)

type brandFields struct {
	company  *string
	industry *string
	theme    *string
}

// parseBrandArgs splits "Company | Industry | Theme". Empty segments leave
// the draft value alone; pipes past the second stay part of the theme.
func parseBrandArgs(args string) brandFields {
	parts := strings.SplitN(args, "|", 3)
	var out brandFields
	targets := []**string{&out.company, &out.industry, &out.theme}
	for i, p := range parts {
		p = strings.TrimSpace(p)
		if p == "" {
			continue
		}
		*targets[i] = &p
	}
	return out
}

var errBadCount = errors.New("bad count")

// parseCount reads the optional /generate argument, defaulting to 1 and
// clamping to [1, limit].
func parseCount(args string, limit int) (int, error) {
	args = strings.TrimSpace(args)
	if args == "" {
		return 1, nil
	}
	n, err := strconv.Atoi(strings.Fields(args)[0])
	if err != nil {
		return 0, errBadCount
	}
	if n < 1 {
		n = 1
	}
	if n > limit {
		n = limit
	}
	return n, nil
}
