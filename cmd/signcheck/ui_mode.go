package main

import (
	"fmt"
	"os"
	"strings"
)

// uiMode selects whether check draws the progress view while it runs.
type uiMode string

const (
	uiModeAuto uiMode = "auto"
	uiModeOn   uiMode = "on"
	uiModeOff  uiMode = "off"
)

func readUIMode(value string) (uiMode, error) {
	switch mode := uiMode(strings.ToLower(strings.TrimSpace(value))); mode {
	case "":
		return uiModeAuto, nil
	case uiModeAuto, uiModeOn, uiModeOff:
		return mode, nil
	default:
		return "", fmt.Errorf("invalid --ui value %q (expected auto|on|off)", value)
	}
}

// shouldUseTUI resolves auto: the progress view goes to stderr, so both
// streams must be terminals and CI logs stay plain.
func shouldUseTUI(mode uiMode) bool {
	switch mode {
	case uiModeOn:
		return true
	case uiModeOff:
		return false
	default:
		if os.Getenv("CI") != "" {
			return false
		}
		return isTerminal(os.Stdout) && isTerminal(os.Stderr)
	}
}
