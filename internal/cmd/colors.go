package cmd

import "os"

// ANSI color codes for terminal output, blanked in init when the
// terminal opts out.
var (
	colorRed   = "\033[0;31m"
	colorGreen = "\033[0;32m"
	colorDim   = "\033[2m"
	colorBold  = "\033[1m"
	colorReset = "\033[0m"
)

func init() {
	if shouldDisableColors() {
		colorRed = ""
		colorGreen = ""
		colorDim = ""
		colorBold = ""
		colorReset = ""
	}
}

func shouldDisableColors() bool {
	// https://no-color.org/
	if os.Getenv("NO_COLOR") != "" {
		return true
	}
	return os.Getenv("TERM") == "dumb"
}
