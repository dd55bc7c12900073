package render

import (
	"os"
	"strings"

	"github.com/mattn/go-isatty"
)

// DetectCapability implements the detection order from the terminal driver
// spec: NO_COLOR wins outright; then COLORTERM truecolor/24bit; then TERM
// containing "256"; an empty TERM gives monochrome; otherwise 16-color; a
// non-tty falls back to monochrome.
func DetectCapability(stdoutFd uintptr) Capability {
	if _, ok := os.LookupEnv("NO_COLOR"); ok {
		return Monochrome
	}
	if !isatty.IsTerminal(stdoutFd) && !isatty.IsCygwinTerminal(stdoutFd) {
		return Monochrome
	}

	colorterm := strings.ToLower(os.Getenv("COLORTERM"))
	if colorterm == "truecolor" || colorterm == "24bit" {
		return TrueColor
	}

	term := os.Getenv("TERM")
	if strings.Contains(term, "256") {
		return Color256
	}
	if term == "" {
		return Monochrome
	}
	return Color16
}
