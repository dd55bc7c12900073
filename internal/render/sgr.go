package render

import (
	"fmt"
	"strings"

	"github.com/saorsa-labs/saorsa/internal/buffer"
)

// sgrCodes returns the SGR codes needed to move from prev to next, following
// the "turning an attribute off requires a full reset" rule: if any boolean
// attribute is being turned off, emit 0 first and then every code next still
// wants, rather than trying to find a per-attribute "off" code.
func sgrCodes(prev, next buffer.Style) []string {
	if next.IsZero() {
		if prev.IsZero() {
			return nil
		}
		return []string{"0"}
	}

	needsReset := (prev.Bold && !next.Bold) ||
		(prev.Dim && !next.Dim) ||
		(prev.Italic && !next.Italic) ||
		(prev.Underline && !next.Underline) ||
		(prev.Reverse && !next.Reverse) ||
		(prev.Strikethrough && !next.Strikethrough) ||
		(prev.Fg.IsSet() && !next.Fg.IsSet()) ||
		(prev.Bg.IsSet() && !next.Bg.IsSet())

	from := prev
	if needsReset {
		from = buffer.Style{}
	}

	var codes []string
	if needsReset {
		codes = append(codes, "0")
	}

	if next.Bold && !from.Bold {
		codes = append(codes, "1")
	}
	if next.Dim && !from.Dim {
		codes = append(codes, "2")
	}
	if next.Italic && !from.Italic {
		codes = append(codes, "3")
	}
	if next.Underline && !from.Underline {
		codes = append(codes, "4")
	}
	if next.Reverse && !from.Reverse {
		codes = append(codes, "7")
	}
	if next.Strikethrough && !from.Strikethrough {
		codes = append(codes, "9")
	}
	if next.Fg.IsSet() && (needsReset || next.Fg != from.Fg) {
		codes = append(codes, fgCodes(next.Fg)...)
	}
	if next.Bg.IsSet() && (needsReset || next.Bg != from.Bg) {
		codes = append(codes, bgCodes(next.Bg)...)
	}
	return codes
}

func fgCodes(c buffer.Color) []string {
	switch c.Kind {
	case buffer.ColorReset:
		return []string{"39"}
	case buffer.ColorNamed:
		if c.Named < 8 {
			return []string{fmt.Sprintf("%d", 30+int(c.Named))}
		}
		return []string{fmt.Sprintf("%d", 90+int(c.Named)-8)}
	case buffer.ColorIndexed:
		return []string{"38", "5", fmt.Sprintf("%d", c.Index)}
	case buffer.ColorRGB:
		return []string{"38", "2", fmt.Sprintf("%d", c.R), fmt.Sprintf("%d", c.G), fmt.Sprintf("%d", c.B)}
	}
	return nil
}

func bgCodes(c buffer.Color) []string {
	switch c.Kind {
	case buffer.ColorReset:
		return []string{"49"}
	case buffer.ColorNamed:
		if c.Named < 8 {
			return []string{fmt.Sprintf("%d", 40+int(c.Named))}
		}
		return []string{fmt.Sprintf("%d", 100+int(c.Named)-8)}
	case buffer.ColorIndexed:
		return []string{"48", "5", fmt.Sprintf("%d", c.Index)}
	case buffer.ColorRGB:
		return []string{"48", "2", fmt.Sprintf("%d", c.R), fmt.Sprintf("%d", c.G), fmt.Sprintf("%d", c.B)}
	}
	return nil
}

// sgrSequence renders the combined SGR escape for the given codes, or "" if
// there are none.
func sgrSequence(codes []string) string {
	if len(codes) == 0 {
		return ""
	}
	return "\x1b[" + strings.Join(codes, ";") + "m"
}
