package style

import (
	"strconv"
	"strings"

	cssscanner "github.com/gorilla/css/scanner"

	"github.com/saorsa-labs/saorsa/internal/buffer"
)

// namedColors is the subset of CSS/ANSI color keywords TCSS declarations
// may use directly (beyond hex/rgb literals).
var namedColors = map[string]buffer.Color{
	"black":   buffer.NamedColor(buffer.Black),
	"red":     buffer.NamedColor(buffer.Red),
	"green":   buffer.NamedColor(buffer.Green),
	"yellow":  buffer.NamedColor(buffer.Yellow),
	"blue":    buffer.NamedColor(buffer.Blue),
	"magenta": buffer.NamedColor(buffer.Magenta),
	"cyan":    buffer.NamedColor(buffer.Cyan),
	"white":   buffer.NamedColor(buffer.White),
	"reset":   buffer.ResetColor(),
}

// parseLiteralValue converts a fully-resolved (variables already expanded)
// declaration value into a typed Value. It tokenizes with gorilla/css's CSS
// scanner to classify the leading token — ident, hash, number, or
// percentage/dimension — rather than hand-parsing suffixes, since that
// scanner already implements the CSS number/dimension grammar correctly
// (trailing units, scientific notation, leading signs).
func parseLiteralValue(raw string) Value {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return Keyword("")
	}

	s := cssscanner.New(raw)
	tok := s.Next()
	if tok == nil {
		return Keyword(raw)
	}

	switch tok.Type {
	case cssscanner.TokenHash:
		if c, ok := parseHexColor(tok.Value); ok {
			return ColorValue(c)
		}
		return Keyword(raw)
	case cssscanner.TokenNumber:
		n, _ := strconv.ParseFloat(tok.Value, 64)
		return Cells(n)
	case cssscanner.TokenPercentage:
		n, _ := strconv.ParseFloat(strings.TrimSuffix(tok.Value, "%"), 64)
		return Percent(n)
	case cssscanner.TokenDimension:
		if strings.HasSuffix(tok.Value, "fr") {
			n, _ := strconv.ParseFloat(strings.TrimSuffix(tok.Value, "fr"), 64)
			return Fraction(n)
		}
		n, _ := strconv.ParseFloat(strings.TrimRight(tok.Value, "abcdefghijklmnopqrstuvwxyz%"), 64)
		return Cells(n)
	case cssscanner.TokenIdent, cssscanner.TokenFunction:
		switch raw {
		case "auto":
			return Auto()
		}
		if c, ok := namedColors[raw]; ok {
			return ColorValue(c)
		}
		if c, ok := parseFunctionalColor(raw); ok {
			return ColorValue(c)
		}
		return Keyword(raw)
	default:
		return Keyword(raw)
	}
}

func parseHexColor(hash string) (buffer.Color, bool) {
	h := strings.TrimPrefix(hash, "#")
	if len(h) != 6 {
		return buffer.Color{}, false
	}
	r, err1 := strconv.ParseUint(h[0:2], 16, 8)
	g, err2 := strconv.ParseUint(h[2:4], 16, 8)
	b, err3 := strconv.ParseUint(h[4:6], 16, 8)
	if err1 != nil || err2 != nil || err3 != nil {
		return buffer.Color{}, false
	}
	return buffer.RGBColor(uint8(r), uint8(g), uint8(b)), true
}

// parseFunctionalColor recognizes `rgb(r,g,b)` and `idx(n)` forms.
func parseFunctionalColor(raw string) (buffer.Color, bool) {
	open := strings.IndexByte(raw, '(')
	if open < 0 || !strings.HasSuffix(raw, ")") {
		return buffer.Color{}, false
	}
	fn := raw[:open]
	args := strings.Split(raw[open+1:len(raw)-1], ",")
	switch fn {
	case "rgb":
		if len(args) != 3 {
			return buffer.Color{}, false
		}
		r, _ := strconv.Atoi(strings.TrimSpace(args[0]))
		g, _ := strconv.Atoi(strings.TrimSpace(args[1]))
		b, _ := strconv.Atoi(strings.TrimSpace(args[2]))
		return buffer.RGBColor(uint8(r), uint8(g), uint8(b)), true
	case "idx":
		if len(args) != 1 {
			return buffer.Color{}, false
		}
		n, _ := strconv.Atoi(strings.TrimSpace(args[0]))
		return buffer.IndexedColor(uint8(n)), true
	}
	return buffer.Color{}, false
}
