package text

import (
	"strings"
	"unicode"
)

// Normalize collapses the whitespace noise Tesseract leaves in its plain
// text output: trailing spaces, runs of blank lines, Windows line endings.
// Line structure is preserved so page text stays readable.
func Normalize(raw string) string {
	raw = strings.ReplaceAll(raw, "\r\n", "\n")
	raw = strings.ReplaceAll(raw, "\r", "\n")

	lines := strings.Split(raw, "\n")
	out := make([]string, 0, len(lines))
	blank := 0
	for _, line := range lines {
		line = strings.TrimRight(line, " \t")
		line = collapseSpaces(line)
		if line == "" {
			blank++
			if blank > 1 {
				continue
			}
		} else {
			blank = 0
		}
		out = append(out, line)
	}

	return strings.TrimSpace(strings.Join(out, "\n"))
}

func collapseSpaces(line string) string {
	var b strings.Builder
	space := false
	for _, r := range line {
		if r == ' ' || r == '\t' {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

var digitConfusions = map[rune]rune{
	'S': '5',
	'O': '0',
	'I': '1',
	'l': '1',
	'B': '8',
	'G': '6',
	'Z': '2',
}

// RepairDigits fixes the classic OCR letter-for-digit substitutions, but
// only inside tokens that are already mostly numeric. Applying the mapping
// globally would mangle ordinary words.
func RepairDigits(s string) string {
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		tokens := strings.Split(line, " ")
		for j, tok := range tokens {
			if !mostlyNumeric(tok) {
				continue
			}
			runes := []rune(tok)
			for k, r := range runes {
				if repl, ok := digitConfusions[r]; ok {
					runes[k] = repl
				}
			}
			tokens[j] = string(runes)
		}
		lines[i] = strings.Join(tokens, " ")
	}
	return strings.Join(lines, "\n")
}

func mostlyNumeric(token string) bool {
	if len(token) < 4 {
		return false
	}
	digits := 0
	total := 0
	for _, r := range token {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			total++
		}
		if unicode.IsDigit(r) {
			digits++
		}
	}
	return total > 0 && digits*2 > total
}

// Stats holds the per-page counters surfaced in the run report.
type Stats struct {
	Characters int
	Words      int
	Lines      int
}

func Measure(s string) Stats {
	if s == "" {
		return Stats{}
	}
	return Stats{
		Characters: len([]rune(s)),
		Words:      len(strings.Fields(s)),
		Lines:      strings.Count(s, "\n") + 1,
	}
}
