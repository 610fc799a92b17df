package voting

import (
	"strings"

	"ApprovalBot/internal/domain"
)

type directiveToken struct {
	word      string
	directive domain.Directive
}

var directiveTokens = []directiveToken{
	{word: "approve", directive: domain.DirectiveApprove},
	{word: "reject", directive: domain.DirectiveReject},
}

// SplitLines splits body on CRLF, CR and LF and trims every line.
func SplitLines(body string) []string {
	if body == "" {
		return nil
	}
	normalized := strings.ReplaceAll(body, "\r\n", "\n")
	normalized = strings.ReplaceAll(normalized, "\r", "\n")

	lines := strings.Split(normalized, "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSpace(line)
	}
	return lines
}

// ClassifyLine reports the directive a single trimmed line carries. The slash
// command has to open the line and be followed by a non-word character or the
// end of the line, so "/approved" is not a directive.
func ClassifyLine(line string) domain.Directive {
	if !strings.HasPrefix(line, "/") {
		return domain.DirectiveNone
	}
	rest := line[1:]
	for _, tok := range directiveTokens {
		if len(rest) < len(tok.word) {
			continue
		}
		if !strings.EqualFold(rest[:len(tok.word)], tok.word) {
			continue
		}
		if len(rest) == len(tok.word) || !isWordByte(rest[len(tok.word)]) {
			return tok.directive
		}
	}
	return domain.DirectiveNone
}

// ParseComment returns the last directive found in body.
func ParseComment(body string) domain.Directive {
	result := domain.DirectiveNone
	for _, line := range SplitLines(body) {
		if d := ClassifyLine(line); d != domain.DirectiveNone {
			result = d
		}
	}
	return result
}

func isWordByte(b byte) bool {
	return b == '_' ||
		('0' <= b && b <= '9') ||
		('a' <= b && b <= 'z') ||
		('A' <= b && b <= 'Z')
}
