package pdfext

import (
	"bytes"
	"regexp"
	"strconv"
	"strings"
)

// pdfStringRe matches PDF string literals in parentheses: (text here)
var pdfStringRe = regexp.MustCompile(`\(((?:\\.|[^\\)])*)\)`)

// decodeTextRuns parses content stream text operators (Tj, TJ, ') and joins
// the decoded runs with single spaces. Positioning operators (Td, TD, T*)
// separate runs. Hex string arguments are not decoded.
func decodeTextRuns(data []byte) string {
	var runs []string
	for _, line := range bytes.Split(data, []byte{'\n'}) {
		line = bytes.TrimSpace(line)
		if len(line) == 0 {
			continue
		}

		showsText := bytes.HasSuffix(line, []byte("Tj")) ||
			bytes.HasSuffix(line, []byte("TJ")) ||
			(bytes.HasSuffix(line, []byte("'")) && bytes.Contains(line, []byte("(")))
		if !showsText {
			continue
		}

		for _, m := range pdfStringRe.FindAllSubmatch(line, -1) {
			if text := decodePDFString(m[1]); text != "" {
				runs = append(runs, text)
			}
		}
	}
	return strings.Join(runs, " ")
}

// decodePDFString resolves backslash escapes in a PDF literal string.
func decodePDFString(b []byte) string {
	var sb strings.Builder
	for i := 0; i < len(b); i++ {
		c := b[i]
		if c != '\\' {
			sb.WriteByte(c)
			continue
		}
		i++
		if i >= len(b) {
			break
		}
		switch b[i] {
		case 'n':
			sb.WriteByte('\n')
		case 'r':
			sb.WriteByte('\r')
		case 't':
			sb.WriteByte('\t')
		case 'f':
			sb.WriteByte('\f')
		case 'b':
			sb.WriteByte('\b')
		case '(', ')', '\\':
			sb.WriteByte(b[i])
		case '0', '1', '2', '3', '4', '5', '6', '7':
			// octal escape, up to three digits
			j := i
			for j < len(b) && j < i+3 && b[j] >= '0' && b[j] <= '7' {
				j++
			}
			if n, err := strconv.ParseUint(string(b[i:j]), 8, 16); err == nil && n < 256 {
				sb.WriteByte(byte(n))
			}
			i = j - 1
		default:
			sb.WriteByte(b[i])
		}
	}
	return sb.String()
}
