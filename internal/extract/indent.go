package extract

import "strings"

// Whitespace handling: every leading whitespace character counts as one
// column, so a tab and a space carry equal weight when computing and
// stripping common indentation.

// leadingIndent returns the run of whitespace preceding offset on its line,
// or "" if anything other than whitespace appears before it.
func leadingIndent(source []byte, offset uint32) string {
	start := int(offset)
	lineStart := start
	for lineStart > 0 && source[lineStart-1] != '\n' {
		lineStart--
	}
	for i := lineStart; i < start; i++ {
		if source[i] != ' ' && source[i] != '\t' {
			return ""
		}
	}
	return string(source[lineStart:start])
}

// dedentAfterFirst strips the declaration's own indentation from every line
// after the first, re-indenting the block as if the declaration started at
// column zero. The first line is left untouched.
func dedentAfterFirst(text, indent string) string {
	if indent == "" {
		return text
	}
	lines := strings.Split(text, "\n")
	for i := 1; i < len(lines); i++ {
		lines[i] = trimIndentPrefix(lines[i], len(indent))
	}
	return strings.Join(lines, "\n")
}

// trimIndentPrefix removes up to width leading whitespace characters.
func trimIndentPrefix(line string, width int) string {
	n := 0
	for n < len(line) && n < width && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return line[n:]
}

// stripCommonIndent drops a leading and trailing blank line, removes the
// minimal shared leading whitespace across all non-blank lines, and trims
// trailing whitespace from the result. Blank lines and relative indentation
// among the kept lines are preserved. The operation is idempotent.
func stripCommonIndent(text string) string {
	lines := strings.Split(text, "\n")

	if len(lines) > 1 && isBlank(lines[0]) {
		lines = lines[1:]
	}
	if len(lines) > 1 && isBlank(lines[len(lines)-1]) {
		lines = lines[:len(lines)-1]
	}

	common := -1
	for _, line := range lines {
		if isBlank(line) {
			continue
		}
		w := indentWidth(line)
		if common < 0 || w < common {
			common = w
		}
	}
	if common < 0 {
		common = 0
	}

	for i, line := range lines {
		lines[i] = trimIndentPrefix(line, common)
	}

	return strings.TrimRight(strings.Join(lines, "\n"), " \t\n")
}

func indentWidth(line string) int {
	n := 0
	for n < len(line) && (line[n] == ' ' || line[n] == '\t') {
		n++
	}
	return n
}

func isBlank(line string) bool {
	return strings.TrimSpace(line) == ""
}
