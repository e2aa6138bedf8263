package test

import (
	"strings"

	"github.com/fgoll/source-code-plan/internal/logger"
)

// Produces a line-by-line diff of two texts. Removed lines start with "-",
// added lines with "+" and unchanged lines with a space.
func Diff(old string, new string, color bool) string {
	d := differ{color: color}
	d.diff(strings.Split(old, "\n"), strings.Split(new, "\n"))
	return strings.Join(d.lines, "\n")
}

type differ struct {
	lines []string
	color bool
}

func (d *differ) emit(prefix string, colorCode string, lines []string) {
	for _, line := range lines {
		if d.color {
			d.lines = append(d.lines, colorCode+prefix+line+logger.TerminalColors.Reset)
		} else {
			d.lines = append(d.lines, prefix+line)
		}
	}
}

// This is a simple recursive diff around the longest common run of lines
func (d *differ) diff(old []string, new []string) {
	o, n, common := longestCommonRun(old, new)
	if common == 0 {
		d.emit("-", logger.TerminalColors.Red, old)
		d.emit("+", logger.TerminalColors.Green, new)
		return
	}
	d.diff(old[:o], new[:n])
	d.emit(" ", logger.TerminalColors.Dim, old[o:o+common])
	d.diff(old[o+common:], new[n+common:])
}

// From: https://en.wikipedia.org/wiki/Longest_common_substring_problem
func longestCommonRun(a []string, b []string) (aStart int, bStart int, length int) {
	prev := make([]int, len(b)+1)
	next := make([]int, len(b)+1)

	for i := 1; i <= len(a); i++ {
		for j := 1; j <= len(b); j++ {
			if a[i-1] != b[j-1] {
				next[j] = 0
				continue
			}
			next[j] = prev[j-1] + 1
			if next[j] > length {
				length = next[j]
				aStart = i - length
				bStart = j - length
			}
		}
		prev, next = next, prev
	}
	return
}
