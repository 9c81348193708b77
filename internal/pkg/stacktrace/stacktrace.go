// Package stacktrace trims raw goroutine stacks down to frames from this module.
package stacktrace

import (
	"strings"

	"github.com/samber/lo"
)

const marker = "/internal/"

// InternalPaths returns the "internal/<pkg>/<file>.go:<line>" locations found in
// a raw stack trace, in call order. Duplicate frames are collapsed.
func InternalPaths(stack []byte) []string {
	lines := strings.Split(string(stack), "\n")
	paths := make([]string, 0, len(lines)/2)

	for _, line := range lines {
		if p, ok := internalPath(strings.TrimSpace(line)); ok {
			paths = append(paths, p)
		}
	}

	return lo.Uniq(paths)
}

// Origin returns the innermost internal frame, which is usually where a panic
// was raised. It returns "" when the stack holds no internal frames.
func Origin(stack []byte) string {
	paths := InternalPaths(stack)
	if len(paths) == 0 {
		return ""
	}
	return paths[0]
}

// file lines look like "\t/src/app/internal/vault/store/store.go:120 +0x1d".
func internalPath(line string) (string, bool) {
	idx := strings.Index(line, ".go:")
	if idx == -1 {
		return "", false
	}

	loc := line
	if end := strings.IndexByte(line[idx:], ' '); end != -1 {
		loc = line[:idx+end]
	}

	return Trim(loc)
}

// Trim shortens an absolute source path to its "internal/..." suffix. It
// reports false for files outside the module's internal tree.
func Trim(file string) (string, bool) {
	at := strings.LastIndex(file, marker)
	if at == -1 {
		return "", false
	}
	return file[at+1:], true
}
