package editor

import (
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/gabriel-vasile/mimetype"

	"github.com/dshills/docshell/internal/vfs"
)

// mimeSniffLen is how much of a file is read for content detection.
const mimeSniffLen = 3072

// Recognizer decides whether a backend can handle a path.
type Recognizer interface {
	Recognize(path string) bool
}

// RecognizerFunc adapts a function to Recognizer.
type RecognizerFunc func(path string) bool

// Recognize implements Recognizer.
func (f RecognizerFunc) Recognize(path string) bool { return f(path) }

// ExtensionRecognizer matches paths by file extension, case-insensitively.
// Extensions may be given with or without the leading dot.
func ExtensionRecognizer(exts ...string) Recognizer {
	set := make(map[string]struct{}, len(exts))
	for _, e := range exts {
		e = strings.ToLower(e)
		if e != "" && !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		set[e] = struct{}{}
	}
	return RecognizerFunc(func(path string) bool {
		_, ok := set[strings.ToLower(filepath.Ext(path))]
		return ok
	})
}

// GlobRecognizer matches paths against doublestar patterns. A pattern
// without a separator is matched against the base name only.
// Malformed patterns never match.
func GlobRecognizer(patterns ...string) Recognizer {
	return RecognizerFunc(func(path string) bool {
		slashed := filepath.ToSlash(path)
		base := filepath.Base(path)
		for _, p := range patterns {
			target := slashed
			if !strings.Contains(p, "/") {
				target = base
			}
			if ok, err := doublestar.Match(p, target); err == nil && ok {
				return true
			}
		}
		return false
	})
}

// MIMERecognizer sniffs the start of the file and matches when the
// detected type, or one of its parents, starts with any of the prefixes.
func MIMERecognizer(fsys vfs.VFS, prefixes ...string) Recognizer {
	return RecognizerFunc(func(path string) bool {
		head, err := fsys.ReadHead(path, mimeSniffLen)
		if err != nil {
			return false
		}
		return mimeMatches(mimetype.Detect(head), prefixes)
	})
}

func mimeMatches(detected *mimetype.MIME, prefixes []string) bool {
	for m := detected; m != nil; m = m.Parent() {
		for _, p := range prefixes {
			if strings.HasPrefix(m.String(), p) {
				return true
			}
		}
	}
	return false
}

// RegularFileRecognizer matches any existing regular file.
func RegularFileRecognizer(fsys vfs.VFS) Recognizer {
	return RecognizerFunc(fsys.IsRegular)
}

// AnyOf matches when at least one recognizer matches.
func AnyOf(rs ...Recognizer) Recognizer {
	return RecognizerFunc(func(path string) bool {
		for _, r := range rs {
			if r.Recognize(path) {
				return true
			}
		}
		return false
	})
}

// AllOf matches when every recognizer matches. An empty list never matches.
func AllOf(rs ...Recognizer) Recognizer {
	return RecognizerFunc(func(path string) bool {
		if len(rs) == 0 {
			return false
		}
		for _, r := range rs {
			if !r.Recognize(path) {
				return false
			}
		}
		return true
	})
}
