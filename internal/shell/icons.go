package shell

import (
	"path/filepath"
	"strings"

	"github.com/gabriel-vasile/mimetype"

	"github.com/dshills/docshell/internal/session"
	"github.com/dshills/docshell/internal/vfs"
)

// Default icons.
const (
	IconText    session.Icon = "T"
	IconBinary  session.Icon = "B"
	IconImage   session.Icon = "I"
	IconUnknown session.Icon = "?"
)

var defaultExtIcons = map[string]session.Icon{
	".go":   "G",
	".lua":  "L",
	".md":   "M",
	".json": "J",
	".toml": "C",
	".yaml": "C",
	".yml":  "C",
	".gz":   "Z",
	".txt":  IconText,
}

// Icons resolves file-kind icons from the extension, then from the
// detected content type.
type Icons struct {
	fs    vfs.VFS
	byExt map[string]session.Icon
}

var _ session.IconResolver = (*Icons)(nil)

// NewIcons creates a resolver with the default extension table.
func NewIcons(fsys vfs.VFS) *Icons {
	byExt := make(map[string]session.Icon, len(defaultExtIcons))
	for k, v := range defaultExtIcons {
		byExt[k] = v
	}
	return &Icons{fs: fsys, byExt: byExt}
}

// SetExtIcon overrides the icon of an extension.
func (i *Icons) SetExtIcon(ext string, icon session.Icon) {
	i.byExt[strings.ToLower(ext)] = icon
}

// IconFor implements session.IconResolver.
func (i *Icons) IconFor(path string) session.Icon {
	if icon, ok := i.byExt[strings.ToLower(filepath.Ext(path))]; ok {
		return icon
	}
	if i.fs == nil {
		return IconUnknown
	}
	head, err := i.fs.ReadHead(path, 3072)
	if err != nil {
		return IconUnknown
	}
	for m := mimetype.Detect(head); m != nil; m = m.Parent() {
		switch {
		case strings.HasPrefix(m.String(), "text/"):
			return IconText
		case strings.HasPrefix(m.String(), "image/"):
			return IconImage
		}
	}
	return IconBinary
}
