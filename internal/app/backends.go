package app

import (
	"fmt"

	"github.com/dshills/docshell/internal/config"
	"github.com/dshills/docshell/internal/editor"
	"github.com/dshills/docshell/internal/editor/gzipdoc"
	"github.com/dshills/docshell/internal/editor/jsondoc"
	"github.com/dshills/docshell/internal/editor/plaintext"
	"github.com/dshills/docshell/internal/vfs"
)

// BuildFactory registers one backend per rule, in rule order. A rule with
// read-only patterns registers a read-only variant ahead of itself so the
// narrower match wins.
func BuildFactory(rules []config.BackendRule, fsys vfs.VFS) (*editor.Factory, error) {
	f := editor.NewFactory()
	for i, rule := range rules {
		match, err := ruleRecognizer(rule, fsys)
		if err != nil {
			return nil, fmt.Errorf("backends[%d]: %w", i, err)
		}
		if len(rule.ReadOnlyPatterns) > 0 {
			ctor, err := ruleConstructor(rule, true)
			if err != nil {
				return nil, fmt.Errorf("backends[%d]: %w", i, err)
			}
			f.Register(editor.AllOf(match, editor.GlobRecognizer(rule.ReadOnlyPatterns...)), ctor)
		}
		ctor, err := ruleConstructor(rule, false)
		if err != nil {
			return nil, fmt.Errorf("backends[%d]: %w", i, err)
		}
		f.Register(match, ctor)
	}
	return f, nil
}

func ruleRecognizer(rule config.BackendRule, fsys vfs.VFS) (editor.Recognizer, error) {
	var rs []editor.Recognizer
	if len(rule.Patterns) > 0 {
		rs = append(rs, editor.GlobRecognizer(rule.Patterns...))
	}
	if len(rule.Extensions) > 0 {
		rs = append(rs, editor.ExtensionRecognizer(rule.Extensions...))
	}
	if len(rule.MIME) > 0 {
		rs = append(rs, editor.MIMERecognizer(fsys, rule.MIME...))
	}
	if rule.Lua != "" {
		r, err := editor.LuaRecognizer(rule.Lua)
		if err != nil {
			return nil, err
		}
		rs = append(rs, r)
	}
	return editor.AnyOf(rs...), nil
}

func ruleConstructor(rule config.BackendRule, readOnly bool) (editor.Constructor, error) {
	var opts []plaintext.Option
	if readOnly {
		opts = append(opts, plaintext.WithReadOnly())
	}

	switch rule.Name {
	case config.BackendText:
		return plaintext.Constructor(opts...), nil
	case config.BackendJSON:
		return jsondoc.Constructor(jsondoc.Options{
			Format:   rule.Format,
			Indent:   rule.Indent,
			SortKeys: rule.SortKeys,
			ReadOnly: readOnly,
		}), nil
	case config.BackendGzip:
		return gzipdoc.Constructor(rule.Level, opts...), nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownBackend, rule.Name)
	}
}
