// Package shell provides the terminal collaborators of the document
// session: a stacked display for editor surfaces, a selector control, an
// icon resolver, and a tcell view that draws them and maps keys to
// session commands.
package shell
