// Package editor defines the capability contract every document editor
// backend satisfies, and the factory that picks a backend for a path.
//
// A backend is registered as a (Recognizer, Constructor) pair. The factory
// walks registrations in the order they were made and the first recognizer
// that accepts the path wins. A single fallback registration is consulted
// after all others, which is how the plain text backend catches everything
// the specialized backends leave alone.
//
// Editors returned by the factory are unloaded. The session manager calls
// Load and only registers the editor when it succeeds.
package editor
