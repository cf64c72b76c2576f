// Package events defines the topics and payloads published by the
// document session manager.
package events
