// Package cli implements the command-line interface for darts-calendars.
//
// The cli package provides the Cobra-based CLI that runs the per-source
// scrape→assemble→write pipelines and reports the outcome as text or JSON.
// A failed source never touches its previously published feed; the exit code
// distinguishes "nothing changed" from "feeds updated" from "a source failed".
package cli
