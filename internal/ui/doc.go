// Package ui renders human-readable console output.
//
// ConsoleCommandEventLogger turns shell command events into short log lines
// when the console log format is selected. OutputStyler colors report labels,
// and only does so when the output is a terminal.
package ui
