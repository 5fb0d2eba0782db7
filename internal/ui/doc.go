// Package ui styles terminal output for the easyhr CLI with lipgloss.
//
// It provides a small [Palette] of named styles, status badges coloured by pipeline
// position, bordered tables for record listings, and renderers for the dashboard and
// bulk-operation progress lines.
//
// Colour is dropped automatically when output is not a terminal, so the same
// renderers serve piped output.
package ui
