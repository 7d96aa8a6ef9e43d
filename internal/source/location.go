// Package source models where in a Rasp program a token, instruction,
// or error came from.
package source

import "fmt"

// Location pairs a source file label with a line number. The zero
// value is a valid, if uninformative, location (line 0 of an unnamed
// file).
type Location struct {
	File string
	Line int
}

// At builds a Location for the given file and line.
func At(file string, line int) Location {
	return Location{File: file, Line: line}
}

func (l Location) String() string {
	file := l.File
	if file == "" {
		file = "<unknown>"
	}
	return fmt.Sprintf("%s:%d", file, l.Line)
}
