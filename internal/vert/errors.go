package vert

import "fmt"

// MalformedBlockError reports a structure whose escaped text could not be
// built into a tree. Path names the file the text was dumped to.
type MalformedBlockError struct {
	Name string
	Path string
	Err  error
}

func (e *MalformedBlockError) Error() string {
	return fmt.Sprintf("malformed <%s> structure: %v; it has been dumped to %s for inspection", e.Name, e.Err, e.Path)
}

func (e *MalformedBlockError) Unwrap() error {
	return e.Err
}
