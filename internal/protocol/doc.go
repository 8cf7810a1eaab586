// Package protocol implements the line-delimited host command protocol.
// It assembles raw transport bytes into complete lines, classifies each
// line by its embedded type marker, and decodes it into a typed message
// carrying the fields that command uses.
package protocol
