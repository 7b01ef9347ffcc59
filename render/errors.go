package render

import (
	"errors"
	"fmt"
)

// ErrResponseTimeout means no matching response header arrived within
// the request window. Callers must not treat it as a hard fault; the
// channel holds no state that a lost response could corrupt.
var ErrResponseTimeout = errors.New("response timeout")

// ResponseError indicates a response frame that arrived but did not
// match what the request expected.
type ResponseError struct {
	Request Opcode
	Got     Opcode
	Detail  string
}

func (e *ResponseError) Error() string {
	return fmt.Sprintf("bad response to 0x%02X: got opcode 0x%02X (%s)",
		uint8(e.Request), uint8(e.Got), e.Detail)
}
