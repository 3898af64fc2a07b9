package message

import "fmt"

type Decoded struct {
	Value string
}

func NewDecoded(format string, args ...any) Decoded {
	return Decoded{Value: fmt.Sprintf(format, args...)}
}

func (m Decoded) String() string {
	return m.Value
}

func (m Decoded) Type() Type {
	return TypeDecoded
}
