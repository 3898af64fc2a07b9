package message

import "fmt"

type Raw struct {
	Value string
}

func NewRaw(format string, args ...any) Raw {
	return Raw{Value: fmt.Sprintf(format, args...)}
}

func (m Raw) String() string {
	return m.Value
}

func (m Raw) Type() Type {
	return TypeRaw
}
