package message

type Type int

const (
	// TypeRaw messages show frames and register words as they travel.
	TypeRaw Type = iota
	// TypeDecoded messages show the host values behind typed points.
	TypeDecoded
)

func (t Type) String() string {
	if t == TypeDecoded {
		return "decoded"
	}
	return "raw"
}

type Message interface {
	String() string
	Type() Type
}
