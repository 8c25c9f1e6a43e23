package ast

// Index32 stores a 32-bit index where the zero value is invalid. Used in
// place of a pointer or a separate "has value" bool wherever an optional
// small index needs to stay inline (sourcemap.Mapping.OriginalName).
type Index32 struct {
	flippedBits uint32
}

func MakeIndex32(index uint32) Index32 {
	return Index32{flippedBits: ^index}
}

func (i Index32) IsValid() bool {
	return i.flippedBits != 0
}

func (i Index32) GetIndex() uint32 {
	return ^i.flippedBits
}
