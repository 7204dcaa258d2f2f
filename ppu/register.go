package ppu

// Field names a bit range inside a Register.
type Field struct {
	Index uint16
	Size  uint16
}

// Register is a hardware register split into named bit fields. Reg is the
// raw value; fields read and write slices of it.
type Register struct {
	fields map[string]Field
	Reg    uint16
}

func (r *Register) mask(f Field) uint16 {
	return ((^(uint16(0xFFFF) << f.Size)) << f.Index) & 0xFFFF
}

func (r *Register) SetField(key string, value uint16) {
	field, ok := r.fields[key]
	if !ok {
		panic("register field " + key + " not found")
	}
	mask := r.mask(field)
	r.Reg = (r.Reg &^ mask) | ((value << field.Index) & mask)
}

func (r *Register) GetField(key string) uint16 {
	field, ok := r.fields[key]
	if !ok {
		panic("register field " + key + " not found")
	}
	return (r.Reg & r.mask(field)) >> field.Index
}

func CreateRegister(fields map[string]Field) Register {
	return Register{fields: fields}
}
