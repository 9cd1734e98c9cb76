package catalog

import "fmt"

// Mask128 is a 128-bit permission bitmask. It is a value type: all
// operations return a new mask and never mutate the receiver, so masks can
// be shared freely across goroutines.
type Mask128 struct {
	Hi uint64
	Lo uint64
}

// FlagFromBit returns a mask with only the given bit set. Bits outside
// [0,128) yield the zero mask.
func FlagFromBit(bit int) Mask128 {
	if bit < 0 || bit >= 128 {
		return Mask128{}
	}
	if bit < 64 {
		return Mask128{Lo: 1 << bit}
	}
	return Mask128{Hi: 1 << (bit - 64)}
}

// Or returns the union of m and o.
func (m Mask128) Or(o Mask128) Mask128 {
	return Mask128{Hi: m.Hi | o.Hi, Lo: m.Lo | o.Lo}
}

// And returns the intersection of m and o.
func (m Mask128) And(o Mask128) Mask128 {
	return Mask128{Hi: m.Hi & o.Hi, Lo: m.Lo & o.Lo}
}

// AndNot returns m with every bit of o cleared.
func (m Mask128) AndNot(o Mask128) Mask128 {
	return Mask128{Hi: m.Hi &^ o.Hi, Lo: m.Lo &^ o.Lo}
}

// Overlaps reports whether m and o share at least one set bit.
func (m Mask128) Overlaps(o Mask128) bool {
	return (m.Hi&o.Hi)|(m.Lo&o.Lo) != 0
}

// IsZero reports whether no bit is set.
func (m Mask128) IsZero() bool {
	return m.Hi == 0 && m.Lo == 0
}

// Equal reports whether m and o are identical.
func (m Mask128) Equal(o Mask128) bool {
	return m == o
}

// String renders the mask as fixed-width hex, high word first.
func (m Mask128) String() string {
	return fmt.Sprintf("%016x%016x", m.Hi, m.Lo)
}
