package velocypack

// One-byte type tags.  Every VPack value starts with one of these.  Tags
// chosen so that a short string encodes its length directly in the tag
// (0x40 + len) and the long-string tag sits inside the container block,
// between the empty-object and the sorted-object tags.
const (
	tagNone       = 0x00
	tagArrayEmpty = 0x01

	// Arrays without an index table (all children the same byte size).
	// Header is tag plus a byte length of width 1, 2, 4 or 8.
	tagArrayCompact1 = 0x02
	tagArrayCompact2 = 0x03
	tagArrayCompact4 = 0x04
	tagArrayCompact8 = 0x05

	// Arrays with a trailing index table.  Header is tag, byte length
	// and item count, each of width 1, 2, 4 or 8.
	tagArrayIndexed1 = 0x06
	tagArrayIndexed2 = 0x07
	tagArrayIndexed4 = 0x08
	tagArrayIndexed8 = 0x09

	tagObjectEmpty = 0x0a

	// Long string: 8-byte little-endian byte length, then the payload.
	tagStringLong = 0x0c

	// Objects always carry an index table of key offsets.  Sorted
	// variants keep the table in lexicographic byte order of the keys.
	tagObjectSorted1 = 0x0e
	tagObjectSorted2 = 0x0f
	tagObjectSorted4 = 0x10
	tagObjectSorted8 = 0x11

	tagObjectUnsorted1 = 0x12
	tagObjectUnsorted2 = 0x13
	tagObjectUnsorted4 = 0x14
	tagObjectUnsorted8 = 0x15

	tagNull   = 0x18
	tagFalse  = 0x19
	tagTrue   = 0x1a
	tagDouble = 0x1b

	// Signed ints, 1-8 bytes little-endian two's complement.
	tagIntBase = 0x20 // 0x20..0x27

	// Unsigned ints, 1-8 bytes little-endian.
	tagUIntBase = 0x28 // 0x28..0x2f

	// Small ints 0..9 and -6..-1 encoded entirely in the tag.
	tagSmallIntBase = 0x30 // 0x30..0x39
	tagSmallNegTop  = 0x40 // 0x3a..0x3f hold -6..-1 as 0x40 - magnitude

	// Short string of length 0..127: tag 0x40 + len, payload follows.
	tagStringShortBase = 0x40 // 0x40..0xbf
)

// ValueType identifies the kind of value a Slice holds.
type ValueType int

const (
	// None means no value: an empty slice or an unassigned tag.
	None ValueType = iota
	Null
	Bool
	Double
	Int
	UInt
	SmallInt
	String
	Array
	Object
)

var typeNames = map[ValueType]string{
	None:     "None",
	Null:     "Null",
	Bool:     "Bool",
	Double:   "Double",
	Int:      "Int",
	UInt:     "UInt",
	SmallInt: "SmallInt",
	String:   "String",
	Array:    "Array",
	Object:   "Object",
}

func (vt ValueType) String() string {
	if s, ok := typeNames[vt]; ok {
		return s
	}
	return "Unknown"
}

// typeForTag maps a leading byte to its ValueType.
func typeForTag(tag byte) ValueType {
	switch {
	case tag == tagArrayEmpty:
		return Array
	case tag >= tagArrayCompact1 && tag <= tagArrayIndexed8:
		return Array
	case tag == tagObjectEmpty:
		return Object
	case tag >= tagObjectSorted1 && tag <= tagObjectUnsorted8:
		return Object
	case tag == tagStringLong:
		return String
	case tag >= tagStringShortBase:
		return String
	case tag == tagNull:
		return Null
	case tag == tagFalse || tag == tagTrue:
		return Bool
	case tag == tagDouble:
		return Double
	case tag >= tagIntBase && tag < tagIntBase+8:
		return Int
	case tag >= tagUIntBase && tag < tagUIntBase+8:
		return UInt
	case tag >= tagSmallIntBase && tag < tagStringShortBase:
		return SmallInt
	default:
		return None
	}
}

// widthForTag returns the header field width (1, 2, 4 or 8) encoded in
// a container tag, or -1 for tags without a width field.
func widthForTag(tag byte) int {
	switch {
	case tag >= tagArrayCompact1 && tag <= tagArrayCompact8:
		return 1 << (tag - tagArrayCompact1)
	case tag >= tagArrayIndexed1 && tag <= tagArrayIndexed8:
		return 1 << (tag - tagArrayIndexed1)
	case tag >= tagObjectSorted1 && tag <= tagObjectSorted8:
		return 1 << (tag - tagObjectSorted1)
	case tag >= tagObjectUnsorted1 && tag <= tagObjectUnsorted8:
		return 1 << (tag - tagObjectUnsorted1)
	default:
		return -1
	}
}

func isCompactArray(tag byte) bool {
	return tag >= tagArrayCompact1 && tag <= tagArrayCompact8
}

func isIndexedArray(tag byte) bool {
	return tag >= tagArrayIndexed1 && tag <= tagArrayIndexed8
}

func isSortedObject(tag byte) bool {
	return tag >= tagObjectSorted1 && tag <= tagObjectSorted8
}

func isUnsortedObject(tag byte) bool {
	return tag >= tagObjectUnsorted1 && tag <= tagObjectUnsorted8
}
