package velocypack

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"
)

// Slice is a read-only view of one VPack value.  The zero-length Slice
// has type None.  Slices index into the underlying buffer without
// copying; sub-slices returned by At, ValueAt and Get alias it.
type Slice []byte

// Type returns the kind of value the Slice holds.
func (s Slice) Type() ValueType {
	if len(s) == 0 {
		return None
	}
	return typeForTag(s[0])
}

func (s Slice) IsNull() bool   { return s.Type() == Null }
func (s Slice) IsBool() bool   { return s.Type() == Bool }
func (s Slice) IsString() bool { return s.Type() == String }
func (s Slice) IsArray() bool  { return s.Type() == Array }
func (s Slice) IsObject() bool { return s.Type() == Object }

func (s Slice) IsTrue() bool  { return len(s) > 0 && s[0] == tagTrue }
func (s Slice) IsFalse() bool { return len(s) > 0 && s[0] == tagFalse }

// IsNumber reports whether the Slice holds a double or any integer form.
func (s Slice) IsNumber() bool {
	switch s.Type() {
	case Double, Int, UInt, SmallInt:
		return true
	}
	return false
}

// ByteSize returns the total encoded length of the value, or 0 when the
// leading tag is unknown.
func (s Slice) ByteSize() int {
	if len(s) == 0 {
		return 0
	}
	tag := s[0]
	switch {
	case tag == tagArrayEmpty || tag == tagObjectEmpty:
		return 1
	case widthForTag(tag) > 0:
		w := widthForTag(tag)
		return int(readUintLE(s[1:], w))
	case tag == tagStringLong:
		return 9 + int(binary.LittleEndian.Uint64(s[1:9]))
	case tag == tagNull || tag == tagFalse || tag == tagTrue:
		return 1
	case tag == tagDouble:
		return 9
	case tag >= tagIntBase && tag < tagIntBase+8:
		return 1 + int(tag-tagIntBase) + 1
	case tag >= tagUIntBase && tag < tagUIntBase+8:
		return 1 + int(tag-tagUIntBase) + 1
	case tag >= tagSmallIntBase && tag < tagStringShortBase:
		return 1
	case tag >= tagStringShortBase:
		return 1 + int(tag-tagStringShortBase)
	default:
		return 0
	}
}

// GetBool returns the boolean value.
func (s Slice) GetBool() (bool, error) {
	switch {
	case s.IsTrue():
		return true, nil
	case s.IsFalse():
		return false, nil
	}
	return false, &SliceError{msg: "not a Bool"}
}

// GetDouble returns the numeric value as a float64.  Integer forms are
// converted.
func (s Slice) GetDouble() (float64, error) {
	switch s.Type() {
	case Double:
		return math.Float64frombits(binary.LittleEndian.Uint64(s[1:9])), nil
	case Int:
		v, _ := s.GetInt()
		return float64(v), nil
	case UInt:
		v, _ := s.GetUInt()
		return float64(v), nil
	case SmallInt:
		v, _ := s.GetInt()
		return float64(v), nil
	}
	return 0, &SliceError{msg: "not a number"}
}

// GetInt returns the value as a signed integer.  Unsigned values above
// the int64 range are an error.
func (s Slice) GetInt() (int64, error) {
	if len(s) == 0 {
		return 0, &SliceError{msg: "not an Int"}
	}
	tag := s[0]
	switch {
	case tag >= tagIntBase && tag < tagIntBase+8:
		n := int(tag-tagIntBase) + 1
		u := readUintLE(s[1:], n)
		// sign-extend
		shift := uint(64 - 8*n)
		return int64(u<<shift) >> shift, nil
	case tag >= tagUIntBase && tag < tagUIntBase+8:
		u, err := s.GetUInt()
		if err != nil {
			return 0, err
		}
		if u > math.MaxInt64 {
			return 0, &SliceError{msg: "UInt value out of Int range"}
		}
		return int64(u), nil
	case tag >= tagSmallIntBase && tag < tagSmallNegTop-6:
		return int64(tag - tagSmallIntBase), nil
	case tag >= tagSmallNegTop-6 && tag < tagSmallNegTop:
		return -int64(tagSmallNegTop - tag), nil
	}
	return 0, &SliceError{msg: "not an Int"}
}

// GetUInt returns the value as an unsigned integer.  Negative values
// are an error.
func (s Slice) GetUInt() (uint64, error) {
	if len(s) == 0 {
		return 0, &SliceError{msg: "not a UInt"}
	}
	tag := s[0]
	switch {
	case tag >= tagUIntBase && tag < tagUIntBase+8:
		n := int(tag-tagUIntBase) + 1
		return readUintLE(s[1:], n), nil
	case tag >= tagSmallIntBase && tag < tagSmallNegTop-6:
		return uint64(tag - tagSmallIntBase), nil
	case tag >= tagIntBase && tag < tagIntBase+8:
		v, _ := s.GetInt()
		if v < 0 {
			return 0, &SliceError{msg: "negative Int has no UInt value"}
		}
		return uint64(v), nil
	case tag >= tagSmallNegTop-6 && tag < tagSmallNegTop:
		return 0, &SliceError{msg: "negative Int has no UInt value"}
	}
	return 0, &SliceError{msg: "not a UInt"}
}

// GetStringBytes returns the string payload without copying.
func (s Slice) GetStringBytes() ([]byte, error) {
	if len(s) == 0 {
		return nil, &SliceError{msg: "not a String"}
	}
	tag := s[0]
	switch {
	case tag >= tagStringShortBase:
		l := int(tag - tagStringShortBase)
		return s[1 : 1+l], nil
	case tag == tagStringLong:
		l := int(binary.LittleEndian.Uint64(s[1:9]))
		return s[9 : 9+l], nil
	}
	return nil, &SliceError{msg: "not a String"}
}

// GetString returns the string payload.  Strings may contain NUL bytes
// when the source JSON used a \u0000 escape.
func (s Slice) GetString() (string, error) {
	b, err := s.GetStringBytes()
	if err != nil {
		return "", err
	}
	return string(b), nil
}

// Length returns the number of children of an array or object.
func (s Slice) Length() (int, error) {
	if len(s) == 0 {
		return 0, &SliceError{msg: "not a container"}
	}
	tag := s[0]
	switch {
	case tag == tagArrayEmpty || tag == tagObjectEmpty:
		return 0, nil
	case isCompactArray(tag):
		w := widthForTag(tag)
		total := int(readUintLE(s[1:], w))
		first := Slice(s[1+w:])
		childSize := first.ByteSize()
		if childSize == 0 {
			return 0, &SliceError{msg: "malformed compact array"}
		}
		return (total - 1 - w) / childSize, nil
	case isIndexedArray(tag) || isSortedObject(tag) || isUnsortedObject(tag):
		w := widthForTag(tag)
		return int(readUintLE(s[1+w:], w)), nil
	}
	return 0, &SliceError{msg: "not a container"}
}

// At returns the i-th element of an array.
func (s Slice) At(i int) (Slice, error) {
	if len(s) == 0 || !s.IsArray() {
		return nil, &SliceError{msg: "not an Array"}
	}
	n, err := s.Length()
	if err != nil {
		return nil, err
	}
	if i < 0 || i >= n {
		return nil, &SliceError{msg: "index out of bounds"}
	}
	tag := s[0]
	w := widthForTag(tag)
	if isCompactArray(tag) {
		childSize := Slice(s[1+w:]).ByteSize()
		return s[1+w+i*childSize:], nil
	}
	off := s.indexEntry(i, n, w)
	return s[off:], nil
}

// KeyAt returns the key of the i-th entry of an object, in index-table
// order.
func (s Slice) KeyAt(i int) (Slice, error) {
	off, err := s.keyOffset(i)
	if err != nil {
		return nil, err
	}
	return s[off:], nil
}

// ValueAt returns the value of the i-th entry of an object, in
// index-table order.
func (s Slice) ValueAt(i int) (Slice, error) {
	off, err := s.keyOffset(i)
	if err != nil {
		return nil, err
	}
	key := Slice(s[off:])
	return s[off+key.ByteSize():], nil
}

// Get looks up an object key and returns its value, or a None Slice
// when the key is absent.  Sorted objects use binary search over the
// index table, unsorted ones a linear scan.
func (s Slice) Get(key string) (Slice, error) {
	if len(s) == 0 || !s.IsObject() {
		return nil, &SliceError{msg: "not an Object"}
	}
	n, err := s.Length()
	if err != nil {
		return nil, err
	}
	if n == 0 {
		return nil, nil
	}
	want := []byte(key)
	if isSortedObject(s[0]) {
		i := sort.Search(n, func(i int) bool {
			return bytes.Compare(s.keyBytesByIndex(i), want) >= 0
		})
		if i < n && bytes.Equal(s.keyBytesByIndex(i), want) {
			return s.ValueAt(i)
		}
		return nil, nil
	}
	for i := 0; i < n; i++ {
		if bytes.Equal(s.keyBytesByIndex(i), want) {
			return s.ValueAt(i)
		}
	}
	return nil, nil
}

func (s Slice) keyOffset(i int) (int, error) {
	if len(s) == 0 || !s.IsObject() {
		return 0, &SliceError{msg: "not an Object"}
	}
	n, err := s.Length()
	if err != nil {
		return 0, err
	}
	if i < 0 || i >= n {
		return 0, &SliceError{msg: "index out of bounds"}
	}
	w := widthForTag(s[0])
	return s.indexEntry(i, n, w), nil
}

func (s Slice) keyBytesByIndex(i int) []byte {
	n, _ := s.Length()
	w := widthForTag(s[0])
	return keyBytesAt(s, s.indexEntry(i, n, w))
}

// indexEntry reads the i-th index-table entry of an indexed container.
// The table sits at the end of the container.
func (s Slice) indexEntry(i, n, w int) int {
	total := int(readUintLE(s[1:], w))
	tableStart := total - n*w
	return int(readUintLE(s[tableStart+i*w:], w))
}

func readUintLE(src []byte, w int) uint64 {
	var v uint64
	for i := w - 1; i >= 0; i-- {
		v = v<<8 | uint64(src[i])
	}
	return v
}
