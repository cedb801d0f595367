package velocypack

import (
	"bytes"
	"encoding/binary"
	"math"
	"sort"
)

type containerKind byte

const (
	arrayContainer containerKind = iota
	objectContainer
)

// containerFrame records one open container: the buffer offset of its
// tag byte and the start offsets of its children, relative to base.
// For objects the offsets point at the keys.
type containerFrame struct {
	base    int
	kind    containerKind
	offsets []int
}

// Builder is an append-only VPack encoder.  Values are added in document
// order into a single flat buffer; size-dependent container headers are
// resolved when the container is closed.  A Builder is not safe for
// concurrent use.
type Builder struct {
	buf      []byte
	stack    []containerFrame
	sortKeys bool
}

// NewBuilder returns an empty Builder.  Object keys are sorted by
// default; see SortAttributeNames.
func NewBuilder() *Builder {
	return &Builder{sortKeys: true}
}

// SortAttributeNames toggles sorting of object keys at container close.
// The default is true.
func (b *Builder) SortAttributeNames(on bool) {
	b.sortKeys = on
}

// Clear resets the Builder for reuse, keeping the allocated buffer.
func (b *Builder) Clear() {
	b.buf = b.buf[:0]
	b.stack = b.stack[:0]
}

// Bytes returns the encoded VPack sequence.  The slice aliases the
// Builder's buffer and is only valid until the next mutating call.
func (b *Builder) Bytes() []byte {
	return b.buf
}

// Size returns the current write position.
func (b *Builder) Size() int {
	return len(b.buf)
}

// reserveSpace guarantees capacity for n more bytes without changing the
// logical length.  Growth is by doubling, so appends stay amortized O(1).
func (b *Builder) reserveSpace(n int) {
	need := len(b.buf) + n
	if need <= cap(b.buf) {
		return
	}
	newCap := 2 * cap(b.buf)
	if newCap < 64 {
		newCap = 64
	}
	for newCap < need {
		newCap *= 2
	}
	grown := make([]byte, len(b.buf), newCap)
	copy(grown, b.buf)
	b.buf = grown
}

func (b *Builder) appendByte(c byte) {
	b.buf = append(b.buf, c)
}

// AddNull appends a null value.
func (b *Builder) AddNull() {
	b.appendByte(tagNull)
}

// AddTrue appends boolean true.
func (b *Builder) AddTrue() {
	b.appendByte(tagTrue)
}

// AddFalse appends boolean false.
func (b *Builder) AddFalse() {
	b.appendByte(tagFalse)
}

// AddBool appends a boolean value.
func (b *Builder) AddBool(v bool) {
	if v {
		b.AddTrue()
	} else {
		b.AddFalse()
	}
}

// AddDouble appends v as an IEEE 754 double, 8 bytes little-endian.
func (b *Builder) AddDouble(v float64) {
	b.reserveSpace(9)
	b.appendByte(tagDouble)
	var x [8]byte
	binary.LittleEndian.PutUint64(x[:], math.Float64bits(v))
	b.buf = append(b.buf, x[:]...)
}

// AddUInt appends an unsigned integer in the smallest encoding that
// holds it: a one-byte small-int tag for 0..9, otherwise a tagged
// little-endian value of 1-8 bytes.
func (b *Builder) AddUInt(v uint64) {
	if v <= 9 {
		b.appendByte(tagSmallIntBase + byte(v))
		return
	}
	n := uintByteLength(v)
	b.reserveSpace(1 + n)
	b.appendByte(tagUIntBase + byte(n-1))
	for i := 0; i < n; i++ {
		b.appendByte(byte(v))
		v >>= 8
	}
}

// AddNegInt appends a negative integer given as a magnitude.  Magnitudes
// 1..6 use the small-int tags, larger ones a two's-complement encoding
// of 1-8 bytes.  A magnitude above 1<<63 cannot be represented as a
// signed 64-bit value and falls back to a double.
func (b *Builder) AddNegInt(magnitude uint64) {
	if magnitude == 0 {
		b.appendByte(tagSmallIntBase)
		return
	}
	if magnitude <= 6 {
		b.appendByte(tagSmallNegTop - byte(magnitude))
		return
	}
	if magnitude > 1<<63 {
		b.AddDouble(-float64(magnitude))
		return
	}
	v := -int64(magnitude-1) - 1
	n := intByteLength(v)
	b.reserveSpace(1 + n)
	b.appendByte(tagIntBase + byte(n-1))
	u := uint64(v)
	for i := 0; i < n; i++ {
		b.appendByte(byte(u))
		u >>= 8
	}
}

// AddInt appends a signed integer.
func (b *Builder) AddInt(v int64) {
	if v >= 0 {
		b.AddUInt(uint64(v))
		return
	}
	b.AddNegInt(uint64(-(v + 1)) + 1)
}

// AddString appends a string value, choosing the short or long form by
// byte length.
func (b *Builder) AddString(s string) {
	if len(s) <= 127 {
		b.reserveSpace(1 + len(s))
		b.appendByte(tagStringShortBase + byte(len(s)))
		b.buf = append(b.buf, s...)
		return
	}
	b.reserveSpace(9 + len(s))
	b.appendByte(tagStringLong)
	var x [8]byte
	binary.LittleEndian.PutUint64(x[:], uint64(len(s)))
	b.buf = append(b.buf, x[:]...)
	b.buf = append(b.buf, s...)
}

// AddArray opens an array.  The final header is written by Close.
func (b *Builder) AddArray() {
	b.openContainer(arrayContainer)
}

// AddObject opens an object.  The final header is written by Close.
func (b *Builder) AddObject() {
	b.openContainer(objectContainer)
}

func (b *Builder) openContainer(kind containerKind) {
	b.stack = append(b.stack, containerFrame{
		base: len(b.buf),
		kind: kind,
	})
	b.appendByte(tagNone)
}

// ReportAdd records the start offset of the next child of the innermost
// open container.  base must be the container's start offset as returned
// by Size before AddArray/AddObject.  For objects, call it once per
// key/value pair, before the key.  It panics with a *BuilderError when
// no container is open or base does not match.
func (b *Builder) ReportAdd(base int) {
	if len(b.stack) == 0 {
		panic(&BuilderError{msg: "ReportAdd without open container"})
	}
	frame := &b.stack[len(b.stack)-1]
	if frame.base != base {
		panic(&BuilderError{msg: "ReportAdd base does not match open container"})
	}
	frame.offsets = append(frame.offsets, len(b.buf)-base)
}

// Close finalizes the innermost open container: it picks the header
// width, shifts the children into place, writes the header and, when
// required, appends the index table.
func (b *Builder) Close() error {
	if len(b.stack) == 0 {
		return &BuilderError{msg: "Close without open container"}
	}
	frame := b.stack[len(b.stack)-1]
	b.stack = b.stack[:len(b.stack)-1]

	n := len(frame.offsets)
	if n == 0 {
		if frame.kind == arrayContainer {
			b.buf[frame.base] = tagArrayEmpty
		} else {
			b.buf[frame.base] = tagObjectEmpty
		}
		return nil
	}

	childrenSize := len(b.buf) - frame.base - 1
	compact := frame.kind == arrayContainer && b.childrenEqualSize(frame)
	w, _ := containerWidth(childrenSize, n, !compact)

	// Make room for the final header between the tag byte and the first
	// child.  Children were emitted at base+1; they move to base+1+extra.
	extra := headerExtra(w, !compact)
	tableSize := 0
	if !compact {
		tableSize = n * w
	}
	b.reserveSpace(extra + tableSize)
	b.buf = b.buf[:len(b.buf)+extra]
	copy(b.buf[frame.base+1+extra:], b.buf[frame.base+1:frame.base+1+childrenSize])

	total := 1 + extra + childrenSize + tableSize
	b.buf[frame.base] = containerTag(frame.kind, w, compact, b.sortKeys)
	putUintLE(b.buf[frame.base+1:], uint64(total), w)
	if !compact {
		putUintLE(b.buf[frame.base+1+w:], uint64(n), w)
	}

	if compact {
		return nil
	}

	// Index entries are offsets from the container base; account for the
	// header shift.
	for i := range frame.offsets {
		frame.offsets[i] += extra
	}
	if frame.kind == objectContainer && b.sortKeys && n > 1 {
		b.sortObjectIndex(frame.base, frame.offsets)
	}
	for _, off := range frame.offsets {
		var x [8]byte
		putUintLE(x[:], uint64(off), w)
		b.buf = append(b.buf, x[:w]...)
	}
	return nil
}

// childrenEqualSize reports whether all children of an open array frame
// occupy the same number of bytes.
func (b *Builder) childrenEqualSize(frame containerFrame) bool {
	n := len(frame.offsets)
	if n == 1 {
		return true
	}
	first := frame.offsets[1] - frame.offsets[0]
	for i := 1; i < n-1; i++ {
		if frame.offsets[i+1]-frame.offsets[i] != first {
			return false
		}
	}
	last := (len(b.buf) - frame.base) - frame.offsets[n-1]
	return last == first
}

// sortObjectIndex orders index entries by the byte order of the keys
// they point at.  Offsets are relative to base and already final.
func (b *Builder) sortObjectIndex(base int, offsets []int) {
	sort.Sort(&objectIndexSorter{buf: b.buf, base: base, offsets: offsets})
}

type objectIndexSorter struct {
	buf     []byte
	base    int
	offsets []int
}

func (s *objectIndexSorter) Len() int { return len(s.offsets) }

func (s *objectIndexSorter) Swap(i, j int) {
	s.offsets[i], s.offsets[j] = s.offsets[j], s.offsets[i]
}

func (s *objectIndexSorter) Less(i, j int) bool {
	return bytes.Compare(keyBytesAt(s.buf, s.base+s.offsets[i]),
		keyBytesAt(s.buf, s.base+s.offsets[j])) < 0
}

// keyBytesAt returns the payload of the string value starting at pos.
func keyBytesAt(buf []byte, pos int) []byte {
	tag := buf[pos]
	if tag >= tagStringShortBase {
		l := int(tag - tagStringShortBase)
		return buf[pos+1 : pos+1+l]
	}
	// long string
	l := int(binary.LittleEndian.Uint64(buf[pos+1 : pos+9]))
	return buf[pos+9 : pos+9+l]
}

// containerTag picks the final header byte for a closed container.
func containerTag(kind containerKind, w int, compact, sorted bool) byte {
	idx := byte(0)
	switch w {
	case 1:
		idx = 0
	case 2:
		idx = 1
	case 4:
		idx = 2
	case 8:
		idx = 3
	}
	if kind == arrayContainer {
		if compact {
			return tagArrayCompact1 + idx
		}
		return tagArrayIndexed1 + idx
	}
	if sorted {
		return tagObjectSorted1 + idx
	}
	return tagObjectUnsorted1 + idx
}

// headerExtra is the number of header bytes beyond the tag: the byte
// length field, plus the item count when an index table follows.
func headerExtra(w int, indexed bool) int {
	if indexed {
		return 2 * w
	}
	return w
}

// containerWidth picks the smallest field width (1, 2, 4 or 8) such
// that the container's total byte length and, for indexed containers,
// its item count fit.  It returns the width and the resulting total.
func containerWidth(childrenSize, nrItems int, indexed bool) (int, int) {
	for _, w := range [4]int{1, 2, 4, 8} {
		total := 1 + headerExtra(w, indexed) + childrenSize
		if indexed {
			total += nrItems * w
		}
		if w == 8 || (uint64(total) <= maxUintForWidth(w) && uint64(nrItems) <= maxUintForWidth(w)) {
			return w, total
		}
	}
	// unreachable, w == 8 always fits
	return 8, 0
}

func maxUintForWidth(w int) uint64 {
	return 1<<(8*uint(w)) - 1
}

func putUintLE(dst []byte, v uint64, w int) {
	for i := 0; i < w; i++ {
		dst[i] = byte(v)
		v >>= 8
	}
}

func uintByteLength(v uint64) int {
	n := 1
	for v > 0xff {
		v >>= 8
		n++
	}
	return n
}

func intByteLength(v int64) int {
	for n := 1; n < 8; n++ {
		shift := uint(8*n - 1)
		if v >= -(int64(1)<<shift) && v < int64(1)<<shift {
			return n
		}
	}
	return 8
}
