package bytecode

import (
	"fmt"
	"math"

	"github.com/deepnoodle-ai/jlower/errors"
)

// ConstantTag identifies the kind of a constant pool entry.
type ConstantTag byte

const (
	TagUtf8               ConstantTag = 1
	TagInteger            ConstantTag = 3
	TagClass              ConstantTag = 7
	TagString             ConstantTag = 8
	TagFieldref           ConstantTag = 9
	TagMethodref          ConstantTag = 10
	TagInterfaceMethodref ConstantTag = 11
	TagNameAndType        ConstantTag = 12
)

var tagNames = map[ConstantTag]string{
	TagUtf8:               "Utf8",
	TagInteger:            "Integer",
	TagClass:              "Class",
	TagString:             "String",
	TagFieldref:           "Fieldref",
	TagMethodref:          "Methodref",
	TagInterfaceMethodref: "InterfaceMethodref",
	TagNameAndType:        "NameAndType",
}

func (t ConstantTag) String() string {
	if name, ok := tagNames[t]; ok {
		return name
	}
	return fmt.Sprintf("Tag(%d)", byte(t))
}

// Constant is one constant pool entry. Which fields are meaningful depends
// on the tag: Utf8 uses Text, Integer uses Int, and the reference kinds use
// Ref1 and Ref2 as indexes of other entries.
type Constant struct {
	Tag  ConstantTag
	Text string
	Int  int32
	Ref1 uint16
	Ref2 uint16
}

// ConstantPool is a deduplicating, 1-based constant pool shared by the
// methods of one class.
//
// Once the pool is full, adding a new entry returns index 0 and records
// errors.ErrPoolOverflow, which Err reports until the pool is truncated.
type ConstantPool struct {
	entries []Constant
	index   map[Constant]uint16
	err     error
}

// NewConstantPool returns an empty pool.
func NewConstantPool() *ConstantPool {
	return &ConstantPool{index: map[Constant]uint16{}}
}

func (p *ConstantPool) add(c Constant) uint16 {
	if idx, ok := p.index[c]; ok {
		return idx
	}
	// constant_pool_count is a u2 holding len(entries)+1.
	if p.Count() >= math.MaxUint16 {
		p.err = errors.ErrPoolOverflow
		return 0
	}
	p.entries = append(p.entries, c)
	idx := uint16(len(p.entries))
	p.index[c] = idx
	return idx
}

// Utf8 returns the index of a Utf8 entry.
func (p *ConstantPool) Utf8(s string) uint16 {
	return p.add(Constant{Tag: TagUtf8, Text: s})
}

// Integer returns the index of an Integer entry.
func (p *ConstantPool) Integer(v int32) uint16 {
	return p.add(Constant{Tag: TagInteger, Int: v})
}

// Class returns the index of a Class entry for an internal class name.
func (p *ConstantPool) Class(name string) uint16 {
	return p.add(Constant{Tag: TagClass, Ref1: p.Utf8(name)})
}

// String returns the index of a String entry.
func (p *ConstantPool) String(s string) uint16 {
	return p.add(Constant{Tag: TagString, Ref1: p.Utf8(s)})
}

// NameAndType returns the index of a NameAndType entry.
func (p *ConstantPool) NameAndType(name, desc string) uint16 {
	return p.add(Constant{Tag: TagNameAndType, Ref1: p.Utf8(name), Ref2: p.Utf8(desc)})
}

// Fieldref returns the index of a Fieldref entry.
func (p *ConstantPool) Fieldref(owner, name, desc string) uint16 {
	return p.ref(TagFieldref, owner, name, desc)
}

// Methodref returns the index of a Methodref entry.
func (p *ConstantPool) Methodref(owner, name, desc string) uint16 {
	return p.ref(TagMethodref, owner, name, desc)
}

// InterfaceMethodref returns the index of an InterfaceMethodref entry.
func (p *ConstantPool) InterfaceMethodref(owner, name, desc string) uint16 {
	return p.ref(TagInterfaceMethodref, owner, name, desc)
}

func (p *ConstantPool) ref(tag ConstantTag, owner, name, desc string) uint16 {
	return p.add(Constant{Tag: tag, Ref1: p.Class(owner), Ref2: p.NameAndType(name, desc)})
}

// Err returns errors.ErrPoolOverflow if an entry did not fit.
func (p *ConstantPool) Err() error {
	return p.err
}

// Len returns the number of entries.
func (p *ConstantPool) Len() int {
	return len(p.entries)
}

// Truncate discards every entry after the first n, along with any
// recorded overflow. It undoes the additions of a method that failed to
// compile.
func (p *ConstantPool) Truncate(n int) {
	if n < 0 || n > len(p.entries) {
		return
	}
	for _, c := range p.entries[n:] {
		delete(p.index, c)
	}
	p.entries = p.entries[:n]
	p.err = nil
}

// Count returns the constant_pool_count value of the class file, which is
// one more than the number of entries.
func (p *ConstantPool) Count() int {
	return len(p.entries) + 1
}

// At returns the entry at a 1-based index.
func (p *ConstantPool) At(index uint16) (Constant, bool) {
	if index == 0 || int(index) > len(p.entries) {
		return Constant{}, false
	}
	return p.entries[index-1], true
}

// Describe renders an entry for disassembly, resolving references, for
// example "java/util/List.size:()I".
func (p *ConstantPool) Describe(index uint16) string {
	c, ok := p.At(index)
	if !ok {
		return fmt.Sprintf("#%d?", index)
	}
	switch c.Tag {
	case TagUtf8:
		return c.Text
	case TagInteger:
		return fmt.Sprintf("%d", c.Int)
	case TagClass:
		return p.Describe(c.Ref1)
	case TagString:
		return fmt.Sprintf("%q", p.Describe(c.Ref1))
	case TagNameAndType:
		return p.Describe(c.Ref1) + ":" + p.Describe(c.Ref2)
	case TagFieldref, TagMethodref, TagInterfaceMethodref:
		return p.Describe(c.Ref1) + "." + p.Describe(c.Ref2)
	}
	return c.Tag.String()
}
