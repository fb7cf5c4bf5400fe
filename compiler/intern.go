package compiler

import "hash/fnv"

// Interner deduplicates string objects by (length, hash, bytes), so
// content equality implies pointer identity equality.
type Interner struct {
	strings map[string]*StringObject
}

// NewInterner returns an empty Interner.
func NewInterner() *Interner {
	return &Interner{strings: make(map[string]*StringObject)}
}

// Intern returns the canonical *StringObject for text, creating it on
// first use.
func (in *Interner) Intern(text string) *StringObject {
	if obj, ok := in.strings[text]; ok {
		return obj
	}
	h := fnv.New64a()
	h.Write([]byte(text))
	obj := &StringObject{Text: text, Length: len(text), Hash: h.Sum64()}
	in.strings[text] = obj
	return obj
}
