// Package symtab implements the flat symbol table used by the resolver
// to assign stack-variable register addresses.
package symtab

import "lumenscript/ast"

// Entry is one symbol table record: the variable's storage type and its
// assigned register address.
type Entry struct {
	StorageType ast.TypeId
	Address     uint32
}

// Table is an in-order mapping from variable name to Entry. It hands out
// sequential addresses and has no nested scoping — this version of the
// core compiles one flat compilation unit at a time.
type Table struct {
	entries map[string]*Entry
	order   []string
}

// New returns an empty Table.
func New() *Table {
	return &Table{entries: make(map[string]*Entry)}
}

// CreateVariable reserves the next sequential address for name and
// returns the new entry. The caller is responsible for rejecting
// redeclaration before calling this — the table itself assumes names are
// unique.
func (t *Table) CreateVariable(name string, storageType ast.TypeId) *Entry {
	entry := &Entry{StorageType: storageType, Address: uint32(len(t.order))}
	t.entries[name] = entry
	t.order = append(t.order, name)
	return entry
}

// Find looks up name, returning (entry, true) if it has been declared.
func (t *Table) Find(name string) (*Entry, bool) {
	entry, ok := t.entries[name]
	return entry, ok
}

// Count returns the number of declared symbols.
func (t *Table) Count() int {
	return len(t.order)
}
