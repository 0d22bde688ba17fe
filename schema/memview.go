package schema

import (
	"sort"
	"strings"
)

// memSep mirrors the composite-key separator of the ledger store.
const memSep = "\x00"

func flatten(key Key) string {
	parts := append([]string{key.Family}, key.Attrs...)
	return memSep + strings.Join(parts, memSep) + memSep
}

// MemStore is an in-memory substitute for the ledger store, used by
// tests. It implements Fork directly; Fork() yields an overlay whose
// writes become visible to the base only on Commit, mirroring the
// all-or-nothing write set of a real transaction.
type MemStore struct {
	data map[string][]byte
}

func NewMemStore() *MemStore {
	return &MemStore{data: make(map[string][]byte)}
}

func (s *MemStore) Get(key Key) ([]byte, error) {
	v, ok := s.data[flatten(key)]
	if !ok {
		return nil, nil
	}
	return v, nil
}

func (s *MemStore) List(family string, parentAttrs ...string) ([]Entry, error) {
	prefix := flatten(NewKey(family, parentAttrs...))
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		attrs := strings.Split(strings.Trim(k, memSep), memSep)
		entries = append(entries, Entry{Attrs: attrs[1:], Value: s.data[k]})
	}
	return entries, nil
}

func (s *MemStore) Put(key Key, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	s.data[flatten(key)] = cp
	return nil
}

func (s *MemStore) Delete(key Key) error {
	delete(s.data, flatten(key))
	return nil
}

// Fork opens an uncommitted overlay over the store.
func (s *MemStore) Fork() *MemFork {
	return &MemFork{base: s, pending: make(map[string]memWrite)}
}

type memWrite struct {
	value   []byte
	deleted bool
}

// MemFork buffers writes over a MemStore. Reads see the overlay first.
type MemFork struct {
	base    *MemStore
	pending map[string]memWrite
}

func (f *MemFork) Get(key Key) ([]byte, error) {
	if w, ok := f.pending[flatten(key)]; ok {
		if w.deleted {
			return nil, nil
		}
		return w.value, nil
	}
	return f.base.Get(key)
}

func (f *MemFork) List(family string, parentAttrs ...string) ([]Entry, error) {
	prefix := flatten(NewKey(family, parentAttrs...))
	merged := make(map[string][]byte)
	for k, v := range f.base.data {
		if strings.HasPrefix(k, prefix) {
			merged[k] = v
		}
	}
	for k, w := range f.pending {
		if !strings.HasPrefix(k, prefix) {
			continue
		}
		if w.deleted {
			delete(merged, k)
		} else {
			merged[k] = w.value
		}
	}

	keys := make([]string, 0, len(merged))
	for k := range merged {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	entries := make([]Entry, 0, len(keys))
	for _, k := range keys {
		attrs := strings.Split(strings.Trim(k, memSep), memSep)
		entries = append(entries, Entry{Attrs: attrs[1:], Value: merged[k]})
	}
	return entries, nil
}

func (f *MemFork) Put(key Key, value []byte) error {
	cp := make([]byte, len(value))
	copy(cp, value)
	f.pending[flatten(key)] = memWrite{value: cp}
	return nil
}

func (f *MemFork) Delete(key Key) error {
	f.pending[flatten(key)] = memWrite{deleted: true}
	return nil
}

// Commit applies the buffered writes to the base store.
func (f *MemFork) Commit() {
	for k, w := range f.pending {
		if w.deleted {
			delete(f.base.data, k)
		} else {
			f.base.data[k] = w.value
		}
	}
	f.pending = make(map[string]memWrite)
}

// Discard drops the buffered writes.
func (f *MemFork) Discard() {
	f.pending = make(map[string]memWrite)
}
