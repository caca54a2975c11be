package resolve

// KeyMap maps natural keys to warehouse surrogate keys. Several natural keys
// may map to one surrogate key. A KeyMap is built by a single resolver and
// read only after that resolver is done, so it needs no locking.
type KeyMap struct {
	m map[int64]int64
}

// NewKeyMap returns an empty map.
func NewKeyMap() *KeyMap { return &KeyMap{m: make(map[int64]int64)} }

// Set records nat -> id, replacing any previous mapping.
func (k *KeyMap) Set(nat, id int64) { k.m[nat] = id }

// Get returns the surrogate key of nat.
func (k *KeyMap) Get(nat int64) (int64, bool) {
	id, ok := k.m[nat]
	return id, ok
}

// Len reports the number of natural keys mapped.
func (k *KeyMap) Len() int { return len(k.m) }

// Surrogates reports the number of distinct surrogate keys.
func (k *KeyMap) Surrogates() int {
	seen := make(map[int64]struct{}, len(k.m))
	for _, id := range k.m {
		seen[id] = struct{}{}
	}
	return len(seen)
}
