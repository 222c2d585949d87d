package kv

// Staged buffers writes made inside a transaction so backends can apply them
// in one step on commit and drop them on rollback.
type Staged struct {
	writes map[string]map[string][]byte
	order  []stagedKey
}

type stagedKey struct {
	partition string
	key       string
}

// NewStaged returns an empty write buffer.
func NewStaged() *Staged {
	return &Staged{writes: make(map[string]map[string][]byte)}
}

// Put buffers a write. The value is copied.
func (s *Staged) Put(partition, key string, value []byte) {
	p, ok := s.writes[partition]
	if !ok {
		p = make(map[string][]byte)
		s.writes[partition] = p
	}
	if _, seen := p[key]; !seen {
		s.order = append(s.order, stagedKey{partition: partition, key: key})
	}
	p[key] = append([]byte(nil), value...)
}

// Get returns a buffered write, if any.
func (s *Staged) Get(partition, key string) ([]byte, bool) {
	v, ok := s.writes[partition][key]
	if !ok {
		return nil, false
	}
	return append([]byte(nil), v...), true
}

// Len reports the number of distinct buffered keys.
func (s *Staged) Len() int { return len(s.order) }

// Each visits buffered writes in first-write order.
func (s *Staged) Each(fn func(partition, key string, value []byte) error) error {
	for _, k := range s.order {
		if err := fn(k.partition, k.key, s.writes[k.partition][k.key]); err != nil {
			return err
		}
	}
	return nil
}
