package httptracker

import "strings"

// Params is an ordered query parameter set. Adding the same key more
// than once keeps every value; Encode emits one key=value pair per
// value, in insertion order, instead of joining them.
type Params struct {
	keys   []string
	values map[string][]string
}

func NewParams() *Params {
	return &Params{values: make(map[string][]string)}
}

func (p *Params) Add(key, value string) {
	if _, ok := p.values[key]; !ok {
		p.keys = append(p.keys, key)
	}
	p.values[key] = append(p.values[key], value)
}

// Len is the total number of key=value pairs Encode will emit.
func (p *Params) Len() int {
	n := 0
	for _, vs := range p.values {
		n += len(vs)
	}
	return n
}

// Encode serializes the set. Values are appended verbatim: binary
// parameters such as info_hash must already be percent-escaped by the
// producer.
func (p *Params) Encode() string {
	var sb strings.Builder
	for _, k := range p.keys {
		for _, v := range p.values[k] {
			if sb.Len() > 0 {
				sb.WriteByte('&')
			}
			sb.WriteString(k)
			sb.WriteByte('=')
			sb.WriteString(v)
		}
	}
	return sb.String()
}
