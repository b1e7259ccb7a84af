// Package team models the developer pool the scheduler assigns work to.
package team

import "strings"

// DefaultDevName is the developer injected when a team is empty.
const DefaultDevName = "Default Dev"

// Developer is one member of the pool. Name is the addressing key for
// bundle affinity.
type Developer struct {
	Name       string  `json:"name" yaml:"name"`
	Capacity   float64 `json:"capacity" yaml:"capacity"` // percent, 0-100
	Restricted bool    `json:"restricted" yaml:"restricted"`
}

// Pool is an ordered list of developers. Enumeration order is the
// tie-break order used by the scheduler.
type Pool struct {
	Developers []Developer

	defaulted bool // Developers holds only the injected default
}

// New builds a Pool, clamping capacities into [0, 100] and injecting a
// single full-time generalist when devs is empty.
func New(devs []Developer) *Pool {
	if len(devs) == 0 {
		return &Pool{Developers: []Developer{{Name: DefaultDevName, Capacity: 100}}, defaulted: true}
	}
	out := make([]Developer, len(devs))
	for i, d := range devs {
		if d.Capacity < 0 {
			d.Capacity = 0
		}
		if d.Capacity > 100 {
			d.Capacity = 100
		}
		out[i] = d
	}
	return &Pool{Developers: out}
}

// Len returns the number of developers.
func (p *Pool) Len() int {
	return len(p.Developers)
}

// Declared returns the number of developers the caller supplied. It is 0
// for a pool that only holds the injected default developer.
func (p *Pool) Declared() int {
	if p.defaulted {
		return 0
	}
	return len(p.Developers)
}

// Clone returns an independent copy of the pool.
func (p *Pool) Clone() *Pool {
	devs := make([]Developer, len(p.Developers))
	copy(devs, p.Developers)
	return &Pool{Developers: devs, defaulted: p.defaulted}
}

// Lookup returns the index of the developer whose trimmed name matches key
// case-insensitively, or -1.
func (p *Pool) Lookup(key string) int {
	key = NormalizeName(key)
	if key == "" {
		return -1
	}
	for i, d := range p.Developers {
		if NormalizeName(d.Name) == key {
			return i
		}
	}
	return -1
}

// Generalists returns the indices of non-restricted developers in order.
func (p *Pool) Generalists() []int {
	var out []int
	for i, d := range p.Developers {
		if !d.Restricted {
			out = append(out, i)
		}
	}
	return out
}

// NormalizeName trims and lower-cases a developer name or bundle tag.
func NormalizeName(s string) string {
	return strings.ToLower(strings.TrimSpace(s))
}
