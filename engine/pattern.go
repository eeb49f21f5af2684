// SPDX-License-Identifier: EPL-2.0

package engine

import "sync"

// Pattern is a step sequencer grid: bank0 x bank1 banks of length steps.
type Pattern struct {
	mu sync.Mutex

	bank0, bank1, length int
	bits                 [][]uint64
}

func NewPattern(bank0, bank1, length int) *Pattern {
	p := &Pattern{}
	p.SetDim(bank0, bank1, length)

	return p
}

// Dim returns the bank and step dimensions.
func (p *Pattern) Dim() (bank0, bank1, length int) {
	p.mu.Lock()
	defer p.mu.Unlock()

	return p.bank0, p.bank1, p.length
}

// SetDim resizes the grid keeping the steps that still fit.
func (p *Pattern) SetDim(bank0, bank1, length int) {
	bank0, bank1, length = max(bank0, 0), max(bank1, 0), max(length, 0)
	words := (length + 63) / 64

	p.mu.Lock()
	defer p.mu.Unlock()

	bits := make([][]uint64, bank0*bank1)
	for i := range bank0 {
		for j := range bank1 {
			row := make([]uint64, words)
			if i < p.bank0 && j < p.bank1 {
				copy(row, p.bits[i*p.bank1+j])
				if rem := length % 64; rem != 0 && words > 0 {
					row[words-1] &= 1<<rem - 1
				}
			}
			bits[i*bank1+j] = row
		}
	}

	p.bank0, p.bank1, p.length = bank0, bank1, length
	p.bits = bits
}

func (p *Pattern) index(i, j, bit int) (row, word int, mask uint64, ok bool) {
	if i < 0 || i >= p.bank0 || j < 0 || j >= p.bank1 || bit < 0 || bit >= p.length {
		return 0, 0, 0, false
	}

	return i*p.bank1 + j, bit / 64, 1 << (bit % 64), true
}

// IsOn reports whether step bit of bank (i, j) is set.
func (p *Pattern) IsOn(i, j, bit int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	row, word, mask, ok := p.index(i, j, bit)
	if !ok {
		return false
	}

	return p.bits[row][word]&mask != 0
}

// Toggle flips step bit of bank (i, j) and returns its new state.
func (p *Pattern) Toggle(i, j, bit int) bool {
	p.mu.Lock()
	defer p.mu.Unlock()

	row, word, mask, ok := p.index(i, j, bit)
	if !ok {
		return false
	}

	p.bits[row][word] ^= mask

	return p.bits[row][word]&mask != 0
}

// Steps returns the set steps of bank (i, j) in ascending order.
func (p *Pattern) Steps(i, j int) []int {
	p.mu.Lock()
	defer p.mu.Unlock()

	var out []int
	for bit := range p.length {
		if row, word, mask, ok := p.index(i, j, bit); ok && p.bits[row][word]&mask != 0 {
			out = append(out, bit)
		}
	}

	return out
}
