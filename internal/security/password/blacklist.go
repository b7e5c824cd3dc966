package password

import (
	"bufio"
	"os"
	"path/filepath"
	"strings"
	"sync"
)

// Blacklist es un set de passwords comunes, comparado en minúsculas.
type Blacklist struct {
	mu   sync.RWMutex
	data map[string]struct{}
}

// NewBlacklist crea una blacklist con las palabras dadas.
func NewBlacklist(words ...string) *Blacklist {
	bl := &Blacklist{data: map[string]struct{}{}}
	bl.Add(words...)
	return bl
}

// LoadBlacklist lee un archivo con una password por línea (# = comentario).
// Path vacío devuelve una blacklist vacía.
func LoadBlacklist(path string) (*Blacklist, error) {
	bl := NewBlacklist()
	if strings.TrimSpace(path) == "" {
		return bl, nil
	}
	f, err := os.Open(filepath.Clean(path))
	if err != nil {
		return nil, err
	}
	defer f.Close()
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		s := strings.TrimSpace(sc.Text())
		if s != "" && !strings.HasPrefix(s, "#") {
			bl.Add(s)
		}
	}
	return bl, sc.Err()
}

func (b *Blacklist) Add(words ...string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, w := range words {
		if w = strings.ToLower(strings.TrimSpace(w)); w != "" {
			b.data[w] = struct{}{}
		}
	}
}

func (b *Blacklist) Contains(pwd string) bool {
	if b == nil {
		return false
	}
	p := strings.ToLower(strings.TrimSpace(pwd))
	b.mu.RLock()
	_, ok := b.data[p]
	b.mu.RUnlock()
	return ok
}

func (b *Blacklist) Len() int {
	if b == nil {
		return 0
	}
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.data)
}
