package worker

import (
	"slices"
	"sync"
)

// Watchlist адреса, которые краулер отслеживает каждый цикл независимо от
// того, попали ли они в списки новых и трендовых токенов.
type Watchlist struct {
	mu        sync.Mutex
	addresses []string
}

func NewWatchlist(addresses ...string) *Watchlist {
	w := &Watchlist{}
	w.Add(addresses...)

	return w
}

// Add добавляет адреса, пропуская пустые и уже известные.
func (w *Watchlist) Add(addresses ...string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	for _, a := range addresses {
		if a == "" || slices.Contains(w.addresses, a) {
			continue
		}

		w.addresses = append(w.addresses, a)
	}
}

func (w *Watchlist) Remove(address string) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if i := slices.Index(w.addresses, address); i >= 0 {
		w.addresses = slices.Delete(w.addresses, i, i+1)
	}
}

func (w *Watchlist) Has(address string) bool {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Contains(w.addresses, address)
}

// List копия текущего списка.
func (w *Watchlist) List() []string {
	w.mu.Lock()
	defer w.mu.Unlock()

	return slices.Clone(w.addresses)
}

func (w *Watchlist) Clear() {
	w.mu.Lock()
	defer w.mu.Unlock()

	w.addresses = nil
}
