package market

import (
	"github.com/patrickmn/go-cache"

	"memescan/internal/domain/entity"
)

// SymbolCache адрес джеттона -> символ. Заполняется из справочника активов
// и живёт до перезапуска процесса.
type SymbolCache struct {
	items *cache.Cache
}

func NewSymbolCache() *SymbolCache {
	return &SymbolCache{items: cache.New(cache.NoExpiration, 0)}
}

func (c *SymbolCache) Symbol(address string) (string, bool) {
	v, ok := c.items.Get(address)
	if !ok {
		return "", false
	}

	s, ok := v.(string)

	return s, ok
}

// Resolve символ из кэша или "?".
func (c *SymbolCache) Resolve(address string) string {
	if s, ok := c.Symbol(address); ok && s != "" {
		return s
	}

	return entity.UnknownSymbol
}

// Load кладёт символы активов в кэш, возвращает число записанных.
func (c *SymbolCache) Load(assets []entity.Asset) int {
	n := 0

	for _, a := range assets {
		if a.Address == "" || a.Symbol == "" {
			continue
		}

		c.items.Set(a.Address, a.Symbol, cache.NoExpiration)
		n++
	}

	return n
}

func (c *SymbolCache) Len() int {
	return c.items.ItemCount()
}
