package market

func (a *Aggregator) Symbols() *SymbolCache {
	return a.symbols
}
