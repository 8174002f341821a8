package entity

// Asset элемент справочника активов DEX, источник символов для кэша.
type Asset struct {
	Address  string
	Symbol   string
	Name     string
	Decimals int
}

// JettonMeta метаданные джеттона из блокчейн-источника.
type JettonMeta struct {
	Address     string
	Symbol      string
	Name        string
	Decimals    int
	TotalSupply float64
	HolderCount int
	Verified    bool
}

type Holder struct {
	Address string
	Owner   string
	Balance float64
}

// HolderPage топ холдеров. Total общее число холдеров, если апстрим его
// сообщил, иначе 0.
type HolderPage struct {
	Holders []Holder
	Total   int
}
