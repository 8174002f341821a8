package value

import "strings"

// Category классификация адреса в базе меток ton-labels.
type Category string

const (
	CategoryValidator        Category = "validator"
	CategoryCEX              Category = "cex"
	CategoryDEX              Category = "dex"
	CategoryBridge           Category = "bridge"
	CategoryLiquidStaking    Category = "liquid_staking"
	CategoryLending          Category = "lending"
	CategoryYieldAggregator  Category = "yield_aggregator"
	CategoryInfrastructure   Category = "infrastructure"
	CategoryFund             Category = "fund"
	CategoryMerchant         Category = "merchant"
	CategoryGaming           Category = "gaming"
	CategoryTradingBot       Category = "tradingbot"
	CategoryAds              Category = "ads"
	CategoryWallet           Category = "wallet"
	CategoryCDP              Category = "cdp"
	CategoryOther            Category = "other"
	CategoryScriptedActivity Category = "scripted-activity"
	CategoryScammer          Category = "scammer"
)

func (c Category) String() string {
	return string(c)
}

// IsScammer терминальная категория, остальные поля метки игнорируются.
func (c Category) IsScammer() bool {
	return c == CategoryScammer
}

// Display "liquid_staking" -> "LIQUID STAKING".
func (c Category) Display() string {
	return strings.ToUpper(c.Spaced())
}

// Spaced "liquid_staking" -> "liquid staking".
func (c Category) Spaced() string {
	return strings.ReplaceAll(string(c), "_", " ")
}
