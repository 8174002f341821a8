package scoring

import "memescan/internal/domain/value"

const (
	defaultCategoryScore = 500
	unknownAddressScore  = 605
)

// Базовый балл по категории метки.
var categoryScores = map[value.Category]int{ //nolint:gochecknoglobals
	value.CategoryValidator:        950,
	value.CategoryCEX:              850,
	value.CategoryDEX:              800,
	value.CategoryBridge:           750,
	value.CategoryLiquidStaking:    800,
	value.CategoryLending:          750,
	value.CategoryYieldAggregator:  700,
	value.CategoryInfrastructure:   800,
	value.CategoryFund:             700,
	value.CategoryMerchant:         650,
	value.CategoryGaming:           600,
	value.CategoryTradingBot:       600,
	value.CategoryAds:              550,
	value.CategoryWallet:           600,
	value.CategoryCDP:              700,
	value.CategoryOther:            500,
	value.CategoryScriptedActivity: 400,
	value.CategoryScammer:          0,
}

type Grade struct {
	Threshold   int
	Letter      string
	Color       string
	Description string
}

// grades отсортированы по убыванию порога, последний порог 0.
var grades = []Grade{ //nolint:gochecknoglobals
	{Threshold: 950, Letter: "A+", Color: "#22C55E", Description: "Exceptional - Highly Trusted"},
	{Threshold: 900, Letter: "A", Color: "#4ADE80", Description: "Excellent - Very Reliable"},
	{Threshold: 800, Letter: "A-", Color: "#86EFAC", Description: "Very Good - Reliable"},
	{Threshold: 700, Letter: "B+", Color: "#BBF7D0", Description: "Good - Generally Safe"},
	{Threshold: 600, Letter: "C", Color: "#FACC15", Description: "Fair - Exercise Caution"},
	{Threshold: 400, Letter: "D", Color: "#FB923C", Description: "Poor - High Risk"},
	{Threshold: 200, Letter: "D-", Color: "#F97316", Description: "Very Poor - Very High Risk"},
	{Threshold: 0, Letter: "F", Color: "#EF4444", Description: "Fail - Extreme Risk / Likely Rug"},
}

type riskBand struct {
	Threshold int
	Level     value.RiskLevel
}

var riskBands = []riskBand{ //nolint:gochecknoglobals
	{Threshold: 800, Level: value.RiskLow},
	{Threshold: 600, Level: value.RiskMedium},
	{Threshold: 200, Level: value.RiskHigh},
}

type recommendationFamily int

const (
	familyGeneric recommendationFamily = iota
	familyVenue
	familyProtocol
)

// Категории без записи попадают в familyGeneric.
var recommendationFamilies = map[value.Category]recommendationFamily{ //nolint:gochecknoglobals
	value.CategoryCEX:           familyVenue,
	value.CategoryDEX:           familyVenue,
	value.CategoryValidator:     familyVenue,
	value.CategoryBridge:        familyProtocol,
	value.CategoryLiquidStaking: familyProtocol,
	value.CategoryLending:       familyProtocol,
}

// CategoryScore базовый балл категории, для неизвестных категорий 500.
func CategoryScore(category value.Category) int {
	if score, ok := categoryScores[category]; ok {
		return score
	}

	return defaultCategoryScore
}

// GradeFor первая оценка с порогом <= score. Отрицательный балл получает F.
func GradeFor(score int) Grade {
	for _, g := range grades {
		if score >= g.Threshold {
			return g
		}
	}

	return grades[len(grades)-1]
}

func RiskLevelFor(score int) value.RiskLevel {
	for _, band := range riskBands {
		if score >= band.Threshold {
			return band.Level
		}
	}

	return value.RiskCritical
}

// Grades копия таблицы оценок.
func Grades() []Grade {
	out := make([]Grade, len(grades))
	copy(out, grades)

	return out
}
