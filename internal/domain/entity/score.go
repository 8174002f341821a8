package entity

import "memescan/internal/domain/value"

// ScoreResult вердикт скоринга для одного адреса.
type ScoreResult struct {
	Address          string
	Score            int
	Grade            string
	GradeColor       string
	GradeDescription string
	RiskLevel        value.RiskLevel
	Recommendation   string
	Warnings         []string
	EntityInfo       *EntityInfo
}

// EntityInfo есть только у адресов, найденных в базе меток.
type EntityInfo struct {
	Category     value.Category
	Label        string
	Organization string
	Website      string
	Tags         []string
	TrustFlags   []string
	Notes        string
}
