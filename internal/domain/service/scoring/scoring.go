package scoring

import (
	"context"
	"fmt"
	"strings"
	"unicode"

	"memescan/internal/domain"
	"memescan/internal/domain/entity"
	"memescan/internal/domain/value"
	"memescan/pkg/contextx"
	"memescan/pkg/errcodes"
)

var logger = contextx.LoggerFromContextOrDefault //nolint:gochecknoglobals

const (
	// MaxBatchSize предел адресов в одном пакетном запросе.
	MaxBatchSize = 50

	tagCustodialWallets = "has-custodial-wallets"
	subcategoryDrainer  = "drainer"

	scammerRecommendation = "🚨 CONFIRMED SCAMMER - This address is in the TON community scammer database. DO NOT INTERACT."
	drainerWarning        = "⚠️ DRAINER CONTRACT: Will drain your wallet!"
	custodialFlag         = "ℹ️ Has custodial wallet services"

	unknownRecommendation = "Proceed with caution. Some risk factors present. Only invest what you can afford to lose."
)

// Предупреждения для адресов без метки.
var unknownWarnings = []string{ //nolint:gochecknoglobals
	"New minter: No track record available",
	"WARNING: Liquidity not locked - rug pull risk",
	"New wallet: Less than 7 days old",
}

type LabelRepository interface {
	Lookup(ctx context.Context, address string) (*entity.LabelRecord, error)
}

// Engine переводит метку адреса (или её отсутствие) в оценку доверия.
// Метки читаются на каждый вызов, кэша нет.
type Engine struct {
	labels LabelRepository
}

func NewEngine(labels LabelRepository) *Engine {
	return &Engine{labels: labels}
}

// Score оценивает адрес. Ошибка хранилища меток возвращается как
// AppError{LabelLookupFailed} и никогда не превращается в оценку по умолчанию.
func (e *Engine) Score(ctx context.Context, address string) (entity.ScoreResult, error) {
	record, err := e.labels.Lookup(ctx, address)
	if err != nil {
		if domain.HasCode(err, errcodes.LabelNotFound) {
			return unknownResult(address), nil
		}

		return entity.ScoreResult{}, domain.WrapError(err, errcodes.LabelLookupFailed, "label lookup failed")
	}

	if record == nil {
		return unknownResult(address), nil
	}

	if record.Category.IsScammer() {
		logger(ctx).Warn("scammer address scored", "address", address)

		return scammerResult(address, *record), nil
	}

	return knownResult(address, *record), nil
}

// ScoreBatch оценивает адреса последовательно. Первая ошибка хранилища
// прерывает весь пакет.
func (e *Engine) ScoreBatch(ctx context.Context, addresses []string) ([]entity.ScoreResult, error) {
	if len(addresses) > MaxBatchSize {
		return nil, domain.NewError(errcodes.ValidationError, fmt.Sprintf("at most %d addresses per batch", MaxBatchSize))
	}

	results := make([]entity.ScoreResult, 0, len(addresses))

	for _, address := range addresses {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		result, err := e.Score(ctx, address)
		if err != nil {
			return nil, fmt.Errorf("score %s: %w", address, err)
		}

		results = append(results, result)
	}

	return results, nil
}

func scammerResult(address string, record entity.LabelRecord) entity.ScoreResult {
	notes := entity.ParseLabelNotes(record.Notes)
	grade := GradeFor(0)

	warning := fmt.Sprintf("🚨 KNOWN SCAMMER: %s - %s",
		orDefault(record.OwnerName, "Unknown"),
		titleSubcategory(notes.Subcategory),
	)
	if notes.Description != "" {
		warning += fmt.Sprintf(" (%s)", notes.Description)
	}

	warnings := []string{warning}
	if strings.EqualFold(notes.Subcategory, subcategoryDrainer) {
		warnings = append(warnings, drainerWarning)
	}

	return entity.ScoreResult{
		Address:          address,
		Score:            0,
		Grade:            grade.Letter,
		GradeColor:       grade.Color,
		GradeDescription: grade.Description,
		RiskLevel:        value.RiskCritical,
		Recommendation:   scammerRecommendation,
		Warnings:         warnings,
		EntityInfo: &entity.EntityInfo{
			Category:     record.Category,
			Label:        record.OwnerName,
			Organization: record.OwnerName,
			Website:      notes.Website,
			Tags:         notes.Tags,
			Notes:        notes.Description,
		},
	}
}

func knownResult(address string, record entity.LabelRecord) entity.ScoreResult {
	notes := entity.ParseLabelNotes(record.Notes)
	score := CategoryScore(record.Category)
	grade := GradeFor(score)

	return entity.ScoreResult{
		Address:          address,
		Score:            score,
		Grade:            grade.Letter,
		GradeColor:       grade.Color,
		GradeDescription: grade.Description,
		RiskLevel:        RiskLevelFor(score),
		Recommendation:   recommendation(record),
		Warnings:         []string{},
		EntityInfo: &entity.EntityInfo{
			Category:     record.Category,
			Label:        record.OwnerName,
			Organization: record.OwnerName,
			Website:      notes.Website,
			Tags:         notes.Tags,
			TrustFlags:   trustFlags(record, notes),
		},
	}
}

func unknownResult(address string) entity.ScoreResult {
	grade := GradeFor(unknownAddressScore)

	warnings := make([]string, len(unknownWarnings))
	copy(warnings, unknownWarnings)

	return entity.ScoreResult{
		Address:          address,
		Score:            unknownAddressScore,
		Grade:            grade.Letter,
		GradeColor:       grade.Color,
		GradeDescription: grade.Description,
		RiskLevel:        RiskLevelFor(unknownAddressScore),
		Recommendation:   unknownRecommendation,
		Warnings:         warnings,
	}
}

func trustFlags(record entity.LabelRecord, notes entity.LabelNotes) []string {
	flag := fmt.Sprintf("✅ VERIFIED %s: %s", record.Category.Display(), record.OwnerName)
	if notes.Website != "" {
		flag += fmt.Sprintf(" (%s)", notes.Website)
	}

	flags := []string{flag}
	if notes.HasTag(tagCustodialWallets) {
		flags = append(flags, custodialFlag)
	}

	return flags
}

func recommendation(record entity.LabelRecord) string {
	switch recommendationFamilies[record.Category] {
	case familyVenue:
		return fmt.Sprintf("✅ VERIFIED %s - %s is a known %s.",
			record.Category.Display(),
			orDefault(record.OwnerName, record.Category.String()),
			record.Category.Spaced(),
		)
	case familyProtocol:
		return fmt.Sprintf("✅ VERIFIED PROTOCOL - %s is a known DeFi protocol.",
			orDefault(record.OwnerName, "This address"),
		)
	default:
		return fmt.Sprintf("✅ KNOWN ENTITY - %s is recognized in the TON ecosystem.",
			orDefault(record.OwnerName, "This address"),
		)
	}
}

// titleSubcategory "wallet_drainer" -> "Wallet Drainer".
func titleSubcategory(subcategory string) string {
	if subcategory == "" {
		return "Unknown"
	}

	words := strings.Fields(strings.ReplaceAll(subcategory, "_", " "))
	for i, w := range words {
		r := []rune(strings.ToLower(w))
		r[0] = unicode.ToUpper(r[0])
		words[i] = string(r)
	}

	return strings.Join(words, " ")
}

func orDefault(s, fallback string) string {
	if s == "" {
		return fallback
	}

	return s
}
