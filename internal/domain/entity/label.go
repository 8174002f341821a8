package entity

import (
	"slices"
	"strings"
	"time"

	jsoniter "github.com/json-iterator/go"

	"memescan/internal/domain/value"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

// LabelRecord строка known_wallets: классификация известного адреса.
type LabelRecord struct {
	Address   string
	Category  value.Category
	OwnerName string
	Notes     string // JSON, см. LabelNotes
	CreatedAt time.Time
}

// LabelNotes дополнительные поля метки, хранятся JSON-строкой.
type LabelNotes struct {
	Website     string   `json:"website,omitempty"`
	Subcategory string   `json:"subcategory,omitempty"`
	Description string   `json:"description,omitempty"`
	Tags        []string `json:"tags,omitempty"`
	Source      string   `json:"source,omitempty"`
}

// ParseLabelNotes разбирает notes. Битый JSON даёт пустые заметки, а не
// ошибку: метка без заметок всё равно валидна.
func ParseLabelNotes(raw string) LabelNotes {
	var notes LabelNotes

	if strings.TrimSpace(raw) == "" {
		return notes
	}

	if err := json.UnmarshalFromString(raw, &notes); err != nil {
		return LabelNotes{}
	}

	return notes
}

func (n LabelNotes) HasTag(tag string) bool {
	return slices.Contains(n.Tags, tag)
}

// Encode сериализует заметки для записи в known_wallets.notes.
func (n LabelNotes) Encode() (string, error) {
	return json.MarshalToString(n)
}
