// Package tonlabels читает скомпилированный датасет ton-labels
// ({total, stats, addresses: {addr: {...}}}) и переводит его в метки known_wallets.
package tonlabels

import (
	"fmt"
	"io"
	"maps"
	"regexp"
	"slices"
	"strings"

	jsoniter "github.com/json-iterator/go"

	"memescan/internal/domain"
	"memescan/internal/domain/entity"
	"memescan/internal/domain/value"
	"memescan/pkg/errcodes"
)

var json = jsoniter.ConfigCompatibleWithStandardLibrary //nolint:gochecknoglobals // skip

const (
	Source          = "ton-labels"
	defaultCategory = "unknown"
)

var categoryPattern = regexp.MustCompile(`^[a-z][a-z0-9_-]{0,49}$`) //nolint:gochecknoglobals

type entrySchema struct {
	Category     string   `json:"category"`
	Label        string   `json:"label"`
	Organization string   `json:"organization"`
	Website      string   `json:"website"`
	Subcategory  string   `json:"subcategory"`
	Description  string   `json:"description"`
	Tags         []string `json:"tags"`
}

type fileSchema struct {
	Total     int                    `json:"total"`
	Stats     map[string]any         `json:"stats"`
	Addresses map[string]entrySchema `json:"addresses"`
}

// Dataset разобранный файл. Records отсортированы по адресу, Rejected
// содержит записи, которые нельзя импортировать.
type Dataset struct {
	Total    int
	Stats    map[string]any
	Records  []entity.LabelRecord
	Rejected []error
}

func Parse(r io.Reader) (*Dataset, error) {
	var file fileSchema

	if err := json.NewDecoder(r).Decode(&file); err != nil {
		return nil, fmt.Errorf("json.Decode: %w", err)
	}

	ds := &Dataset{
		Total:   file.Total,
		Stats:   file.Stats,
		Records: make([]entity.LabelRecord, 0, len(file.Addresses)),
	}

	for _, address := range slices.Sorted(maps.Keys(file.Addresses)) {
		record, err := toRecord(address, file.Addresses[address])
		if err != nil {
			ds.Rejected = append(ds.Rejected, err)
			continue
		}

		ds.Records = append(ds.Records, record)
	}

	return ds, nil
}

// CountByCategory сводка по категориям для dry-run.
func (d *Dataset) CountByCategory() map[string]int {
	counts := make(map[string]int)
	for _, r := range d.Records {
		counts[r.Category.String()]++
	}

	return counts
}

func toRecord(address string, e entrySchema) (entity.LabelRecord, error) {
	address = strings.TrimSpace(address)
	if address == "" {
		return entity.LabelRecord{}, domain.NewError(errcodes.InvalidLabel, "empty address")
	}

	category := strings.TrimSpace(e.Category)
	if category == "" {
		category = defaultCategory
	}

	if !categoryPattern.MatchString(category) {
		return entity.LabelRecord{}, domain.NewError(errcodes.InvalidLabel,
			fmt.Sprintf("%s: invalid category %q", address, category))
	}

	owner := e.Label
	if owner == "" {
		owner = e.Organization
	}

	notes := entity.LabelNotes{
		Website:     e.Website,
		Subcategory: e.Subcategory,
		Description: e.Description,
		Tags:        e.Tags,
		Source:      Source,
	}

	encoded, err := notes.Encode()
	if err != nil {
		return entity.LabelRecord{}, fmt.Errorf("%s: notes.Encode: %w", address, err)
	}

	return entity.LabelRecord{
		Address:   address,
		Category:  value.Category(category),
		OwnerName: owner,
		Notes:     encoded,
	}, nil
}
