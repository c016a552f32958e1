// Package validation converts untrusted raw payloads into normalized,
// quality-scored farm records. It is pure relative to storage: nothing here
// touches the database.
package validation

import (
	"slices"
	"time"

	"github.com/mamadbah2/agritrack/internal/apperrors"
	"github.com/mamadbah2/agritrack/internal/domain/models"
)

// RawRecord is the untrusted shape accepted from clients. The owner is never
// read from the payload; it always comes from the verified identity.
type RawRecord struct {
	DataType  string   `json:"dataType"`
	Category  string   `json:"category"`
	Crop      string   `json:"crop"`
	Livestock string   `json:"livestock"`
	FieldID   string   `json:"fieldId"`
	Activity  string   `json:"activity"`
	Quantity  *float64 `json:"quantity"`
	Unit      string   `json:"unit"`
	Cost      *float64 `json:"cost"`
	Revenue   *float64 `json:"revenue"`
	Date      string   `json:"date"`
	Notes     string   `json:"notes"`
	Tags      []string `json:"tags"`
}

var dateLayouts = []string{time.RFC3339, "2006-01-02"}

// ParseDate accepts the record date formats supported at the API boundary.
func ParseDate(value string) (time.Time, error) {
	var lastErr error
	for _, layout := range dateLayouts {
		parsed, err := time.Parse(layout, value)
		if err == nil {
			return parsed.UTC(), nil
		}
		lastErr = err
	}
	return time.Time{}, lastErr
}

// Validator applies the fatal structural checks followed by the ordered
// quality rule set.
type Validator struct {
	rules []Rule
	now   func() time.Time
}

// New builds a validator over the given rule set, defaulting to DefaultRules.
func New(rules []Rule) *Validator {
	if rules == nil {
		rules = DefaultRules()
	}
	return &Validator{rules: rules, now: time.Now}
}

// Validate normalizes raw into a FarmRecord owned by ownerID, or fails with
// a validation-kind error. Fatal checks run first; surviving records are
// quality-scored by the rule set and stamped with the validation instant.
func (v *Validator) Validate(raw RawRecord, ownerID string) (*models.FarmRecord, error) {
	switch {
	case raw.DataType == "":
		return nil, apperrors.MissingField("dataType")
	case raw.Category == "":
		return nil, apperrors.MissingField("category")
	case raw.Date == "":
		return nil, apperrors.MissingField("date")
	}

	if !slices.Contains(models.DataTypes, raw.DataType) {
		return nil, apperrors.InvalidEnum("dataType", models.DataTypes)
	}
	if !slices.Contains(models.Categories, raw.Category) {
		return nil, apperrors.InvalidEnum("category", models.Categories)
	}
	if raw.Crop != "" && !slices.Contains(models.Crops, raw.Crop) {
		return nil, apperrors.InvalidEnum("crop", models.Crops)
	}
	if raw.Livestock != "" && !slices.Contains(models.LivestockKinds, raw.Livestock) {
		return nil, apperrors.InvalidEnum("livestock", models.LivestockKinds)
	}
	if raw.Unit != "" && !slices.Contains(models.Units, raw.Unit) {
		return nil, apperrors.InvalidEnum("unit", models.Units)
	}

	if raw.Quantity != nil && *raw.Quantity < 0 {
		return nil, apperrors.NegativeValue("quantity")
	}
	if raw.Cost != nil && *raw.Cost < 0 {
		return nil, apperrors.NegativeValue("cost")
	}
	if raw.Revenue != nil && *raw.Revenue < 0 {
		return nil, apperrors.NegativeValue("revenue")
	}

	date, err := ParseDate(raw.Date)
	if err != nil {
		return nil, apperrors.InvalidValue("date", "date must be an RFC 3339 timestamp or YYYY-MM-DD")
	}

	checkedAt := v.now().UTC()
	if date.After(checkedAt) {
		return nil, apperrors.FutureDate()
	}

	record := &models.FarmRecord{
		UserID:    ownerID,
		DataType:  models.DataType(raw.DataType),
		Category:  models.Category(raw.Category),
		Crop:      raw.Crop,
		Livestock: raw.Livestock,
		FieldID:   raw.FieldID,
		Activity:  raw.Activity,
		Quantity:  raw.Quantity,
		Unit:      raw.Unit,
		Cost:      raw.Cost,
		Revenue:   raw.Revenue,
		Date:      date,
		Notes:     raw.Notes,
		Tags:      raw.Tags,
	}
	record.DataHealth = v.score(record, checkedAt)

	return record, nil
}

// Rescore reruns the quality rules over an already stored record, producing
// a fresh DataHealth. Used by the periodic re-check job.
func (v *Validator) Rescore(record *models.FarmRecord) models.DataHealth {
	return v.score(record, v.now().UTC())
}

// score starts at 100 and subtracts each triggered rule's penalty, clamping
// at 0. Issues are recorded in rule order.
func (v *Validator) score(record *models.FarmRecord, checkedAt time.Time) models.DataHealth {
	total := 100
	issues := []string{}

	for _, rule := range v.rules {
		if !rule.Check(record) {
			continue
		}
		total -= rule.Penalty
		issues = append(issues, rule.Issue)
	}

	if total < 0 {
		total = 0
	}

	return models.DataHealth{Score: total, Issues: issues, LastChecked: checkedAt}
}
