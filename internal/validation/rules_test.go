package validation

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultRulesCategoryExpectations(t *testing.T) {
	v := newTestValidator(nil)

	tests := []struct {
		name   string
		raw    RawRecord
		issues []string
		score  int
	}{
		{
			name: "planting without crop",
			raw: RawRecord{
				DataType: "manual", Category: "planting", FieldID: "f1", Date: "2024-05-20",
			},
			issues: []string{"missing_crop_for_category"},
			score:  90,
		},
		{
			name: "livestock without livestock kind",
			raw: RawRecord{
				DataType: "manual", Category: "livestock", Date: "2024-05-20",
			},
			issues: []string{"missing_livestock_for_category"},
			score:  90,
		},
		{
			name: "input without quantity",
			raw: RawRecord{
				DataType: "manual", Category: "input", FieldID: "f1", Date: "2024-05-20",
			},
			issues: []string{"missing_quantity"},
			score:  90,
		},
		{
			name: "quantity without unit",
			raw: RawRecord{
				DataType: "sensor", Category: "weather", Quantity: ptr(22.5), Date: "2024-05-20",
			},
			issues: []string{"missing_unit"},
			score:  95,
		},
		{
			name: "implausible revenue to cost ratio",
			raw: RawRecord{
				DataType: "manual", Category: "market", Quantity: ptr(10), Unit: "bags",
				Cost: ptr(1), Revenue: ptr(500), Date: "2024-05-20",
			},
			issues: []string{"implausible_revenue_ratio"},
			score:  85,
		},
		{
			name: "market record without amounts",
			raw: RawRecord{
				DataType: "manual", Category: "market", Quantity: ptr(10), Unit: "bags", Date: "2024-05-20",
			},
			issues: []string{"market_record_without_amounts"},
			score:  95,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			record, err := v.Validate(tc.raw, "owner-1")
			require.NoError(t, err)
			assert.Equal(t, tc.issues, record.DataHealth.Issues)
			assert.Equal(t, tc.score, record.DataHealth.Score)
		})
	}
}

func TestDefaultRulesIssuesInDetectionOrder(t *testing.T) {
	v := newTestValidator(nil)

	// A bare harvest record trips three rules; issues must follow rule order.
	raw := RawRecord{DataType: "manual", Category: "harvest", Date: "2024-05-20"}

	record, err := v.Validate(raw, "owner-1")
	require.NoError(t, err)

	assert.Equal(t, []string{
		"missing_crop_for_category",
		"missing_quantity",
		"missing_field_reference",
	}, record.DataHealth.Issues)
	assert.Equal(t, 75, record.DataHealth.Score)
}

func TestDefaultRulesPlausibleRatioNotFlagged(t *testing.T) {
	v := newTestValidator(nil)

	raw := RawRecord{
		DataType: "manual", Category: "market", Quantity: ptr(10), Unit: "bags",
		Cost: ptr(100), Revenue: ptr(150), Date: "2024-05-20",
	}

	record, err := v.Validate(raw, "owner-1")
	require.NoError(t, err)
	assert.Equal(t, 100, record.DataHealth.Score)
	assert.Empty(t, record.DataHealth.Issues)
}

func TestDefaultRulesZeroCostNotDividedBy(t *testing.T) {
	v := newTestValidator(nil)

	raw := RawRecord{
		DataType: "manual", Category: "market", Quantity: ptr(10), Unit: "bags",
		Cost: ptr(0), Revenue: ptr(500), Date: "2024-05-20",
	}

	record, err := v.Validate(raw, "owner-1")
	require.NoError(t, err)
	assert.NotContains(t, record.DataHealth.Issues, "implausible_revenue_ratio")
}
