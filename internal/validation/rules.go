package validation

import "github.com/mamadbah2/agritrack/internal/domain/models"

// Rule inspects a structurally valid record and reports one optional quality
// issue. Rules never fail a record; they only lower its health score.
type Rule struct {
	Issue   string
	Penalty int
	Check   func(*models.FarmRecord) bool
}

// DefaultRules returns the stock quality rule set. Order matters: issues are
// recorded in the order rules are declared here.
func DefaultRules() []Rule {
	return []Rule{
		{
			Issue:   "missing_crop_for_category",
			Penalty: 10,
			Check: func(r *models.FarmRecord) bool {
				return (r.Category == models.CategoryPlanting || r.Category == models.CategoryHarvest) && r.Crop == ""
			},
		},
		{
			Issue:   "missing_livestock_for_category",
			Penalty: 10,
			Check: func(r *models.FarmRecord) bool {
				return r.Category == models.CategoryLivestock && r.Livestock == ""
			},
		},
		{
			Issue:   "missing_quantity",
			Penalty: 10,
			Check: func(r *models.FarmRecord) bool {
				switch r.Category {
				case models.CategoryHarvest, models.CategoryInput, models.CategoryMarket:
					return r.Quantity == nil
				}
				return false
			},
		},
		{
			Issue:   "missing_unit",
			Penalty: 5,
			Check: func(r *models.FarmRecord) bool {
				return r.Quantity != nil && r.Unit == ""
			},
		},
		{
			Issue:   "missing_field_reference",
			Penalty: 5,
			Check: func(r *models.FarmRecord) bool {
				switch r.Category {
				case models.CategoryPlanting, models.CategoryHarvest, models.CategoryInput:
					return r.FieldID == ""
				}
				return false
			},
		},
		{
			// A revenue more than a hundredfold of cost on the same record
			// is almost always a unit or data-entry mistake.
			Issue:   "implausible_revenue_ratio",
			Penalty: 15,
			Check: func(r *models.FarmRecord) bool {
				if r.Cost == nil || r.Revenue == nil || *r.Cost <= 0 {
					return false
				}
				return *r.Revenue / *r.Cost > 100
			},
		},
		{
			Issue:   "market_record_without_amounts",
			Penalty: 5,
			Check: func(r *models.FarmRecord) bool {
				return r.Category == models.CategoryMarket && r.Cost == nil && r.Revenue == nil
			},
		},
	}
}
