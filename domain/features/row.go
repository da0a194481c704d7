// Package features derives the classifier's input row from a raw campaign.
// Training and inference both call Derive; there is no second implementation.
package features

// SchemaVersion identifies the feature set below. Bump it whenever a column is
// added, removed or redefined; classifiers trained on another version are refused.
const SchemaVersion = "v1"

// Column names in classifier order
const (
	ColUSDGoalReal             = "usd_goal_real"
	ColDeltaTime               = "delta_time"
	ColPracticability          = "practicability"
	ColTitleWordCount          = "title_word_count"
	ColRatioGoalByMainCategory = "ratio_goal_by_main_category"
	ColRatioGoalByCountry      = "ratio_goal_by_country"
	ColMainCategory            = "main_category"
	ColCountry                 = "country"
)

// NumericColumns and CategoricalColumns together are the eight model inputs
var (
	NumericColumns = []string{
		ColUSDGoalReal, ColDeltaTime, ColPracticability,
		ColTitleWordCount, ColRatioGoalByMainCategory, ColRatioGoalByCountry,
	}
	CategoricalColumns = []string{ColMainCategory, ColCountry}
)

// Row is the fixed-schema feature vector. The two Defaulted flags record a
// rate-table fallback for monitoring; they are not model inputs.
type Row struct {
	USDGoalReal             float64 `json:"usd_goal_real"`
	DeltaTime               int     `json:"delta_time"`
	Practicability          float64 `json:"practicability"`
	TitleWordCount          int     `json:"title_word_count"`
	RatioGoalByMainCategory float64 `json:"ratio_goal_by_main_category"`
	RatioGoalByCountry      float64 `json:"ratio_goal_by_country"`
	MainCategory            string  `json:"main_category"`
	Country                 string  `json:"country"`

	CategoryRateDefaulted bool `json:"-"`
	CountryRateDefaulted  bool `json:"-"`
}

// Numeric returns the numeric inputs in NumericColumns order
func (r Row) Numeric() []float64 {
	return []float64{
		r.USDGoalReal,
		float64(r.DeltaTime),
		r.Practicability,
		float64(r.TitleWordCount),
		r.RatioGoalByMainCategory,
		r.RatioGoalByCountry,
	}
}

// Categorical returns the categorical inputs in CategoricalColumns order
func (r Row) Categorical() []string {
	return []string{r.MainCategory, r.Country}
}

// Fallbacks names the rate tables that fell back to the default rate
func (r Row) Fallbacks() []string {
	var out []string
	if r.CategoryRateDefaulted {
		out = append(out, ColRatioGoalByMainCategory)
	}
	if r.CountryRateDefaulted {
		out = append(out, ColRatioGoalByCountry)
	}
	return out
}
