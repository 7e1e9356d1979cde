package recognize

import (
	"math"

	"github.com/mgaillard/scandoc/internal/catalog"
	"github.com/mgaillard/scandoc/internal/entity"
)

// Aggregate combines per-field recognition confidences into one 0..100
// document confidence using catalog weights. Fields without a configured
// weight contribute to neither numerator nor denominator; an empty weighted
// set aggregates to 0.
func Aggregate(results []entity.RecognitionResult, fields []catalog.FieldConfig) int {
	var num, den float64
	for _, res := range results {
		fc, ok := catalog.ByName(fields, res.FieldName)
		if !ok || fc.Weight <= 0 {
			continue
		}
		num += res.Confidence * 100 * fc.Weight
		den += fc.Weight
	}
	if den == 0 {
		return 0
	}
	return int(math.Round(num / den))
}
