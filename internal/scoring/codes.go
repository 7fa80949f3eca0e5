package scoring

import (
	"fmt"
	"strings"
)

// Control codes follow the "FUNC.CAT-NUM" grammar ("GV.OC-01"). The category
// is everything before the last dash, the function the first dot segment of
// the category. Both derivations are shared by the maturity calculator and
// the recommendation generator so the same code always lands in the same
// bucket.

// CategoryCode derives the category code of a control ("GV.OC-01" -> "GV.OC").
// A code without a dash is its own category.
func CategoryCode(controlCode string) string {
	if i := strings.LastIndex(controlCode, "-"); i > 0 {
		return controlCode[:i]
	}
	return controlCode
}

// FunctionCode derives the function code from a category or control code
// ("GV.OC" -> "GV").
func FunctionCode(code string) string {
	code = CategoryCode(code)
	if i := strings.Index(code, "."); i > 0 {
		return code[:i]
	}
	return code
}

// ValidateControlCode enforces the code grammar at ingestion time, so
// frameworks with incompatible codes fail loudly when seeded instead of
// being silently misbucketed during aggregation.
func ValidateControlCode(code string) error {
	dot := strings.Index(code, ".")
	dash := strings.LastIndex(code, "-")
	if dot <= 0 || dash <= dot+1 || dash == len(code)-1 {
		return fmt.Errorf("control code %q does not match FUNC.CAT-NUM grammar", code)
	}
	return nil
}
