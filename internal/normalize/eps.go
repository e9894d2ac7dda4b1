package normalize

import (
	"regexp"
	"sort"
	"strconv"

	"github.com/shopspring/decimal"
)

// EPS estimates arrive under several key encodings with a defined
// precedence when more than one encoding carries a value for the same year:
//
//	2027E_EPS -> year 2027, priority 3
//	2027_EPS  -> year 2027, priority 2
//	327_EPS   -> year 2027 (code + 1700), priority 1
var (
	epsEstimateRe = regexp.MustCompile(`^(20\d{2})E_EPS$`)
	epsYearRe     = regexp.MustCompile(`^(20\d{2})_EPS$`)
	epsCodeRe     = regexp.MustCompile(`^(\d{3})_EPS$`)
)

// EPSValue is one resolved (fiscal year, estimate) pair
type EPSValue struct {
	Year int
	EPS  decimal.Decimal
}

// epsKey classifies a record key. Returns (year, priority); priority 0
// means the key is not an EPS field.
func epsKey(key string) (int, int) {
	if m := epsEstimateRe.FindStringSubmatch(key); m != nil {
		year, _ := strconv.Atoi(m[1])
		return year, 3
	}
	if m := epsYearRe.FindStringSubmatch(key); m != nil {
		year, _ := strconv.Atoi(m[1])
		return year, 2
	}
	if m := epsCodeRe.FindStringSubmatch(key); m != nil {
		code, _ := strconv.Atoi(m[1])
		return code + 1700, 1
	}
	return 0, 0
}

// ResolveEPS extracts EPS estimates from one raw record. For each year the
// highest-priority key wins. Keys are visited in lexicographic order so that
// equal-priority collisions resolve deterministically: the lexicographically
// later key wins. Empty and unparseable values are dropped. The result is
// sorted ascending by year.
func ResolveEPS(record map[string]any) []EPSValue {
	keys := make([]string, 0, len(record))
	for k := range record {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	byYear := make(map[int]decimal.Decimal)
	priByYear := make(map[int]int)
	for _, k := range keys {
		year, pri := epsKey(k)
		if pri == 0 {
			continue
		}
		v := record[k]
		if v == nil {
			continue
		}
		if s, isStr := v.(string); isStr && s == "" {
			continue
		}
		if prev, seen := priByYear[year]; seen && pri < prev {
			continue
		}
		d, err := ToDecimal(v)
		if err != nil || d == nil {
			continue
		}
		byYear[year] = *d
		priByYear[year] = pri
	}

	out := make([]EPSValue, 0, len(byYear))
	for year, eps := range byYear {
		out = append(out, EPSValue{Year: year, EPS: eps})
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Year < out[j].Year })
	return out
}
