package eligibility

import (
	"math"
	"strings"

	"github.com/tidwall/gjson"
)

// Verdict 表示上游判定结果的三态：未知 / 合格 / 不合格。
type Verdict int

const (
	VerdictUnknown Verdict = iota
	VerdictEligible
	VerdictNotEligible
)

// Bool 将三态转换为可空布尔值，便于落库。
func (v Verdict) Bool() *bool {
	switch v {
	case VerdictEligible:
		b := true
		return &b
	case VerdictNotEligible:
		b := false
		return &b
	default:
		return nil
	}
}

// VerdictFromBool 从可空布尔值还原三态。
func VerdictFromBool(b *bool) Verdict {
	switch {
	case b == nil:
		return VerdictUnknown
	case *b:
		return VerdictEligible
	default:
		return VerdictNotEligible
	}
}

// Result 是归一化后的检测结果，上游响应中所有松散类型
// 都在这里收敛为唯一的内部表示。
type Result struct {
	Verdict         Verdict
	Score           *int // 0-100，nil 表示未知
	MatchedSkills   []string
	UnmatchedSkills []string
}

// eligibleWords 是字符串形式下视为"合格"的取值（比较前已 trim + 小写）。
var eligibleWords = map[string]bool{
	"eligible": true,
	"true":     true,
	"yes":      true,
}

// Normalize 将上游的松散响应体转换为 Result。
// 任何缺失或类型不符的字段都退化为未知/空值，绝不报错。
func Normalize(body []byte) Result {
	var res Result

	elig := gjson.GetBytes(body, "eligibility")
	switch {
	case !elig.Exists():
		res.Verdict = VerdictUnknown
	case elig.Type == gjson.True:
		res.Verdict = VerdictEligible
	case elig.Type == gjson.False:
		res.Verdict = VerdictNotEligible
	default:
		// 非布尔值一律走字符串转换路径。
		word := strings.ToLower(strings.TrimSpace(elig.String()))
		if eligibleWords[word] {
			res.Verdict = VerdictEligible
		} else {
			res.Verdict = VerdictNotEligible
		}
	}

	score := gjson.GetBytes(body, "match_score")
	if score.Exists() && score.Type == gjson.Number && !math.IsNaN(score.Num) {
		v := score.Num
		// <= 1 视为 0-1 的比例；恰好等于 1 按约定归一化为 100%。
		if v <= 1 {
			v *= 100
		}
		n := int(math.Round(v))
		res.Score = &n
	}

	res.MatchedSkills = stringList(gjson.GetBytes(body, "matched_skills"))
	res.UnmatchedSkills = stringList(gjson.GetBytes(body, "unmatched_skills"))
	return res
}

// stringList 原样透传一个 JSON 字符串数组：保留顺序与重复项，
// 不是数组时退回空列表。
func stringList(v gjson.Result) []string {
	if !v.IsArray() {
		return []string{}
	}
	items := v.Array()
	out := make([]string, 0, len(items))
	for _, item := range items {
		out = append(out, item.String())
	}
	return out
}
