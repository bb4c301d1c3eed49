package eligibility

import "strconv"

// Placeholder 是未知/空值在界面上的占位符。
const Placeholder = "-"

// 状态颜色与前端样式约定一致。
const (
	statusGreen   = "green"
	statusRed     = "red"
	statusNeutral = "neutral"
)

// View 是 Result 到展示层的确定性映射，无状态、无副作用。
type View struct {
	EligibilityLabel string   `json:"eligibility_label"`
	StatusColor      string   `json:"status_color"`
	ScoreLabel       string   `json:"score_label"`
	MatchedSkills    []string `json:"matched_skills"`
	UnmatchedSkills  []string `json:"unmatched_skills"`
}

// NewView 根据归一化结果生成展示值。
func NewView(r Result) View {
	view := View{
		EligibilityLabel: Placeholder,
		StatusColor:      statusNeutral,
		ScoreLabel:       Placeholder,
		MatchedSkills:    r.MatchedSkills,
		UnmatchedSkills:  r.UnmatchedSkills,
	}

	switch r.Verdict {
	case VerdictEligible:
		view.EligibilityLabel = "Eligible"
		view.StatusColor = statusGreen
	case VerdictNotEligible:
		view.EligibilityLabel = "Not Eligible"
		view.StatusColor = statusRed
	}

	if r.Score != nil {
		view.ScoreLabel = strconv.Itoa(*r.Score) + "%"
	}

	if view.MatchedSkills == nil {
		view.MatchedSkills = []string{}
	}
	if view.UnmatchedSkills == nil {
		view.UnmatchedSkills = []string{}
	}

	return view
}
