package validation

import "regexp"

const MaxPasswordScore = 5

// PasswordRule is one fixed check of the strength indicator
type PasswordRule struct {
	Key     string
	Label   string
	pattern *regexp.Regexp
	minLen  int
}

func (r PasswordRule) satisfied(pw string) bool {
	if r.minLen > 0 {
		return len([]rune(pw)) >= r.minLen
	}
	return r.pattern.MatchString(pw)
}

var passwordRules = []PasswordRule{
	{Key: "length", Label: "Al menos 8 caracteres", minLen: 8},
	{Key: "lowercase", Label: "Una letra minúscula", pattern: regexp.MustCompile(`[a-z]`)},
	{Key: "uppercase", Label: "Una letra mayúscula", pattern: regexp.MustCompile(`[A-Z]`)},
	{Key: "number", Label: "Un número", pattern: regexp.MustCompile(`[0-9]`)},
	{Key: "symbol", Label: "Un carácter especial", pattern: regexp.MustCompile(`[^A-Za-z0-9]`)},
}

type PasswordCheck struct {
	Key       string `json:"key"`
	Label     string `json:"label"`
	Satisfied bool   `json:"satisfied"`
}

type PasswordStrength struct {
	Score    int             `json:"score"`
	MaxScore int             `json:"max_score"`
	Level    string          `json:"level"` // weak, medium, strong
	Checks   []PasswordCheck `json:"checks"`
}

// EvaluatePassword applies every rule and sums one point per satisfied rule.
func EvaluatePassword(pw string) PasswordStrength {
	res := PasswordStrength{MaxScore: MaxPasswordScore, Checks: make([]PasswordCheck, 0, len(passwordRules))}
	for _, rule := range passwordRules {
		ok := rule.satisfied(pw)
		if ok {
			res.Score++
		}
		res.Checks = append(res.Checks, PasswordCheck{Key: rule.Key, Label: rule.Label, Satisfied: ok})
	}
	switch {
	case res.Score >= MaxPasswordScore:
		res.Level = "strong"
	case res.Score >= 3:
		res.Level = "medium"
	default:
		res.Level = "weak"
	}
	return res
}
