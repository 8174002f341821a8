package value

// SafetyLevel вердикт анализатора по распределению холдеров.
type SafetyLevel string

const (
	SafetySafe    SafetyLevel = "SAFE"
	SafetyWarning SafetyLevel = "WARNING"
	SafetyDanger  SafetyLevel = "DANGER"
	SafetyUnknown SafetyLevel = "UNKNOWN"
)

func (l SafetyLevel) String() string {
	return string(l)
}

// Escalate возвращает более строгий из двух уровней. UNKNOWN не участвует в
// сравнении: его нельзя ни понизить, ни получить эскалацией.
func (l SafetyLevel) Escalate(to SafetyLevel) SafetyLevel {
	if l == SafetyUnknown || to == SafetyUnknown {
		return l
	}

	if to.severity() > l.severity() {
		return to
	}

	return l
}

func (l SafetyLevel) severity() int {
	switch l {
	case SafetySafe:
		return 0
	case SafetyWarning:
		return 1
	case SafetyDanger:
		return 2
	default:
		return -1
	}
}

// RiskLevel итоговый риск кредитного скоринга.
type RiskLevel string

const (
	RiskLow      RiskLevel = "LOW"
	RiskMedium   RiskLevel = "MEDIUM"
	RiskHigh     RiskLevel = "HIGH"
	RiskCritical RiskLevel = "CRITICAL"
)

func (r RiskLevel) String() string {
	return string(r)
}
