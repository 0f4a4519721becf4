package models

import "strings"

const (
	StatusNotDone    = "не выполнена"
	StatusInProgress = "в процессе"
	StatusDone       = "выполнена"

	PriorityLow    = "низкий"
	PriorityMedium = "средний"
	PriorityHigh   = "высокий"

	DefaultStatus   = StatusNotDone
	DefaultPriority = PriorityMedium
)

// AllowedStatuses and AllowedPriorities are closed vocabularies. Values are stored normalized.
var (
	AllowedStatuses   = []string{StatusNotDone, StatusInProgress, StatusDone}
	AllowedPriorities = []string{PriorityLow, PriorityMedium, PriorityHigh}
)

// NormalizeVocabulary trims and lowercases a status or priority value.
func NormalizeVocabulary(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}

// IsAllowedStatus reports whether value normalizes to a known status.
func IsAllowedStatus(value string) bool {
	return contains(AllowedStatuses, NormalizeVocabulary(value))
}

// IsAllowedPriority reports whether value normalizes to a known priority.
func IsAllowedPriority(value string) bool {
	return contains(AllowedPriorities, NormalizeVocabulary(value))
}

func contains(values []string, value string) bool {
	for _, v := range values {
		if v == value {
			return true
		}
	}
	return false
}
