package domain

import "strings"

// StockState is the per-row health classification.
type StockState string

const (
	StateCritical StockState = "CRITICAL"
	StateLow      StockState = "LOW"
	StateMedium   StockState = "MEDIUM"
	StateExcess   StockState = "EXCESS"
	StateOver     StockState = "OVER"
	StateNormal   StockState = "NORMAL"
)

// AlertType identifies which classifier emission produced an alert.
type AlertType string

const (
	AlertCriticalStock AlertType = "CRITICAL_STOCK"
	AlertLowStock      AlertType = "LOW_STOCK"
	AlertMediumStock   AlertType = "MEDIUM_STOCK"
	AlertOverstock     AlertType = "OVERSTOCK"
	AlertLowRotation   AlertType = "LOW_ROTATION"
)

// Severity is the alert level.
type Severity string

const (
	SeverityCritical Severity = "CRITICAL"
	SeverityHigh     Severity = "HIGH"
	SeverityMedium   Severity = "MEDIUM"
)

// Priority is the urgency tier on transfer and purchase recommendations.
type Priority string

const (
	PriorityUrgent Priority = "URGENT"
	PriorityHigh   Priority = "HIGH"
	PriorityMedium Priority = "MEDIUM"
	PriorityLow    Priority = "LOW"
)

// AlertStatus is the alert workflow state.
type AlertStatus string

const (
	AlertPending  AlertStatus = "PENDING"
	AlertSeen     AlertStatus = "SEEN"
	AlertResolved AlertStatus = "RESOLVED"
	AlertIgnored  AlertStatus = "IGNORED"
)

// RecommendationStatus is the workflow state on transfer and purchase
// recommendations. StatusCalculated marks live (non-persisted) suggestions.
type RecommendationStatus string

const (
	StatusPending    RecommendationStatus = "PENDING"
	StatusApproved   RecommendationStatus = "APPROVED"
	StatusRejected   RecommendationStatus = "REJECTED"
	StatusExecuted   RecommendationStatus = "EXECUTED"
	StatusCalculated RecommendationStatus = "CALCULATED"
)

// BrandCategoryPrincipal marks the brands the purchase sizer precomputes for.
const BrandCategoryPrincipal = "PRINCIPAL"

var alertStatuses = map[string]AlertStatus{
	"SEEN":     AlertSeen,
	"RESOLVED": AlertResolved,
	"IGNORED":  AlertIgnored,
}

// ParseAlertStatus accepts the workflow states a user may set on an alert.
// PENDING is not settable, it is the engine's initial state.
func ParseAlertStatus(s string) (AlertStatus, bool) {
	status, ok := alertStatuses[strings.ToUpper(s)]
	return status, ok
}

var recommendationStatuses = map[string]RecommendationStatus{
	"APPROVED": StatusApproved,
	"REJECTED": StatusRejected,
	"EXECUTED": StatusExecuted,
}

// ParseRecommendationStatus accepts the workflow states a user may set on a
// transfer recommendation.
func ParseRecommendationStatus(s string) (RecommendationStatus, bool) {
	status, ok := recommendationStatuses[strings.ToUpper(s)]
	return status, ok
}

// TransferTier ranks transfer recommendations for output ordering:
// PRINCIPAL brands with classification A first, then other PRINCIPAL
// brands, then the rest.
func TransferTier(category, classification string) int {
	switch {
	case category == BrandCategoryPrincipal && classification == "A":
		return 1
	case category == BrandCategoryPrincipal:
		return 2
	default:
		return 3
	}
}

// ClassificationRank orders brand classifications A, B, C, everything else.
func ClassificationRank(classification string) int {
	switch classification {
	case "A":
		return 1
	case "B":
		return 2
	case "C":
		return 3
	default:
		return 4
	}
}
