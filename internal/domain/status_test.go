package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParseAlertStatus(t *testing.T) {
	status, ok := ParseAlertStatus("seen")
	assert.True(t, ok)
	assert.Equal(t, AlertSeen, status)

	_, ok = ParseAlertStatus("PENDING")
	assert.False(t, ok)

	_, ok = ParseAlertStatus("bogus")
	assert.False(t, ok)
}

func TestParseRecommendationStatus(t *testing.T) {
	status, ok := ParseRecommendationStatus("executed")
	assert.True(t, ok)
	assert.Equal(t, StatusExecuted, status)

	_, ok = ParseRecommendationStatus("CALCULATED")
	assert.False(t, ok)
}

func TestTransferTier(t *testing.T) {
	assert.Equal(t, 1, TransferTier("PRINCIPAL", "A"))
	assert.Equal(t, 2, TransferTier("PRINCIPAL", "B"))
	assert.Equal(t, 3, TransferTier("SECONDARY", "A"))
	assert.Equal(t, 3, TransferTier("", ""))
}

func TestClassificationRank(t *testing.T) {
	assert.Equal(t, 1, ClassificationRank("A"))
	assert.Equal(t, 2, ClassificationRank("B"))
	assert.Equal(t, 3, ClassificationRank("C"))
	assert.Equal(t, 4, ClassificationRank("D"))
	assert.Equal(t, 4, ClassificationRank(""))
}
