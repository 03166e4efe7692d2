package util_test

import (
	"testing"

	"github.com/google/osv-scanner/pkg/models"
	"github.com/stretchr/testify/assert"

	"github.com/ortelius/forkpoint-cves/util"
)

func TestCalculateCVSSScore(t *testing.T) {
	assert.InDelta(t, 9.8, util.CalculateCVSSScore("CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"), 0.01)
	assert.InDelta(t, 5.3, util.CalculateCVSSScore("CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:L/I:N/A:N"), 0.01)
	assert.Zero(t, util.CalculateCVSSScore(""))
	assert.Zero(t, util.CalculateCVSSScore("AV:N/AC:L"))
	assert.Zero(t, util.CalculateCVSSScore("CVSS:3.1/garbage"))
}

func TestHighestCVSSScore(t *testing.T) {
	score := util.HighestCVSSScore([]models.Severity{
		{Type: models.SeverityCVSSV3, Score: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:L/I:N/A:N"},
		{Type: models.SeverityCVSSV3, Score: "CVSS:3.1/AV:N/AC:L/PR:N/UI:N/S:U/C:H/I:H/A:H"},
		{Type: "Ubuntu", Score: "high"},
	})
	assert.InDelta(t, 9.8, score, 0.01)
	assert.Zero(t, util.HighestCVSSScore(nil))
}

func TestGetSeverityRating(t *testing.T) {
	tests := []struct {
		score float64
		want  string
	}{
		{0, "NONE"},
		{3.9, "LOW"},
		{4.0, "MEDIUM"},
		{7.0, "HIGH"},
		{8.9, "HIGH"},
		{9.0, "CRITICAL"},
		{10, "CRITICAL"},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, util.GetSeverityRating(tt.score), tt.score)
	}
}
