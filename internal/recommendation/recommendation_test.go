package recommendation

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStatus_Valid(t *testing.T) {
	for _, status := range []Status{StatusGenerated, StatusViewed, StatusDismissed, StatusAccepted} {
		assert.True(t, status.Valid(), string(status))
	}

	assert.False(t, Status("archived").Valid())
	assert.False(t, Status("").Valid())
}

func TestStatus_Terminal(t *testing.T) {
	assert.False(t, StatusGenerated.Terminal())
	assert.False(t, StatusViewed.Terminal())
	assert.True(t, StatusDismissed.Terminal())
	assert.True(t, StatusAccepted.Terminal())
}

func TestStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		name    string
		from    Status
		to      Status
		allowed bool
	}{
		{"generated to viewed", StatusGenerated, StatusViewed, true},
		{"generated to dismissed", StatusGenerated, StatusDismissed, true},
		{"generated to accepted", StatusGenerated, StatusAccepted, true},
		{"viewed to dismissed", StatusViewed, StatusDismissed, true},
		{"viewed to accepted", StatusViewed, StatusAccepted, true},
		{"viewed back to generated", StatusViewed, StatusGenerated, false},
		{"dismissed is final", StatusDismissed, StatusViewed, false},
		{"dismissed never flips to accepted", StatusDismissed, StatusAccepted, false},
		{"accepted is final", StatusAccepted, StatusDismissed, false},
		{"accepted never reverts", StatusAccepted, StatusGenerated, false},
		{"unknown target rejected", StatusGenerated, Status("archived"), false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.allowed, tt.from.CanTransitionTo(tt.to))
		})
	}
}

func TestRecord_TableName(t *testing.T) {
	assert.Equal(t, "recommendations", Record{}.TableName())
}
