package projector

import (
	"testing"
	"time"

	"github.com/pixperk/handset/pkg/types"
	"github.com/stretchr/testify/assert"
)

func TestProject(t *testing.T) {
	t0 := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	lease := &types.Lease{Mobile: "phone-1", Requester: "alice", Made: t0, Due: t0.Add(time.Hour)}

	tests := []struct {
		name   string
		lease  *types.Lease
		now    time.Time
		status types.Status
	}{
		{"no lease", nil, t0, types.StatusAvailable},
		{"before due", lease, t0.Add(30 * time.Minute), types.StatusInUse},
		{"exactly due", lease, t0.Add(time.Hour), types.StatusInUse},
		{"one millisecond late", lease, t0.Add(time.Hour + time.Millisecond), types.StatusOverdue},
		{"long overdue", lease, t0.Add(72 * time.Hour), types.StatusOverdue},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			view := Project("phone-1", tt.lease, tt.now)

			assert.Equal(t, "phone-1", view.Mobile)
			assert.Equal(t, tt.status, view.Status)

			if tt.lease == nil {
				assert.False(t, view.Leased())
				assert.Empty(t, view.Requester)
				assert.True(t, view.Made.IsZero())
				assert.True(t, view.Due.IsZero())
				return
			}
			assert.True(t, view.Leased())
			assert.Equal(t, "alice", view.Requester)
			assert.Equal(t, t0, view.Made)
			assert.Equal(t, t0.Add(time.Hour), view.Due)
		})
	}
}

func TestProjectIsPure(t *testing.T) {
	t0 := time.Date(2024, 5, 6, 10, 0, 0, 0, time.UTC)
	lease := &types.Lease{Requester: "alice", Made: t0, Due: t0.Add(time.Minute)}
	snapshot := *lease

	first := Project("phone-1", lease, t0.Add(2*time.Minute))
	second := Project("phone-1", lease, t0.Add(2*time.Minute))

	assert.Equal(t, first, second)
	assert.Equal(t, snapshot, *lease)
}
