package response

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPaginated(t *testing.T) {
	tests := []struct {
		name      string
		limit     int
		total     int64
		wantPages int
	}{
		{"exact", 10, 30, 3},
		{"remainder", 10, 31, 4},
		{"empty", 10, 0, 0},
		{"zero limit", 0, 5, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			resp := Paginated([]int{}, 1, tt.limit, tt.total)
			meta, ok := resp.Meta.(PaginationMeta)
			require.True(t, ok)
			if meta.TotalPages != tt.wantPages {
				t.Errorf("TotalPages = %d, want %d", meta.TotalPages, tt.wantPages)
			}
		})
	}
}

func TestErrorEnvelope(t *testing.T) {
	body, err := json.Marshal(ErrorWithDetails(ErrCodeActiveBookings, "experience has active bookings", "suspend instead"))
	require.NoError(t, err)

	assert.JSONEq(t, `{
		"success": false,
		"error": {"code": "HAS_ACTIVE_BOOKINGS", "message": "experience has active bookings", "details": "suspend instead"}
	}`, string(body))
}

func TestSuccessOmitsError(t *testing.T) {
	body, err := json.Marshal(Success(map[string]string{"id": "1"}))
	require.NoError(t, err)
	assert.JSONEq(t, `{"success": true, "data": {"id": "1"}}`, string(body))
}
