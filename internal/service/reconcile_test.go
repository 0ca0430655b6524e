package service

import (
	"slices"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	tests := []struct {
		name           string
		current        []string
		requested      []string
		wantConnect    []string
		wantDisconnect []string
	}{
		{"swap one", []string{"pix", "cash"}, []string{"cash", "card"}, []string{"card"}, []string{"pix"}},
		{"unchanged", []string{"pix", "cash"}, []string{"cash", "pix"}, nil, nil},
		{"from empty", nil, []string{"pix"}, []string{"pix"}, nil},
		{"replace all", []string{"voucher"}, []string{"deposit", "card"}, []string{"card", "deposit"}, []string{"voucher"}},
		{"duplicates collapse", []string{"pix", "pix"}, []string{"cash", "cash", "pix"}, []string{"cash"}, nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			connect, disconnect := Reconcile(tt.current, tt.requested)
			assert.Equal(t, tt.wantConnect, connect)
			assert.Equal(t, tt.wantDisconnect, disconnect)
		})
	}
}

// Applying the diff to current must always yield requested, and no key may
// be both connected and disconnected.
func TestReconcileProperties(t *testing.T) {
	vocab := []string{"voucher", "pix", "cash", "deposit", "card"}

	subsets := make([][]string, 0, 1<<len(vocab))
	for mask := 0; mask < 1<<len(vocab); mask++ {
		var s []string
		for i, k := range vocab {
			if mask&(1<<i) != 0 {
				s = append(s, k)
			}
		}
		subsets = append(subsets, s)
	}

	for _, current := range subsets {
		for _, requested := range subsets {
			connect, disconnect := Reconcile(current, requested)

			for _, k := range connect {
				assert.NotContains(t, disconnect, k)
			}

			result := keySet(current)
			for _, k := range disconnect {
				delete(result, k)
			}
			for _, k := range connect {
				result[k] = struct{}{}
			}

			got := make([]string, 0, len(result))
			for k := range result {
				got = append(got, k)
			}
			want := append([]string{}, requested...)
			slices.Sort(got)
			slices.Sort(want)
			assert.Equal(t, want, got, "current=%v requested=%v", current, requested)
		}
	}
}

func TestUniqueKeys(t *testing.T) {
	assert.Equal(t, []string{"b", "a"}, uniqueKeys([]string{"b", "a", "b"}))
	assert.Empty(t, uniqueKeys(nil))
}

func TestAuthorize(t *testing.T) {
	assert.NoError(t, Authorize("u1", "u1"))
	assert.ErrorIs(t, Authorize("u2", "u1"), ErrUnauthorized)
	assert.ErrorIs(t, Authorize("", ""), ErrUnauthorized)
}
