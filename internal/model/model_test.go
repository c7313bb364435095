package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestUserJSONOmitsPasswordHash(t *testing.T) {
	t.Parallel()

	user := User{
		ID:           "u-1",
		Username:     "alice",
		PasswordHash: "$argon2id$v=19$m=65536,t=3,p=1$c2FsdA$ZGlnZXN0",
		CreatedAt:    time.Now().UTC(),
	}

	raw, err := json.Marshal(user)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "argon2id")
	assert.NotContains(t, string(raw), "password")

	raw, err = json.Marshal(user.Public())
	require.NoError(t, err)
	assert.NotContains(t, string(raw), "argon2id")
}

func TestProductFilterMatches(t *testing.T) {
	t.Parallel()

	product := Product{Name: "Espresso Machine", Description: "Dual boiler", Category: "Kitchen", PriceCents: 49900}
	cents := func(v int64) *int64 { return &v }

	tests := []struct {
		name   string
		filter ProductFilter
		query  string
		want   bool
	}{
		{"empty filter", ProductFilter{}, "", true},
		{"name substring", ProductFilter{}, "espresso", true},
		{"description substring", ProductFilter{}, "boiler", true},
		{"no match", ProductFilter{}, "grinder", false},
		{"category case-insensitive", ProductFilter{Category: "kitchen"}, "", true},
		{"other category", ProductFilter{Category: "garden"}, "", false},
		{"inclusive min", ProductFilter{MinPriceCents: cents(49900)}, "", true},
		{"inclusive max", ProductFilter{MaxPriceCents: cents(49900)}, "", true},
		{"below min", ProductFilter{MinPriceCents: cents(50000)}, "", false},
		{"above max", ProductFilter{MaxPriceCents: cents(100)}, "", false},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.want, tc.filter.Matches(product, tc.query))
		})
	}
}

func TestNewMeta(t *testing.T) {
	t.Parallel()

	assert.Equal(t, &Meta{Page: 2, Limit: 10, Total: 21, TotalPages: 3}, NewMeta(2, 10, 21))
	assert.Equal(t, 0, NewMeta(1, 10, 0).TotalPages)
}
