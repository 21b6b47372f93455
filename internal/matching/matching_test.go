package matching

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRatio(t *testing.T) {
	tests := []struct {
		name string
		a    string
		b    string
		want int
	}{
		{"identical", "123 main st", "123 main st", 100},
		{"both empty", "", "", 100},
		{"one empty", "123 main st", "", 0},
		{"single edit", "123 main st", "123 main ct", 90},
		{"completely different", "aaaa", "zzzz", 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Ratio(tt.a, tt.b))
		})
	}
}

func TestRatioSymmetric(t *testing.T) {
	pairs := [][2]string{
		{"123 main st", "123 maine st"},
		{"500 oak ave", "500 oak dr"},
		{"", "789 pine ln"},
	}
	for _, p := range pairs {
		assert.Equal(t, Ratio(p[0], p[1]), Ratio(p[1], p[0]))
	}
}

func TestRatioThresholds(t *testing.T) {
	// Near-duplicate addresses should clear the default threshold of 85,
	// distinct streets should not.
	assert.GreaterOrEqual(t, Ratio("123 main st", "123 mains st"), 85)
	assert.Less(t, Ratio("123 main st", "4875 gulf blvd"), 85)
}

func TestTokenSortRatio(t *testing.T) {
	assert.Equal(t, 100, TokenSortRatio("JOHN SMITH", "SMITH JOHN"))
	assert.Equal(t, 100, TokenSortRatio("SMITH FAMILY HOLDINGS", "HOLDINGS SMITH FAMILY"))
	assert.Less(t, TokenSortRatio("JOHN SMITH", "JANE DOE"), 75)
	assert.GreaterOrEqual(t, TokenSortRatio("JOHN SMITH JR", "SMITH JOHN"), 75)
}
