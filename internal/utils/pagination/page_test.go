package pagination

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewPage(t *testing.T) {
	p, err := NewPage(2, 2)
	require.NoError(t, err)
	assert.Equal(t, 2, p.Offset())
	assert.Equal(t, 2, p.Limit())

	_, err = NewPage(0, 10)
	assert.Error(t, err, "page is 1-indexed")

	_, err = NewPage(1, 0)
	assert.Error(t, err)

	_, err = NewPage(1, MaxPageSize+1)
	assert.Error(t, err)
}

func TestPage_TotalPages(t *testing.T) {
	tests := []struct {
		size  int
		total int
		want  int
	}{
		{size: 2, total: 3, want: 2},
		{size: 2, total: 4, want: 2},
		{size: 20, total: 0, want: 0},
		{size: 20, total: 1, want: 1},
		{size: 1, total: 7, want: 7},
	}
	for _, tt := range tests {
		p := Page{Number: 1, Size: tt.size}
		assert.Equal(t, tt.want, p.TotalPages(tt.total), "size=%d total=%d", tt.size, tt.total)
	}
}

func TestPage_OffsetSaturates(t *testing.T) {
	p, err := NewPage(1<<62, 4)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, p.Offset())

	p, err = NewPage(math.MaxInt, MaxPageSize)
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, p.Offset())

	p, err = NewPage(3, MaxPageSize)
	require.NoError(t, err)
	assert.Equal(t, 200, p.Offset())
}
