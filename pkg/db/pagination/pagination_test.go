package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestBuildPageInfo(t *testing.T) {
	info := BuildPageInfo(Pagination{Page: 2, Limit: 10}, 21)
	assert.Equal(t, int64(21), info.Total)
	assert.Equal(t, 2, info.Page)
	assert.Equal(t, 10, info.Limit)
	assert.Equal(t, 3, info.TotalPages)
}

func TestNormalizeDefaults(t *testing.T) {
	p := Pagination{Page: 0, Limit: 500}.Normalize()
	assert.Equal(t, DefaultPage, p.Page)
	assert.Equal(t, MaxLimit, p.Limit)
	assert.Equal(t, 0, p.Offset())

	assert.Equal(t, 20, Pagination{Page: 3, Limit: 10}.Offset())
}
