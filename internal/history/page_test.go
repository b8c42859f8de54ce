package history

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPaginate(t *testing.T) {
	items := []int{1, 2, 3, 4, 5, 6, 7}

	t.Run("first page", func(t *testing.T) {
		p := Paginate(items, 1, 3)
		assert.Equal(t, []int{1, 2, 3}, p.Items)
		assert.Equal(t, 3, p.Pages)
		assert.Equal(t, 7, p.Total)
		assert.False(t, p.HasPrevious())
		assert.True(t, p.HasNext())
	})

	t.Run("partial last page", func(t *testing.T) {
		p := Paginate(items, 3, 3)
		assert.Equal(t, []int{7}, p.Items)
		assert.True(t, p.HasPrevious())
		assert.False(t, p.HasNext())
	})

	t.Run("out of range pages clamp", func(t *testing.T) {
		assert.Equal(t, 3, Paginate(items, 99, 3).Number)
		assert.Equal(t, 1, Paginate(items, -4, 3).Number)
	})

	t.Run("empty input has one empty page", func(t *testing.T) {
		p := Paginate([]int{}, 2, 10)
		assert.Empty(t, p.Items)
		assert.Equal(t, 1, p.Number)
		assert.Equal(t, 1, p.Pages)
	})

	t.Run("non positive size", func(t *testing.T) {
		p := Paginate(items, 2, 0)
		assert.Equal(t, []int{2}, p.Items)
	})
}
