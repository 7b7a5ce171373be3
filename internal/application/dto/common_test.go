package dto_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/jhoicas/inventario-alertas/internal/application/dto"
)

func TestPageRequest_DefaultPageYWindow(t *testing.T) {
	p := dto.PageRequest{Limit: 500, Offset: -3}
	p.DefaultPage()
	assert.Equal(t, dto.PageRequest{Limit: 100, Offset: 0}, p)

	p = dto.PageRequest{}
	p.DefaultPage()
	assert.Equal(t, 20, p.Limit)

	from, to := dto.PageRequest{Limit: 2, Offset: 1}.Window(5)
	assert.Equal(t, [2]int{1, 3}, [2]int{from, to})

	from, to = dto.PageRequest{Limit: 10, Offset: 8}.Window(5)
	assert.Equal(t, [2]int{5, 5}, [2]int{from, to})
}
