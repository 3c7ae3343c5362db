package handlers

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSeries_OrdersByCountThenLabel(t *testing.T) {
	s := series(map[string]int{"Retorno": 2, "Online": 2, "Primeira Consulta": 5})
	assert.Equal(t, []string{"Primeira Consulta", "Online", "Retorno"}, s.Labels)
	assert.Equal(t, []int{5, 2, 2}, s.Data)

	empty := series(map[string]int{})
	assert.Empty(t, empty.Labels)
	assert.NotNil(t, empty.Data)
}
