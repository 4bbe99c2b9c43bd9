package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMake(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"обычная категория", "Web Development", "web-development"},
		{"пробелы по краям", "  Data Science  ", "data-science"},
		{"несколько пробелов подряд", "Machine    Learning", "machine-learning"},
		{"уже слаг", "devops", "devops"},
		{"пустая строка", "", ""},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Make(tt.in))
		})
	}
}
