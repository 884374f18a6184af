package display

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatBytes(t *testing.T) {
	cases := []struct {
		in   int64
		want string
	}{
		{0, "0 B"},
		{999, "999 B"},
		{1024, "1.0 KiB"},
		{1536, "1.5 KiB"},
		{5 * 1024 * 1024, "5.0 MiB"},
		{3 * 1024 * 1024 * 1024, "3.0 GiB"},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, FormatBytes(c.in), "input %d", c.in)
	}
}

func TestFormatSeconds(t *testing.T) {
	assert.Equal(t, "0:05", FormatSeconds(5))
	assert.Equal(t, "1:30", FormatSeconds(90))
	assert.Equal(t, "1:00:01", FormatSeconds(3601))
	assert.Equal(t, "0:04", FormatSeconds(3.6))
}
