package textutil

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestSafeFilename(t *testing.T) {
	cases := []struct {
		in   string
		want string
	}{
		{"RSB-ORDER-1432", "RSB-ORDER-1432"},
		{" 27 ", "27"},
		{"a/b\\c", "a_b_c"},
		{"../../etc/passwd", "etc_passwd"},
		{"", "unknown"},
		{"***", "unknown"},
	}
	for _, c := range cases {
		require.Equal(t, c.want, SafeFilename(c.in), "input: %q", c.in)
	}
}
