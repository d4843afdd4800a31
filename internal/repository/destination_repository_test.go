package repository

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	t.Parallel()

	tests := []struct {
		in   string
		want string
	}{
		{"Bangkok", "bangkok"},
		{"Cape Town", "cape-town"},
		{"Wat Pho & Grand Palace", "wat-pho-grand-palace"},
		{"  Thonglor  ", "thonglor"},
		{"Ko Pha-ngan", "ko-pha-ngan"},
		{"District 1", "district-1"},
		{"", ""},
		{"---", ""},
	}

	for _, tc := range tests {
		t.Run(tc.in, func(t *testing.T) {
			t.Parallel()
			assert.Equal(t, tc.want, Slugify(tc.in))
		})
	}
}
