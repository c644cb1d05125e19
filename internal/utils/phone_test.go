package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestMaskPhone(t *testing.T) {
	assert.Equal(t, "", MaskPhone(""))
	assert.Equal(t, "****", MaskPhone("1234"))
	assert.Equal(t, "***", MaskPhone("123"))
	assert.Equal(t, "******7890", MaskPhone("9876547890"))
	assert.Equal(t, "*********0123", MaskPhone("+91 98765 0123"))
}

func TestMaskPhone_NeverRevealsMoreThanFour(t *testing.T) {
	for _, phone := range []string{"12345", "9876543210", "+1 (555) 012-3456"} {
		masked := MaskPhone(phone)
		assert.Len(t, masked, len([]rune(phone)))
		unmasked := 0
		for _, r := range masked {
			if r != '*' {
				unmasked++
			}
		}
		assert.LessOrEqual(t, unmasked, 4, "phone %q leaked too much", phone)
	}
}
