package extensions

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerateRandomUA(t *testing.T) {
	for i := 0; i < 50; i++ {
		ua := GenerateRandomUA()
		assert.True(t, strings.HasPrefix(ua, "Mozilla/5.0 ("), ua)
		assert.True(t, strings.Contains(ua, "Chrome/") || strings.Contains(ua, "Firefox/"), ua)
	}
}
