package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
logLevel = "DEBUG"

[fetcher]
timeout = "15s"
proxy = ["http://127.0.0.1:8888"]

[appmsg]
token = "1630039504"
cookie = "slave_sid=abc"
maxOffset = 40

[appmsg.pageDelay]
min = "1s"
max = "2s"

[search]
keyword = "小龙虾价格"
maxPages = 3
`

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad(t *testing.T) {
	c, err := Load(writeConfig(t, sample))
	require.NoError(t, err)

	assert.Equal(t, "DEBUG", c.LogLevel)
	assert.Equal(t, 15*time.Second, c.FetchTimeout())
	assert.Equal(t, []string{"http://127.0.0.1:8888"}, c.Fetcher.Proxy)
	assert.Equal(t, "1630039504", c.AppMsg.Token)
	assert.Equal(t, "slave_sid=abc", c.AppMsg.Cookie)
	assert.Equal(t, 40, c.AppMsg.MaxOffset)
	assert.Equal(t, "小龙虾价格", c.Search.Keyword)
	assert.Equal(t, 3, c.Search.MaxPages)

	minDelay, maxDelay, err := c.AppMsg.PageDelay.Durations()
	require.NoError(t, err)
	assert.Equal(t, time.Second, minDelay)
	assert.Equal(t, 2*time.Second, maxDelay)

	// 文件中没有的字段保持默认值
	assert.Equal(t, 4, c.AppMsg.PageSize)
	assert.Equal(t, "MzkyMTY0Nzg4Mg==", c.AppMsg.FakeID)
	assert.Equal(t, "#js_content", c.Extract.ContentSelector)
	assert.Equal(t, 10*time.Second, c.WaitTimeout())
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	c := Default()
	c.Search.ItemDelay.Max = "two seconds"
	assert.ErrorContains(t, c.Validate(), "search.itemDelay")

	c = Default()
	c.AppMsg.PageSize = 0
	assert.ErrorContains(t, c.Validate(), "appmsg.pageSize")

	c = Default()
	c.Extract.WaitTimeout = "10"
	assert.ErrorContains(t, c.Validate(), "extract.waitTimeout")
}

func TestValidateTimeoutMustBePositive(t *testing.T) {
	tests := []struct {
		name string
		set  func(c *Config)
		want string
	}{
		{"empty wait timeout", func(c *Config) { c.Extract.WaitTimeout = "" }, "extract.waitTimeout"},
		{"zero wait timeout", func(c *Config) { c.Extract.WaitTimeout = "0s" }, "extract.waitTimeout"},
		{"empty fetch timeout", func(c *Config) { c.Fetcher.Timeout = "" }, "fetcher.timeout"},
		{"negative fetch timeout", func(c *Config) { c.Fetcher.Timeout = "-5s" }, "fetcher.timeout"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := Default()
			tt.set(&c)
			assert.ErrorContains(t, c.Validate(), tt.want)
		})
	}
}

func TestLoadRejectsEmptyWaitTimeout(t *testing.T) {
	_, err := Load(writeConfig(t, `
[extract]
waitTimeout = ""
`))
	assert.ErrorContains(t, err, "extract.waitTimeout")
}
