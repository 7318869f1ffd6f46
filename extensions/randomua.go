package extensions

import (
	"fmt"
	"math/rand"
)

// 生成随机的桌面浏览器User-Agent，降低同一UA被识别封禁的概率

var (
	platforms = []string{
		"Windows NT 10.0; Win64; x64",
		"Windows NT 6.1; Win64; x64",
		"Macintosh; Intel Mac OS X 10_15_7",
		"X11; Linux x86_64",
	}
	chromeVersions = []string{
		"114.0.5735.199", "116.0.5845.188", "118.0.5993.118",
		"120.0.6099.129", "122.0.6261.112", "124.0.6367.91",
	}
	firefoxVersions = []string{"115.0", "119.0", "121.0", "124.0"}
)

func GenerateRandomUA() string {
	platform := platforms[rand.Intn(len(platforms))]
	if rand.Intn(4) == 0 {
		v := firefoxVersions[rand.Intn(len(firefoxVersions))]
		return fmt.Sprintf("Mozilla/5.0 (%s; rv:%s) Gecko/20100101 Firefox/%s", platform, v, v)
	}
	v := chromeVersions[rand.Intn(len(chromeVersions))]
	return fmt.Sprintf("Mozilla/5.0 (%s) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/%s Safari/537.36", platform, v)
}
