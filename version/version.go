package version

import (
	"fmt"
	"io"
	"os"
)

// 构建时通过 -ldflags "-X github.com/dszqbsm/xiagu-crawler/version.GitHash=..." 写入
var (
	BuildTS   = "None"
	GitHash   = "None"
	GitBranch = "None"
	Version   = "None"
)

// 版本号加上7位提交哈希
func GetVersion() string {
	if GitHash == "" || GitHash == "None" {
		return Version
	}
	h := GitHash
	if len(h) > 7 {
		h = h[:7]
	}
	return fmt.Sprintf("%s-%s", Version, h)
}

func Fprint(w io.Writer) {
	fmt.Fprintln(w, "Version:          ", GetVersion())
	fmt.Fprintln(w, "Git Branch:       ", GitBranch)
	fmt.Fprintln(w, "Git Commit:       ", GitHash)
	fmt.Fprintln(w, "Build Time (UTC): ", BuildTS)
}

func Printer() {
	Fprint(os.Stdout)
}
