package wechat

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

// 匹配“几年几月几日虾谷龙虾报价”格式的标题，只要求包含不要求整行匹配；数字可以是全角等任意十进制数字
var priceTitleRe = regexp.MustCompile(`\p{Nd}+年\p{Nd}+月\p{Nd}+日虾谷龙虾报价`)

// 从标题中提取日期
var titleDateRe = regexp.MustCompile(`(\p{Nd}{4})年(\p{Nd}{1,2})月(\p{Nd}{1,2})日`)

func MatchPriceTitle(title string) bool {
	return priceTitleRe.MatchString(title)
}

/*
输入文章标题，输出YYYY-MM-DD格式的日期和是否提取成功

月和日补齐为两位，全角数字转换为ASCII数字，标题中没有日期时返回false
*/
func ExtractDate(title string) (string, bool) {
	m := titleDateRe.FindStringSubmatch(title)
	if len(m) < 4 {
		return "", false
	}
	year := asciiDigits(m[1])
	month, err := strconv.Atoi(asciiDigits(m[2]))
	if err != nil {
		return "", false
	}
	day, err := strconv.Atoi(asciiDigits(m[3]))
	if err != nil {
		return "", false
	}
	return fmt.Sprintf("%s-%02d-%02d", year, month, day), true
}

// 十进制数字在Unicode中按0到9连续排列，向前找到所在区段的起点即可算出数值
func asciiDigits(s string) string {
	return strings.Map(func(r rune) rune {
		if r >= '0' && r <= '9' {
			return r
		}
		if !unicode.IsDigit(r) {
			return r
		}
		zero := r
		for unicode.IsDigit(zero - 1) {
			zero--
		}
		return '0' + (r-zero)%10
	}, s)
}
