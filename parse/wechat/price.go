package wechat

import (
	"errors"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/dszqbsm/xiagu-crawler/article"
	"golang.org/x/net/html"
)

// 解析文章正文中的价格表

var (
	ErrNoTableFound   = errors.New("no table found")
	ErrTableTooShort  = errors.New("table has fewer than two rows")
	ErrMissingHeaders = errors.New("table header misses required columns")
)

// 表头中必须出现的列名，按子串匹配
var RequiredHeaders = []string{"品种", "规格", "价格", "对比昨天"}

var lineBreaks = strings.NewReplacer("\n", "", "\r", "")

// 单元格内每一段文本分别去掉首尾空白后再拼接，<br>拆开的“25<br>元/斤”会合并为“25元/斤”
func cellText(s *goquery.Selection) string {
	var b strings.Builder
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(strings.TrimSpace(n.Data))
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	return lineBreaks.Replace(b.String())
}

func rowCells(tr *goquery.Selection) []string {
	var cells []string
	tr.Find("td, th").Each(func(_ int, cell *goquery.Selection) {
		cells = append(cells, cellText(cell))
	})
	return cells
}

// 每个必需列名都至少是某一个表头单元格的子串
func HasRequiredHeaders(headers []string) bool {
	for _, expected := range RequiredHeaders {
		found := false
		for _, h := range headers {
			if strings.Contains(h, expected) {
				found = true
				break
			}
		}
		if !found {
			return false
		}
	}
	return true
}

// 按位置取前四个单元格，不足四个的行丢弃
func RowFromCells(cells []string) (article.PriceRow, bool) {
	if len(cells) < 4 {
		return article.PriceRow{}, false
	}
	return article.PriceRow{
		Variety:            cells[0],
		Spec:               cells[1],
		Price:              cells[2],
		CompareToYesterday: cells[3],
	}, true
}

/*
输入文章正文的HTML片段，输出价格行和错误

只看第一个表格：第一行是标题横幅直接丢弃，第二行作为表头做列名校验，从第三行开始是数据
*/
func ParsePriceTable(markup string) ([]article.PriceRow, error) {
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(markup))
	if err != nil {
		return nil, err
	}

	tables := doc.Find("table")
	if tables.Length() == 0 {
		return nil, ErrNoTableFound
	}

	rows := tables.First().Find("tr")
	if rows.Length() < 2 {
		return nil, ErrTableTooShort
	}

	headers := rowCells(rows.Eq(1))
	if !HasRequiredHeaders(headers) {
		return nil, ErrMissingHeaders
	}

	priceRows := make([]article.PriceRow, 0, rows.Length()-2)
	rows.Slice(2, goquery.ToEnd).Each(func(_ int, tr *goquery.Selection) {
		if row, ok := RowFromCells(rowCells(tr)); ok {
			priceRows = append(priceRows, row)
		}
	})
	return priceRows, nil
}
