package wechat

import (
	"errors"
	"fmt"
	"net/url"
	"strings"

	"github.com/antchfx/htmlquery"
	"github.com/dszqbsm/xiagu-crawler/article"
	"golang.org/x/net/html"
)

// 解析搜狗微信搜索结果页

const (
	// 每条结果的缩略图容器，数量为0说明到了最后一页或被验证码拦截
	resultBoxXPath = `//div[contains(concat(' ', normalize-space(@class), ' '), ' img-box ')]`
	titleXPath     = `.//h3//a`
	accountXPath   = `.//div[contains(concat(' ', normalize-space(@class), ' '), ' s-p ')]` +
		`//span[contains(concat(' ', normalize-space(@class), ' '), ' all-time-y2 ')]`
)

var (
	ErrNoLink    = errors.New("result has no link")
	ErrNoTitle   = errors.New("result has no title")
	ErrNoAccount = errors.New("result has no account")
)

// 单条结果的提取错误，Index为容器在页面中的序号
type ItemError struct {
	Page  int
	Index int
	Err   error
}

func (e *ItemError) Error() string {
	return fmt.Sprintf("page %d item %d: %v", e.Page, e.Index, e.Err)
}

func (e *ItemError) Unwrap() error { return e.Err }

/*
输入搜索结果页的HTML、页面地址和页码，输出文章引用、单条结果的错误以及整页解析错误

链接取容器内第一个a标签的href，并按页面地址补全为绝对地址；标题取父节点下h3中的a标签文本；公众号名称取父节点下div.s-p中的span.all-time-y2文本。
任一字段缺失的结果会被跳过，并在第二个返回值中记录原因
*/
func ParseSearchResults(markup, pageURL string, page int) ([]article.Ref, []error, error) {
	doc, err := htmlquery.Parse(strings.NewReader(markup))
	if err != nil {
		return nil, nil, err
	}
	base, err := url.Parse(pageURL)
	if err != nil {
		return nil, nil, err
	}

	boxes, err := htmlquery.QueryAll(doc, resultBoxXPath)
	if err != nil {
		return nil, nil, err
	}

	var (
		refs     []article.Ref
		itemErrs []error
	)
	for i, box := range boxes {
		ref, err := parseResult(box, base)
		if err != nil {
			itemErrs = append(itemErrs, &ItemError{Page: page, Index: i, Err: err})
			continue
		}
		ref.Page = page
		refs = append(refs, ref)
	}
	return refs, itemErrs, nil
}

func parseResult(box *html.Node, base *url.URL) (article.Ref, error) {
	a := htmlquery.FindOne(box, ".//a")
	if a == nil {
		return article.Ref{}, ErrNoLink
	}
	href := strings.TrimSpace(htmlquery.SelectAttr(a, "href"))
	if href == "" {
		return article.Ref{}, ErrNoLink
	}
	link, err := base.Parse(href)
	if err != nil {
		return article.Ref{}, fmt.Errorf("%w: %v", ErrNoLink, err)
	}

	parent := box.Parent
	if parent == nil {
		return article.Ref{}, ErrNoTitle
	}

	titleNode := htmlquery.FindOne(parent, titleXPath)
	if titleNode == nil {
		return article.Ref{}, ErrNoTitle
	}
	accountNode := htmlquery.FindOne(parent, accountXPath)
	if accountNode == nil {
		return article.Ref{}, ErrNoAccount
	}

	return article.Ref{
		Title:   strings.TrimSpace(htmlquery.InnerText(titleNode)),
		Link:    link.String(),
		Account: strings.TrimSpace(htmlquery.InnerText(accountNode)),
	}, nil
}
