package article

import (
	"bufio"
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
)

// UTF-8 BOM，保证Excel打开中文CSV时不乱码
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

var ErrMissingColumn = errors.New("missing required column")

// 写入title,link两列，覆盖已有文件
func WriteLinks(path string, refs []Ref) error {
	return writeCSV(path, []string{"title", "link"}, refs, func(r Ref) []string {
		return []string{r.Title, r.Link}
	})
}

// 写入title,link,account,page四列，覆盖已有文件
func WriteSearchLinks(path string, refs []Ref) error {
	return writeCSV(path, []string{"title", "link", "account", "page"}, refs, func(r Ref) []string {
		return []string{r.Title, r.Link, r.Account, strconv.Itoa(r.Page)}
	})
}

func writeCSV(path string, header []string, refs []Ref, row func(Ref) []string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := encodeCSV(f, header, refs, row); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return f.Close()
}

func encodeCSV(w io.Writer, header []string, refs []Ref, row func(Ref) []string) error {
	if _, err := w.Write(utf8BOM); err != nil {
		return err
	}
	cw := csv.NewWriter(w)
	if err := cw.Write(header); err != nil {
		return err
	}
	for _, r := range refs {
		if err := cw.Write(row(r)); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// 读取任意包含title、link列的CSV文件，列的顺序不限
func ReadRefs(path string) ([]Ref, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	refs, err := DecodeRefs(f)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	return refs, nil
}

/*
输入一个CSV读取器，输出文章引用列表和错误

跳过文件开头的BOM，按表头定位title、link以及可选的account、page列；缺少link或title列时返回ErrMissingColumn，page不是整数时返回错误
*/
func DecodeRefs(r io.Reader) ([]Ref, error) {
	br := bufio.NewReader(r)
	if head, err := br.Peek(len(utf8BOM)); err == nil && bytes.Equal(head, utf8BOM) {
		if _, err := br.Discard(len(utf8BOM)); err != nil {
			return nil, err
		}
	}

	cr := csv.NewReader(br)
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if err == io.EOF {
		return nil, fmt.Errorf("%w: empty file", ErrMissingColumn)
	}
	if err != nil {
		return nil, err
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[strings.TrimSpace(name)] = i
	}
	for _, name := range []string{"link", "title"} {
		if _, ok := index[name]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrMissingColumn, name)
		}
	}

	get := func(record []string, name string) string {
		i, ok := index[name]
		if !ok || i >= len(record) {
			return ""
		}
		return record[i]
	}

	var refs []Ref
	for {
		record, err := cr.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return refs, err
		}
		ref := Ref{
			Title:   get(record, "title"),
			Link:    get(record, "link"),
			Account: get(record, "account"),
		}
		if page := get(record, "page"); page != "" {
			n, err := strconv.Atoi(strings.TrimSpace(page))
			if err != nil {
				line, _ := cr.FieldPos(index["page"])
				return refs, fmt.Errorf("line %d: invalid page %q: %w", line, page, err)
			}
			ref.Page = n
		}
		refs = append(refs, ref)
	}
	return refs, nil
}
