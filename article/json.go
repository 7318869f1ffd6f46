package article

import (
	"encoding/json"
	"io"
	"os"
)

// 以4空格缩进写出JSON数组，中文与HTML字符保持原样，没有记录时写出[]
func WriteRecords(path string, records []Record) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := EncodeRecords(f, records); err != nil {
		return err
	}
	return f.Close()
}

func EncodeRecords(w io.Writer, records []Record) error {
	if records == nil {
		records = []Record{}
	}
	enc := json.NewEncoder(w)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "    ")
	return enc.Encode(records)
}
