package sqlstorage

// 把提取到的价格记录按行写入MySQL，每个价格行对应一条数据库记录

import (
	"io"

	"github.com/dszqbsm/xiagu-crawler/article"
	"github.com/dszqbsm/xiagu-crawler/sqldb"
	"go.uber.org/zap"
)

var columnNames = []sqldb.Field{
	{Title: "date", Type: "VARCHAR(16)"},
	{Title: "title", Type: "VARCHAR(255)"},
	{Title: "link", Type: "VARCHAR(1024)"},
	{Title: "variety", Type: "VARCHAR(255)"},
	{Title: "spec", Type: "VARCHAR(255)"},
	{Title: "price", Type: "VARCHAR(255)"},
	{Title: "compare_to_yesterday", Type: "VARCHAR(255)"},
}

type SqlStore struct {
	rows    [][]interface{} // 等待写入的行
	db      sqldb.DBer
	created bool
	options
}

func New(opts ...Option) (*SqlStore, error) {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	db, err := sqldb.New(
		sqldb.WithConnURL(o.sqlURL),
		sqldb.WithLogger(o.logger),
	)
	if err != nil {
		return nil, err
	}
	return newStore(db, o), nil
}

func newStore(db sqldb.DBer, o options) *SqlStore {
	if o.logger == nil {
		o.logger = zap.NewNop()
	}
	if o.BatchCount <= 0 {
		o.BatchCount = 1
	}
	return &SqlStore{db: db, options: o}
}

/*
输入一条或多条价格记录，输出一个error

第一次保存时建表，配置了reset时先删除旧表；记录按价格行展开后放入缓存，缓存行数达到BatchCount时写入数据库
*/
func (s *SqlStore) Save(records ...*article.Record) error {
	if !s.created {
		table := sqldb.TableData{
			TableName:   s.tableName,
			ColumnNames: columnNames,
			AutoKey:     true,
		}
		if s.reset {
			if err := s.db.DropTable(table); err != nil {
				return err
			}
			s.logger.Info("drop table", zap.String("table", s.tableName))
		}
		if err := s.db.CreateTable(table); err != nil {
			return err
		}
		s.created = true
	}

	for _, r := range records {
		for _, row := range r.PriceRows {
			s.rows = append(s.rows, []interface{}{
				r.Date, r.Title, r.Link,
				row.Variety, row.Spec, row.Price, row.CompareToYesterday,
			})
			if len(s.rows) >= s.BatchCount {
				if err := s.Flush(); err != nil {
					return err
				}
			}
		}
	}
	return nil
}

// 写入缓存中剩余的行，无论成功与否都会清空缓存
func (s *SqlStore) Flush() error {
	if len(s.rows) == 0 {
		return nil
	}
	defer func() {
		s.rows = nil
	}()

	args := make([]interface{}, 0, len(s.rows)*len(columnNames))
	for _, row := range s.rows {
		args = append(args, row...)
	}
	s.logger.Debug("flush price rows", zap.Int("rows", len(s.rows)))
	return s.db.Insert(sqldb.TableData{
		TableName:   s.tableName,
		ColumnNames: columnNames,
		Args:        args,
		DataCount:   len(s.rows),
	})
}

func (s *SqlStore) Close() error {
	if c, ok := s.db.(io.Closer); ok {
		return c.Close()
	}
	return nil
}
