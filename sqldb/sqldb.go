package sqldb

// 对MySQL的简单封装：建表、批量插入、删表

import (
	"database/sql"
	"errors"
	"strings"

	_ "github.com/go-sql-driver/mysql"
	"go.uber.org/zap"
)

var (
	ErrEmptyColumns = errors.New("column can not be empty")
	ErrEmptyTable   = errors.New("table name can not be empty")
	ErrArgsMismatch = errors.New("args do not match columns")
)

type DBer interface {
	CreateTable(t TableData) error
	Insert(t TableData) error
	DropTable(t TableData) error
}

// 表中的一列
type Field struct {
	Title string
	Type  string
}

type TableData struct {
	TableName   string
	ColumnNames []Field
	Args        []interface{} // 按行展开的参数，长度为 len(ColumnNames)*DataCount
	DataCount   int
	AutoKey     bool
}

type Sqldb struct {
	options
	db *sql.DB
}

/*
输入一个或多个Option，输出一个Sqldb实例和一个error

打开连接并ping一次，连接失败直接返回错误
*/
func New(opts ...Option) (*Sqldb, error) {
	o := defaultOptions
	for _, opt := range opts {
		opt(&o)
	}
	d := &Sqldb{options: o}
	if err := d.OpenDB(); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Sqldb) OpenDB() error {
	db, err := sql.Open("mysql", d.sqlURL)
	if err != nil {
		return err
	}
	db.SetMaxOpenConns(d.maxOpenConns)
	db.SetMaxIdleConns(d.maxOpenConns)
	if err = db.Ping(); err != nil {
		db.Close()
		return err
	}
	d.db = db
	return nil
}

func (d *Sqldb) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *Sqldb) CreateTable(t TableData) error {
	query, err := CreateTableSQL(t)
	if err != nil {
		return err
	}
	d.logger.Debug("create table", zap.String("sql", query))
	_, err = d.db.Exec(query)
	return err
}

func (d *Sqldb) DropTable(t TableData) error {
	if t.TableName == "" {
		return ErrEmptyTable
	}
	query := "DROP TABLE IF EXISTS " + t.TableName
	d.logger.Debug("drop table", zap.String("sql", query))
	_, err := d.db.Exec(query)
	return err
}

func (d *Sqldb) Insert(t TableData) error {
	query, err := InsertSQL(t)
	if err != nil {
		return err
	}
	d.logger.Debug("insert table", zap.String("sql", query), zap.Int("rows", t.DataCount))
	_, err = d.db.Exec(query, t.Args...)
	return err
}

/*
输入一个TableData，输出建表语句和一个error

AutoKey为true时增加自增主键id，字符集固定为utf8mb4
*/
func CreateTableSQL(t TableData) (string, error) {
	if t.TableName == "" {
		return "", ErrEmptyTable
	}
	if len(t.ColumnNames) == 0 {
		return "", ErrEmptyColumns
	}

	var b strings.Builder
	b.WriteString("CREATE TABLE IF NOT EXISTS " + t.TableName + " (")
	if t.AutoKey {
		b.WriteString("id INT(12) NOT NULL PRIMARY KEY AUTO_INCREMENT,")
	}
	cols := make([]string, 0, len(t.ColumnNames))
	for _, c := range t.ColumnNames {
		cols = append(cols, c.Title+" "+c.Type)
	}
	b.WriteString(strings.Join(cols, ","))
	b.WriteString(") ENGINE=InnoDB DEFAULT CHARSET=utf8mb4;")
	return b.String(), nil
}

/*
输入一个TableData，输出插入语句和一个error

生成形如 INSERT INTO t(a,b) VALUES (?,?),(?,?); 的语句，占位符的组数等于DataCount
*/
func InsertSQL(t TableData) (string, error) {
	if t.TableName == "" {
		return "", ErrEmptyTable
	}
	if len(t.ColumnNames) == 0 {
		return "", ErrEmptyColumns
	}
	if t.DataCount <= 0 || len(t.Args) != len(t.ColumnNames)*t.DataCount {
		return "", ErrArgsMismatch
	}

	titles := make([]string, 0, len(t.ColumnNames))
	for _, c := range t.ColumnNames {
		titles = append(titles, c.Title)
	}
	row := "(" + strings.TrimSuffix(strings.Repeat("?,", len(t.ColumnNames)), ",") + ")"
	rows := strings.TrimSuffix(strings.Repeat(row+",", t.DataCount), ",")

	return "INSERT INTO " + t.TableName + "(" + strings.Join(titles, ",") + ") VALUES " + rows + ";", nil
}
