package sqlstorage

import (
	"go.uber.org/zap"
)

type options struct {
	logger     *zap.Logger
	sqlURL     string
	tableName  string
	reset      bool // 第一次保存前删除旧表，重复运行时数据库中不会出现重复行
	BatchCount int  // 攒够多少行写一次
}

var defaultOptions = options{
	logger:     zap.NewNop(),
	tableName:  "xiagu_price",
	BatchCount: 20,
}

type Option func(opts *options)

func WithLogger(logger *zap.Logger) Option {
	return func(opts *options) {
		opts.logger = logger
	}
}

func WithSqlURL(sqlURL string) Option {
	return func(opts *options) {
		opts.sqlURL = sqlURL
	}
}

func WithTableName(name string) Option {
	return func(opts *options) {
		opts.tableName = name
	}
}

func WithBatchCount(batchCount int) Option {
	return func(opts *options) {
		opts.BatchCount = batchCount
	}
}

func WithReset(reset bool) Option {
	return func(opts *options) {
		opts.reset = reset
	}
}
