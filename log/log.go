package log

import (
	"io"
	"os"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

type Plugin = zapcore.Core

// 由一个或多个插件构造日志器，多个插件会被合并为同时输出
func NewLogger(plugins []Plugin, options ...zap.Option) *zap.Logger {
	return zap.New(zapcore.NewTee(plugins...), append(DefaultOption(), options...)...)
}

func NewPlugin(writer zapcore.WriteSyncer, enabler zapcore.LevelEnabler) Plugin {
	return zapcore.NewCore(DefaultEncoder(), writer, enabler)
}

func NewStdoutPlugin(enabler zapcore.LevelEnabler) Plugin {
	return NewPlugin(zapcore.Lock(zapcore.AddSync(os.Stdout)), enabler)
}

// lumberjack没有实现Sync，返回的closer需要在进程退出前关闭，保证内容落盘
func NewFilePlugin(filePath string, enabler zapcore.LevelEnabler) (Plugin, io.Closer) {
	writer := DefaultLumberjackLogger(filePath)
	return NewPlugin(zapcore.AddSync(writer), enabler), writer
}

type nopCloser struct{}

func (nopCloser) Close() error { return nil }

/*
输入日志级别文本和可选的日志文件路径，输出日志器、需要在退出前关闭的closer和错误

级别文本无法解析时返回错误；filePath为空时只输出到标准输出，否则同时写入轮转文件
*/
func Setup(levelText, filePath string) (*zap.Logger, io.Closer, error) {
	level, err := zapcore.ParseLevel(levelText)
	if err != nil {
		return nil, nil, err
	}

	plugins := []Plugin{NewStdoutPlugin(level)}
	var closer io.Closer = nopCloser{}
	if filePath != "" {
		var filePlugin Plugin
		filePlugin, closer = NewFilePlugin(filePath, level)
		plugins = append(plugins, filePlugin)
	}

	return NewLogger(plugins), closer, nil
}
