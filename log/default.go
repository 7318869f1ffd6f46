package log

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

// 日志文件轮转参数，单位分别为MB、个、天
const (
	defaultMaxSize    = 100
	defaultMaxBackups = 7
	defaultMaxAge     = 30
)

/*
无输入，输出一个编码器配置

在生产环境配置的基础上，日志级别使用大写，时间使用ISO8601格式，耗时字段以秒的字符串形式输出
*/
func DefaultEncoderConfig() zapcore.EncoderConfig {
	encoderConfig := zap.NewProductionEncoderConfig()
	encoderConfig.EncodeLevel = zapcore.CapitalLevelEncoder
	encoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	encoderConfig.EncodeDuration = zapcore.StringDurationEncoder
	return encoderConfig
}

// 所有输出目标共用同一种JSON编码
func DefaultEncoder() zapcore.Encoder {
	return zapcore.NewJSONEncoder(DefaultEncoderConfig())
}

/*
无输入，输出一组zap选项

记录调用位置，只有DPanic及以上级别才附带堆栈
*/
func DefaultOption() []zap.Option {
	var stackTraceLevel zap.LevelEnablerFunc = func(level zapcore.Level) bool {
		return level >= zapcore.DPanicLevel
	}
	return []zap.Option{
		zap.AddCaller(),
		zap.AddStacktrace(stackTraceLevel),
	}
}

/*
输入日志文件路径，输出一个按大小轮转的写入器

使用本地时间命名备份文件，并对旧文件进行压缩
*/
func DefaultLumberjackLogger(filePath string) *lumberjack.Logger {
	return &lumberjack.Logger{
		Filename:   filePath,
		MaxSize:    defaultMaxSize,
		MaxBackups: defaultMaxBackups,
		MaxAge:     defaultMaxAge,
		LocalTime:  true,
		Compress:   true,
	}
}
