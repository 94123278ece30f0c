// zap 로거 생성
//
// LOG_FORMAT=json 이면 production 인코더, console 이면 development 인코더 사용
// LOG_LEVEL 파싱 실패 시 info

package logging

import (
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const (
	FormatJSON    = "json"
	FormatConsole = "console"
)

// New - 레벨과 포맷을 반영한 zap.Logger 생성
func New(level, format string) (*zap.Logger, error) {
	var cfg zap.Config
	if format == FormatConsole {
		cfg = zap.NewDevelopmentConfig()
	} else {
		cfg = zap.NewProductionConfig()
		cfg.EncoderConfig.TimeKey = "timestamp"
		cfg.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	}

	lvl, err := zapcore.ParseLevel(level)
	if err != nil {
		lvl = zapcore.InfoLevel
	}
	cfg.Level = zap.NewAtomicLevelAt(lvl)

	return cfg.Build()
}

// AlertFields - 알림 단위 로그에 공통으로 붙이는 필드
func AlertFields(alertName, fingerprint string) []zap.Field {
	return []zap.Field{
		zap.String("alert_name", alertName),
		zap.String("fingerprint", fingerprint),
	}
}
