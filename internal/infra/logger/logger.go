package logger

import (
	"context"
	"strings"
	"sync"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

var (
	lg   *zap.Logger
	once sync.Once
)

// New returns a singleton zap.Logger configured for structured logging.
func New(env string) (*zap.Logger, error) {
	var err error
	once.Do(func() {
		cfg := zap.NewProductionConfig()
		if env != "production" {
			cfg = zap.NewDevelopmentConfig()
			cfg.EncoderConfig.EncodeLevel = zapcore.CapitalColorLevelEncoder
		}

		lg, err = cfg.Build()
	})

	return lg, err
}

// WithContext attaches request scoped fields to the logger.
func WithContext(ctx context.Context) *zap.Logger {
	if lg == nil {
		lz, _ := zap.NewDevelopment()
		return lz
	}

	if ctx == nil {
		return lg
	}

	return lg.With(zap.String("request_id", requestIDFromContext(ctx)))
}

func requestIDFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if val, ok := ctx.Value(RequestIDKey{}).(string); ok {
		return val
	}
	return ""
}

// RequestIDKey is used to store a request identifier on the context.
type RequestIDKey struct{}

// MaskEmail masks an email address for log output, keeping up to the first
// three characters of the local part and the full domain.
func MaskEmail(email string) string {
	if email == "" {
		return ""
	}

	parts := strings.SplitN(email, "@", 2)
	if len(parts) != 2 {
		return "***"
	}

	local := parts[0]
	if len(local) > 3 {
		local = local[:3]
	}
	return local + "***@" + parts[1]
}

// MaskPhone masks a phone number, keeping only the last two digits.
func MaskPhone(phone string) string {
	if phone == "" {
		return ""
	}
	if len(phone) <= 2 {
		return "***"
	}
	return "***" + phone[len(phone)-2:]
}

// MaskIP performs partial IP masking, keeping the first two IPv4 octets
// or the first four IPv6 groups.
func MaskIP(ip string) string {
	if ip == "" {
		return ""
	}

	if strings.Contains(ip, ".") {
		parts := strings.Split(ip, ".")
		if len(parts) == 4 {
			return parts[0] + "." + parts[1] + ".*.*"
		}
	}

	if strings.Contains(ip, ":") {
		parts := strings.Split(ip, ":")
		if len(parts) >= 4 {
			return strings.Join(parts[:4], ":") + ":*:*:*:*"
		}
	}

	return "***"
}
