package observability

import (
	"context"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/riskibarqy/hockey-predictor/internal/platform/logging"
	otellog "go.opentelemetry.io/otel/log"
	otelglobal "go.opentelemetry.io/otel/log/global"
	"go.uber.org/zap/zapcore"
)

const mirrorInstrumentation = "hockey-predictor/internal/platform/logging"

// probePaths are request logs not worth shipping.
var probePaths = map[string]bool{"/healthz": true, "/health": true, "/livez": true, "/readyz": true}

var severityByLevel = map[zapcore.Level]otellog.Severity{
	zapcore.DebugLevel:  otellog.SeverityDebug,
	zapcore.InfoLevel:   otellog.SeverityInfo,
	zapcore.WarnLevel:   otellog.SeverityWarn,
	zapcore.ErrorLevel:  otellog.SeverityError,
	zapcore.DPanicLevel: otellog.SeverityFatal,
	zapcore.PanicLevel:  otellog.SeverityFatal,
	zapcore.FatalLevel:  otellog.SeverityFatal,
}

// otelMirror copies zap records into the global OpenTelemetry log provider,
// which uptrace exports.
type otelMirror struct {
	logger otellog.Logger
	now    func() time.Time
}

func newUptraceLogMirror(serviceVersion string) logging.MirrorFunc {
	m := &otelMirror{
		logger: otelglobal.Logger(mirrorInstrumentation, otellog.WithInstrumentationVersion(serviceVersion)),
		now:    time.Now,
	}
	return m.emit
}

func (m *otelMirror) emit(ctx context.Context, level logging.Level, msg string, args ...any) {
	if isProbeRequestLog(msg, args) {
		return
	}
	if ctx == nil {
		ctx = context.Background()
	}

	severity, ok := severityByLevel[level]
	if !ok {
		severity = otellog.SeverityError
	}
	if !m.logger.Enabled(ctx, otellog.EnabledParameters{Severity: severity, EventName: msg}) {
		return
	}

	var record otellog.Record
	ts := m.now().UTC()
	record.SetTimestamp(ts)
	record.SetObservedTimestamp(ts)
	record.SetSeverity(severity)
	record.SetSeverityText(strings.ToUpper(level.String()))
	record.SetEventName(msg)
	record.SetBody(otellog.StringValue(msg))
	record.AddAttributes(logAttributes(args)...)
	m.logger.Emit(ctx, record)
}

func isProbeRequestLog(msg string, args []any) bool {
	if msg != "http request" {
		return false
	}
	for i := 0; i+1 < len(args); i += 2 {
		if args[i] == "path" {
			path, _ := args[i+1].(string)
			return probePaths[path]
		}
	}
	return false
}

// logAttributes pairs slog-style args. A dangling key becomes an empty
// attribute and a non-string key is named by its position.
func logAttributes(args []any) []otellog.KeyValue {
	attrs := make([]otellog.KeyValue, 0, (len(args)+1)/2)
	for i := 0; i < len(args); i += 2 {
		key, _ := args[i].(string)
		if strings.TrimSpace(key) == "" {
			key = "arg_" + strconv.Itoa(i/2)
		}
		if i+1 == len(args) {
			attrs = append(attrs, otellog.Empty(key))
			break
		}
		attrs = append(attrs, otellog.KeyValue{Key: key, Value: logValue(args[i+1])})
	}
	return attrs
}

func logValue(value any) otellog.Value {
	switch v := value.(type) {
	case nil:
		return otellog.Value{}
	case string:
		return otellog.StringValue(v)
	case bool:
		return otellog.BoolValue(v)
	case int:
		return otellog.IntValue(v)
	case int32:
		return otellog.Int64Value(int64(v))
	case int64:
		return otellog.Int64Value(v)
	case float64:
		return otellog.Float64Value(v)
	case []string:
		items := make([]otellog.Value, len(v))
		for i, item := range v {
			items[i] = otellog.StringValue(item)
		}
		return otellog.SliceValue(items...)
	case time.Time:
		return otellog.StringValue(v.UTC().Format(time.RFC3339Nano))
	case error:
		return otellog.StringValue(v.Error())
	case fmt.Stringer:
		return otellog.StringValue(v.String())
	default:
		return otellog.StringValue(fmt.Sprint(v))
	}
}
