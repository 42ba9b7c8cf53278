package logger

import (
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap/zapcore"
)

const telegramAPIBaseURL = "https://api.telegram.org"

// AlertTarget is the telegram chat that receives flagged error entries.
type AlertTarget struct {
	BaseURL string
	Token   string
	ChatID  string
	Timeout time.Duration
}

type AlertCore struct {
	core     zapcore.Core
	client   *resty.Client
	target   AlertTarget
	minLevel zapcore.Level
	fields   []zapcore.Field
}

func NewAlertCore(core zapcore.Core, target AlertTarget, minLevel zapcore.Level) *AlertCore {
	client := resty.New().
		SetBaseURL(target.BaseURL).
		SetTimeout(target.Timeout).
		SetHeader("Accept", "application/json")

	return &AlertCore{
		core:     core,
		client:   client,
		target:   target,
		minLevel: minLevel,
	}
}

func (a *AlertCore) Enabled(lvl zapcore.Level) bool {
	return a.core.Enabled(lvl)
}

func (a *AlertCore) With(fields []zapcore.Field) zapcore.Core {
	return &AlertCore{
		core:     a.core.With(fields),
		client:   a.client,
		target:   a.target,
		minLevel: a.minLevel,
		fields:   append(append([]zapcore.Field{}, a.fields...), fields...),
	}
}

func (a *AlertCore) Check(entry zapcore.Entry, checkedEntry *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if a.Enabled(entry.Level) {
		return checkedEntry.AddCore(entry, a)
	}
	return checkedEntry
}

func (a *AlertCore) Write(entry zapcore.Entry, fields []zapcore.Field) error {
	if entry.Level >= a.minLevel && shouldAlert(fields) {
		all := append(append([]zapcore.Field{}, a.fields...), fields...)
		go a.send(FormatAlertMessage(entry, all))
	}
	return a.core.Write(entry, fields)
}

func (a *AlertCore) Sync() error {
	return a.core.Sync()
}

func (a *AlertCore) send(message string) {
	_, _ = a.client.R().
		SetBody(map[string]interface{}{
			"chat_id": a.target.ChatID,
			"text":    message,
		}).
		Post(fmt.Sprintf("/bot%s/sendMessage", a.target.Token))
}

func shouldAlert(fields []zapcore.Field) bool {
	for _, f := range fields {
		if f.Key == KeySendAlert && f.Type == zapcore.BoolType && f.Integer == 1 {
			return true
		}
	}
	return false
}

// FormatAlertMessage renders an entry and its fields as plain text, fields sorted by key.
func FormatAlertMessage(entry zapcore.Entry, fields []zapcore.Field) string {
	enc := zapcore.NewMapObjectEncoder()
	for _, f := range fields {
		if f.Key == KeySendAlert {
			continue
		}
		f.AddTo(enc)
	}

	keys := make([]string, 0, len(enc.Fields))
	for k := range enc.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	fmt.Fprintf(&b, "[%s] %s\n", entry.Level.CapitalString(), entry.Message)
	for _, k := range keys {
		fmt.Fprintf(&b, "- %s: %v\n", k, enc.Fields[k])
	}
	fmt.Fprintf(&b, "time: %s", entry.Time.Format("2006-01-02 15:04:05"))
	return b.String()
}
