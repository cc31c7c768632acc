// Package logx — key=value строки поверх стандартного *log.Logger.
//
//	lvl=info req_id=... op=files.presign msg="ok" key=myBucket/ab12
package logx

import (
	"context"
	"fmt"
	"log"
	"strings"
)

type ctxKey struct{}

// WithRequestID кладёт идентификатор запроса в контекст.
func WithRequestID(ctx context.Context, id string) context.Context {
	return context.WithValue(ctx, ctxKey{}, id)
}

func RequestIDFromCtx(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	id, _ := ctx.Value(ctxKey{}).(string)
	return id
}

func Info(l *log.Logger, reqID, op, msg string, kv ...any) {
	write(l, "info", reqID, op, msg, nil, kv)
}

func Warn(l *log.Logger, reqID, op, msg string, kv ...any) {
	write(l, "warn", reqID, op, msg, nil, kv)
}

func Error(l *log.Logger, reqID, op, msg string, err error, kv ...any) {
	write(l, "error", reqID, op, msg, err, kv)
}

func write(l *log.Logger, lvl, reqID, op, msg string, err error, kv []any) {
	if l == nil {
		return
	}
	var sb strings.Builder
	sb.WriteString("lvl=")
	sb.WriteString(lvl)
	if reqID != "" {
		sb.WriteString(" req_id=")
		sb.WriteString(reqID)
	}
	sb.WriteString(" op=")
	sb.WriteString(op)
	sb.WriteString(" msg=")
	sb.WriteString(quote(msg))
	if err != nil {
		sb.WriteString(" err=")
		sb.WriteString(quote(err.Error()))
	}
	for i := 0; i < len(kv); i += 2 {
		sb.WriteByte(' ')
		sb.WriteString(fmt.Sprint(kv[i]))
		sb.WriteByte('=')
		if i+1 < len(kv) {
			sb.WriteString(quote(fmt.Sprint(kv[i+1])))
		} else {
			sb.WriteString("(missing)")
		}
	}
	l.Println(sb.String())
}

// quote оборачивает в кавычки только то, что иначе развалит строку.
func quote(s string) string {
	if s == "" || strings.ContainsAny(s, " \t\n\"=") {
		return fmt.Sprintf("%q", s)
	}
	return s
}
