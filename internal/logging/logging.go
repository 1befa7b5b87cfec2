// Package logging provides the context-carried, module-scoped logger
// used throughout Froster. The API mirrors the teacher's repo/logging
// package: a Logger is obtained from a Factory bound to a module name,
// factories are attached to a context.Context, and multiple loggers
// can be broadcast to from one call site.
package logging

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
)

// Logger is the leveled logging interface every Froster package logs through.
type Logger interface {
	Debug(args ...interface{})
	Debugf(msg string, args ...interface{})
	Debugw(msg string, keyValues ...interface{})
	Info(args ...interface{})
	Infof(msg string, args ...interface{})
	Infow(msg string, keyValues ...interface{})
	Warn(args ...interface{})
	Warnf(msg string, args ...interface{})
	Warnw(msg string, keyValues ...interface{})
	Error(args ...interface{})
	Errorf(msg string, args ...interface{})
	Errorw(msg string, keyValues ...interface{})
}

// Factory returns a Logger bound to the provided context.
type Factory func(ctx context.Context) Logger

type loggerKey struct{}

// WithLogger attaches f as the sole logger factory for ctx.
func WithLogger(ctx context.Context, f Factory) context.Context {
	return context.WithValue(ctx, loggerKey{}, []Factory{f})
}

// WithAdditionalLogger appends f to whatever logger factories are
// already attached to ctx, so both receive subsequent log calls.
func WithAdditionalLogger(ctx context.Context, f Factory) context.Context {
	existing, _ := ctx.Value(loggerKey{}).([]Factory)
	combined := make([]Factory, 0, len(existing)+1)
	combined = append(combined, existing...)
	combined = append(combined, f)

	return context.WithValue(ctx, loggerKey{}, combined)
}

// Module returns a Factory that, given a context, produces a Logger
// broadcasting to whatever factories are attached to that context (or
// a null logger if none are).
func Module(name string) Factory {
	return func(ctx context.Context) Logger {
		factories, _ := ctx.Value(loggerKey{}).([]Factory)
		if len(factories) == 0 {
			return nullLogger{}
		}

		loggers := make([]Logger, len(factories))
		for i, f := range factories {
			loggers[i] = f(ctx)
		}

		if len(loggers) == 1 {
			return loggers[0]
		}

		return broadcastLogger{loggers: loggers, module: name}
	}
}

// Broadcast returns a Logger that forwards every call to each of loggers in order.
func Broadcast(loggers ...Logger) Logger {
	return broadcastLogger{loggers: loggers}
}

type broadcastLogger struct {
	loggers []Logger
	module  string
}

func (b broadcastLogger) Debug(args ...interface{})             { for _, l := range b.loggers { l.Debug(args...) } }
func (b broadcastLogger) Debugf(m string, a ...interface{})     { for _, l := range b.loggers { l.Debugf(m, a...) } }
func (b broadcastLogger) Debugw(m string, kv ...interface{})     { for _, l := range b.loggers { l.Debugw(m, kv...) } }
func (b broadcastLogger) Info(args ...interface{})              { for _, l := range b.loggers { l.Info(args...) } }
func (b broadcastLogger) Infof(m string, a ...interface{})       { for _, l := range b.loggers { l.Infof(m, a...) } }
func (b broadcastLogger) Infow(m string, kv ...interface{})      { for _, l := range b.loggers { l.Infow(m, kv...) } }
func (b broadcastLogger) Warn(args ...interface{})              { for _, l := range b.loggers { l.Warn(args...) } }
func (b broadcastLogger) Warnf(m string, a ...interface{})       { for _, l := range b.loggers { l.Warnf(m, a...) } }
func (b broadcastLogger) Warnw(m string, kv ...interface{})      { for _, l := range b.loggers { l.Warnw(m, kv...) } }
func (b broadcastLogger) Error(args ...interface{})             { for _, l := range b.loggers { l.Error(args...) } }
func (b broadcastLogger) Errorf(m string, a ...interface{})      { for _, l := range b.loggers { l.Errorf(m, a...) } }
func (b broadcastLogger) Errorw(m string, kv ...interface{})     { for _, l := range b.loggers { l.Errorw(m, kv...) } }

type nullLogger struct{}

func (nullLogger) Debug(args ...interface{})            {}
func (nullLogger) Debugf(m string, a ...interface{})    {}
func (nullLogger) Debugw(m string, kv ...interface{})   {}
func (nullLogger) Info(args ...interface{})             {}
func (nullLogger) Infof(m string, a ...interface{})     {}
func (nullLogger) Infow(m string, kv ...interface{})    {}
func (nullLogger) Warn(args ...interface{})             {}
func (nullLogger) Warnf(m string, a ...interface{})     {}
func (nullLogger) Warnw(m string, kv ...interface{})    {}
func (nullLogger) Error(args ...interface{})            {}
func (nullLogger) Errorf(m string, a ...interface{})    {}
func (nullLogger) Errorw(m string, kv ...interface{})   {}

// ToWriter returns a Factory whose Logger writes one line per call to w,
// matching the teacher's plain-text "module1" writer logger: a message,
// optionally followed by a tab-separated JSON object of key/value pairs.
func ToWriter(w io.Writer) Factory {
	return func(ctx context.Context) Logger {
		return writerLogger{w: w}
	}
}

type writerLogger struct {
	w io.Writer
}

func (l writerLogger) line(msg string) {
	fmt.Fprintln(l.w, msg)
}

func (l writerLogger) withKV(msg string, kv []interface{}) string {
	if len(kv) == 0 {
		return msg
	}

	obj := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		obj[key] = kv[i+1]
	}

	b, err := json.Marshal(obj)
	if err != nil {
		return msg
	}

	return msg + "\t" + string(b)
}

func (l writerLogger) Debug(args ...interface{})          { l.line(fmt.Sprint(args...)) }
func (l writerLogger) Debugf(m string, a ...interface{})  { l.line(fmt.Sprintf(m, a...)) }
func (l writerLogger) Debugw(m string, kv ...interface{}) { l.line(l.withKV(m, kv)) }
func (l writerLogger) Info(args ...interface{})           { l.line(fmt.Sprint(args...)) }
func (l writerLogger) Infof(m string, a ...interface{})   { l.line(fmt.Sprintf(m, a...)) }
func (l writerLogger) Infow(m string, kv ...interface{})  { l.line(l.withKV(m, kv)) }
func (l writerLogger) Warn(args ...interface{})           { l.line(fmt.Sprint(args...)) }
func (l writerLogger) Warnf(m string, a ...interface{})   { l.line(fmt.Sprintf(m, a...)) }
func (l writerLogger) Warnw(m string, kv ...interface{})  { l.line(l.withKV(m, kv)) }
func (l writerLogger) Error(args ...interface{})          { l.line(fmt.Sprint(args...)) }
func (l writerLogger) Errorf(m string, a ...interface{})  { l.line(fmt.Sprintf(m, a...)) }
func (l writerLogger) Errorw(m string, kv ...interface{}) { l.line(l.withKV(m, kv)) }

// Printf returns a Logger that calls fn(prefix+msg) for every call,
// matching the teacher's internal/testlogging.Printf test helper.
func Printf(fn func(msg string, args ...interface{}), prefix string) Logger {
	return printfLogger{fn: fn, prefix: prefix}
}

type printfLogger struct {
	fn     func(msg string, args ...interface{})
	prefix string
}

func (l printfLogger) emit(msg string) { l.fn(l.prefix + msg) }

func (l printfLogger) withKV(msg string, kv []interface{}) string {
	if len(kv) == 0 {
		return msg
	}

	obj := make(map[string]interface{}, len(kv)/2)
	for i := 0; i+1 < len(kv); i += 2 {
		key, _ := kv[i].(string)
		obj[key] = kv[i+1]
	}

	b, err := json.Marshal(obj)
	if err != nil {
		return msg
	}

	return msg + "\t" + string(b)
}

func (l printfLogger) Debug(args ...interface{})          { l.emit(fmt.Sprint(args...)) }
func (l printfLogger) Debugf(m string, a ...interface{})  { l.emit(fmt.Sprintf(m, a...)) }
func (l printfLogger) Debugw(m string, kv ...interface{}) { l.emit(l.withKV(m, kv)) }
func (l printfLogger) Info(args ...interface{})           { l.emit(fmt.Sprint(args...)) }
func (l printfLogger) Infof(m string, a ...interface{})   { l.emit(fmt.Sprintf(m, a...)) }
func (l printfLogger) Infow(m string, kv ...interface{})  { l.emit(l.withKV(m, kv)) }
func (l printfLogger) Warn(args ...interface{})           { l.emit(fmt.Sprint(args...)) }
func (l printfLogger) Warnf(m string, a ...interface{})   { l.emit(fmt.Sprintf(m, a...)) }
func (l printfLogger) Warnw(m string, kv ...interface{})  { l.emit(l.withKV(m, kv)) }
func (l printfLogger) Error(args ...interface{})          { l.emit(fmt.Sprint(args...)) }
func (l printfLogger) Errorf(m string, a ...interface{})  { l.emit(fmt.Sprintf(m, a...)) }
func (l printfLogger) Errorw(m string, kv ...interface{}) { l.emit(l.withKV(m, kv)) }
