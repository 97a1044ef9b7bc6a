// SPDX-FileCopyrightText: 2025 Deutsche Telekom AG
//
// SPDX-License-Identifier: Apache-2.0

package zaplog

import (
	"context"
	"sort"

	"github.com/go-logr/logr"
	"github.com/go-logr/zapr"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"github.com/telekom/loghtml/pkg/record"
)

// RecordHandler receives converted records. *mail.Handler satisfies it.
type RecordHandler interface {
	Handle(ctx context.Context, r record.Record) error
	IsHandling(level record.Level) bool
}

// Core is a zapcore.Core that forwards entries to a RecordHandler.
// Fields added with With become the record's Extra; per-call fields become
// its Context.
type Core struct {
	handler RecordHandler
	extra   record.Fields
}

var _ zapcore.Core = (*Core)(nil)

// NewCore returns a core delivering entries to h. The handler must not log
// through a logger built on this core.
func NewCore(h RecordHandler) *Core {
	return &Core{handler: h}
}

// LevelFromZap maps zap levels onto the record severity ladder.
func LevelFromZap(l zapcore.Level) record.Level {
	switch {
	case l <= zapcore.DebugLevel:
		return record.Debug
	case l == zapcore.InfoLevel:
		return record.Info
	case l == zapcore.WarnLevel:
		return record.Warning
	case l == zapcore.ErrorLevel:
		return record.Error
	case l == zapcore.DPanicLevel:
		return record.Critical
	case l == zapcore.PanicLevel:
		return record.Alert
	default:
		return record.Emergency
	}
}

func (c *Core) Enabled(l zapcore.Level) bool {
	return c.handler.IsHandling(LevelFromZap(l))
}

func (c *Core) With(fields []zapcore.Field) zapcore.Core {
	extra := append(record.Fields(nil), c.extra...)
	for _, f := range fieldsToRecord(fields) {
		extra = extra.With(f.Key, f.Value)
	}
	return &Core{handler: c.handler, extra: extra}
}

func (c *Core) Check(ent zapcore.Entry, ce *zapcore.CheckedEntry) *zapcore.CheckedEntry {
	if c.Enabled(ent.Level) {
		return ce.AddCore(ent, c)
	}
	return ce
}

func (c *Core) Write(ent zapcore.Entry, fields []zapcore.Field) error {
	return c.handler.Handle(context.Background(), c.toRecord(ent, fields))
}

func (c *Core) Sync() error {
	return nil
}

func (c *Core) toRecord(ent zapcore.Entry, fields []zapcore.Field) record.Record {
	extra := append(record.Fields(nil), c.extra...)
	if ent.Caller.Defined {
		extra = extra.With("caller", ent.Caller.TrimmedPath())
	}
	if ent.Stack != "" {
		extra = extra.With("stacktrace", ent.Stack)
	}
	return record.Record{
		Message:  ent.Message,
		Level:    LevelFromZap(ent.Level),
		Channel:  ent.LoggerName,
		Datetime: ent.Time,
		Context:  fieldsToRecord(fields),
		Extra:    extra,
	}
}

// fieldsToRecord encodes zap fields in order. A field that expands to
// several keys (errors add "<key>Verbose") keeps its primary key first.
func fieldsToRecord(fields []zapcore.Field) record.Fields {
	if len(fields) == 0 {
		return nil
	}
	out := make(record.Fields, 0, len(fields))
	for _, f := range fields {
		enc := zapcore.NewMapObjectEncoder()
		f.AddTo(enc)
		if v, ok := enc.Fields[f.Key]; ok {
			out = out.With(f.Key, v)
		}
		keys := make([]string, 0, len(enc.Fields))
		for k := range enc.Fields {
			if k != f.Key {
				keys = append(keys, k)
			}
		}
		sort.Strings(keys)
		for _, k := range keys {
			out = out.With(k, enc.Fields[k])
		}
	}
	return out
}

// NewLogger returns a zap logger that mails entries through h.
func NewLogger(h RecordHandler, opts ...zap.Option) *zap.Logger {
	return zap.New(NewCore(h), opts...)
}

// NewLogr returns a logr.Logger backed by the same core.
func NewLogr(h RecordHandler, opts ...zap.Option) logr.Logger {
	return zapr.NewLogger(NewLogger(h, opts...))
}
