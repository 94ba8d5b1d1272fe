package httpapi

import (
	"log"
	"net/http"
	"os"
	"time"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/rs/zerolog"
)

// zlog is an optional structured logger. If unset, falls back to log.Printf.
var zlog *zerolog.Logger

// SetLogger installs a structured logger used by the HTTP layer.
func SetLogger(l zerolog.Logger) { zlog = &l }

// LogLevel controls per-request logging behavior.
type LogLevel int

const (
	LevelOff LogLevel = iota
	LevelError
	LevelInfo
	LevelDebug
)

func parseLevel(s string) LogLevel {
	switch s {
	case "off", "":
		return LevelOff
	case "error":
		return LevelError
	case "info":
		return LevelInfo
	case "debug":
		return LevelDebug
	default:
		return LevelInfo
	}
}

// global default, read once
var defaultLogLevel = parseLevel(os.Getenv("GROVE_LOG_REQUESTS"))

func requestLogLevel(r *http.Request) LogLevel {
	// Per-request overrides
	if v := r.URL.Query().Get("log"); v != "" {
		if v == "1" {
			return LevelDebug
		}
		return parseLevel(v)
	}
	if v := r.Header.Get("X-Log-Level"); v != "" {
		return parseLevel(v)
	}
	return defaultLogLevel
}

// logPredictStart records the beginning of a predict request.
func logPredictStart(r *http.Request, lvl LogLevel) {
	if lvl < LevelInfo {
		return
	}
	if zlog == nil {
		log.Printf("predict start path=%s content_type=%s", r.URL.Path, r.Header.Get("Content-Type"))
		return
	}
	z := zlog.Info().Str("path", r.URL.Path).Str("content_type", r.Header.Get("Content-Type"))
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	z.Msg("predict start")
}

// logPredictEnd records the outcome. Failures are logged from LevelError up,
// successes from LevelInfo up.
func logPredictEnd(r *http.Request, lvl LogLevel, status int, dur time.Duration, label string, err error) {
	if lvl == LevelOff || (err == nil && lvl < LevelInfo) {
		return
	}
	if zlog == nil {
		if err != nil {
			log.Printf("predict end status=%d dur=%s err=%v", status, dur, err)
		} else {
			log.Printf("predict end status=%d dur=%s label=%s", status, dur, label)
		}
		return
	}
	var z *zerolog.Event
	if err != nil && status >= 500 {
		z = zlog.Error()
	} else {
		z = zlog.Info()
	}
	z = z.Int("status", status).Dur("dur", dur)
	if rid := middleware.GetReqID(r.Context()); rid != "" {
		z = z.Str("request_id", rid)
	}
	if label != "" {
		z = z.Str("label", label)
	}
	if err != nil {
		z = z.Err(err)
	}
	z.Msg("predict end")
}
