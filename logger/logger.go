// Package logger provides centralized logging for the application.
// File: logger/logger.go
package logger

import (
	"io"
	"log"
	"os"
	"path/filepath"

	"gopkg.in/natefinch/lumberjack.v2"
)

// ------------------- global loggers -------------------

// four logger levels accessible throughout the application
var (
	Info  *log.Logger
	Warn  *log.Logger
	Error *log.Logger
	Debug *log.Logger
)

// rotating file sink shared by every level
var fileSink *lumberjack.Logger

// ------------------- logger initialization -------------------

// InitLogger creates or reinitializes the logging system. It:
// - Ensures the log directory exists (LOG_DIR, default `./logs`).
// - Opens a size-rotated `queue.log` in that directory.
// - Writes logs to both the file and stdout.
// - Configures separate loggers (Info, Warn, Error, Debug) with consistent prefixes & flags.
func InitLogger(dir string) error {
	if dir == "" {
		dir = "./logs"
	}
	if err := os.MkdirAll(dir, 0700); err != nil {
		return err
	}

	if fileSink != nil {
		_ = fileSink.Close()
	}
	fileSink = &lumberjack.Logger{
		Filename:   filepath.Join(dir, "queue.log"),
		MaxSize:    10, // megabytes
		MaxBackups: 5,
		MaxAge:     14, // days
		Compress:   true,
	}

	// write logs to both stdout and the file
	multiWriter := io.MultiWriter(os.Stdout, fileSink)

	Info = log.New(multiWriter, "INFO: ", log.Ldate|log.Ltime|log.Lshortfile)
	Warn = log.New(multiWriter, "WARN: ", log.Ldate|log.Ltime|log.Lshortfile)
	Error = log.New(multiWriter, "ERROR: ", log.Ldate|log.Ltime|log.Lshortfile)
	Debug = log.New(multiWriter, "DEBUG: ", log.Ldate|log.Ltime|log.Lshortfile)
	return nil
}

// SetLogLevel adjusts the Debug logger’s output depending on environment.
// In production Debug output is discarded entirely.
func SetLogLevel(env string) {
	if env == "production" {
		Debug.SetOutput(io.Discard)
	}
}

// Close flushes and closes the rotating log file.
func Close() error {
	if fileSink == nil {
		return nil
	}
	return fileSink.Close()
}

// init is called automatically at package load time so that every package can
// log before main has parsed its configuration. If initialization fails, we log
// a fatal error via the standard library logger.
func init() {
	if err := InitLogger(os.Getenv("LOG_DIR")); err != nil {
		log.Fatalf("Failed to initialise custom logger: %v", err)
	}
}
