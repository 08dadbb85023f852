// Package utils предоставляет простой файловый логгер.
//
// Логгер создаёт .log файл в каталоге app.log_dir с timestamp в имени.
// Thread-safe через sync.Mutex.
package utils

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"time"
)

var (
	logFile     *os.File
	logMirror   io.Writer
	logMutex    sync.Mutex
	initialized bool
)

// LoggerOptions — параметры инициализации логгера.
type LoggerOptions struct {
	// Dir — каталог для .log файла. Пустая строка — текущий каталог.
	Dir string

	// Mirror дублирует строки лога в stderr (режим app.debug).
	Mirror bool
}

// InitLogger создает/открывает .log файл.
//
// Имя файла: airename-YYYY-MM-DD-HH-MM.log (например, airename-2025-12-27-15-30.log).
// Повторный вызов ничего не делает.
func InitLogger(opts LoggerOptions) error {
	logMutex.Lock()
	defer logMutex.Unlock()

	if initialized {
		return nil
	}

	dir := opts.Dir
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("failed to create log dir: %w", err)
	}

	timestamp := time.Now().Format("2006-01-02-15-04")
	filename := filepath.Join(dir, fmt.Sprintf("airename-%s.log", timestamp))

	var err error
	logFile, err = os.OpenFile(filename, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	if opts.Mirror {
		logMirror = os.Stderr
	}

	initialized = true
	// Пишем напрямую без Info: мьютекс уже захвачен
	write(formatLine("INFO", "Logger initialized", "file", filename))

	return nil
}

// Info - информационное сообщение.
func Info(msg string, keyvals ...any) {
	log("INFO", msg, keyvals...)
}

// Error - сообщение об ошибке.
func Error(msg string, keyvals ...any) {
	log("ERROR", msg, keyvals...)
}

// Debug - отладочное сообщение.
func Debug(msg string, keyvals ...any) {
	log("DEBUG", msg, keyvals...)
}

// Warn - предупреждение.
func Warn(msg string, keyvals ...any) {
	log("WARN", msg, keyvals...)
}

// log - внутренняя функция записи в лог.
//
// Формат: [YYYY-MM-DD HH:MM:SS] LEVEL: message key1=value1 key2=value2
func log(level, msg string, keyvals ...any) {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile == nil {
		return
	}

	write(formatLine(level, msg, keyvals...))
}

func formatLine(level, msg string, keyvals ...any) string {
	timestamp := time.Now().Format("2006-01-02 15:04:05")
	line := fmt.Sprintf("[%s] %s: %s", timestamp, level, msg)

	for i := 0; i+1 < len(keyvals); i += 2 {
		line += fmt.Sprintf(" %v=%v", keyvals[i], keyvals[i+1])
	}

	return line + "\n"
}

// write вызывается под logMutex.
// При ошибке записи в файл, fallback на stderr.
func write(line string) {
	if logMirror != nil {
		_, _ = io.WriteString(logMirror, line)
	}

	if _, err := logFile.WriteString(line); err != nil {
		fmt.Fprintf(os.Stderr, "%s", line)
		fmt.Fprintf(os.Stderr, "[LOGGER ERROR: WriteString failed: %v]\n", err)
		return
	}

	if err := logFile.Sync(); err != nil {
		fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Sync failed: %v]\n", err)
	}
}

// Close закрывает лог-файл.
//
// Вызывается через defer в main().
func Close() {
	logMutex.Lock()
	defer logMutex.Unlock()

	if logFile != nil {
		if err := logFile.Close(); err != nil {
			fmt.Fprintf(os.Stderr, "[LOGGER WARNING: Close failed: %v]\n", err)
		}
		logFile = nil
	}
	logMirror = nil
	initialized = false
}
