package main

import (
	"io"
	"log"
	"os"
	"sync"

	"gopkg.in/natefinch/lumberjack.v2"
)

var (
	loggers map[string]*log.Logger
	logMU   sync.Mutex

	// diagFile is the rotating diagnostic log shared by every named logger.
	// Nil unless --diag-log is given.
	diagFile io.Writer
)

func init() {
	loggers = make(map[string]*log.Logger)
}

// setupDiagLog points the diagnostic file at path. An empty path means
// stderr only, so nothing but log.txt is written to disk. Loggers handed
// out earlier are dropped so they stop writing to the previous file.
func setupDiagLog(path string) {
	logMU.Lock()
	defer logMU.Unlock()

	loggers = make(map[string]*log.Logger)
	if path == "" {
		diagFile = nil
		return
	}
	diagFile = &lumberjack.Logger{
		Filename:   path,
		MaxSize:    1,
		MaxBackups: 2,
		MaxAge:     7,
	}
}

// getLogger returns the named diagnostic logger. Output goes to stderr and
// the diagnostic file; stdout is left for the completion line.
func getLogger(name string) *log.Logger {
	logMU.Lock()
	defer logMU.Unlock()

	if l, ok := loggers[name]; ok {
		return l
	}

	var out io.Writer = os.Stderr
	if diagFile != nil {
		// stderr first: a failing diagnostic file must not swallow the line
		out = io.MultiWriter(os.Stderr, diagFile)
	}
	logger := log.New(out, "["+name+"] ", log.LstdFlags)

	loggers[name] = logger
	return logger
}
