// Copyright ©2025 curioloop. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package dual

import (
	"fmt"
	"io"
	"os"
)

// LogLevel controls the frequency and type of logger output
type LogLevel int

const (
	// LogNoop no output is generated (level < 0)
	LogNoop LogLevel = -1
	// LogLast print only one line at the last iteration
	LogLast LogLevel = 0
	// LogEval print also λₖ and F(λₖ) of every iteration
	LogEval LogLevel = 1
	// LogTrace print also every trial step of the line search
	LogTrace LogLevel = 99
)

// Logger handles logging output for the solver.
// Note the writers must be thread-safe.
type Logger struct {
	Level LogLevel
	Msg   io.Writer // Writer to output log messages.
	Out   io.Writer // Writer for output data.
}

// normalize returns a usable copy of l, nil loggers are silent.
func (l *Logger) normalize() Logger {
	if l == nil {
		return Logger{Level: LogNoop, Msg: os.Stdout, Out: os.Stderr}
	}
	c := *l
	if c.Msg == nil {
		c.Msg = os.Stdout
	}
	if c.Out == nil {
		c.Out = os.Stderr
	}
	return c
}

func (l *Logger) enable(level LogLevel) bool {
	return l.Level >= level
}

func (l *Logger) log(format string, a ...any) {
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Msg, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Msg, format)
	}
}

func (l *Logger) out(format string, a ...any) {
	if len(a) > 0 {
		_, _ = fmt.Fprintf(l.Out, format, a...)
	} else {
		_, _ = fmt.Fprint(l.Out, format)
	}
}

// Log writes a message when the logger is enabled for level.
// It is used by the projectors to report decisions taken around the solver.
func (l *Logger) Log(level LogLevel, format string, a ...any) {
	if l == nil || !l.enable(level) {
		return
	}
	c := l.normalize()
	c.log(format, a...)
}
