/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2025 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package logger

import (
	"io"
	"os"

	"github.com/sirupsen/logrus"
)

// Fields carries structured context (connection id, oid, notice id, ...)
// attached to a single log entry.
type Fields map[string]interface{}

// Logger is the structured logger used across this runtime's components.
type Logger interface {
	SetLevel(lvl Level)
	GetLevel() Level

	WithFields(f Fields) Logger

	Debug(message string, f Fields)
	Info(message string, f Fields)
	Warning(message string, f Fields)
	Error(message string, f Fields, err ...error)

	// Clone returns an independent copy sharing the same output and level,
	// for a caller that wants to attach its own permanent fields.
	Clone() Logger
}

type logger struct {
	entry *logrus.Entry
}

// New returns a Logger writing JSON-formatted entries to out at the given
// level. Passing a nil out defaults to os.Stderr.
func New(lvl Level, out io.Writer) Logger {
	if out == nil {
		out = os.Stderr
	}

	l := logrus.New()
	l.SetOutput(out)
	l.SetLevel(lvl.logrus())
	l.SetFormatter(&logrus.JSONFormatter{})

	return &logger{entry: logrus.NewEntry(l)}
}

func (l *logger) SetLevel(lvl Level) {
	l.entry.Logger.SetLevel(lvl.logrus())
}

func (l *logger) GetLevel() Level {
	switch l.entry.Logger.GetLevel() {
	case logrus.PanicLevel:
		return PanicLevel
	case logrus.FatalLevel:
		return FatalLevel
	case logrus.ErrorLevel:
		return ErrorLevel
	case logrus.WarnLevel:
		return WarnLevel
	case logrus.InfoLevel:
		return InfoLevel
	default:
		return DebugLevel
	}
}

func (l *logger) WithFields(f Fields) Logger {
	return &logger{entry: l.entry.WithFields(logrus.Fields(f))}
}

func (l *logger) Debug(message string, f Fields) {
	l.entry.WithFields(logrus.Fields(f)).Debug(message)
}

func (l *logger) Info(message string, f Fields) {
	l.entry.WithFields(logrus.Fields(f)).Info(message)
}

func (l *logger) Warning(message string, f Fields) {
	l.entry.WithFields(logrus.Fields(f)).Warn(message)
}

func (l *logger) Error(message string, f Fields, err ...error) {
	e := l.entry.WithFields(logrus.Fields(f))

	if len(err) == 1 && err[0] != nil {
		e = e.WithError(err[0])
	} else if len(err) > 1 {
		msgs := make([]string, 0, len(err))
		for _, er := range err {
			if er != nil {
				msgs = append(msgs, er.Error())
			}
		}
		e = e.WithField("errors", msgs)
	}

	e.Error(message)
}

func (l *logger) Clone() Logger {
	return &logger{entry: l.entry.Dup()}
}

// Discard returns a Logger whose output goes nowhere, for tests.
func Discard() Logger {
	return New(DebugLevel, io.Discard)
}
