// The MIT License
//
// Copyright (c) 2017-2018 by the author(s)
//
// Permission is hereby granted, free of charge, to any person obtaining a copy
// of this software and associated documentation files (the "Software"), to deal
// in the Software without restriction, including without limitation the rights
// to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
// copies of the Software, and to permit persons to whom the Software is
// furnished to do so, subject to the following conditions:
//
// The above copyright notice and this permission notice shall be included in
// all copies or substantial portions of the Software.
//
// THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
// IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
// FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
// AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
// LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
// OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN
// THE SOFTWARE.
//
// Description:
//
// Logging and diagnostic-severity facility. A packing stage reports through
// the three severities a batch netlist transform needs: Info (progress),
// Warning (continues, recorded for the caller) and Fatal (aborts the current
// Pack() call). Unlike the original logger this one never calls os.Exit: a
// Fatal message panics with a *PackError that Pack() recovers at the top
// level, since ecp5pack is a library, not a standalone command.

package ecp5pack

import (
	"fmt"
	"log"
	"os"
)

// Severity levels, ordered the same way the original logger ordered its
// criticality levels.
const (
	LOG_DEBUG int = iota
	LOG_INFO
	LOG_WARN
	LOG_ERR
)

// Diagnostic is one logged message, kept around after a Pack() call returns
// so the caller can inspect everything that happened short of a Fatal abort.
type Diagnostic struct {
	Severity int // LOG_DEBUG, LOG_INFO, LOG_WARN or LOG_ERR
	Stage    string
	Message  string
}

// PackError is the panic value a Fatal diagnostic carries. Pack() recovers
// it at the pass boundary and returns it as a plain error.
type PackError struct {
	Diagnostic Diagnostic
}

func (e *PackError) Error() string {
	if e.Diagnostic.Stage != "" {
		return e.Diagnostic.Stage + ": " + e.Diagnostic.Message
	}
	return e.Diagnostic.Message
}

var (
	logDebug       *log.Logger
	logInfo        *log.Logger
	logWarn        *log.Logger
	logError       *log.Logger
	logIndentLevel uint
	logLevel       = LOG_INFO

	curStage     string
	diagnostics  []Diagnostic
)

// beginDiagnostics resets the diagnostic log; called once at the top of
// Pack().
func beginDiagnostics() {
	diagnostics = nil
	curStage = ""
	logIndentLevel = 0
}

// setStage records the name of the stage currently executing, attached to
// every Diagnostic logged until the next setStage call.
func setStage(name string) {
	curStage = name
}

// Log records a diagnostic at the given severity and, if its criticality
// meets the configured LogSetLevel threshold, prints it. A LOG_ERR message
// additionally panics with *PackError, aborting the enclosing Pack() call;
// Pack() is the only place that recovers it.
func Log(level int, msg string, a ...interface{}) {
	text := fmt.Sprintf(msg, a...)
	diagnostics = append(diagnostics, Diagnostic{Severity: level, Stage: curStage, Message: text})

	if level >= logLevel {
		indented := text
		for i := uint(0); i < logIndentLevel; i++ {
			indented = "... " + indented
		}
		switch level {
		case LOG_DEBUG:
			if logDebug == nil {
				logDebug = log.New(os.Stdout, "DEBUG: ", log.Ldate|log.Lmicroseconds)
			}
			logDebug.Println(indented)
		case LOG_INFO:
			if logInfo == nil {
				logInfo = log.New(os.Stdout, "INFO: ", log.Ldate|log.Lmicroseconds)
			}
			logInfo.Println(indented)
		case LOG_WARN:
			if logWarn == nil {
				logWarn = log.New(os.Stdout, "WARN: ", log.Ldate|log.Lmicroseconds)
			}
			logWarn.Println(indented)
		case LOG_ERR:
			if logError == nil {
				logError = log.New(os.Stdout, "ERROR: ", log.Ldate|log.Lmicroseconds)
			}
			logError.Println(indented)
		}
	}

	if level == LOG_ERR {
		panic(&PackError{Diagnostic: diagnostics[len(diagnostics)-1]})
	}
}

// Diagnostics returns every diagnostic logged during the most recent Pack()
// call, Fatal one included (its entry is appended before the panic unwinds).
func Diagnostics() []Diagnostic {
	return diagnostics
}

// LogIncrementIndentLevel increments the indentation level of all further
// log messages, used to nest a sub-stage's messages under its parent's.
func LogIncrementIndentLevel() {
	logIndentLevel++
}

// LogDecrementIndentLevel decrements the indentation level of all further
// log messages.
func LogDecrementIndentLevel() {
	if logIndentLevel == 0 {
		Log(LOG_WARN, "logIndentLevel reached negative value. Check your code!")
		return
	}
	logIndentLevel--
}

// LogSetLevel sets the minimum criticality of the messages that are
// actually printed; diagnostics below the threshold are still recorded,
// just not written to stdout.
func LogSetLevel(level int) {
	if level < LOG_DEBUG || level > LOG_ERR {
		Log(LOG_WARN, "invalid log level %d, ignoring", level)
		return
	}
	logLevel = level
}
