package logger

import (
	"fmt"
	"io"
	"log"
)

type ColorLogger struct {
	*log.Logger
	colored bool
}

type Color string

const (
	ColorBlack  Color = "\u001b[30m"
	ColorRed    Color = "\u001b[31m"
	ColorGreen  Color = "\u001b[32m"
	ColorYellow Color = "\u001b[33m"
	ColorBlue   Color = "\u001b[34m"
	ColorReset  Color = "\u001b[0m"
)

func NewColorLogger(lg *log.Logger) *ColorLogger {
	c := ColorLogger{
		Logger:  lg,
		colored: true,
	}
	return &c
}

// New
// logger writing into out with given prefix, colors may be disabled for non
// terminal outputs.
func New(out io.Writer, prefix string, colored bool) *ColorLogger {
	c := NewColorLogger(log.New(out, prefix, log.Ldate|log.Lmicroseconds))
	c.colored = colored
	return c
}

// Discard
// logger which drops every line.
func Discard() *ColorLogger {
	return New(io.Discard, "", false)
}

func (c *ColorLogger) Printcf(color Color, format string, args ...interface{}) {
	c.Printc(color, fmt.Sprintf(format, args...))
}

func (c *ColorLogger) Printc(color Color, s string) {
	if !c.colored {
		c.Print(s)
		return
	}
	c.Print(string(color) + s + string(ColorReset))
}

func (c *ColorLogger) Infof(format string, args ...interface{}) {
	c.Printcf(ColorBlue, format, args...)
}

func (c *ColorLogger) Warnf(format string, args ...interface{}) {
	c.Printcf(ColorYellow, format, args...)
}

func (c *ColorLogger) Errorf(format string, args ...interface{}) {
	c.Printcf(ColorRed, format, args...)
}
