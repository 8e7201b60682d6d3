package logger

import (
	"io"
	"log"
	"os"
)

var (
	Info  *log.Logger
	Error *log.Logger
	Debug *log.Logger
	Warn  *log.Logger
	// Engine receives diagnostic text from the transcoding engine.
	Engine *log.Logger
)

const logFlags = log.Ldate | log.Ltime | log.LUTC | log.Lshortfile

func init() {
	SetOutput(os.Stdout)
}

// SetOutput redirects every logger to w.
func SetOutput(w io.Writer) {
	Info = log.New(w, "INFO: ", logFlags)
	Error = log.New(w, "ERROR: ", logFlags)
	Debug = log.New(w, "DEBUG: ", logFlags)
	Warn = log.New(w, "WARN: ", logFlags)
	Engine = log.New(w, "FFMPEG: ", log.Ldate|log.Ltime|log.LUTC)
}

// EngineLine writes one line of engine output under a job label.
func EngineLine(label, text string) {
	Engine.Printf("%s: %s", label, SanitizeForLog(text))
}
