package logging

import (
	"bytes"
	"fmt"

	log "github.com/sirupsen/logrus"
	"golang.org/x/exp/maps"
	"golang.org/x/exp/slices"
)

// CommandLineFormatter prints only the message, prefixed with the level for warnings and errors,
// followed by any fields in key=value form. It is meant for interactive use of the CLI.
type CommandLineFormatter struct{}

func (f *CommandLineFormatter) Format(entry *log.Entry) ([]byte, error) {
	var b bytes.Buffer
	if entry.Level <= log.WarnLevel {
		fmt.Fprintf(&b, "%s: ", levelName(entry.Level))
	}
	b.WriteString(entry.Message)

	keys := maps.Keys(entry.Data)
	slices.Sort(keys)
	for _, k := range keys {
		if k == Stacktrace {
			continue
		}
		fmt.Fprintf(&b, " %s=%v", k, entry.Data[k])
	}
	b.WriteByte('\n')
	return b.Bytes(), nil
}

func levelName(level log.Level) string {
	switch level {
	case log.PanicLevel, log.FatalLevel, log.ErrorLevel:
		return "ERROR"
	default:
		return "WARNING"
	}
}
