package bmeta

import (
	"fmt"
	"io"
)

const defaultBuildMeta = "N/A" // Значение по умолчанию

// Info метаданные сборки, задаются через ldflags.
type Info struct {
	Version string
	Date    string
	Commit  string
}

func orDefault(v string) string {
	if v == "" {
		return defaultBuildMeta
	}
	return v
}

// Fprint Распечатывает версию, дату и комит сборки.
func Fprint(w io.Writer, info Info) error {
	_, err := fmt.Fprintf(w, "Build version: %s\nBuild date: %s\nBuild commit: %s\n",
		orDefault(info.Version), orDefault(info.Date), orDefault(info.Commit))
	if err != nil {
		return fmt.Errorf("print build info: %w", err)
	}
	return nil
}
