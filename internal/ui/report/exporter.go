package report

import (
	"log/slog"
	"path/filepath"

	"github.com/zach-fau/codescope/internal/shared/util"
)

type ExportOptions struct {
	Dir      string
	JSON     bool
	CSV      bool
	Markdown bool
}

// Export writes the enabled report formats under opts.Dir and returns
// the paths it wrote.
func Export(data Data, opts ExportOptions) ([]string, error) {
	var written []string

	if opts.JSON {
		content, err := NewJSONGenerator().Generate(data)
		if err != nil {
			return written, err
		}
		path := filepath.Join(opts.Dir, "report.json")
		if err := util.WriteStringWithDirs(path, content, 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	if opts.CSV {
		content, err := NewCSVGenerator().Generate(data)
		if err != nil {
			return written, err
		}
		path := filepath.Join(opts.Dir, "packages.csv")
		if err := util.WriteStringWithDirs(path, content, 0o644); err != nil {
			return written, err
		}
		written = append(written, path)

		if data.Savings != nil && len(data.Savings.Opportunities) > 0 {
			content, err := NewCSVGenerator().GenerateSavings(data.Savings.Opportunities)
			if err != nil {
				return written, err
			}
			path := filepath.Join(opts.Dir, "savings.csv")
			if err := util.WriteStringWithDirs(path, content, 0o644); err != nil {
				return written, err
			}
			written = append(written, path)
		}
	}

	if opts.Markdown {
		content, err := NewMarkdownGenerator().Generate(data, MarkdownOptions{TableOfContents: true})
		if err != nil {
			return written, err
		}
		path := filepath.Join(opts.Dir, "report.md")
		if err := util.WriteStringWithDirs(path, content, 0o644); err != nil {
			return written, err
		}
		written = append(written, path)
	}

	for _, path := range written {
		slog.Debug("report written", "path", path)
	}
	return written, nil
}
