package config

import "datpeek/internal/preview"

// PreviewOptions returns the session options the configuration selects.
func (c *Config) PreviewOptions() preview.Options {
	return preview.Options{
		Extension:       c.Container.Extension,
		SortSiblings:    c.Navigation.SortSiblings,
		ExportExtension: c.Export.Extension,
		TimeFormat:      c.Export.TimeFormat,
	}
}
