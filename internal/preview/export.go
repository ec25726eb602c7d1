package preview

import (
	"path/filepath"
	"strings"
	"time"

	"datpeek/internal/container"
	"datpeek/internal/log"
)

// export asks the user for a location and writes the decoded bytes there.
// The chosen location is remembered as the default of the next export.
func (s *Session) export() {
	if s.dialog == nil {
		s.logger.Warn("Export requested but no save dialog is available")
		return
	}

	s.mu.Lock()
	resource, root := s.resource, s.root
	createdAt, target := s.createdAt, s.saveTarget
	s.mu.Unlock()

	if createdAt.IsZero() {
		md, err := s.storage.Stat(s.ctx, resource)
		if s.disposed() {
			return
		}
		if err != nil {
			log.LogWithError(err).Warn("Cannot stat resource for export")
		} else {
			createdAt = md.CreatedAt
		}
	}

	title := s.exportTitle(resource, createdAt)
	if target == "" {
		target = DefaultExportPath(root, title, s.opts.ExportExtension)
	}

	chosen, ok, err := s.dialog.PromptSaveLocation(s.ctx, target, title)
	if s.disposed() {
		return
	}
	if err != nil {
		log.LogWithError(err).Warn("Save dialog failed")
		return
	}
	if !ok || chosen == "" {
		s.logger.Debug("Export cancelled")
		return
	}

	data, err := s.storage.ReadFile(s.ctx, resource)
	if s.disposed() {
		return
	}
	if err != nil {
		log.LogWithError(err).Error("Cannot read container for export")
		return
	}

	img := container.Decode(data)
	if err := s.storage.WriteFile(s.ctx, chosen, img.Data); err != nil {
		log.LogWithError(err).Error("Cannot write exported image")
		return
	}

	s.mu.Lock()
	s.saveTarget = chosen
	s.mu.Unlock()

	log.LogWithFields(
		log.F("session", s.id),
		log.F("source", resource),
		log.F("target", chosen),
		log.F("codec", img.Codec.String()),
	).Info("Exported image")
}

func (s *Session) exportTitle(resource string, createdAt time.Time) string {
	if createdAt.IsZero() {
		return strings.TrimSuffix(filepath.Base(resource), filepath.Ext(resource))
	}
	return createdAt.Format(s.opts.TimeFormat)
}

// DefaultExportPath is the suggested export location for a container created
// at the time rendered as stamp. Colons are not valid in every file system and
// become underscores.
func DefaultExportPath(root, stamp, ext string) string {
	return filepath.Join(root, strings.ReplaceAll(stamp+ext, ":", "_"))
}
