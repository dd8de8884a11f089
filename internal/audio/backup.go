package audio

import (
	"github.com/hazyhour/blazebot/internal/datastore"
	"github.com/hazyhour/blazebot/internal/errors"
)

// EnsureLocal makes sure a selected clip's file exists under the audio root
// and that a backup payload exists in the store, returning the absolute path
// for playback.
//
// Missing file + existing backup: the file is rehydrated from the payload.
// Missing file + no backup: ErrFileMissing, there is no source of truth
// left. Existing file + no backup: the payload is captured from the current
// file contents, so every successfully played clip ends up durably backed
// up.
func (c *Catalog) EnsureLocal(clip *datastore.CheerClip) (string, error) {
	rel, err := c.sfs.Relative(clip.Path)
	if err != nil {
		return "", err
	}

	if !c.sfs.Exists(rel) {
		backup, err := c.ds.GetClipBackup(clip.Path)
		if err != nil {
			return "", err
		}
		if backup == nil {
			return "", errors.New(errors.ErrFileMissing).
				Component("audio").
				Category(errors.CategoryAudioFile).
				Context("path", clip.Path).
				Build()
		}
		if err := c.sfs.WriteFile(rel, backup); err != nil {
			return "", errors.New(err).
				Component("audio").
				Category(errors.CategoryAudioFile).
				Context("path", clip.Path).
				Build()
		}
		if c.metrics != nil {
			c.metrics.BackupRestores.Inc()
		}
		c.log.Warn("restored missing clip file from backup store", "path", clip.Path)
		return c.sfs.Abs(rel), nil
	}

	backup, err := c.ds.GetClipBackup(clip.Path)
	if err != nil {
		return "", err
	}
	if backup == nil {
		data, err := c.sfs.ReadFile(rel)
		if err != nil {
			return "", errors.New(err).
				Component("audio").
				Category(errors.CategoryAudioFile).
				Context("path", clip.Path).
				Build()
		}
		contentType := clip.BackupContentType
		if contentType == "" {
			contentType = DefaultContentType
		}
		if err := c.ds.SetClipBackup(clip.Path, data, contentType); err != nil {
			return "", err
		}
		if c.metrics != nil {
			c.metrics.BackupCaptures.Inc()
		}
		c.log.Info("captured clip backup", "path", clip.Path, "bytes", len(data))
	}

	return c.sfs.Abs(rel), nil
}

// BackupAll captures a backup payload for every cataloged clip whose local
// file exists and whose backup is still missing. It returns the number of
// clips captured; per-clip failures are logged and skipped.
func (c *Catalog) BackupAll() (int, error) {
	clips, err := c.ds.ListAllClips()
	if err != nil {
		return 0, err
	}
	captured := 0
	for i := range clips {
		clip := &clips[i]
		rel, err := c.sfs.Relative(clip.Path)
		if err != nil || !c.sfs.Exists(rel) {
			continue
		}
		backup, err := c.ds.GetClipBackup(clip.Path)
		if err != nil || backup != nil {
			continue
		}
		data, err := c.sfs.ReadFile(rel)
		if err != nil {
			c.log.Warn("skipping clip backup", "path", clip.Path, "error", err)
			continue
		}
		if err := c.ds.SetClipBackup(clip.Path, data, DefaultContentType); err != nil {
			c.log.Warn("failed to store clip backup", "path", clip.Path, "error", err)
			continue
		}
		captured++
	}
	return captured, nil
}
