// Package ingest validates, transforms, and durably loads raw price
// documents. The filesystem areas raw/, parsed/, and deadletter/ form a
// simple durable work queue: ownership of a file transfers between stages by
// atomic rename, never by copy.
package ingest

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"

	"github.com/Stargazers-Consulting-LLC/creampie-sub000/faults"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/models"
	"github.com/Stargazers-Consulting-LLC/creampie-sub000/parser"
)

// Dirs names the three filesystem areas of the ingestion queue.
type Dirs struct {
	Raw        string
	Parsed     string
	DeadLetter string
}

// Processor drains the raw area: each file is parsed, validated, and stored,
// then relocated to parsed/ on success or deadletter/ on any failure. The
// raw area's set of pending files shrinks monotonically each pass.
type Processor struct {
	dirs   Dirs
	parser *parser.Parser
	loader *Loader
	log    *zap.Logger
}

func NewProcessor(dirs Dirs, p *parser.Parser, l *Loader, log *zap.Logger) (*Processor, error) {
	for _, dir := range []string{dirs.Raw, dirs.Parsed, dirs.DeadLetter} {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create directory %s: %w", dir, err)
		}
	}
	return &Processor{dirs: dirs, parser: p, loader: l, log: log}, nil
}

// ProcessRawFiles ingests every file currently in the raw area. One file's
// failure routes it to the dead-letter area and never aborts the batch.
func (p *Processor) ProcessRawFiles(ctx context.Context) error {
	files, err := filepath.Glob(filepath.Join(p.dirs.Raw, "*"))
	if err != nil {
		// Glob only fails on a bad pattern, which is a bug, not bad data.
		return faults.Critical(fmt.Errorf("scan raw directory: %w", err))
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		info, err := os.Stat(file)
		if err != nil || info.IsDir() || strings.HasPrefix(filepath.Base(file), ".") {
			continue
		}

		if err := p.processOne(ctx, file); err != nil {
			p.log.Error("ingestion failed, moving to dead letter",
				zap.String("file", filepath.Base(file)), zap.Error(err))
			if mvErr := p.moveTo(file, p.dirs.DeadLetter); mvErr != nil {
				p.log.Error("dead letter move failed",
					zap.String("file", filepath.Base(file)), zap.Error(mvErr))
			}
			continue
		}

		if err := p.moveTo(file, p.dirs.Parsed); err != nil {
			p.log.Error("parsed move failed",
				zap.String("file", filepath.Base(file)), zap.Error(err))
			continue
		}
		p.log.Info("ingested file", zap.String("file", filepath.Base(file)))
	}
	return nil
}

func (p *Processor) processOne(ctx context.Context, path string) error {
	sym, err := SymbolFromFilename(filepath.Base(path))
	if err != nil {
		return err
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", filepath.Base(path), err)
	}

	rows, err := p.parser.Parse(string(data))
	if err != nil {
		return err
	}

	batch := models.RawBatch{Symbol: sym, Prices: rows}
	if err := Validate(batch); err != nil {
		return err
	}
	records, err := Transform(batch)
	if err != nil {
		return err
	}
	return p.loader.Store(ctx, sym, records)
}

// RequeueDeadLetters moves every dead-lettered file back to the raw area for
// another attempt. A same-named file already in raw wins: the dead-letter
// copy stays put and a warning is logged, never a silent overwrite.
func (p *Processor) RequeueDeadLetters(ctx context.Context) error {
	files, err := filepath.Glob(filepath.Join(p.dirs.DeadLetter, "*"))
	if err != nil {
		return faults.Critical(fmt.Errorf("scan dead letter directory: %w", err))
	}

	for _, file := range files {
		if err := ctx.Err(); err != nil {
			return err
		}
		name := filepath.Base(file)
		dst := filepath.Join(p.dirs.Raw, name)

		if _, err := os.Stat(dst); err == nil {
			p.log.Warn("raw file already exists, keeping dead letter copy",
				zap.String("file", name))
			continue
		} else if !errors.Is(err, os.ErrNotExist) {
			p.log.Error("could not check raw destination",
				zap.String("file", name), zap.Error(err))
			continue
		}

		if err := os.Rename(file, dst); err != nil {
			p.log.Error("requeue move failed", zap.String("file", name), zap.Error(err))
			continue
		}
		p.log.Info("requeued dead letter file", zap.String("file", name))
	}
	return nil
}

// SymbolFromFilename derives the symbol from the SYMBOL_DATE.<ext> naming
// convention: everything before the first underscore.
func SymbolFromFilename(name string) (string, error) {
	base := strings.TrimSuffix(name, filepath.Ext(name))
	idx := strings.Index(base, "_")
	if idx <= 0 {
		return "", fmt.Errorf("file %q does not match SYMBOL_DATE naming", name)
	}
	return models.NormalizeSymbol(base[:idx])
}

// moveTo relocates src into dstDir by atomic rename. An existing destination
// is replaced, but loudly: the collision is logged and the stale copy removed
// first rather than renamed over in silence.
func (p *Processor) moveTo(src, dstDir string) error {
	dst := filepath.Join(dstDir, filepath.Base(src))

	if _, err := os.Stat(dst); err == nil {
		p.log.Warn("replacing existing file", zap.String("dest", dst))
		if err := os.Remove(dst); err != nil {
			return fmt.Errorf("remove stale %s: %w", dst, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("check destination %s: %w", dst, err)
	}

	if err := os.Rename(src, dst); err != nil {
		return fmt.Errorf("move %s to %s: %w", filepath.Base(src), dstDir, err)
	}
	return nil
}
