package convert

import (
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/gosimple/slug"
	"go.uber.org/zap"

	"sc2sx/config"
	"sc2sx/state"
)

// buildOutputPath returns output file path for source "src" (relative to the
// processed directory). It uses either default naming scheme or name
// template, keeps source directory structure unless told otherwise, cleans
// up path and, if requested, transliterates it.
func buildOutputPath(values Values, src, dst string, env *state.LocalEnv) string {
	outDir := outputDir(src, dst, env)
	defaultFile := defaultFileName(src, env.Format, env)

	if env.Cfg.Output.NameTemplate == "" {
		return filepath.Join(outDir, defaultFile)
	}

	values.Context = string(config.NameTemplateFieldName)
	expandedName, err := expandTemplate(config.NameTemplateFieldName, env.Cfg.Output.NameTemplate, values)
	if err != nil {
		env.Log.Warn("Unable to prepare output filename", zap.Error(err))
		return filepath.Join(outDir, defaultFile)
	}
	expandedName = strings.TrimSpace(filepath.FromSlash(expandedName))
	if expandedName == "" {
		return filepath.Join(outDir, defaultFile)
	}
	return pathFromTemplate(outDir, expandedName, env.Format, env)
}

func outputDir(src, dst string, env *state.LocalEnv) string {
	if env.NoDirs {
		return dst
	}
	return filepath.Join(dst, filepath.Dir(src))
}

func defaultFileName(src string, format config.OutputFmt, env *state.LocalEnv) string {
	return cleanPathSegment(strings.TrimSuffix(filepath.Base(src), filepath.Ext(src)), env) + format.Ext()
}

// pathFromTemplate assembles expanded template name (which may contain path
// separators for subdirectories) into a full output path.
func pathFromTemplate(outDir, expandedName string, format config.OutputFmt, env *state.LocalEnv) string {
	segments := splitPathSegments(expandedName)
	if len(segments) == 0 {
		return outDir
	}

	parts := make([]string, 0, len(segments)+1)
	parts = append(parts, outDir)
	for _, segment := range segments[:len(segments)-1] {
		parts = append(parts, cleanPathSegment(segment, env))
	}
	parts = append(parts, cleanPathSegment(segments[len(segments)-1], env)+format.Ext())
	return filepath.Join(parts...)
}

func splitPathSegments(path string) []string {
	path = strings.TrimSuffix(path, string(os.PathSeparator))
	segments := make([]string, 0, 8)

	for head, tail := filepath.Split(path); tail != ""; head, tail = filepath.Split(head) {
		segments = slices.Insert(segments, 0, tail)
		head = strings.TrimSuffix(head, string(os.PathSeparator))
		if head == "" {
			break
		}
	}
	return segments
}

func cleanPathSegment(segment string, env *state.LocalEnv) string {
	if env.Cfg.Output.FileNameTransliterate {
		segment = slug.Make(segment)
	}
	return config.CleanFileName(segment)
}
