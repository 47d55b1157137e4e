package stats

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
)

// DefaultExtension is the session transcript file suffix.
const DefaultExtension = ".jsonl"

// subagentsDir is the directory name that holds delegated agent transcripts.
const subagentsDir = "subagents"

// DefaultProjectsDir returns the path to ~/.claude/projects/.
func DefaultProjectsDir() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home dir: %w", err)
	}
	return filepath.Join(home, ".claude", "projects"), nil
}

// CleanProjectName turns an encoded project directory name into a label.
// e.g. "-home-user-projects-foo" -> "foo", "-home-user" -> "~"
func CleanProjectName(dirName string) ProjectName {
	if strings.HasPrefix(dirName, "-tmp") {
		return "/tmp"
	}

	var parts []string
	for _, p := range strings.Split(dirName, "-") {
		if p != "" {
			parts = append(parts, p)
		}
	}
	if len(parts) < 2 || (parts[0] != "home" && parts[0] != "Users") {
		return ProjectName(dirName)
	}

	rest := parts[2:]
	if len(rest) > 0 && rest[0] == "projects" {
		rest = rest[1:]
	}
	if len(rest) == 0 {
		return "~"
	}
	return ProjectName(strings.Join(rest, "-"))
}

// Scanner discovers session files under a projects root laid out as:
//
//	<root>/<project>/*.jsonl                   main sessions
//	<root>/<project>/<entry>/subagents/*.jsonl sub sessions
type Scanner struct {
	Root      string
	Extension string
	Logger    zerolog.Logger
}

// Scan returns all candidates in discovery order. Directories that cannot
// be listed contribute nothing. ctx is checked once per project; the only
// error is ctx.Err().
func (s *Scanner) Scan(ctx context.Context) ([]SessionCandidate, error) {
	ext := s.Extension
	if ext == "" {
		ext = DefaultExtension
	}

	entries, err := os.ReadDir(s.Root)
	if err != nil {
		s.Logger.Debug().Err(err).Str("dir", s.Root).Msg("skip projects root")
		return nil, nil
	}

	var candidates []SessionCandidate
	add := func(path string, role Role, project ProjectName) {
		info, err := os.Stat(path)
		if err != nil {
			s.Logger.Debug().Err(err).Str("file", path).Msg("skip candidate")
			return
		}
		candidates = append(candidates, SessionCandidate{
			Path:      path,
			Role:      role,
			Project:   project,
			SizeBytes: info.Size(),
			Index:     len(candidates),
		})
	}

	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		projPath := filepath.Join(s.Root, entry.Name())
		// os.Stat follows symlinked project directories.
		if info, err := os.Stat(projPath); err != nil || !info.IsDir() {
			continue
		}
		project := CleanProjectName(entry.Name())

		files, err := os.ReadDir(projPath)
		if err != nil {
			s.Logger.Debug().Err(err).Str("dir", projPath).Msg("skip project")
			continue
		}

		for _, f := range files {
			if strings.HasSuffix(f.Name(), ext) {
				add(filepath.Join(projPath, f.Name()), RoleMain, project)
			}
		}

		// Every entry is checked for a nested subagents directory, session
		// files included; only real directories contribute.
		for _, f := range files {
			subPath := filepath.Join(projPath, f.Name(), subagentsDir)
			info, err := os.Stat(subPath)
			if err != nil || !info.IsDir() {
				continue
			}
			subFiles, err := os.ReadDir(subPath)
			if err != nil {
				s.Logger.Debug().Err(err).Str("dir", subPath).Msg("skip subagents dir")
				continue
			}
			for _, sf := range subFiles {
				if strings.HasSuffix(sf.Name(), ext) {
					add(filepath.Join(subPath, sf.Name()), RoleSub, project)
				}
			}
		}
	}

	return candidates, nil
}
