// Package cssvars is the bundled "css-variables" exporter. It writes one CSS file
// of custom properties per token type and an index file importing them.
package cssvars

import (
	"context"
	"path"
	"path/filepath"
	"strings"

	"github.com/hellenic-development/supernova-cli/pkg/exporter"
	"github.com/hellenic-development/supernova-cli/pkg/supernova"
)

// Name is the builtin entry name of the exporter.
const Name = "css-variables"

// Register adds the exporter to r.
func Register(r *exporter.Registry) error {
	return r.Register(Name, exporter.Func(Export))
}

// Export implements exporter.Plugin for the css-variables exporter. Tokens whose
// value cannot be rendered are skipped with a warning.
func Export(ctx context.Context, in exporter.Input) ([]exporter.EmittedFile, error) {
	cfg, err := Decode(in.Configuration)
	if err != nil {
		return nil, err
	}

	log := in.Context.Logger
	if log == nil {
		log = exporter.NewLogSink()
	}

	tokens := make(map[string]supernova.Token, len(in.Data.Tokens))
	for _, t := range in.Data.Tokens {
		tokens[t.ID] = t
	}
	r := &renderer{
		cfg:    cfg,
		tokens: tokens,
		names:  newNamer(cfg, in.Data.TokenGroups),
	}

	var (
		files    []exporter.EmittedFile
		imported []string
	)
	for _, tokenType := range supernova.TokenTypes {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		ofType := tokensOfType(in.Data.Tokens, tokenType)
		if len(ofType) == 0 && !cfg.GenerateEmptyFiles {
			continue
		}

		stylePath := path.Join(cfg.BaseStyleFilePath, cfg.StyleFileNames[string(tokenType)])
		files = append(files, exporter.InlineFile(stylePath, r.styleFile(ofType, log)))
		imported = append(imported, stylePath)
	}

	if cfg.GenerateIndexFile {
		indexPath := path.Join(cfg.BaseIndexFilePath, cfg.IndexFileName)
		files = append(files, exporter.InlineFile(indexPath, indexFile(cfg, indexPath, imported)))
	}

	log.Infof("generated %d css files from %d tokens", len(files), len(in.Data.Tokens))
	return files, nil
}

func tokensOfType(tokens []supernova.Token, t supernova.TokenType) []supernova.Token {
	var out []supernova.Token
	for _, token := range tokens {
		if token.TokenType == t {
			out = append(out, token)
		}
	}
	return out
}

// styleFile renders a :root block with one variable per token.
func (r *renderer) styleFile(tokens []supernova.Token, log *exporter.LogSink) string {
	indent := strings.Repeat(" ", r.cfg.Indent)

	var vars []string
	for _, t := range tokens {
		value, err := r.value(t)
		if err != nil {
			log.Warnf("skipping token %s: %v", t.Name, err)
			continue
		}

		line := indent + "--" + r.names.name(t) + ": " + value + ";"
		if r.cfg.ShowDescriptions && strings.TrimSpace(t.Description) != "" {
			line = indent + "/* " + strings.TrimSpace(t.Description) + " */\n" + line
		}
		vars = append(vars, line)
	}

	content := ":root {\n" + strings.Join(vars, "\n") + "\n}"
	return withDisclaimer(r.cfg, content)
}

// indexFile renders @import statements relative to the index file's directory.
func indexFile(cfg Configuration, indexPath string, styles []string) string {
	dir := path.Dir(indexPath)

	lines := make([]string, 0, len(styles))
	for _, s := range styles {
		lines = append(lines, `@import "`+relativeImport(dir, s)+`";`)
	}
	return withDisclaimer(cfg, strings.Join(lines, "\n"))
}

func relativeImport(fromDir, target string) string {
	rel, err := filepath.Rel(filepath.FromSlash(fromDir), filepath.FromSlash(target))
	if err != nil {
		return target
	}
	rel = filepath.ToSlash(rel)
	if !strings.HasPrefix(rel, "../") {
		rel = "./" + rel
	}
	return rel
}

func withDisclaimer(cfg Configuration, content string) string {
	if !cfg.ShowGeneratedFileDisclaimer {
		return content
	}
	return "/* " + cfg.Disclaimer + " */\n" + content
}

// namer builds variable names from the token type prefix, the names of the
// token's non-root ancestor groups and the token name.
type namer struct {
	cfg    Configuration
	groups map[string]supernova.TokenGroup
	cache  map[string]string
}

func newNamer(cfg Configuration, groups []supernova.TokenGroup) *namer {
	n := &namer{
		cfg:    cfg,
		groups: make(map[string]supernova.TokenGroup, len(groups)),
		cache:  make(map[string]string),
	}
	for _, g := range groups {
		n.groups[g.ID] = g
	}
	return n
}

func (n *namer) name(t supernova.Token) string {
	if name, ok := n.cache[t.ID]; ok {
		return name
	}

	var segments []string
	if prefix := n.cfg.TokenPrefixes[string(t.TokenType)]; prefix != "" {
		segments = append(segments, words(prefix)...)
	}
	segments = append(segments, n.groupPath(t.ParentGroupID)...)
	segments = append(segments, words(t.Name)...)

	name := n.cfg.TokenNameStyle.join(segments)
	n.cache[t.ID] = name
	return name
}

// groupPath returns the words of the group names from the outermost non-root
// ancestor down to id.
func (n *namer) groupPath(id string) []string {
	var chain []supernova.TokenGroup
	seen := make(map[string]bool)
	for id != "" && !seen[id] {
		seen[id] = true
		g, ok := n.groups[id]
		if !ok || g.IsRoot {
			break
		}
		chain = append(chain, g)
		id = g.ParentGroupID
	}

	var out []string
	for i := len(chain) - 1; i >= 0; i-- {
		out = append(out, words(chain[i].Name)...)
	}
	return out
}
