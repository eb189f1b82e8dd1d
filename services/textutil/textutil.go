// Package textutil implements text utility methods for a microrpc engine:
// shell-style glob matching over candidate names and unified text diffs.
// Unlike package demo, its handlers decode their params with encoding/json,
// trading the allocation-free discipline for convenience.
package textutil

import (
	"encoding/json"
	"strings"

	"github.com/gobwas/glob"
	"github.com/sergi/go-diff/diffmatchpatch"

	"github.com/MegaGrindStone/go-microrpc"
)

// Service implements the text utility method set. The zero value is ready to
// use.
type Service struct{}

// Register adds the match and diff methods to engine.
func (s Service) Register(engine *microrpc.Engine) error {
	if err := engine.Register("match", s.match); err != nil {
		return err
	}
	return engine.Register("diff", s.diff)
}

type matchParams struct {
	Pattern string   `json:"pattern"`
	Names   []string `json:"names"`
}

type matchResult struct {
	Matched []string `json:"matched"`
}

// match expects params [{"pattern": ..., "names": [...]}] and returns the
// names the glob pattern accepts, in their original order. Patterns use '/'
// as the separator, so "*" does not cross path boundaries but "**" does.
func (s Service) match(w *microrpc.ResponseWriter, r *microrpc.Request) {
	var params []matchParams
	if err := json.Unmarshal(r.Tree.Bytes(r.Params), &params); err != nil || len(params) < 1 {
		w.Error(microrpc.CodeInvalidParams, "")
		return
	}
	g, err := glob.Compile(params[0].Pattern, '/')
	if err != nil {
		w.Error(microrpc.CodeInvalidParams, "")
		return
	}

	res := matchResult{Matched: []string{}}
	for _, name := range params[0].Names {
		if g.Match(name) {
			res.Matched = append(res.Matched, name)
		}
	}
	out, err := json.Marshal(res)
	if err != nil {
		w.Error(microrpc.CodeInternalError, "")
		return
	}
	w.Result(string(out))
}

type diffParams struct {
	Old string `json:"old"`
	New string `json:"new"`
}

type diffResult struct {
	Patch string `json:"patch"`
}

// diff expects params [{"old": ..., "new": ...}] and returns the edits that
// turn old into new, rendered in the diff-match-patch patch format.
func (s Service) diff(w *microrpc.ResponseWriter, r *microrpc.Request) {
	var params []diffParams
	if err := json.Unmarshal(r.Tree.Bytes(r.Params), &params); err != nil || len(params) < 1 {
		w.Error(microrpc.CodeInvalidParams, "")
		return
	}

	dmp := diffmatchpatch.New()
	diffs := dmp.DiffMain(
		normalizeLineEndings(params[0].Old),
		normalizeLineEndings(params[0].New),
		true,
	)
	// Short inputs diff at character granularity; coalesce to word-level
	// edits so the patch stays readable.
	diffs = dmp.DiffCleanupSemantic(diffs)
	patches := dmp.PatchMake(diffs)

	out, err := json.Marshal(diffResult{Patch: dmp.PatchToText(patches)})
	if err != nil {
		w.Error(microrpc.CodeInternalError, "")
		return
	}
	w.Result(string(out))
}

func normalizeLineEndings(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	return strings.ReplaceAll(text, "\r", "\n")
}
