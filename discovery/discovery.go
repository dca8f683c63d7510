// Package discovery locates (actions, behaviors) XML pairs and orphaned
// shimeN.png runs inside a folder tree, derives a canonical name for each
// mascot, and attaches extract targets to the entry table rows the final
// extraction pass should emit.
package discovery

import (
	"sort"
	"strconv"

	"github.com/sirupsen/logrus"

	"github.com/pixelfinder/shimejifinder/actionsxml"
	"github.com/pixelfinder/shimejifinder/entry"
	"github.com/pixelfinder/shimejifinder/foldertree"
	"github.com/pixelfinder/shimejifinder/pathutil"
)

// Known file-name synonyms across the dialects found in the wild.
var (
	behaviorsSynonyms = []string{"行動.xml", "behaviors.xml", "behavior.xml", "two.xml", "2.xml"}
	actionsSynonyms   = []string{"動作.xml", "actions.xml", "action.xml", "one.xml", "1.xml"}
)

// blacklist holds folder names too generic to become a mascot name on
// their own. "shimeji" is included because the Shimeji-EE packager
// sometimes names the whole bundle root that way.
var blacklist = map[string]bool{
	"img": true, "conf": true, "shimeji": true, "unused": true,
	"shimeji-ee": true, "src": true, "/": true,
}

// Pair is an unparsed (actions, behaviors) XML pair found during Phase A.
type Pair struct {
	Folder         *foldertree.Node
	ActionsEntry   *entry.Entry
	BehaviorsEntry *entry.Entry
}

// PhaseA walks tree breadth-first, collecting every folder that holds both
// an actions-synonym and a behaviors-synonym file, and every folder that
// holds a shime1.png (a shime-root candidate for Phase C).
func PhaseA(tree *foldertree.Tree) (pairs []Pair, shimeRoots []*foldertree.Node) {
	tree.BFS(func(n *foldertree.Node) {
		actionsEntry, aok := findSynonym(n, actionsSynonyms)
		behaviorsEntry, bok := findSynonym(n, behaviorsSynonyms)
		if aok && bok {
			pairs = append(pairs, Pair{Folder: n, ActionsEntry: actionsEntry, BehaviorsEntry: behaviorsEntry})
		}
		if _, ok := n.EntryNamed("shime1.png"); ok {
			shimeRoots = append(shimeRoots, n)
		}
	})
	return pairs, shimeRoots
}

func findSynonym(n *foldertree.Node, synonyms []string) (*entry.Entry, bool) {
	for _, name := range synonyms {
		if e, ok := n.EntryNamed(name); ok {
			return e, true
		}
	}
	return nil, false
}

// TagForPreExtraction attaches a temporary Unspecified target to each
// pair's actions entry, keyed by the pair's position in pairs, so a single
// decode pass against a memory sink recovers every actions XML's bytes.
func TagForPreExtraction(pairs []Pair) {
	for i := range pairs {
		pairs[i].ActionsEntry.AddTarget(entry.Target{OutputName: strconv.Itoa(i), Kind: entry.Unspecified})
	}
}

// ClearPreExtractionTargets undoes TagForPreExtraction once the actions XML
// bytes have been read back.
func ClearPreExtractionTargets(pairs []Pair) {
	for i := range pairs {
		pairs[i].ActionsEntry.ClearTargets()
	}
}

// Registry accumulates the mascot names Phase B/C register, plus the
// subset that received no XML of their own and need DefaultXMLs at
// extraction time.
type Registry struct {
	Mascots           map[string]bool
	DefaultXMLMascots []string

	// Log, when set, receives Debug lines for routine skip decisions
	// (rejected association, rejected shime run). Logging never alters
	// control flow.
	Log logrus.FieldLogger
}

// NewRegistry returns an empty Registry.
func NewRegistry() *Registry {
	return &Registry{Mascots: make(map[string]bool)}
}

func (r *Registry) debugf(format string, args ...interface{}) {
	if r.Log != nil {
		r.Log.Debugf(format, args...)
	}
}

func (r *Registry) register(name string) {
	r.Mascots[name] = true
}

func (r *Registry) registerDefaultXML(name string) {
	for _, m := range r.DefaultXMLMascots {
		if m == name {
			return
		}
	}
	r.DefaultXMLMascots = append(r.DefaultXMLMascots, name)
}

// SortedNames returns every registered mascot name in deterministic order.
func (r *Registry) SortedNames() []string {
	out := make([]string, 0, len(r.Mascots))
	for m := range r.Mascots {
		out = append(out, m)
	}
	sort.Strings(out)
	return out
}

// mascotName implements the blacklist-climb rule: walk upward from node,
// skipping blacklisted names, and use the first non-blacklisted ancestor's
// name. Reaching the root sentinel without finding one falls back to
// fallback; the climb always terminates because the root's parent is
// itself.
func mascotName(node *foldertree.Node, fallback string) string {
	n := node
	for !n.IsRoot() {
		if !blacklist[pathutil.ToLower(n.Name)] {
			return n.Name
		}
		n = n.ParentNode()
	}
	return fallback
}

// PhaseB parses each pair's actions XML and associates the referenced
// assets with a mascot, handling the Shimeji-EE multi-mascot bundle
// convention where applicable. xmlBytes[i] must hold the raw bytes read
// back for pairs[i] during the pre-extraction pass.
func PhaseB(reg *Registry, pairs []Pair, xmlBytes [][]byte, fallbackName string) {
	for i, pair := range pairs {
		set := actionsxml.Parse(xmlBytes[i])
		if len(set) == 0 {
			reg.debugf("discovery: actions XML in %q referenced no paths, skipping pair", pair.Folder.Name)
			continue
		}
		pathSet := actionsxml.SortedPaths(set)

		bundle := pathutil.ToLower(pair.Folder.Name) == "conf"
		successes := 0
		if bundle {
			if img := pair.Folder.ParentNode().FolderNamed("img"); img != nil {
				for _, g := range sortedFolders(img) {
					if pathutil.ToLower(g.Name) == "unused" {
						continue
					}
					if _, ok := findSynonym(g, actionsSynonyms); ok {
						continue
					}
					if _, ok := findSynonym(g, behaviorsSynonyms); ok {
						continue
					}
					if associate(reg, pathSet, g, pair.Folder, fallbackName, pair.ActionsEntry, pair.BehaviorsEntry) {
						successes++
					}
				}
			}
		}
		if !bundle || successes == 0 {
			associate(reg, pathSet, pair.Folder, nil, fallbackName, pair.ActionsEntry, pair.BehaviorsEntry)
		}
	}
}

// searchRoots builds the six-node fan-out used to resolve a referenced
// asset path against a base folder: itself, its img and sound subfolders,
// its parent, and the parent's img and sound subfolders. Missing folders
// come back nil and are skipped by associate's lookup loop.
func searchRoots(b *foldertree.Node) []*foldertree.Node {
	p := b.ParentNode()
	return []*foldertree.Node{
		b,
		b.FolderNamed("img"),
		b.FolderNamed("sound"),
		p,
		p.FolderNamed("img"),
		p.FolderNamed("sound"),
	}
}

// associate implements the Association procedure. base is the folder the
// mascot name is derived from; altBase, when non-nil, contributes another
// six search roots (the Shimeji-EE bundle case, where base is a per-mascot
// subfolder of img and altBase is the shared conf folder). Returns false,
// leaving actionsEntry/behaviorsEntry untouched, when no IMAGE asset is
// found.
func associate(reg *Registry, pathSet []string, base, altBase *foldertree.Node, fallbackName string, actionsEntry, behaviorsEntry *entry.Entry) bool {
	roots := searchRoots(base)
	if altBase != nil {
		roots = append(roots, searchRoots(altBase)...)
	}

	type hit struct {
		path string
		e    *entry.Entry
		kind entry.Kind
	}
	var hits []hit
	hasImage := false

	for _, p := range pathSet {
		for _, root := range roots {
			if root == nil {
				continue
			}
			e, ok := root.RelativeFile(p)
			if !ok {
				continue
			}
			kind, classified := kindForExt(e.LowerExt)
			if classified {
				hits = append(hits, hit{path: p, e: e, kind: kind})
				if kind == entry.Image {
					hasImage = true
				}
			}
			break
		}
	}

	if !hasImage {
		reg.debugf("discovery: no image asset resolved for base %q, rejecting association", base.Name)
		return false
	}

	mascot := mascotName(base, fallbackName)
	for _, h := range hits {
		h.e.AddTarget(entry.Target{MascotName: mascot, OutputName: pathutil.NormalizeFilename(h.path), Kind: h.kind})
	}
	actionsEntry.AddTarget(entry.Target{MascotName: mascot, OutputName: "actions.xml", Kind: entry.XML})
	behaviorsEntry.AddTarget(entry.Target{MascotName: mascot, OutputName: "behaviors.xml", Kind: entry.XML})
	reg.register(mascot)
	return true
}

func kindForExt(ext string) (entry.Kind, bool) {
	switch ext {
	case "png":
		return entry.Image, true
	case "wav":
		return entry.Sound, true
	default:
		return entry.Unspecified, false
	}
}

func sortedFolders(n *foldertree.Node) []*foldertree.Node {
	m := n.Folders()
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	out := make([]*foldertree.Node, 0, len(keys))
	for _, k := range keys {
		out = append(out, m[k])
	}
	return out
}

// PhaseC finds orphaned shimeN.png runs: a shime-root candidate holding
// exactly shime1.png..shime46.png, none of them already claimed by Phase
// B, with shime47.png absent. Only those 46 exact names are ever matched
// here, so a stray icon.png sitting alongside them is never mistaken for
// a pose frame; there is no generic whole-folder image harvest elsewhere
// in this package that would need the same exclusion, since associate
// only ever follows paths an actions XML explicitly named.
func PhaseC(reg *Registry, shimeRoots []*foldertree.Node, fallbackName string) {
	for _, root := range shimeRoots {
		var found []*entry.Entry
		i := 1
		for ; i <= 47; i++ {
			e, ok := root.EntryNamed("shime" + strconv.Itoa(i) + ".png")
			if !ok {
				break
			}
			found = append(found, e)
		}
		if i != 47 || len(found) != 46 {
			reg.debugf("discovery: %q is not an exact 46-image shime run, skipping", root.Name)
			continue
		}

		claimed := false
		for _, e := range found {
			if e.HasTargets() {
				claimed = true
				break
			}
		}
		if claimed {
			reg.debugf("discovery: shime run in %q already claimed, skipping", root.Name)
			continue
		}

		mascot := mascotName(root, fallbackName)
		for _, e := range found {
			e.AddTarget(entry.Target{MascotName: mascot, OutputName: e.LowerName, Kind: entry.Image})
		}
		reg.register(mascot)
		reg.registerDefaultXML(mascot)
	}
}
