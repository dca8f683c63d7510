// Package actionsxml extracts the set of asset paths referenced by an
// actions XML document: locate the Mascot root element, then walk its
// descendants breadth-first collecting Pose image and sound attributes.
package actionsxml

import (
	"github.com/beevik/etree"

	"github.com/pixelfinder/shimejifinder/encodingguard"
	"github.com/pixelfinder/shimejifinder/pathutil"
)

const (
	rootEnglish  = "Mascot"
	rootJapanese = "マスコット"

	poseEnglish  = "Pose"
	poseJapanese = "ポーズ"
)

// poseAttributes are the attribute names (English and Japanese) whose
// values are asset paths referenced from a Pose element.
var poseAttributes = []string{"画像", "Image", "ImageRight", "Sound"}

// Parse extracts the lower-cased, deduplicated set of asset paths an
// actions XML document references. A malformed document or a document
// without a recognized root element yields an empty set rather than an
// error; discovery treats a parse failure as "no referenced paths".
func Parse(data []byte) map[string]struct{} {
	out := make(map[string]struct{})

	// Japanese-authored actions XMLs arrive either with a Shift_JIS
	// encoding declaration (handled by the CharsetReader) or as raw
	// Shift-JIS bytes with no declaration at all (repaired up front).
	data = encodingguard.New().RepairXML(data)

	doc := etree.NewDocument()
	doc.ReadSettings.CharsetReader = encodingguard.CharsetReader
	if err := doc.ReadFromBytes(data); err != nil {
		return out
	}

	root := doc.Root()
	if root == nil || (root.Tag != rootEnglish && root.Tag != rootJapanese) {
		return out
	}

	walk(root, out)
	return out
}

// walk performs the breadth-first descent: Pose elements are harvested
// for asset attributes and not descended into; every other element is
// descended into.
func walk(el *etree.Element, out map[string]struct{}) {
	queue := el.ChildElements()
	for len(queue) > 0 {
		cur := queue[0]
		queue = queue[1:]

		if cur.Tag == poseEnglish || cur.Tag == poseJapanese {
			collectPose(cur, out)
			continue
		}
		queue = append(queue, cur.ChildElements()...)
	}
}

func collectPose(pose *etree.Element, out map[string]struct{}) {
	for _, attrName := range poseAttributes {
		if v := pose.SelectAttrValue(attrName, ""); v != "" {
			out[pathutil.ToLower(v)] = struct{}{}
		}
	}
}

// SortedPaths returns the set in deterministic (sorted) order, the order
// Discovery's association procedure requires ("the path set is sorted").
func SortedPaths(set map[string]struct{}) []string {
	out := make([]string, 0, len(set))
	for p := range set {
		out = append(out, p)
	}
	sortStrings(out)
	return out
}

func sortStrings(s []string) {
	// small, allocation-free insertion sort: the referenced-path sets
	// Discovery handles per mascot are tiny (a handful of poses).
	for i := 1; i < len(s); i++ {
		for j := i; j > 0 && s[j-1] > s[j]; j-- {
			s[j-1], s[j] = s[j], s[j-1]
		}
	}
}
