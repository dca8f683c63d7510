package actionsxml_test

import (
	"golang.org/x/text/encoding/japanese"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pixelfinder/shimejifinder/actionsxml"
)

const englishDoc = `<?xml version="1.0"?>
<Mascot>
  <Actions>
    <Action Name="Stand">
      <Animation>
        <Pose Image="/shime1.png" ImageRight="/shime1.png" Duration="100"/>
        <Pose Image="/shime2.png" Sound="/sound/click.wav" Duration="100"/>
      </Animation>
    </Action>
  </Actions>
</Mascot>`

const japaneseDoc = `<?xml version="1.0" encoding="UTF-8"?>
<マスコット>
  <動作群>
    <動作 名前="Stand">
      <ポーズ 画像="/shime1.png" 秒="0.1"/>
    </動作>
  </動作群>
</マスコット>`

var _ = Describe("Parse", func() {
	It("collects lower-cased Image/ImageRight/Sound attributes from Pose elements", func() {
		paths := actionsxml.Parse([]byte(englishDoc))
		Expect(paths).To(HaveKey("/shime1.png"))
		Expect(paths).To(HaveKey("/shime2.png"))
		Expect(paths).To(HaveKey("/sound/click.wav"))
		Expect(paths).To(HaveLen(3))
	})

	It("recognizes the Japanese root and Pose element names", func() {
		paths := actionsxml.Parse([]byte(japaneseDoc))
		Expect(paths).To(HaveKey("/shime1.png"))
		Expect(paths).To(HaveLen(1))
	})

	It("returns an empty set when the root element is absent or unrecognized", func() {
		paths := actionsxml.Parse([]byte(`<Config><Pose Image="/shime1.png"/></Config>`))
		Expect(paths).To(BeEmpty())
	})

	It("returns an empty set for malformed XML instead of erroring", func() {
		paths := actionsxml.Parse([]byte(`<Mascot><Pose Image="/a.png"`))
		Expect(paths).To(BeEmpty())
	})

	It("does not descend into Pose elements", func() {
		doc := `<Mascot><Pose Image="/a.png"><Pose Image="/nested.png"/></Pose></Mascot>`
		paths := actionsxml.Parse([]byte(doc))
		Expect(paths).To(HaveKey("/a.png"))
		Expect(paths).ToNot(HaveKey("/nested.png"))
	})

	It("parses a Shift-JIS document that declares its encoding", func() {
		doc := `<?xml version="1.0" encoding="Shift_JIS"?><マスコット><ポーズ 画像="/shime1.png"/></マスコット>`
		raw, err := japanese.ShiftJIS.NewEncoder().String(doc)
		Expect(err).ToNot(HaveOccurred())

		paths := actionsxml.Parse([]byte(raw))
		Expect(paths).To(HaveKey("/shime1.png"))
	})

	It("parses a declaration-less Shift-JIS document via whole-document repair", func() {
		doc := `<マスコット><ポーズ 画像="/shime1.png"/></マスコット>`
		raw, err := japanese.ShiftJIS.NewEncoder().String(doc)
		Expect(err).ToNot(HaveOccurred())

		paths := actionsxml.Parse([]byte(raw))
		Expect(paths).To(HaveKey("/shime1.png"))
	})

	It("SortedPaths returns a deterministic ordering", func() {
		paths := actionsxml.Parse([]byte(englishDoc))
		sorted := actionsxml.SortedPaths(paths)
		Expect(sorted).To(Equal([]string{"/shime1.png", "/shime2.png", "/sound/click.wav"}))
	})
})
