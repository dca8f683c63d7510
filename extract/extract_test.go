package extract_test

import (
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/pixelfinder/shimejifinder/entry"
	"github.com/pixelfinder/shimejifinder/extract"
)

func writeEntry(e extract.Extractor, targets []entry.Target, data []byte) {
	for _, t := range targets {
		Expect(e.BeginWrite(t)).To(Succeed())
	}
	Expect(e.WriteNext(0, data)).To(Succeed())
	Expect(e.EndWrite()).To(Succeed())
}

var _ = Describe("MemorySink", func() {
	It("keys written bytes by output_name", func() {
		sink := extract.NewMemorySink()
		writeEntry(sink, []entry.Target{{MascotName: "x", OutputName: "0", Kind: entry.Unspecified}}, []byte("<Mascot/>"))

		got, ok := sink.Get("0")
		Expect(ok).To(BeTrue())
		Expect(string(got)).To(Equal("<Mascot/>"))
	})

	It("broadcasts one entry's bytes to two output names", func() {
		sink := extract.NewMemorySink()
		writeEntry(sink, []entry.Target{
			{MascotName: "a", OutputName: "one", Kind: entry.Unspecified},
			{MascotName: "b", OutputName: "two", Kind: entry.Unspecified},
		}, []byte("shared"))

		one, _ := sink.Get("one")
		two, _ := sink.Get("two")
		Expect(string(one)).To(Equal("shared"))
		Expect(string(two)).To(Equal("shared"))
	})
})

var _ = Describe("FilesystemSink", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "shimejifinder-extract-*")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	It("writes an IMAGE target under {mascot}.mascot/img", func() {
		sink := extract.NewFilesystemSink(dir)
		writeEntry(sink, []entry.Target{{MascotName: "Bob", OutputName: "shime1.png", Kind: entry.Image}}, []byte("png-bytes"))

		b, err := os.ReadFile(filepath.Join(dir, "Bob.mascot", "img", "shime1.png"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(Equal("png-bytes"))
	})

	It("writes an XML target at the mascot root, not a subdirectory", func() {
		sink := extract.NewFilesystemSink(dir)
		writeEntry(sink, []entry.Target{{MascotName: "Bob", OutputName: "actions.xml", Kind: entry.XML}}, []byte("<Mascot/>"))

		b, err := os.ReadFile(filepath.Join(dir, "Bob.mascot", "actions.xml"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(Equal("<Mascot/>"))
	})
})

var _ = Describe("ThumbnailSink", func() {
	var dir string

	BeforeEach(func() {
		var err error
		dir, err = os.MkdirTemp("", "shimejifinder-thumb-*")
		Expect(err).ToNot(HaveOccurred())
	})

	AfterEach(func() {
		Expect(os.RemoveAll(dir)).To(Succeed())
	})

	It("writes only the first IMAGE target per mascot", func() {
		sink := extract.NewThumbnailSink(dir)
		writeEntry(sink, []entry.Target{{MascotName: "Bob", OutputName: "shime1.png", Kind: entry.Image}}, []byte("first"))
		writeEntry(sink, []entry.Target{{MascotName: "Bob", OutputName: "shime2.png", Kind: entry.Image}}, []byte("second"))

		b, err := os.ReadFile(filepath.Join(dir, "Bob.png"))
		Expect(err).ToNot(HaveOccurred())
		Expect(string(b)).To(Equal("first"))
	})

	It("ignores non-IMAGE targets entirely", func() {
		sink := extract.NewThumbnailSink(dir)
		writeEntry(sink, []entry.Target{{MascotName: "Bob", OutputName: "actions.xml", Kind: entry.XML}}, []byte("<Mascot/>"))

		_, err := os.Stat(filepath.Join(dir, "Bob.png"))
		Expect(os.IsNotExist(err)).To(BeTrue())
	})
})
